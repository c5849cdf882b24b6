// Package client is a Go SDK for the Murverse REST surface.
// Package client 封装 Murverse REST 接口的客户端
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultTimeout applies when no http.Client is supplied.
const DefaultTimeout = 30 * time.Second

// APIError is any non-2xx response.
// APIError 非 2xx 响应
type APIError struct {
	Status  int    // HTTP status // HTTP 状态码
	Code    int    // Business code // 业务码
	Kind    string // Error kind when the server sent one // 错误分类
	Message string // Server message // 服务端消息
}

func (e *APIError) Error() string {
	return fmt.Sprintf("murverse: http %d code %d: %s", e.Status, e.Code, e.Message)
}

// envelope is the response body shared by every endpoint.
type envelope struct {
	Code    int             `json:"code"`
	Status  bool            `json:"status"`
	Kind    string          `json:"kind"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL string
	http    *http.Client
	src     oauth2.TokenSource
	logger  *zap.Logger

	mu  sync.Mutex
	tok *oauth2.Token
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource sets the credential source used for the bearer header.
func WithTokenSource(src oauth2.TokenSource) Option {
	return func(c *Client) { c.src = src }
}

// WithAPIKey uses a fixed token.
func WithAPIKey(key string) Option {
	return WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: key, TokenType: "Bearer"}))
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New 创建客户端，baseURL 为服务根地址，如 http://127.0.0.1:9000
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// token returns the cached token, fetching a new one when missing or expired.
func (c *Client) token() (*oauth2.Token, error) {
	if c.src == nil {
		return nil, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tok.Valid() {
		return c.tok, nil
	}
	tok, err := c.src.Token()
	if err != nil {
		return nil, err
	}
	c.tok = tok
	return tok, nil
}

// invalidate drops the cached token if it is still the one that was rejected.
func (c *Client) invalidate(rejected *oauth2.Token) {
	c.mu.Lock()
	if c.tok == rejected {
		c.tok = nil
	}
	c.mu.Unlock()
}

// do sends one request and decodes the envelope's data into out.
// A 401 drops the cached token and the request is replayed exactly once.
// 遇到 401 时丢弃缓存的 token 并重放一次请求
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body []byte
	if in != nil {
		b, err := sonic.Marshal(in)
		if err != nil {
			return err
		}
		body = b
	}

	status, env, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && c.src != nil {
		c.logger.Debug("token rejected, retrying", zap.String("method", method), zap.String("path", path))
		status, env, err = c.send(ctx, method, path, query, body)
		if err != nil {
			return err
		}
	}

	if status < 200 || status > 299 {
		return &APIError{Status: status, Code: env.Code, Kind: env.Kind, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	return sonic.Unmarshal(env.Data, out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body []byte) (int, *envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	tok, err := c.token()
	if err != nil {
		return 0, nil, fmt.Errorf("murverse: token: %w", err)
	}
	if tok != nil {
		tok.SetAuthHeader(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	env := &envelope{}
	if len(raw) > 0 {
		if err := sonic.Unmarshal(raw, env); err != nil && resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return resp.StatusCode, nil, fmt.Errorf("murverse: decode response: %w", err)
		}
	}
	if env.Message == "" && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		env.Message = http.StatusText(resp.StatusCode)
	}

	if resp.StatusCode == http.StatusUnauthorized && tok != nil {
		c.invalidate(tok)
	}
	return resp.StatusCode, env, nil
}
