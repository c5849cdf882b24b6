package client

import (
	"context"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/oauth2"
)

// PasswordTokenSource logs in through POST /api/user/login on every Token call.
// Caching is left to the Client, which drops the token on 401.
// PasswordTokenSource 通过用户名密码登录换取 token
type PasswordTokenSource struct {
	ctx         context.Context
	login       *Client
	credentials string
	password    string
}

// NewPasswordTokenSource credentials is a username or an email.
func NewPasswordTokenSource(ctx context.Context, baseURL, credentials, password string, opts ...Option) *PasswordTokenSource {
	return &PasswordTokenSource{
		ctx:         ctx,
		login:       New(baseURL, opts...),
		credentials: credentials,
		password:    password,
	}
}

type loginRequest struct {
	Credentials string `json:"credentials"`
	Password    string `json:"password"`
}

type loginResult struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

func (s *PasswordTokenSource) Token() (*oauth2.Token, error) {
	var out loginResult
	err := s.login.do(s.ctx, http.MethodPost, "/api/user/login", nil, loginRequest{
		Credentials: s.credentials,
		Password:    s.password,
	}, &out)
	if err != nil {
		return nil, err
	}

	tok := &oauth2.Token{AccessToken: out.Token, TokenType: "Bearer"}
	// 服务端以本地时区输出过期时间
	if out.ExpiresAt != "" {
		if t, err := dateparse.ParseIn(out.ExpiresAt, time.Local); err == nil {
			tok.Expiry = t
		}
	}
	return tok, nil
}
