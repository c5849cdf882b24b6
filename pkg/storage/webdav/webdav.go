package webdav

import (
	"io"
	"os"
	"path"
	"time"

	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
)

// Config 结构体用于存储 WebDAV 连接信息。
type Config struct {
	Endpoint   string `yaml:"endpoint"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	CustomPath string `yaml:"custom-path"`
}

// WebDAV 结构体表示 WebDAV 客户端。
type WebDAV struct {
	Client *gowebdav.Client
	Config *Config
}

// NewClient 创建一个新的 WebDAV 客户端实例。
func NewClient(conf *Config) (*WebDAV, error) {
	c := gowebdav.NewClient(conf.Endpoint, conf.User, conf.Password)
	if err := c.Connect(); err != nil {
		return nil, errors.Wrap(err, "webdav")
	}
	return &WebDAV{Client: c, Config: conf}, nil
}

func (w *WebDAV) key(fileKey string) string {
	return path.Join("/", w.Config.CustomPath, fileKey)
}

func (w *WebDAV) SendFile(fileKey string, file io.Reader, itype string, modTime time.Time) (string, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	return w.SendContent(fileKey, content, modTime)
}

// SendContent 将二进制内容上传到 WebDAV 服务器，目录不存在时自动创建
func (w *WebDAV) SendContent(fileKey string, content []byte, modTime time.Time) (string, error) {
	key := w.key(fileKey)
	if err := w.Client.MkdirAll(path.Dir(key), 0o755); err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	if err := w.Client.Write(key, content, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	return key, nil
}

func (w *WebDAV) Delete(fileKey string) error {
	err := w.Client.Remove(w.key(fileKey))
	if err != nil && !gowebdav.IsErrNotFound(err) {
		return errors.Wrap(err, "webdav")
	}
	return nil
}
