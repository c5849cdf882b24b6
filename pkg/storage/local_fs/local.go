package local_fs

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	SavePath   string `yaml:"save-path" default:"storage/backups"`
	CustomPath string `yaml:"custom-path"`
}

type LocalFS struct {
	Config *Config
}

func NewClient(conf *Config) (*LocalFS, error) {
	if conf == nil || conf.SavePath == "" {
		return nil, errors.New("local_fs: save path is empty")
	}
	return &LocalFS{Config: conf}, nil
}

func (p *LocalFS) dst(fileKey string) string {
	return filepath.Join(p.Config.SavePath, p.Config.CustomPath, filepath.FromSlash(fileKey))
}

// SendFile 将读取的内容写入本地文件，并保留修改时间
func (p *LocalFS) SendFile(fileKey string, file io.Reader, itype string, modTime time.Time) (string, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	return p.SendContent(fileKey, content, modTime)
}

func (p *LocalFS) SendContent(fileKey string, content []byte, modTime time.Time) (string, error) {
	dst := p.dst(fileKey)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	if err := os.WriteFile(dst, content, 0o644); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	if !modTime.IsZero() {
		if err := os.Chtimes(dst, modTime, modTime); err != nil {
			return "", errors.Wrap(err, "local_fs")
		}
	}
	return dst, nil
}

// Delete 文件不存在时视为成功
func (p *LocalFS) Delete(fileKey string) error {
	err := os.Remove(p.dst(fileKey))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "local_fs")
	}
	return nil
}
