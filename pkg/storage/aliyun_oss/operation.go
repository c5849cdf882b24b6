package aliyun_oss

import (
	"bytes"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"
)

type Config struct {
	Endpoint        string `yaml:"endpoint"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
}

type OSS struct {
	Client *oss.Client
	Bucket *oss.Bucket
	Config *Config
}

func NewClient(conf *Config) (*OSS, error) {
	client, err := oss.New(conf.Endpoint, conf.AccessKeyID, conf.AccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	bucket, err := client.Bucket(conf.BucketName)
	if err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	return &OSS{Client: client, Bucket: bucket, Config: conf}, nil
}

func (p *OSS) key(fileKey string) string {
	return strings.TrimPrefix(path.Join(p.Config.CustomPath, fileKey), "/")
}

func (p *OSS) SendFile(fileKey string, file io.Reader, itype string, modTime time.Time) (string, error) {
	key := p.key(fileKey)
	err := p.Bucket.PutObject(key, file, oss.ContentType(itype), oss.Meta("mtime", modTime.UTC().Format(time.RFC3339)))
	if err != nil {
		return "", errors.Wrap(err, "aliyun_oss")
	}
	return key, nil
}

func (p *OSS) SendContent(fileKey string, content []byte, modTime time.Time) (string, error) {
	return p.SendFile(fileKey, bytes.NewReader(content), "application/json", modTime)
}

func (p *OSS) Delete(fileKey string) error {
	return errors.Wrap(p.Bucket.DeleteObject(p.key(fileKey)), "aliyun_oss")
}
