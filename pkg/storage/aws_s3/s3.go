package aws_s3

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

type Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
}

type S3 struct {
	S3Client *s3.Client
	Config   *Config
}

// NewClient 创建 S3 存储实例，Endpoint 非空时使用兼容 S3 的服务
func NewClient(conf *Config) (*S3, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.AccessKeySecret, "")),
		config.WithRegion(conf.Region),
	)
	if err != nil {
		return nil, errors.Wrap(err, "aws_s3")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{S3Client: client, Config: conf}, nil
}

func (p *S3) key(fileKey string) string {
	return strings.TrimPrefix(path.Join(p.Config.CustomPath, fileKey), "/")
}

func (p *S3) SendFile(fileKey string, file io.Reader, itype string, modTime time.Time) (string, error) {
	key := p.key(fileKey)
	_, err := p.S3Client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(p.Config.BucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(itype),
		Metadata:    map[string]string{"mtime": modTime.UTC().Format(time.RFC3339)},
	})
	if err != nil {
		return "", errors.Wrap(err, "aws_s3")
	}
	return key, nil
}

func (p *S3) SendContent(fileKey string, content []byte, modTime time.Time) (string, error) {
	return p.SendFile(fileKey, bytes.NewReader(content), "application/json", modTime)
}

func (p *S3) Delete(fileKey string) error {
	_, err := p.S3Client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(p.key(fileKey)),
	})
	return errors.Wrap(err, "aws_s3")
}
