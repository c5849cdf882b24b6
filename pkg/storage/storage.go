package storage

import (
	"io"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/haierkeys/murverse-service/pkg/storage/aliyun_oss"
	"github.com/haierkeys/murverse-service/pkg/storage/aws_s3"
	"github.com/haierkeys/murverse-service/pkg/storage/local_fs"
	"github.com/haierkeys/murverse-service/pkg/storage/webdav"
)

type Type = string

const (
	LOCAL  Type = "localfs"
	OSS    Type = "oss"
	S3     Type = "s3"
	WebDAV Type = "webdav"
)

// StorageTypeMap 支持的存储类型
var StorageTypeMap = map[Type]bool{
	LOCAL:  true,
	OSS:    true,
	S3:     true,
	WebDAV: true,
}

// ErrInvalidStorageType 未知的存储类型
var ErrInvalidStorageType = errors.New("storage: invalid storage type")

// Config Unified storage configuration
// 备份归档存储配置，按 Type 选择后端
type Config struct {
	Type       Type   `yaml:"type" default:"localfs"`
	IsEnabled  bool   `yaml:"is-enable"`
	CustomPath string `yaml:"custom-path"`

	// Cloud Storage (S3/OSS)
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`

	// WebDAV
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// Local FS
	SavePath string `yaml:"save-path" default:"storage/backups"`
}

// Storager 归档存储接口
type Storager interface {
	SendContent(pathKey string, content []byte, modTime time.Time) (string, error)
	SendFile(pathKey string, file io.Reader, cType string, modTime time.Time) (string, error)
	Delete(pathKey string) error
}

// NewClient returns nil, nil when the archive is disabled.
// NewClient 归档未启用时返回 nil
func NewClient(config *Config) (Storager, error) {
	if config == nil || !config.IsEnabled {
		return nil, nil
	}

	switch config.Type {
	case LOCAL:
		return local_fs.NewClient(&local_fs.Config{
			SavePath:   config.SavePath,
			CustomPath: config.CustomPath,
		})
	case OSS:
		return aliyun_oss.NewClient(&aliyun_oss.Config{
			Endpoint:        config.Endpoint,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		})
	case S3:
		return aws_s3.NewClient(&aws_s3.Config{
			Endpoint:        config.Endpoint,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		})
	case WebDAV:
		return webdav.NewClient(&webdav.Config{
			Endpoint:   config.Endpoint,
			User:       config.User,
			Password:   config.Password,
			CustomPath: config.CustomPath,
		})
	}
	return nil, errors.Wrap(ErrInvalidStorageType, config.Type)
}

// JoinKey 拼接对象键，去掉多余的斜杠
func JoinKey(prefix, key string) string {
	return strings.TrimPrefix(path.Join("/", prefix, key), "/")
}
