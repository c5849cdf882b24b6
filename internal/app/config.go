// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/haierkeys/murverse-service/pkg/storage"
	"github.com/haierkeys/murverse-service/pkg/util"
	"github.com/haierkeys/murverse-service/pkg/workerpool"
	"github.com/haierkeys/murverse-service/pkg/writequeue"
)

// EnvPrefix 环境变量前缀，例如 MURVERSE_DATABASE_TYPE
const EnvPrefix = "MURVERSE"

// AppConfig 应用配置
type AppConfig struct {
	File          string         `yaml:"-"` // 配置文件路径，不序列化
	Server        ServerConfig   `yaml:"server"`
	Log           LogConfig      `yaml:"log"`
	Database      DatabaseConfig `yaml:"database"`
	App           AppSettings    `yaml:"app"`
	User          UserConfig     `yaml:"user"`
	Security      SecurityConfig `yaml:"security"`
	Tracer        TracerConfig   `yaml:"tracer"`
	BackupArchive storage.Config `yaml:"backup-archive"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时只输出到 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式 debug / release
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 监听地址
	HttpPort string `yaml:"http-port" default:":9100"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有监听地址（metrics / pprof），为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9101"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthTokenKey string `yaml:"auth-token-key" default:"murverse-Auth-Token"`
	// TokenExpiry 支持格式：7d（天）、24h（小时）、30m（分钟）
	TokenExpiry string `yaml:"token-expiry" default:"30d"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型 sqlite / mysql / postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path     string `yaml:"path" default:"storage/database/murverse.sqlite3"`
	UserName string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Name     string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix" default:"mv_"`
	AutoMigrate bool   `yaml:"auto-migrate" default:"true"`
	Charset     string `yaml:"charset" default:"utf8mb4"`
	ParseTime   bool   `yaml:"parse-time" default:"true"`
	SSLMode     string `yaml:"ssl-mode" default:"disable"`
	// Replicas 只读副本 DSN 列表（mysql / postgres）
	Replicas []string `yaml:"replicas"`

	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 支持格式：30m（分钟）、1h（小时）
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// UserConfig 用户配置
type UserConfig struct {
	// RegisterIsEnable 注册是否启用
	RegisterIsEnable bool `yaml:"register-is-enable" default:"true"`
	// AdminUIDs 管理员 UID 列表，为空表示没有管理员
	AdminUIDs []int64 `yaml:"admin-uids"`
}

// AppSettings 应用设置
type AppSettings struct {
	DefaultPageSize int `yaml:"default-page-size" default:"20"`
	MaxPageSize     int `yaml:"max-page-size" default:"200"`
	// DefaultContextTimeout 请求超时（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`

	// BackupRetention 删除的碎片可恢复的时长
	BackupRetention string `yaml:"backup-retention" default:"30d"`
	// BackupCleanupInterval 过期备份清理间隔
	BackupCleanupInterval string `yaml:"backup-cleanup-interval" default:"1h"`
	// BackupCleanupCron 例如 "30 3 * * *"，非空时替代 BackupCleanupInterval
	BackupCleanupCron  string `yaml:"backup-cleanup-cron"`
	BackupCleanupBatch int    `yaml:"backup-cleanup-batch" default:"500"`
	// BackupArchivePath 归档对象键前缀
	BackupArchivePath string `yaml:"backup-archive-path" default:"backups"`

	// Worker Pool 配置
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"8"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"1024"`

	// Write Queue 配置
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"100"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" default:"10m"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称
	Header string `yaml:"header" default:"X-Trace-ID"`
	// JaegerAgent jaeger agent 地址，为空时不上报
	JaegerAgent string `yaml:"jaeger-agent"`
	// ServiceName 上报的服务名
	ServiceName string `yaml:"service-name" default:"murverse-service"`
}

// LoadConfig 从文件加载配置，随后应用 .env 与 MURVERSE_* 环境变量
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// defaults.Set 只填充零值字段，YAML 中写了空值的字段在这里补齐
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "re-set default config failed")
	}

	loadDotEnv(filepath.Dir(realpath))
	if err := c.applyEnv(NewEnv()); err != nil {
		return nil, realpath, err
	}

	return c, realpath, nil
}

// loadDotEnv 已存在的环境变量不会被 .env 覆盖
func loadDotEnv(dirs ...string) {
	for _, dir := range append(dirs, ".") {
		p := filepath.Join(dir, ".env")
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// NewEnv returns a viper instance reading MURVERSE_* variables, with "." and
// "-" in keys mapped to "_".
func NewEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

type envBinding struct {
	key   string
	apply func(c *AppConfig, raw string) error
}

func str(dst func(c *AppConfig) *string) func(*AppConfig, string) error {
	return func(c *AppConfig, raw string) error {
		*dst(c) = raw
		return nil
	}
}

var envBindings = []envBinding{
	{"server.run-mode", str(func(c *AppConfig) *string { return &c.Server.RunMode })},
	{"server.http-port", str(func(c *AppConfig) *string { return &c.Server.HttpPort })},
	{"server.private-http-listen", str(func(c *AppConfig) *string { return &c.Server.PrivateHttpListen })},
	{"log.level", str(func(c *AppConfig) *string { return &c.Log.Level })},
	{"log.file", str(func(c *AppConfig) *string { return &c.Log.File })},
	{"database.type", str(func(c *AppConfig) *string { return &c.Database.Type })},
	{"database.path", str(func(c *AppConfig) *string { return &c.Database.Path })},
	{"database.host", str(func(c *AppConfig) *string { return &c.Database.Host })},
	{"database.name", str(func(c *AppConfig) *string { return &c.Database.Name })},
	{"database.username", str(func(c *AppConfig) *string { return &c.Database.UserName })},
	{"database.password", str(func(c *AppConfig) *string { return &c.Database.Password })},
	{"security.auth-token-key", str(func(c *AppConfig) *string { return &c.Security.AuthTokenKey })},
	{"security.token-expiry", str(func(c *AppConfig) *string { return &c.Security.TokenExpiry })},
	{"tracer.jaeger-agent", str(func(c *AppConfig) *string { return &c.Tracer.JaegerAgent })},
	{"user.register-is-enable", func(c *AppConfig, raw string) error {
		b, err := cast.ToBoolE(raw)
		c.User.RegisterIsEnable = b
		return err
	}},
	{"user.admin-uids", func(c *AppConfig, raw string) error {
		uids, err := ParseUIDList(raw)
		c.User.AdminUIDs = uids
		return err
	}},
}

// applyEnv 只覆盖设置了的环境变量
func (c *AppConfig) applyEnv(v *viper.Viper) error {
	for _, b := range envBindings {
		if err := v.BindEnv(b.key); err != nil {
			return errors.Wrapf(err, "bind env %s", b.key)
		}
		if !v.IsSet(b.key) {
			continue
		}
		if err := b.apply(c, v.GetString(b.key)); err != nil {
			return errors.Wrapf(err, "invalid env value for %s", b.key)
		}
	}
	return nil
}

// ParseUIDList 解析逗号或空白分隔的 UID 列表
func ParseUIDList(raw string) ([]int64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	out := make([]int64, 0, len(fields))
	for _, f := range fields {
		uid, err := cast.ToInt64E(f)
		if err != nil {
			return nil, err
		}
		if uid > 0 {
			out = append(out, uid)
		}
	}
	return out, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}
	if err := os.WriteFile(c.File, data, 0o644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	return workerpool.Config{
		MaxWorkers: c.App.WorkerPoolMaxWorkers,
		QueueSize:  c.App.WorkerPoolQueueSize,
	}
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	return writequeue.Config{
		QueueCapacity: c.App.WriteQueueCapacity,
		WriteTimeout:  durationOr(c.App.WriteQueueTimeout, 0),
		IdleTimeout:   durationOr(c.App.WriteQueueIdleTime, 0),
	}
}

// GetTokenExpiry 获取 Token 过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	return durationOr(c.Security.TokenExpiry, 30*24*time.Hour)
}

func (c *AppConfig) GetBackupRetention() time.Duration {
	return durationOr(c.App.BackupRetention, 30*24*time.Hour)
}

func (c *AppConfig) GetBackupCleanupInterval() time.Duration {
	return durationOr(c.App.BackupCleanupInterval, time.Hour)
}

func (c *AppConfig) GetContextTimeout() time.Duration {
	return time.Duration(c.App.DefaultContextTimeout) * time.Second
}

func durationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := util.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
