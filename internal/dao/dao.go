// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/haierkeys/gormTracing"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"

	"github.com/haierkeys/murverse-service/internal/model"
	"github.com/haierkeys/murverse-service/pkg/writequeue"
)

// DatabaseConfig 数据库配置（DAO 层使用）
type DatabaseConfig struct {
	// Type 数据库类型：sqlite / mysql / postgres
	Type     string
	Path     string
	UserName string
	Password string
	Host     string
	Name     string
	// TablePrefix 表名前缀
	TablePrefix string
	AutoMigrate bool
	Charset     string
	ParseTime   bool
	SSLMode     string
	// Replicas 只读副本 DSN（mysql / postgres）
	Replicas []string

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	ConnMaxIdleTime string
	// RunMode debug 模式下打印 SQL
	RunMode string
}

// Dao 数据访问对象
type Dao struct {
	Db         *gorm.DB
	ctx        context.Context
	config     *DatabaseConfig
	logger     *zap.Logger
	writeQueue *writequeue.Manager

	migrated sync.Map
}

// Option Dao 配置选项
type Option func(*Dao)

// WithConfig 设置数据库配置
func WithConfig(c *DatabaseConfig) Option {
	return func(d *Dao) { d.config = c }
}

// WithLogger 设置日志器
func WithLogger(l *zap.Logger) Option {
	return func(d *Dao) { d.logger = l }
}

// WithWriteQueueManager 设置写队列管理器，未设置时写操作直接执行
func WithWriteQueueManager(m *writequeue.Manager) Option {
	return func(d *Dao) { d.writeQueue = m }
}

// New 创建 Dao
func New(db *gorm.DB, ctx context.Context, opts ...Option) *Dao {
	d := &Dao{
		Db:     db,
		ctx:    ctx,
		config: &DatabaseConfig{AutoMigrate: true},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dao) Logger() *zap.Logger {
	return d.logger
}

type migration struct {
	once sync.Once
	err  error
}

// WithTable returns a session bound to ctx after making sure the tables named
// by keys exist. Each key is migrated at most once per Dao.
// WithTable 按需迁移数据表（每个 key 只执行一次）
func (d *Dao) WithTable(ctx context.Context, keys ...string) (*gorm.DB, error) {
	if d.config == nil || d.config.AutoMigrate {
		for _, key := range keys {
			v, _ := d.migrated.LoadOrStore(key, &migration{})
			m := v.(*migration)
			m.once.Do(func() {
				m.err = model.AutoMigrate(d.Db, key)
				if m.err != nil {
					d.logger.Error("auto migrate failed", zap.String("table", key), zap.Error(m.err))
				}
			})
			if m.err != nil {
				return nil, errors.Wrapf(m.err, "migrate %s", key)
			}
		}
	}
	return d.Db.WithContext(ctx), nil
}

// Migrate migrates every model up front.
func (d *Dao) Migrate(ctx context.Context) error {
	_, err := d.WithTable(ctx, model.Keys()...)
	return err
}

// ExecuteWrite 通过写队列串行执行同一用户的写操作
func (d *Dao) ExecuteWrite(ctx context.Context, uid int64, fn func(db *gorm.DB) error) error {
	db := d.Db.WithContext(ctx)
	if d.writeQueue == nil {
		return fn(db)
	}
	return d.writeQueue.Execute(ctx, uid, func() error {
		return fn(db)
	})
}

// Transaction 在写队列中开启事务
func (d *Dao) Transaction(ctx context.Context, uid int64, fn func(tx *gorm.DB) error) error {
	return d.ExecuteWrite(ctx, uid, func(db *gorm.DB) error {
		return db.Transaction(fn)
	})
}

// NewDBEngine 根据配置创建数据库连接
func NewDBEngine(c *DatabaseConfig, zl *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(c, "")
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if c.RunMode == "debug" {
		logLevel = logger.Info
	}
	if zl == nil {
		zl = zap.NewNop()
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(zapWriter{zl}, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix, // 表名前缀，`User` 的表名应该是 `t_user`
			SingularTable: true,          // 使用单数表名
		},
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	if len(c.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(c.Replicas))
		for _, dsn := range c.Replicas {
			r, err := dialectorFor(c, dsn)
			if err != nil {
				return nil, err
			}
			replicas = append(replicas, r)
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, errors.Wrap(err, "register read replicas")
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SetMaxIdleConns 连接池中空闲连接的最大数量
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	// SetMaxOpenConns 打开数据库连接的最大数量
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	if d, err := time.ParseDuration(c.ConnMaxLifetime); err == nil && d > 0 {
		sqlDB.SetConnMaxLifetime(d)
	}
	if d, err := time.ParseDuration(c.ConnMaxIdleTime); err == nil && d > 0 {
		sqlDB.SetConnMaxIdleTime(d)
	}

	_ = db.Use(&gormTracing.OpentracingPlugin{})

	return db, nil
}

// dialectorFor builds the dialector of c; a non-empty dsn overrides the one
// derived from c (used for replicas).
func dialectorFor(c *DatabaseConfig, dsn string) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		if dsn == "" {
			charset := c.Charset
			if charset == "" {
				charset = "utf8mb4"
			}
			dsn = fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
				c.UserName, c.Password, c.Host, c.Name, charset, c.ParseTime)
		}
		return mysql.Open(dsn), nil
	case "postgres":
		if dsn == "" {
			host, port := c.Host, "5432"
			if h, p, ok := strings.Cut(c.Host, ":"); ok {
				host, port = h, p
			}
			sslMode := c.SSLMode
			if sslMode == "" {
				sslMode = "disable"
			}
			dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
				host, port, c.UserName, c.Password, c.Name, sslMode)
		}
		return postgres.Open(dsn), nil
	case "sqlite", "":
		if dsn != "" {
			return sqlite.Open(dsn), nil
		}
		if c.Path == ":memory:" {
			return sqlite.Open(c.Path), nil
		}
		if err := os.MkdirAll(filepath.Dir(c.Path), os.ModePerm); err != nil {
			return nil, errors.Wrap(err, "create database dir")
		}
		return sqlite.Open(c.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"), nil
	}
	return nil, errors.Errorf("unsupported database type %q", c.Type)
}

// zapWriter adapts zap to gorm's logger.Writer.
type zapWriter struct {
	l *zap.Logger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.l.WithOptions(zap.AddCallerSkip(3)).Info(fmt.Sprintf(format, args...))
}
