// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/haierkeys/murverse-service/internal/dao"
	"github.com/haierkeys/murverse-service/internal/domain"
	"github.com/haierkeys/murverse-service/internal/dto"
	"github.com/haierkeys/murverse-service/internal/service"
	pkgapp "github.com/haierkeys/murverse-service/pkg/app"
	"github.com/haierkeys/murverse-service/pkg/metrics"
	"github.com/haierkeys/murverse-service/pkg/storage"
	"github.com/haierkeys/murverse-service/pkg/workerpool"
	"github.com/haierkeys/murverse-service/pkg/writequeue"
)

// WebSocketEventFragment 碎片变更推送的消息类型
const WebSocketEventFragment = "fragment"

// App 应用容器，封装所有依赖和服务
type App struct {
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager

	// Repository 层
	FragmentRepo domain.FragmentRepository
	NoteRepo     domain.NoteRepository
	TagRepo      domain.TagRepository
	BackupRepo   domain.BackupRepository
	UserRepo     domain.UserRepository

	// Service 层
	FragmentService service.FragmentService
	NoteService     service.NoteService
	TagService      service.TagService
	BackupService   service.BackupService
	UserService     service.UserService

	// 基础设施组件
	TokenManager pkgapp.TokenManager
	Archive      storage.Storager
	Hub          *pkgapp.WebsocketServer
	Registry     *prometheus.Registry
	HTTPMetrics  *metrics.HTTP
	Metrics      *metrics.Domain

	// StartTime 容器创建时间，用于 uptime
	StartTime time.Time

	shutdownOnce sync.Once
}

// NewApp 创建应用容器实例并完成依赖注入
// cfg / logger / db 均为必需
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:    cfg,
		logger:    logger,
		DB:        db,
		StartTime: time.Now(),
	}

	// 每个容器使用独立的注册表，配置热重载重建容器时不会重复注册
	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.HTTPMetrics = metrics.NewHTTP(a.Registry)
	a.Metrics = metrics.NewDomain(a.Registry)

	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)

	a.Dao = dao.New(db, context.Background(),
		dao.WithConfig(cfg.DatabaseConfig()),
		dao.WithLogger(logger),
		dao.WithWriteQueueManager(a.writeQueueMgr),
	)

	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Expiry:    cfg.GetTokenExpiry(),
	})

	archive, err := storage.NewClient(&cfg.BackupArchive)
	if err != nil {
		a.closeWorkers(context.Background())
		return nil, fmt.Errorf("backup archive: %w", err)
	}
	a.Archive = archive

	a.Hub = pkgapp.NewWebsocketServer(pkgapp.WebsocketServerConfig{}, logger)
	events := &eventSink{hub: a.Hub, pool: a.workerPool, metrics: a.Metrics, logger: logger}

	a.FragmentRepo = dao.NewFragmentRepository(a.Dao)
	a.NoteRepo = dao.NewNoteRepository(a.Dao)
	a.TagRepo = dao.NewTagRepository(a.Dao)
	a.BackupRepo = dao.NewBackupRepository(a.Dao)
	a.UserRepo = dao.NewUserRepository(a.Dao)

	svcConfig := &service.ServiceConfig{
		User: service.UserServiceConfig{
			RegisterIsEnable: cfg.User.RegisterIsEnable,
			AdminUIDs:        cfg.User.AdminUIDs,
		},
		App: service.AppServiceConfig{
			BackupRetention:   cfg.GetBackupRetention(),
			BackupArchivePath: cfg.App.BackupArchivePath,
			CleanupBatchSize:  cfg.App.BackupCleanupBatch,
		},
	}

	a.FragmentService = service.NewFragmentService(a.FragmentRepo, a.NoteRepo, a.TagRepo, a.BackupRepo, logger, svcConfig,
		service.WithArchive(a.Archive),
		service.WithEvents(events),
	)
	a.NoteService = service.NewNoteService(a.FragmentRepo, a.NoteRepo, events, logger)
	a.TagService = service.NewTagService(a.FragmentRepo, a.TagRepo, events, logger)
	a.BackupService = service.NewBackupService(a.BackupRepo, a.FragmentRepo, a.Archive, events, logger, svcConfig)
	a.UserService = service.NewUserService(a.UserRepo, a.TokenManager, logger, svcConfig)

	logger.Info("App container initialized",
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity),
		zap.Bool("backupArchive", a.Archive != nil))

	return a, nil
}

// DatabaseConfig 转换为 DAO 层使用的配置
func (c *AppConfig) DatabaseConfig() *dao.DatabaseConfig {
	return &dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		SSLMode:         c.Database.SSLMode,
		Replicas:        c.Database.Replicas,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		RunMode:         c.Server.RunMode,
	}
}

// eventSink pushes fragment events to the websocket hub from the worker pool.
// eventSink 通过 worker pool 异步推送碎片事件
type eventSink struct {
	hub     *pkgapp.WebsocketServer
	pool    *workerpool.Pool
	metrics *metrics.Domain
	logger  *zap.Logger
}

func (s *eventSink) Publish(uid int64, event dto.FragmentEventDTO) {
	s.metrics.FragmentEvents.WithLabelValues(event.Type).Inc()
	err := s.pool.SubmitAsync(context.Background(), "push."+event.Type, func(context.Context) error {
		s.hub.Push(uid, WebSocketEventFragment, event)
		return nil
	})
	if err != nil {
		s.logger.Warn("fragment event dropped", zap.Int64("uid", uid), zap.String("type", event.Type), zap.Error(err))
	}
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// IsAdmin 管理员判断
func (a *App) IsAdmin(uid int64) bool {
	return a.BackupService.IsAdmin(uid)
}

// WorkerPool 获取 Worker Pool
func (a *App) WorkerPool() *workerpool.Pool {
	return a.workerPool
}

// WriteQueueManager 获取 Write Queue Manager
func (a *App) WriteQueueManager() *writequeue.Manager {
	return a.writeQueueMgr
}

// RefreshMetrics 将写队列状态同步到 prometheus
func (a *App) RefreshMetrics() {
	m := a.writeQueueMgr.GetMetrics()
	a.Metrics.WriteQueue.WithLabelValues("active_queues").Set(float64(m.ActiveQueues))
	a.Metrics.WriteQueue.WithLabelValues("executed").Set(float64(m.Executed))
	a.Metrics.WriteQueue.WithLabelValues("rejected").Set(float64(m.Rejected))
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

func (a *App) closeWorkers(ctx context.Context) []error {
	var errs []error
	if a.workerPool != nil {
		if err := a.workerPool.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("worker pool shutdown: %w", err))
		}
	}
	if a.writeQueueMgr != nil {
		if err := a.writeQueueMgr.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("write queue manager shutdown: %w", err))
		}
	}
	return errs
}

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Worker Pool -> Write Queue Manager -> Database
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	a.shutdownOnce.Do(func() {
		if ctx == nil {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
			defer cancel()
		}
		a.logger.Info("App container shutting down...")

		errs = a.closeWorkers(ctx)

		if sqlDB, err := a.DB.DB(); err != nil {
			errs = append(errs, fmt.Errorf("failed to get sql.DB: %w", err))
		} else if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}

		for _, err := range errs {
			a.logger.Warn("shutdown error", zap.Error(err))
		}
		a.logger.Info("App container shutdown completed")
	})
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
