package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/haierkeys/murverse-service/internal/app"
	"github.com/haierkeys/murverse-service/pkg/logger"
)

func init() {
	Register(NewBackupCleanupTask)
}

// BackupCleanupTask 定期删除过期的碎片备份及其归档对象
type BackupCleanupTask struct {
	app      *app.App
	interval time.Duration
	spec     string
}

// NewBackupCleanupTask 创建备份清理任务
func NewBackupCleanupTask(a *app.App) (Task, error) {
	return &BackupCleanupTask{
		app:      a,
		interval: a.Config().GetBackupCleanupInterval(),
		spec:     a.Config().App.BackupCleanupCron,
	}, nil
}

// Name 返回任务名称
func (t *BackupCleanupTask) Name() string {
	return "BackupCleanup"
}

// LoopInterval 返回执行间隔
func (t *BackupCleanupTask) LoopInterval() time.Duration {
	return t.interval
}

// CronSpec 配置了 cron 表达式时优先于固定间隔
func (t *BackupCleanupTask) CronSpec() string {
	return t.spec
}

// IsStartupRun 是否立即执行一次
func (t *BackupCleanupTask) IsStartupRun() bool {
	return true
}

// Run 执行清理
func (t *BackupCleanupTask) Run(ctx context.Context) error {
	removed, err := t.app.BackupService.Cleanup(ctx)
	if err != nil {
		return err
	}
	t.app.Metrics.BackupsRemoved.Add(float64(removed))
	if removed > 0 {
		t.app.Logger().Info("task log",
			zap.String("task", t.Name()),
			zap.Int(logger.FieldCount, removed))
	}
	return nil
}
