package service

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/haierkeys/murverse-service/internal/domain"
	"github.com/haierkeys/murverse-service/internal/dto"
	"github.com/haierkeys/murverse-service/pkg/code"
	"github.com/haierkeys/murverse-service/pkg/fragment"
	"github.com/haierkeys/murverse-service/pkg/logger"
	"github.com/haierkeys/murverse-service/pkg/storage"
	"github.com/haierkeys/murverse-service/pkg/timex"
)

// BackupService 定义备份（管理员）业务服务接口
type BackupService interface {
	// IsAdmin 判断用户是否为管理员
	IsAdmin(uid int64) bool

	// List 分页查询备份
	List(ctx context.Context, params *dto.BackupListRequest, page, pageSize int) ([]*dto.BackupDTO, int64, error)

	// Get 获取单个备份
	Get(ctx context.Context, id int64) (*dto.BackupDTO, error)

	// Restore 从备份恢复碎片，碎片 ID 已存在时返回冲突
	Restore(ctx context.Context, id int64) (*dto.BackupRestoreDTO, error)

	// Cleanup 删除已过期的备份及其归档对象，返回删除数量
	Cleanup(ctx context.Context) (int, error)
}

// backupService 实现 BackupService 接口
type backupService struct {
	backupRepo   domain.BackupRepository
	fragmentRepo domain.FragmentRepository
	archive      storage.Storager
	events       EventSink
	logger       *zap.Logger
	config       *ServiceConfig
	now          Clock
}

// NewBackupService 创建 BackupService 实例
func NewBackupService(backupRepo domain.BackupRepository, fragmentRepo domain.FragmentRepository, archive storage.Storager,
	events EventSink, logger *zap.Logger, config *ServiceConfig) BackupService {
	if events == nil {
		events = nopSink{}
	}
	return &backupService{
		backupRepo:   backupRepo,
		fragmentRepo: fragmentRepo,
		archive:      archive,
		events:       events,
		logger:       logger,
		config:       config,
		now:          time.Now,
	}
}

// IsAdmin 判断用户是否为管理员
func (s *backupService) IsAdmin(uid int64) bool {
	return s.config.IsAdmin(uid)
}

func (s *backupService) toDTO(b *domain.Backup, now time.Time) *dto.BackupDTO {
	out := &dto.BackupDTO{}
	if err := copyDTO(out, b); err != nil {
		s.logger.Warn("copy backup dto failed", zap.Int64(logger.FieldBackupID, b.ID), zap.Error(err))
	}
	out.Expired = b.IsExpired(now)
	if b.RestoredAt != nil {
		t := timex.Time(*b.RestoredAt)
		out.RestoredAt = &t
	}
	return out
}

// List 分页查询备份
func (s *backupService) List(ctx context.Context, params *dto.BackupListRequest, page, pageSize int) ([]*dto.BackupDTO, int64, error) {
	filter := domain.BackupFilter{}
	if params != nil {
		filter.UID = params.UID
		filter.Keyword = params.Keyword
	}
	list, total, err := s.backupRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, repoError(s.logger, "backupService.List", err, nil)
	}
	now := s.now()
	out := make([]*dto.BackupDTO, 0, len(list))
	for _, b := range list {
		out = append(out, s.toDTO(b, now))
	}
	return out, total, nil
}

// Get 获取单个备份
func (s *backupService) Get(ctx context.Context, id int64) (*dto.BackupDTO, error) {
	b, err := s.backupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(s.logger, "backupService.Get", err, code.ErrorBackupNotFound)
	}
	return s.toDTO(b, s.now()), nil
}

// Restore 恢复备份
// 检查顺序：不存在 -> 已过期 -> 碎片 ID 已被占用
func (s *backupService) Restore(ctx context.Context, id int64) (*dto.BackupRestoreDTO, error) {
	b, err := s.backupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(s.logger, "backupService.Restore", err, code.ErrorBackupNotFound)
	}
	now := s.now()
	if b.IsExpired(now) {
		return nil, code.ErrorBackupExpired
	}
	taken, err := s.fragmentRepo.Exists(ctx, b.FragmentID)
	if err != nil {
		return nil, repoError(s.logger, "backupService.Restore", err, nil)
	}
	if taken {
		return nil, code.ErrorFragmentAlreadyExists.WithDetails(b.FragmentID)
	}

	var snap fragment.Fragment
	if err := sonic.UnmarshalString(b.Snapshot, &snap); err != nil || snap.ID == "" {
		s.logger.Error("backup snapshot unreadable", zap.Int64(logger.FieldBackupID, b.ID), zap.Error(err))
		return nil, code.ErrorBackupCorrupt
	}
	snap.ID = b.FragmentID
	snap.UpdatedAt = now
	snap.Version++

	// 并发恢复时以 Insert 事务内的占用检查为准
	saved, err := s.fragmentRepo.Insert(ctx, domain.FragmentFromWire(&snap, b.UID))
	if errors.Is(err, domain.ErrFragmentExists) {
		return nil, code.ErrorFragmentAlreadyExists.WithDetails(b.FragmentID)
	}
	if err != nil {
		return nil, repoError(s.logger, "backupService.Restore", err, nil)
	}
	marked, err := s.backupRepo.MarkRestored(ctx, b.ID, now)
	if err != nil {
		return nil, repoError(s.logger, "backupService.Restore", err, code.ErrorBackupNotFound)
	}

	s.logger.Info("backup restored",
		zap.Int64(logger.FieldBackupID, b.ID),
		zap.Int64(logger.FieldUID, b.UID),
		zap.String(logger.FieldFragmentID, saved.ID))
	s.events.Publish(b.UID, dto.FragmentEventDTO{Type: EventRestored, FragmentID: saved.ID, Version: saved.Version})

	return &dto.BackupRestoreDTO{
		Backup:   s.toDTO(marked, now),
		Fragment: saved.ToFragment(),
	}, nil
}

// Cleanup 分批删除过期备份
func (s *backupService) Cleanup(ctx context.Context) (int, error) {
	now := s.now()
	batch := s.config.cleanupBatchSize()
	removed := 0
	for {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		expired, err := s.backupRepo.ListExpired(ctx, now, batch)
		if err != nil {
			return removed, repoError(s.logger, "backupService.Cleanup", err, nil)
		}
		if len(expired) == 0 {
			break
		}
		ids := make([]int64, 0, len(expired))
		for _, b := range expired {
			s.dropArchive(b)
			ids = append(ids, b.ID)
		}
		n, err := s.backupRepo.DeleteByIDs(ctx, ids)
		if err != nil {
			return removed, repoError(s.logger, "backupService.Cleanup", err, nil)
		}
		removed += int(n)
		if len(expired) < batch || n == 0 {
			break
		}
	}
	if removed > 0 {
		s.logger.Info("expired backups removed", zap.Int(logger.FieldCount, removed))
	}
	return removed, nil
}

func (s *backupService) dropArchive(b *domain.Backup) {
	if s.archive == nil || b.ArchiveKey == "" {
		return
	}
	if err := s.archive.Delete(b.ArchiveKey); err != nil {
		s.logger.Warn("backup archive delete failed",
			zap.Int64(logger.FieldBackupID, b.ID),
			zap.String(logger.FieldKey, b.ArchiveKey),
			zap.Int64(logger.FieldUID, b.UID),
			zap.Error(err))
	}
}

// 确保 backupService 实现了 BackupService 接口
var _ BackupService = (*backupService)(nil)
