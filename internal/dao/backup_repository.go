package dao

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/haierkeys/murverse-service/internal/domain"
	"github.com/haierkeys/murverse-service/internal/model"
	"github.com/haierkeys/murverse-service/pkg/timex"
)

// backupLane is the write queue shared by administrative backup writes.
const backupLane int64 = 0

// backupRepository 实现 domain.BackupRepository 接口
type backupRepository struct {
	dao *Dao
}

// NewBackupRepository 创建 BackupRepository 实例
func NewBackupRepository(dao *Dao) domain.BackupRepository {
	return &backupRepository{dao: dao}
}

func (r *backupRepository) db(ctx context.Context) (*gorm.DB, error) {
	return r.dao.WithTable(ctx, "FragmentBackup")
}

// toDomain 将数据库模型转换为领域模型
func (r *backupRepository) toDomain(m *model.FragmentBackup) *domain.Backup {
	if m == nil {
		return nil
	}
	b := &domain.Backup{
		ID:           m.ID,
		UID:          m.UID,
		FragmentID:   m.FragmentID,
		Content:      m.Content,
		Snapshot:     m.Snapshot,
		ExpiresAt:    time.Time(m.ExpiresAt),
		RestoreCount: m.RestoreCount,
		ArchiveKey:   m.ArchiveKey,
		CreatedAt:    time.Time(m.CreatedAt),
	}
	if m.RestoredAt != nil {
		t := time.Time(*m.RestoredAt)
		b.RestoredAt = &t
	}
	return b
}

// Create 创建备份
func (r *backupRepository) Create(ctx context.Context, b *domain.Backup) (*domain.Backup, error) {
	if _, err := r.db(ctx); err != nil {
		return nil, err
	}
	m := &model.FragmentBackup{
		UID:        b.UID,
		FragmentID: b.FragmentID,
		Content:    b.Content,
		Snapshot:   b.Snapshot,
		ExpiresAt:  utc(b.ExpiresAt),
		ArchiveKey: b.ArchiveKey,
		CreatedAt:  utc(b.CreatedAt),
	}
	err := r.dao.ExecuteWrite(ctx, b.UID, func(db *gorm.DB) error {
		return db.Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// GetByID 获取备份
func (r *backupRepository) GetByID(ctx context.Context, id int64) (*domain.Backup, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	var m model.FragmentBackup
	if err := db.Where("id = ?", id).Take(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// likeEscaper 转义 LIKE 通配符；'!' 作为转义符在 sqlite、mysql、postgres 中写法一致
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// List 分页查询备份，按 ID 倒序
func (r *backupRepository) List(ctx context.Context, filter domain.BackupFilter, page, pageSize int) ([]*domain.Backup, int64, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, 0, err
	}
	q := db.Model(&model.FragmentBackup{})
	if filter.UID > 0 {
		q = q.Where("uid = ?", filter.UID)
	}
	if filter.Keyword != "" {
		q = q.Where("LOWER(content) LIKE LOWER(?) ESCAPE '!'", "%"+likeEscaper.Replace(filter.Keyword)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	var rows []*model.FragmentBackup
	q = q.Order("id DESC")
	if pageSize > 0 {
		q = q.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	list := make([]*domain.Backup, 0, len(rows))
	for _, m := range rows {
		list = append(list, r.toDomain(m))
	}
	return list, total, nil
}

// MarkRestored 恢复计数加一
func (r *backupRepository) MarkRestored(ctx context.Context, id int64, at time.Time) (*domain.Backup, error) {
	if _, err := r.db(ctx); err != nil {
		return nil, err
	}
	var out *domain.Backup
	err := r.dao.Transaction(ctx, backupLane, func(tx *gorm.DB) error {
		restoredAt := utc(at)
		res := tx.Model(&model.FragmentBackup{}).Where("id = ?", id).Updates(map[string]interface{}{
			"restore_count": gorm.Expr("restore_count + 1"),
			"restored_at":   restoredAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		var m model.FragmentBackup
		if err := tx.Where("id = ?", id).Take(&m).Error; err != nil {
			return err
		}
		out = r.toDomain(&m)
		return nil
	})
	return out, err
}

// SetArchiveKey 记录归档对象键
func (r *backupRepository) SetArchiveKey(ctx context.Context, id int64, key string) error {
	if _, err := r.db(ctx); err != nil {
		return err
	}
	return r.dao.ExecuteWrite(ctx, backupLane, func(db *gorm.DB) error {
		return db.Model(&model.FragmentBackup{}).Where("id = ?", id).Update("archive_key", key).Error
	})
}

// ListExpired 获取已过期的备份
func (r *backupRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*domain.Backup, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	q := db.Where("expires_at <= ?", timex.Time(now.UTC())).Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []*model.FragmentBackup
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.Backup, 0, len(rows))
	for _, m := range rows {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// DeleteByIDs 批量删除备份
func (r *backupRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if _, err := r.db(ctx); err != nil {
		return 0, err
	}
	var removed int64
	err := r.dao.ExecuteWrite(ctx, backupLane, func(db *gorm.DB) error {
		res := db.Where("id IN ?", ids).Delete(&model.FragmentBackup{})
		removed = res.RowsAffected
		return res.Error
	})
	return removed, err
}

// 确保 backupRepository 实现了 domain.BackupRepository 接口
var _ domain.BackupRepository = (*backupRepository)(nil)
