package dao

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/haierkeys/murverse-service/internal/domain"
	"github.com/haierkeys/murverse-service/internal/model"
)

// ErrNoteOrderMismatch 排序 ID 与碎片现有笔记不一致
var ErrNoteOrderMismatch = errors.New("note ids do not match the notes of the fragment")

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

func (r *noteRepository) db(ctx context.Context) (*gorm.DB, error) {
	return r.dao.WithTable(ctx, "FragmentNote")
}

func noteToDomain(m *model.FragmentNote) *domain.Note {
	if m == nil {
		return nil
	}
	return &domain.Note{
		ID:         m.ID,
		FragmentID: m.FragmentID,
		UID:        m.UID,
		Title:      m.Title,
		Value:      m.Value,
		Color:      m.Color,
		IsPinned:   m.IsPinned == 1,
		Position:   m.Position,
		CreatedAt:  time.Time(m.CreatedAt),
		UpdatedAt:  time.Time(m.UpdatedAt),
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// ListByFragment 获取碎片下的笔记
func (r *noteRepository) ListByFragment(ctx context.Context, fragmentID string, uid int64) ([]*domain.Note, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []*model.FragmentNote
	err = db.Where("fragment_id = ? AND uid = ?", fragmentID, uid).
		Order("position").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	list := make([]*domain.Note, 0, len(rows))
	for _, m := range rows {
		list = append(list, noteToDomain(m))
	}
	return list, nil
}

// GetByID 获取笔记
func (r *noteRepository) GetByID(ctx context.Context, id, fragmentID string, uid int64) (*domain.Note, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	var m model.FragmentNote
	if err := db.Where("id = ? AND fragment_id = ? AND uid = ?", id, fragmentID, uid).Take(&m).Error; err != nil {
		return nil, err
	}
	return noteToDomain(&m), nil
}

// Create 将笔记追加到碎片末尾
func (r *noteRepository) Create(ctx context.Context, n *domain.Note) (*domain.Note, error) {
	if _, err := r.db(ctx); err != nil {
		return nil, err
	}
	m := &model.FragmentNote{
		ID:         n.ID,
		FragmentID: n.FragmentID,
		UID:        n.UID,
		Title:      n.Title,
		Value:      n.Value,
		Color:      n.Color,
		IsPinned:   boolToInt(n.IsPinned),
		CreatedAt:  utc(n.CreatedAt),
		UpdatedAt:  utc(n.UpdatedAt),
	}
	err := r.dao.Transaction(ctx, n.UID, func(tx *gorm.DB) error {
		var last int
		err := tx.Model(&model.FragmentNote{}).
			Select("COALESCE(MAX(position), -1)").
			Where("fragment_id = ?", n.FragmentID).
			Scan(&last).Error
		if err != nil {
			return err
		}
		m.Position = last + 1
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return noteToDomain(m), nil
}

// Update 更新笔记
func (r *noteRepository) Update(ctx context.Context, n *domain.Note) (*domain.Note, error) {
	if _, err := r.db(ctx); err != nil {
		return nil, err
	}
	var out *domain.Note
	err := r.dao.Transaction(ctx, n.UID, func(tx *gorm.DB) error {
		res := tx.Model(&model.FragmentNote{}).
			Where("id = ? AND fragment_id = ? AND uid = ?", n.ID, n.FragmentID, n.UID).
			Updates(map[string]interface{}{
				"title":      n.Title,
				"value":      n.Value,
				"color":      n.Color,
				"is_pinned":  boolToInt(n.IsPinned),
				"updated_at": utc(n.UpdatedAt),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		var m model.FragmentNote
		if err := tx.Where("id = ?", n.ID).Take(&m).Error; err != nil {
			return err
		}
		out = noteToDomain(&m)
		return nil
	})
	return out, err
}

// Delete 删除笔记
func (r *noteRepository) Delete(ctx context.Context, id, fragmentID string, uid int64) error {
	if _, err := r.db(ctx); err != nil {
		return err
	}
	return r.dao.ExecuteWrite(ctx, uid, func(db *gorm.DB) error {
		res := db.Where("id = ? AND fragment_id = ? AND uid = ?", id, fragmentID, uid).Delete(&model.FragmentNote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Reorder 按 ids 顺序重写 position，ids 必须恰好是碎片现有的全部笔记
func (r *noteRepository) Reorder(ctx context.Context, fragmentID string, uid int64, ids []string) error {
	if _, err := r.db(ctx); err != nil {
		return err
	}
	return r.dao.Transaction(ctx, uid, func(tx *gorm.DB) error {
		var existing []string
		err := tx.Model(&model.FragmentNote{}).
			Where("fragment_id = ? AND uid = ?", fragmentID, uid).
			Pluck("id", &existing).Error
		if err != nil {
			return err
		}
		if len(existing) != len(ids) {
			return ErrNoteOrderMismatch
		}
		known := make(map[string]bool, len(existing))
		for _, id := range existing {
			known[id] = true
		}
		for _, id := range ids {
			if !known[id] {
				return ErrNoteOrderMismatch
			}
			delete(known, id)
		}

		for pos, id := range ids {
			if err := tx.Model(&model.FragmentNote{}).
				Where("id = ? AND fragment_id = ?", id, fragmentID).
				Update("position", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// 确保 noteRepository 实现了 domain.NoteRepository 接口
var _ domain.NoteRepository = (*noteRepository)(nil)
