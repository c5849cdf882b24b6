package dao

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/haierkeys/murverse-service/internal/domain"
	"github.com/haierkeys/murverse-service/internal/model"
	"github.com/haierkeys/murverse-service/pkg/fragment"
	"github.com/haierkeys/murverse-service/pkg/timex"
)

var fragmentTables = []string{"Fragment", "FragmentNote", "FragmentTag"}

// fragmentRepository 实现 domain.FragmentRepository 接口
type fragmentRepository struct {
	dao *Dao
}

// NewFragmentRepository 创建 FragmentRepository 实例
func NewFragmentRepository(dao *Dao) domain.FragmentRepository {
	return &fragmentRepository{dao: dao}
}

func (r *fragmentRepository) db(ctx context.Context) (*gorm.DB, error) {
	return r.dao.WithTable(ctx, fragmentTables...)
}

// toDomain 将数据库模型转换为领域模型
func (r *fragmentRepository) toDomain(m *model.Fragment) *domain.Fragment {
	if m == nil {
		return nil
	}
	return &domain.Fragment{
		ID:         m.ID,
		UID:        m.UID,
		Content:    m.Content,
		Type:       fragment.Type(m.Type),
		Status:     fragment.Status(m.Status),
		ParentID:   m.ParentID,
		ChildIDs:   m.ChildIDs,
		Relations:  m.Relations,
		Meta:       m.Meta,
		Version:    m.Version,
		Creator:    m.Creator,
		LastEditor: m.LastEditor,
		CreatedAt:  time.Time(m.CreatedAt),
		UpdatedAt:  time.Time(m.UpdatedAt),
		Tags:       []string{},
	}
}

// toModel 将领域模型转换为数据库模型
func (r *fragmentRepository) toModel(f *domain.Fragment) *model.Fragment {
	typ := f.Type
	if typ == "" {
		typ = fragment.TypeFragment
	}
	version := f.Version
	if version <= 0 {
		version = 1
	}
	return &model.Fragment{
		ID:         f.ID,
		UID:        f.UID,
		Content:    f.Content,
		Type:       string(typ),
		Status:     string(f.Status),
		ParentID:   f.ParentID,
		ChildIDs:   f.ChildIDs,
		Relations:  f.Relations,
		Meta:       f.Meta,
		Version:    version,
		Creator:    f.Creator,
		LastEditor: f.LastEditor,
		CreatedAt:  utc(f.CreatedAt),
		UpdatedAt:  utc(f.UpdatedAt),
	}
}

func utc(t time.Time) timex.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return timex.Time(t.UTC())
}

func tagModels(f *domain.Fragment, now timex.Time) []*model.FragmentTag {
	tags := fragment.NormalizeTags(f.Tags)
	out := make([]*model.FragmentTag, 0, len(tags))
	for _, t := range tags {
		out = append(out, &model.FragmentTag{
			FragmentID: f.ID,
			UID:        f.UID,
			Tag:        t,
			TagKey:     fragment.TagKey(t),
			CreatedAt:  now,
		})
	}
	return out
}

func noteModels(f *domain.Fragment) []*model.FragmentNote {
	out := make([]*model.FragmentNote, 0, len(f.Notes))
	for i, n := range f.Notes {
		out = append(out, &model.FragmentNote{
			ID:         n.ID,
			FragmentID: f.ID,
			UID:        f.UID,
			Title:      n.Title,
			Value:      n.Value,
			Color:      n.Color,
			IsPinned:   boolToInt(n.IsPinned),
			Position:   i,
			CreatedAt:  utc(n.CreatedAt),
			UpdatedAt:  utc(n.UpdatedAt),
		})
	}
	return out
}

// attach loads tags and notes of the given fragments with two queries.
func (r *fragmentRepository) attach(db *gorm.DB, frags []*domain.Fragment) error {
	if len(frags) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Fragment, len(frags))
	ids := make([]string, 0, len(frags))
	for _, f := range frags {
		byID[f.ID] = f
		ids = append(ids, f.ID)
	}

	var tags []*model.FragmentTag
	if err := db.Where("fragment_id IN ?", ids).Order("id").Find(&tags).Error; err != nil {
		return err
	}
	for _, t := range tags {
		if f, ok := byID[t.FragmentID]; ok {
			f.Tags = append(f.Tags, t.Tag)
		}
	}

	var notes []*model.FragmentNote
	if err := db.Where("fragment_id IN ?", ids).Order("position").Order("id").Find(&notes).Error; err != nil {
		return err
	}
	for _, n := range notes {
		if f, ok := byID[n.FragmentID]; ok {
			f.Notes = append(f.Notes, noteToDomain(n))
		}
	}
	return nil
}

// ListByUID 获取用户全部碎片
func (r *fragmentRepository) ListByUID(ctx context.Context, uid int64) ([]*domain.Fragment, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []*model.Fragment
	if err := db.Where("uid = ?", uid).Order("updated_at DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.Fragment, 0, len(rows))
	for _, m := range rows {
		list = append(list, r.toDomain(m))
	}
	if err := r.attach(db, list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetByID 获取单个碎片
func (r *fragmentRepository) GetByID(ctx context.Context, id string, uid int64) (*domain.Fragment, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	return r.get(db, id, uid)
}

func (r *fragmentRepository) get(db *gorm.DB, id string, uid int64) (*domain.Fragment, error) {
	var m model.Fragment
	if err := db.Where("id = ? AND uid = ?", id, uid).Take(&m).Error; err != nil {
		return nil, err
	}
	f := r.toDomain(&m)
	if err := r.attach(db, []*domain.Fragment{f}); err != nil {
		return nil, err
	}
	return f, nil
}

// Exists 判断 ID 是否已被占用（不区分用户）
func (r *fragmentRepository) Exists(ctx context.Context, id string) (bool, error) {
	db, err := r.db(ctx)
	if err != nil {
		return false, err
	}
	var count int64
	if err := db.Model(&model.Fragment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create 创建碎片行（标签与笔记由调用方单独写入）
func (r *fragmentRepository) Create(ctx context.Context, f *domain.Fragment) (*domain.Fragment, error) {
	if _, err := r.db(ctx); err != nil {
		return nil, err
	}
	m := r.toModel(f)
	err := r.dao.ExecuteWrite(ctx, f.UID, func(db *gorm.DB) error {
		return db.Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Save 覆盖碎片，同一事务内替换其标签和笔记
func (r *fragmentRepository) Save(ctx context.Context, f *domain.Fragment) (*domain.Fragment, error) {
	if _, err := r.db(ctx); err != nil {
		return nil, err
	}
	m := r.toModel(f)
	var saved *domain.Fragment
	err := r.dao.Transaction(ctx, f.UID, func(tx *gorm.DB) error {
		var owner model.Fragment
		err := tx.Select("uid").Where("id = ?", f.ID).Take(&owner).Error
		switch {
		case err == nil && owner.UID != f.UID:
			return gorm.ErrRecordNotFound
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := tx.Save(m).Error; err != nil {
			return err
		}
		if err := replaceChildren(tx, f, m.UpdatedAt); err != nil {
			return err
		}
		saved, err = r.get(tx, f.ID, f.UID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Insert 创建碎片及其标签和笔记；ID 已被任意用户占用时返回 domain.ErrFragmentExists
// 占用检查与写入在同一事务内完成
func (r *fragmentRepository) Insert(ctx context.Context, f *domain.Fragment) (*domain.Fragment, error) {
	if _, err := r.db(ctx); err != nil {
		return nil, err
	}
	m := r.toModel(f)
	var saved *domain.Fragment
	err := r.dao.Transaction(ctx, f.UID, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Fragment{}).Where("id = ?", f.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrFragmentExists
		}
		if err := tx.Create(m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrFragmentExists
			}
			return err
		}
		if err := replaceChildren(tx, f, m.UpdatedAt); err != nil {
			return err
		}
		var err error
		saved, err = r.get(tx, f.ID, f.UID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// replaceChildren 删除并重建碎片的标签与笔记
func replaceChildren(tx *gorm.DB, f *domain.Fragment, now timex.Time) error {
	if err := tx.Where("fragment_id = ?", f.ID).Delete(&model.FragmentTag{}).Error; err != nil {
		return err
	}
	if tags := tagModels(f, now); len(tags) > 0 {
		if err := tx.Create(&tags).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("fragment_id = ?", f.ID).Delete(&model.FragmentNote{}).Error; err != nil {
		return err
	}
	if notes := noteModels(f); len(notes) > 0 {
		return tx.Create(&notes).Error
	}
	return nil
}

// Touch 递增版本号
func (r *fragmentRepository) Touch(ctx context.Context, id string, uid int64, editor string, at time.Time) (int64, error) {
	if _, err := r.db(ctx); err != nil {
		return 0, err
	}
	var version int64
	err := r.dao.Transaction(ctx, uid, func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"version":    gorm.Expr("version + 1"),
			"updated_at": utc(at),
		}
		if editor != "" {
			updates["last_editor"] = editor
		}
		res := tx.Model(&model.Fragment{}).Where("id = ? AND uid = ?", id, uid).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&model.Fragment{}).Select("version").Where("id = ?", id).Scan(&version).Error
	})
	return version, err
}

// Delete 删除碎片及其标签、笔记
func (r *fragmentRepository) Delete(ctx context.Context, id string, uid int64) error {
	if _, err := r.db(ctx); err != nil {
		return err
	}
	return r.dao.Transaction(ctx, uid, func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND uid = ?", id, uid).Delete(&model.Fragment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("fragment_id = ?", id).Delete(&model.FragmentTag{}).Error; err != nil {
			return err
		}
		return tx.Where("fragment_id = ?", id).Delete(&model.FragmentNote{}).Error
	})
}

// 确保 fragmentRepository 实现了 domain.FragmentRepository 接口
var _ domain.FragmentRepository = (*fragmentRepository)(nil)
