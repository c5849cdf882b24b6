package dao

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/haierkeys/murverse-service/internal/domain"
	"github.com/haierkeys/murverse-service/internal/model"
	"github.com/haierkeys/murverse-service/pkg/fragment"
	"github.com/haierkeys/murverse-service/pkg/timex"
)

// tagRepository 实现 domain.TagRepository 接口
type tagRepository struct {
	dao *Dao
}

// NewTagRepository 创建 TagRepository 实例
func NewTagRepository(dao *Dao) domain.TagRepository {
	return &tagRepository{dao: dao}
}

func (r *tagRepository) db(ctx context.Context) (*gorm.DB, error) {
	return r.dao.WithTable(ctx, "FragmentTag")
}

// ListByFragment 按插入顺序获取标签
func (r *tagRepository) ListByFragment(ctx context.Context, fragmentID string, uid int64) ([]string, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	tags := []string{}
	err = db.Model(&model.FragmentTag{}).
		Where("fragment_id = ? AND uid = ?", fragmentID, uid).
		Order("id").
		Pluck("tag", &tags).Error
	return tags, err
}

// Add 添加标签，折叠后相同的标签视为重复
func (r *tagRepository) Add(ctx context.Context, fragmentID string, uid int64, tag string) error {
	if _, err := r.db(ctx); err != nil {
		return err
	}
	key := fragment.TagKey(tag)
	return r.dao.ExecuteWrite(ctx, uid, func(db *gorm.DB) error {
		var count int64
		if err := db.Model(&model.FragmentTag{}).
			Where("fragment_id = ? AND tag_key = ?", fragmentID, key).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrDuplicate
		}
		err := db.Create(&model.FragmentTag{
			FragmentID: fragmentID,
			UID:        uid,
			Tag:        tag,
			TagKey:     key,
			CreatedAt:  timex.Time(timex.Now().Time().UTC()),
		}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicate
		}
		return err
	})
}

// Remove 删除标签，返回是否确实删除了一行
func (r *tagRepository) Remove(ctx context.Context, fragmentID string, uid int64, tag string) (bool, error) {
	if _, err := r.db(ctx); err != nil {
		return false, err
	}
	var removed bool
	err := r.dao.ExecuteWrite(ctx, uid, func(db *gorm.DB) error {
		res := db.Where("fragment_id = ? AND uid = ? AND tag_key = ?", fragmentID, uid, fragment.TagKey(tag)).
			Delete(&model.FragmentTag{})
		removed = res.RowsAffected > 0
		return res.Error
	})
	return removed, err
}

// 确保 tagRepository 实现了 domain.TagRepository 接口
var _ domain.TagRepository = (*tagRepository)(nil)
