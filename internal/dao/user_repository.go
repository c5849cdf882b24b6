package dao

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/haierkeys/murverse-service/internal/domain"
	"github.com/haierkeys/murverse-service/internal/model"
)

// userRepository 实现 domain.UserRepository 接口
type userRepository struct {
	dao *Dao
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(dao *Dao) domain.UserRepository {
	return &userRepository{dao: dao}
}

func (r *userRepository) db(ctx context.Context) (*gorm.DB, error) {
	return r.dao.WithTable(ctx, "User")
}

// toDomain 将数据库模型转换为领域模型
func (r *userRepository) toDomain(m *model.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		UID:       m.UID,
		Email:     m.Email,
		Username:  m.Username,
		Password:  m.Password,
		IsDeleted: m.IsDeleted == 1,
		CreatedAt: time.Time(m.CreatedAt),
		UpdatedAt: time.Time(m.UpdatedAt),
	}
}

func (r *userRepository) first(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	var m model.User
	if err := db.Where(query+" AND is_deleted = 0", arg).Take(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetByUID 根据UID获取用户
func (r *userRepository) GetByUID(ctx context.Context, uid int64) (*domain.User, error) {
	return r.first(ctx, "uid = ?", uid)
}

// GetByEmail 根据邮箱获取用户
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByUsername 根据用户名获取用户
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "username = ?", username)
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	now := utc(time.Time{})
	m := &model.User{
		Email:     user.Email,
		Username:  user.Username,
		Password:  user.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// 确保 userRepository 实现了 domain.UserRepository 接口
var _ domain.UserRepository = (*userRepository)(nil)
