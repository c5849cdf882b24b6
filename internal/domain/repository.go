package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned when a unique association (such as a fragment tag) already exists.
var ErrDuplicate = errors.New("duplicate record")

// ErrFragmentExists is returned by FragmentRepository.Insert when the id is already taken.
var ErrFragmentExists = errors.New("fragment id already exists")

// FragmentRepository 碎片仓储接口
// All methods scope reads and writes to uid; rows of other users behave as missing.
type FragmentRepository interface {
	// ListByUID 获取用户全部碎片（含标签与笔记），按 updated_at 倒序
	ListByUID(ctx context.Context, uid int64) ([]*Fragment, error)

	// GetByID 获取单个碎片（含标签与笔记），不存在返回 gorm.ErrRecordNotFound
	GetByID(ctx context.Context, id string, uid int64) (*Fragment, error)

	// Exists 判断 ID 是否已被任意用户占用
	Exists(ctx context.Context, id string) (bool, error)

	// Create 仅创建碎片行
	Create(ctx context.Context, f *Fragment) (*Fragment, error)

	// Insert 创建碎片及其标签与笔记，ID 已存在时返回 ErrFragmentExists
	Insert(ctx context.Context, f *Fragment) (*Fragment, error)

	// Save 按 ID 覆盖碎片行，并在同一事务中替换标签与笔记
	Save(ctx context.Context, f *Fragment) (*Fragment, error)

	// Touch 递增版本并刷新 updated_at，返回新版本号
	Touch(ctx context.Context, id string, uid int64, editor string, at time.Time) (int64, error)

	// Delete 删除碎片及其标签、笔记
	Delete(ctx context.Context, id string, uid int64) error
}

// NoteRepository 笔记仓储接口
type NoteRepository interface {
	// ListByFragment 按 position 获取碎片下的笔记
	ListByFragment(ctx context.Context, fragmentID string, uid int64) ([]*Note, error)

	// GetByID 获取笔记，必须同时属于 fragmentID 与 uid
	GetByID(ctx context.Context, id, fragmentID string, uid int64) (*Note, error)

	// Create 追加到末尾
	Create(ctx context.Context, n *Note) (*Note, error)

	// Update 更新标题、内容、颜色与置顶状态
	Update(ctx context.Context, n *Note) (*Note, error)

	// Delete 删除笔记
	Delete(ctx context.Context, id, fragmentID string, uid int64) error

	// Reorder 按 ids 的顺序重写 position
	Reorder(ctx context.Context, fragmentID string, uid int64, ids []string) error
}

// TagRepository 标签仓储接口，比较使用折叠后的 key
type TagRepository interface {
	// ListByFragment 按插入顺序获取标签
	ListByFragment(ctx context.Context, fragmentID string, uid int64) ([]string, error)

	// Add 添加标签，已存在时返回 ErrDuplicate
	Add(ctx context.Context, fragmentID string, uid int64, tag string) error

	// Remove 删除标签，返回是否确实删除
	Remove(ctx context.Context, fragmentID string, uid int64, tag string) (bool, error)
}

// BackupRepository 备份仓储接口
type BackupRepository interface {
	// Create 创建备份
	Create(ctx context.Context, b *Backup) (*Backup, error)

	// GetByID 获取备份
	GetByID(ctx context.Context, id int64) (*Backup, error)

	// List 分页查询，返回列表与总数
	List(ctx context.Context, filter BackupFilter, page, pageSize int) ([]*Backup, int64, error)

	// MarkRestored 恢复计数加一并记录时间
	MarkRestored(ctx context.Context, id int64, at time.Time) (*Backup, error)

	// SetArchiveKey 记录归档对象键
	SetArchiveKey(ctx context.Context, id int64, key string) error

	// ListExpired 获取在 now 之前过期的备份
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*Backup, error)

	// DeleteByIDs 批量删除
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByUID 根据UID获取用户
	GetByUID(ctx context.Context, uid int64) (*User, error)

	// GetByEmail 根据邮箱获取用户
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByUsername 根据用户名获取用户
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Create 创建用户
	Create(ctx context.Context, user *User) (*User, error)
}
