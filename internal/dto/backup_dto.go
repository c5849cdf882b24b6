package dto

import (
	"github.com/haierkeys/murverse-service/pkg/fragment"
	"github.com/haierkeys/murverse-service/pkg/timex"
)

// BackupListRequest GET /admin/backups query
// 备份列表请求参数
type BackupListRequest struct {
	UID     int64  `json:"uid" form:"uid" binding:"omitempty,min=1"` // Owner filter // 用户过滤
	Keyword string `json:"keyword" form:"keyword"`                   // Content substring // 内容关键字
}

// BackupIDRequest backup addressed by path id
// 通过路径 ID 定位备份
type BackupIDRequest struct {
	ID int64 `json:"-" form:"-" binding:"required,min=1"` // Backup ID // 备份ID
}

// BackupDTO backup record without the snapshot body
// BackupDTO 备份记录（不含快照内容）
type BackupDTO struct {
	ID           int64       `json:"id"`                              // Backup ID // 备份ID
	UID          int64       `json:"uid"`                             // Owner // 所属用户
	FragmentID   string      `json:"fragmentId"`                      // Original fragment id // 原碎片ID
	Content      string      `json:"content"`                         // Content at deletion // 删除时的内容
	ExpiresAt    timex.Time  `json:"expiresAt"`                       // Expiry // 过期时间
	Expired      bool        `json:"expired" copier:"-"`              // Already expired // 是否已过期
	RestoreCount int         `json:"restoreCount"`                    // Times restored // 恢复次数
	RestoredAt   *timex.Time `json:"restoredAt,omitempty" copier:"-"` // Last restore // 最近恢复时间
	ArchiveKey   string      `json:"archiveKey,omitempty"`            // Object storage key // 归档对象键
	CreatedAt    timex.Time  `json:"createdAt"`                       // Created // 创建时间
}

// BackupRestoreDTO restore outcome
// BackupRestoreDTO 恢复结果
type BackupRestoreDTO struct {
	Backup   *BackupDTO         `json:"backup"`   // Updated backup // 更新后的备份
	Fragment *fragment.Fragment `json:"fragment"` // Restored fragment // 恢复的碎片
}

// BackupCleanupDTO cleanup outcome
// BackupCleanupDTO 清理结果
type BackupCleanupDTO struct {
	Removed int `json:"removed"` // Deleted backups // 删除数量
}

// AdminCheckDTO GET /admin/check result
// AdminCheckDTO 管理员校验结果
type AdminCheckDTO struct {
	UID     int64 `json:"uid"`     // Caller // 当前用户
	IsAdmin bool  `json:"isAdmin"` // Whether caller is admin // 是否管理员
}
