package domain

import "time"

// Backup 删除碎片时生成的快照
type Backup struct {
	ID         int64
	UID        int64
	FragmentID string
	Content    string
	// Snapshot 序列化后的 fragment.Fragment
	Snapshot     string
	ExpiresAt    time.Time
	RestoreCount int
	RestoredAt   *time.Time
	ArchiveKey   string
	CreatedAt    time.Time
}

// IsExpired 判断备份在 now 时是否已过期
func (b *Backup) IsExpired(now time.Time) bool {
	return !now.Before(b.ExpiresAt)
}

// BackupFilter 管理员查询条件
type BackupFilter struct {
	UID     int64
	Keyword string
}
