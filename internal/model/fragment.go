package model

import (
	"github.com/haierkeys/murverse-service/pkg/fragment"
	"github.com/haierkeys/murverse-service/pkg/timex"
)

const (
	TableNameFragment       = "fragment"
	TableNameFragmentNote   = "fragment_note"
	TableNameFragmentTag    = "fragment_tag"
	TableNameFragmentBackup = "fragment_backup"
)

// Fragment mapped from table <fragment>
type Fragment struct {
	ID         string              `gorm:"column:id;primaryKey;size:64" json:"id"`
	UID        int64               `gorm:"column:uid;index:idx_fragment_uid_updated,priority:1" json:"uid"`
	Content    string              `gorm:"column:content;type:text" json:"content"`
	Type       string              `gorm:"column:type;size:32;default:fragment" json:"type"`
	Status     string              `gorm:"column:status;size:32" json:"status"`
	ParentID   string              `gorm:"column:parent_id;size:64;index:idx_fragment_parent" json:"parentId"`
	ChildIDs   []string            `gorm:"column:child_ids;type:text;serializer:json" json:"childIds"`
	Relations  []fragment.Relation `gorm:"column:relations;type:text;serializer:json" json:"relations"`
	Meta       *fragment.Meta      `gorm:"column:meta;type:text;serializer:json" json:"meta"`
	Version    int64               `gorm:"column:version;default:1" json:"version"`
	Creator    string              `gorm:"column:creator;size:64" json:"creator"`
	LastEditor string              `gorm:"column:last_editor;size:64" json:"lastEditor"`
	CreatedAt  timex.Time          `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt  timex.Time          `gorm:"column:updated_at;autoUpdateTime:false;index:idx_fragment_uid_updated,priority:2" json:"updatedAt"`
}

// TableName Fragment's table name
func (*Fragment) TableName() string {
	return TableNameFragment
}

// FragmentNote mapped from table <fragment_note>
type FragmentNote struct {
	ID         string     `gorm:"column:id;primaryKey;size:64" json:"id"`
	FragmentID string     `gorm:"column:fragment_id;size:64;index:idx_note_fragment_position,priority:1" json:"fragmentId"`
	UID        int64      `gorm:"column:uid;index:idx_note_uid" json:"uid"`
	Title      string     `gorm:"column:title;size:255" json:"title"`
	Value      string     `gorm:"column:value;type:text" json:"value"`
	Color      string     `gorm:"column:color;size:32" json:"color"`
	IsPinned   int64      `gorm:"column:is_pinned;default:0" json:"isPinned"`
	Position   int        `gorm:"column:position;index:idx_note_fragment_position,priority:2" json:"position"`
	CreatedAt  timex.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt  timex.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt"`
}

// TableName FragmentNote's table name
func (*FragmentNote) TableName() string {
	return TableNameFragmentNote
}

// FragmentTag mapped from table <fragment_tag>
// Tag 原样保存，TagKey 为折叠后的比较键
type FragmentTag struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FragmentID string     `gorm:"column:fragment_id;size:64;uniqueIndex:idx_tag_fragment_key,priority:1" json:"fragmentId"`
	UID        int64      `gorm:"column:uid;index:idx_tag_uid" json:"uid"`
	Tag        string     `gorm:"column:tag;size:255" json:"tag"`
	TagKey     string     `gorm:"column:tag_key;size:255;uniqueIndex:idx_tag_fragment_key,priority:2" json:"tagKey"`
	CreatedAt  timex.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName FragmentTag's table name
func (*FragmentTag) TableName() string {
	return TableNameFragmentTag
}

// FragmentBackup mapped from table <fragment_backup>
type FragmentBackup struct {
	ID           int64       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UID          int64       `gorm:"column:uid;index:idx_backup_uid" json:"uid"`
	FragmentID   string      `gorm:"column:fragment_id;size:64;index:idx_backup_fragment" json:"fragmentId"`
	Content      string      `gorm:"column:content;type:text" json:"content"`
	Snapshot     string      `gorm:"column:snapshot;type:text" json:"snapshot"`
	ExpiresAt    timex.Time  `gorm:"column:expires_at;index:idx_backup_expires" json:"expiresAt"`
	RestoreCount int         `gorm:"column:restore_count;default:0" json:"restoreCount"`
	RestoredAt   *timex.Time `gorm:"column:restored_at" json:"restoredAt"`
	ArchiveKey   string      `gorm:"column:archive_key;size:512" json:"archiveKey"`
	CreatedAt    timex.Time  `gorm:"column:created_at" json:"createdAt"`
}

// TableName FragmentBackup's table name
func (*FragmentBackup) TableName() string {
	return TableNameFragmentBackup
}
