package model

import "github.com/haierkeys/murverse-service/pkg/timex"

const TableNameUser = "user"

// User mapped from table <user>
type User struct {
	UID       int64      `gorm:"column:uid;primaryKey;autoIncrement" json:"uid"`
	Email     string     `gorm:"column:email;size:255;uniqueIndex:idx_user_email" json:"email"`
	Username  string     `gorm:"column:username;size:64;uniqueIndex:idx_user_username" json:"username"`
	Password  string     `gorm:"column:password;size:255" json:"-"`
	IsDeleted int64      `gorm:"column:is_deleted;default:0" json:"isDeleted"`
	CreatedAt timex.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName User's table name
func (*User) TableName() string {
	return TableNameUser
}
