package domain

import "time"

// User 账户领域模型，碎片、笔记和备份都按 UID 归属
type User struct {
	UID       int64
	Email     string
	Username  string
	Password  string // bcrypt hash
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanLogin reports whether the account may authenticate and receive tokens.
func (u *User) CanLogin() bool {
	return u != nil && !u.IsDeleted
}
