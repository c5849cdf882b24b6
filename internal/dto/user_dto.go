package dto

import "github.com/haierkeys/murverse-service/pkg/timex"

// UserCreateRequest User registration request parameters
// 用户注册请求参数
type UserCreateRequest struct {
	Email           string `json:"email" form:"email" binding:"required,email"`                     // User email // 用户邮件
	Username        string `json:"username" form:"username" binding:"required,min=3,max=32"`        // User name // 用户名
	Password        string `json:"password" form:"password" binding:"required,min=6"`               // User password // 用户密码
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" binding:"required,min=6"` // Confirm password // 校验密码
}

// UserLoginRequest User login request parameters
// 用户登录请求参数
type UserLoginRequest struct {
	Credentials string `json:"credentials" form:"credentials" binding:"required"` // Username or Email // 登录凭证（用户名或邮件）
	Password    string `json:"password" form:"password" binding:"required"`       // Password // 密码
}

// ---------------- DTO / Response ----------------

// UserDTO User data transfer object
// UserDTO 用户数据传输对象
type UserDTO struct {
	UID       int64      `json:"uid"`       // User ID (primary key) // 用户唯一标识（主键）
	Email     string     `json:"email"`     // Email address // 邮件地址
	Username  string     `json:"username"`  // Username // 用户名
	IsAdmin   bool       `json:"isAdmin"`   // Whether the user is an administrator // 是否管理员
	UpdatedAt timex.Time `json:"updatedAt"` // Last updated time // 最后更新时间
	CreatedAt timex.Time `json:"createdAt"` // Account created time // 账号创建时间
}

// UserLoginDTO login result carrying the bearer token
// UserLoginDTO 登录结果，包含认证令牌
type UserLoginDTO struct {
	Token     string     `json:"token"`     // Bearer token // 认证 Token
	ExpiresAt timex.Time `json:"expiresAt"` // Token expiry // 过期时间
	User      *UserDTO   `json:"user"`      // Profile // 用户信息
}
