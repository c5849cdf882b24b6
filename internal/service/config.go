// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import (
	"time"

	"github.com/haierkeys/murverse-service/pkg/util"
)

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	User UserServiceConfig // User related config // 用户相关配置
	App  AppServiceConfig  // App related config // 应用相关配置
}

// UserServiceConfig user service configuration
// UserServiceConfig 用户服务配置
type UserServiceConfig struct {
	RegisterIsEnable bool    // Whether registration is enabled // 注册是否启用
	AdminUIDs        []int64 // Administrators, empty means nobody // 管理员 UID 列表，为空表示没有管理员
}

// AppServiceConfig app service configuration
// AppServiceConfig 应用服务配置
type AppServiceConfig struct {
	BackupRetention   time.Duration // How long a deleted fragment stays restorable // 备份保留时长
	BackupArchivePath string        // Key prefix in object storage // 归档对象键前缀
	CleanupBatchSize  int           // Backups removed per batch // 每批清理数量
}

func (c *ServiceConfig) backupRetention() time.Duration {
	if c == nil || c.App.BackupRetention <= 0 {
		return 30 * 24 * time.Hour
	}
	return c.App.BackupRetention
}

func (c *ServiceConfig) cleanupBatchSize() int {
	if c == nil || c.App.CleanupBatchSize <= 0 {
		return 500
	}
	return c.App.CleanupBatchSize
}

func (c *ServiceConfig) archivePath() string {
	if c == nil || c.App.BackupArchivePath == "" {
		return "backups"
	}
	return c.App.BackupArchivePath
}

// IsAdmin 管理员列表为空时没有任何管理员
func (c *ServiceConfig) IsAdmin(uid int64) bool {
	if c == nil || uid <= 0 {
		return false
	}
	return util.InSlice(c.User.AdminUIDs, uid)
}
