// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

// VersionDTO version information for API response
// VersionDTO 版本信息 API 响应对象
type VersionDTO struct {
	Name      string `json:"name"`      // Service name // 服务名称
	Version   string `json:"version"`   // Current version // 当前版本
	GitTag    string `json:"gitTag"`    // Git tag // Git 标签
	BuildTime string `json:"buildTime"` // Build time // 构建时间
}

// HealthDTO liveness probe result
// HealthDTO 健康检查结果
type HealthDTO struct {
	Status   string `json:"status"`   // "ok" or "degraded" // 状态
	Database bool   `json:"database"` // Database reachable // 数据库是否可用
	Uptime   string `json:"uptime"`   // Process uptime // 运行时长
}

// FragmentEventDTO pushed to websocket subscribers after a change
// FragmentEventDTO 碎片变更推送事件
type FragmentEventDTO struct {
	Type       string `json:"type"`       // created / updated / deleted / restored // 事件类型
	FragmentID string `json:"fragmentId"` // Fragment ID // 碎片ID
	Version    int64  `json:"version"`    // Version after the change // 变更后的版本号
}
