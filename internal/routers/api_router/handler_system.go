package api_router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haierkeys/murverse-service/internal/app"
	"github.com/haierkeys/murverse-service/internal/dto"
	pkgapp "github.com/haierkeys/murverse-service/pkg/app"
	"github.com/haierkeys/murverse-service/pkg/code"
)

// SystemHandler 健康检查与版本信息
type SystemHandler struct {
	*Handler
}

// NewSystemHandler 创建 SystemHandler 实例
func NewSystemHandler(a *app.App) *SystemHandler {
	return &SystemHandler{Handler: NewHandler(a)}
}

// Health 健康检查接口
// @Summary 健康检查
// @Description 检查服务健康状态，包括数据库连接
// @Tags 系统
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.HealthDTO} "成功"
// @Failure 500 {object} pkgapp.Res{data=dto.HealthDTO} "数据库不可用"
// @Router /api/health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	health := dto.HealthDTO{
		Status:   "ok",
		Database: true,
		Uptime:   time.Since(h.App.StartTime).Truncate(time.Second).String(),
	}

	sqlDB, err := h.App.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		h.logError(c.Request.Context(), "SystemHandler.Health", err)
		health.Status = "degraded"
		health.Database = false
		response.ToResponse(code.ErrorDBQuery.WithData(health))
		return
	}
	response.ToResponse(code.Success.WithData(health))
}

// Version retrieves server version information
// @Summary Get server version info
// @Description Get current server software version, Git tag, and build time
// @Tags 系统
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.VersionDTO} "Success"
// @Router /api/version [get]
func (h *SystemHandler) Version(c *gin.Context) {
	v := h.App.Version()
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(dto.VersionDTO{
		Name:      app.Name,
		Version:   v.Version,
		GitTag:    v.GitTag,
		BuildTime: v.BuildTime,
	}))
}
