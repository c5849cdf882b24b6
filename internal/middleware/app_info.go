package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/haierkeys/murverse-service/pkg/app"
)

// AppInfoWithConfig 在上下文中记录应用名称与版本，并回写版本响应头
func AppInfoWithConfig(name, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("app_name", name)
		c.Set("app_version", version)
		c.Set("access_host", app.GetAccessHost(c))
		c.Header("X-Murverse-Version", version)

		c.Next()
	}
}
