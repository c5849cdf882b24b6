package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haierkeys/murverse-service/pkg/metrics"
)

// Metrics 记录请求数量与耗时，路由以注册时的模板计（避免 ID 进入标签）
func Metrics(m *metrics.HTTP) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		m.InFlight.Inc()
		defer m.InFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Observe(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
