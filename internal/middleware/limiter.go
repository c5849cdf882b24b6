package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/haierkeys/murverse-service/pkg/app"
	"github.com/haierkeys/murverse-service/pkg/code"
	"github.com/haierkeys/murverse-service/pkg/limiter"
)

// RateLimiter 按路由前缀的令牌桶限流，桶空时返回 429 并带 Retry-After
func RateLimiter(l limiter.Face) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket, ok := l.GetBucket(l.Key(c))
		if !ok || bucket.TakeAvailable(1) > 0 {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		app.NewResponse(c).ToResponse(code.ErrorTooManyRequests)
		c.Abort()
	}
}
