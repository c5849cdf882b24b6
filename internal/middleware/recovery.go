package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haierkeys/murverse-service/pkg/app"
	"github.com/haierkeys/murverse-service/pkg/code"
	"github.com/haierkeys/murverse-service/pkg/logger"
)

// RecoveryWithLogger 创建带日志器的 Recovery 中间件（支持依赖注入）
// The panic value is logged; the client only sees ErrorServerInternal.
func RecoveryWithLogger(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				fields := []zap.Field{
					zap.String(logger.FieldPath, c.Request.URL.Path),
					zap.String(logger.FieldMethod, c.Request.Method),
					zap.String("query", c.Request.URL.RawQuery),
					zap.String("ip", c.ClientIP()),
					zap.String(logger.FieldTraceID, GetTraceIDFromGin(c)),
					zap.String("stack", string(debug.Stack())),
				}
				if e, ok := err.(error); ok {
					fields = append(fields, zap.Error(e))
				} else {
					fields = append(fields, zap.String("panic_value", fmt.Sprintf("%v", err)))
				}
				l.Error("Recovered from panic", fields...)

				app.NewResponse(c).ToResponse(code.ErrorServerInternal)
				c.Abort()
			}
		}()

		c.Next()
	}
}
