package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/haierkeys/murverse-service/pkg/app"
	"github.com/haierkeys/murverse-service/pkg/code"
)

// UserAuthTokenWithConfig 用户 Token 认证中间件（使用注入的密钥）
// Accepts "Authorization: Bearer <token>", a bare Authorization value,
// the Token header or the token query parameter.
func UserAuthTokenWithConfig(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)

		token := app.GetRequestToken(c)
		if token == "" {
			response.ToResponse(code.ErrorNotUserAuthToken)
			c.Abort()
			return
		}

		if err := app.SetTokenToContextWithKey(c, token, secretKey); err != nil {
			response.ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminOnly 仅允许管理员访问，必须放在 UserAuthTokenWithConfig 之后
func AdminOnly(isAdmin func(uid int64) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := app.GetUID(c)
		if uid == 0 {
			app.NewResponse(c).ToResponse(code.ErrorNotUserAuthToken)
			c.Abort()
			return
		}
		if !isAdmin(uid) {
			app.NewResponse(c).ToResponse(code.ErrorUserIsNotAdmin)
			c.Abort()
			return
		}
		c.Next()
	}
}
