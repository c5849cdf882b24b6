package routers

import (
	"time"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/haierkeys/murverse-service/docs"
	"github.com/haierkeys/murverse-service/internal/app"
	"github.com/haierkeys/murverse-service/internal/middleware"
	"github.com/haierkeys/murverse-service/internal/routers/api_router"
	"github.com/haierkeys/murverse-service/pkg/limiter"
)

// 登录与注册按路由前缀限流
func newMethodLimiters() limiter.Face {
	return limiter.NewMethodLimiter().AddBuckets(
		limiter.BucketRule{
			Key:          "/api/user/login",
			FillInterval: time.Second,
			Capacity:     10,
			Quantum:      10,
		},
		limiter.BucketRule{
			Key:          "/api/user/register",
			FillInterval: time.Minute,
			Capacity:     5,
			Quantum:      5,
		},
	)
}

func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	r := gin.New()
	// 按原始路径匹配路由，使 %2F 编码的标签值留在单个路径参数内
	r.UseRawPath = true
	r.UnescapePathValues = true

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header)) // Trace ID 中间件
		api.Use(middleware.Metrics(appContainer.HTTPMetrics))
		api.Use(middleware.RateLimiter(newMethodLimiters()))
		api.Use(middleware.ContextTimeout(cfg.GetContextTimeout()))
		api.Use(middleware.Cors())
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		userHandler := api_router.NewUserHandler(appContainer)
		systemHandler := api_router.NewSystemHandler(appContainer)
		fragmentHandler := api_router.NewFragmentHandler(appContainer)
		noteHandler := api_router.NewNoteHandler(appContainer)
		tagHandler := api_router.NewTagHandler(appContainer)
		adminHandler := api_router.NewAdminHandler(appContainer)

		// 无需认证
		api.POST("/user/register", userHandler.Register)
		api.POST("/user/login", userHandler.Login)
		api.GET("/health", systemHandler.Health)
		api.GET("/version", systemHandler.Version)

		auth := api.Group("", middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey))
		{
			auth.GET("/user/info", userHandler.UserInfo)

			auth.GET("/fragments", fragmentHandler.List)
			auth.POST("/fragments", fragmentHandler.Create)
			auth.GET("/fragments/events", appContainer.Hub.Run())
			auth.GET("/fragments/:id", fragmentHandler.Get)
			auth.PUT("/fragments/:id", fragmentHandler.Upsert)
			auth.DELETE("/fragments/:id", fragmentHandler.Delete)

			auth.POST("/fragments/:id/notes", noteHandler.Create)
			auth.PATCH("/fragments/:id/notes", noteHandler.Update)
			auth.DELETE("/fragments/:id/notes", noteHandler.Delete)
			auth.PUT("/fragments/:id/notes/order", noteHandler.Reorder)

			auth.POST("/fragments/:id/tags", tagHandler.Add)
			auth.DELETE("/fragments/:id/tags/:tag", tagHandler.Remove)
			auth.GET("/tags", fragmentHandler.Tags)

			auth.GET("/admin/check", adminHandler.Check)

			admin := auth.Group("/admin", middleware.AdminOnly(appContainer.IsAdmin))
			{
				admin.GET("/backups", adminHandler.BackupList)
				admin.POST("/backups/:id/restore", adminHandler.BackupRestore)
				admin.POST("/backups/cleanup", adminHandler.BackupCleanup)
				admin.GET("/systeminfo", adminHandler.GetSystemInfo)
			}
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.Use(middleware.Cors())
	r.NoRoute(middleware.NoFound())

	return r
}
