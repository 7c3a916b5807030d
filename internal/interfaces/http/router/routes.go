// Package router 提供 HTTP 路由配置
package router

import (
	"pageweave-api/internal/config"
	"pageweave-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	cfg *config.Config,
	handlers Handlers,
	limiter middleware.RateLimiter,
) {
	// 页面生成与读取
	pages := v1.Group("/pages")
	{
		// 生成是重操作，单独挂限流
		pages.POST("/generate",
			middleware.RateLimit(middleware.RateLimitConfig{
				Enabled:           cfg.Security.RateLimit.Enabled,
				RequestsPerSecond: cfg.Security.RateLimit.RequestsPerSecond,
			}, limiter),
			handlers.Page.Generate,
		)

		pages.GET("", handlers.Page.ListPages)
		pages.GET("/:slug", handlers.Page.GetPage)
		pages.GET("/:slug/status", handlers.Page.GetStatus)
	}

	// 检索调试与内容索引
	retrieval := v1.Group("/retrieval")
	{
		retrieval.POST("/search", handlers.Retrieval.Search)

		// 内容索引是管理端操作，需要认证
		retrieval.POST("/index",
			middleware.Auth(middleware.AuthConfig{
				Enabled: cfg.Security.JWT.Enabled,
				Secret:  cfg.Security.JWT.Secret,
				Issuer:  cfg.Security.JWT.Issuer,
			}),
			handlers.Retrieval.Index,
		)
	}
}
