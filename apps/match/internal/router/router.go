package router

import (
	"MatchServer/apps/match/internal/handler"
	"MatchServer/apps/match/internal/middleware"
	v1 "MatchServer/apps/match/internal/router/v1"
	"MatchServer/apps/match/internal/svc"
	"MatchServer/config"
	"MatchServer/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InitRouter 初始化路由
// wsHandler / relationHandler: 入口处理器（依赖注入）
func InitRouter(
	cfg config.ServerConfig,
	validator svc.SessionValidator,
	wsHandler *handler.WSHandler,
	relationHandler *v1.RelationHandler,
) *gin.Engine {
	r := gin.New()

	// 恢复中间件
	r.Use(middleware.GinRecovery(true))

	// 追踪中间件 (生成 trace_id)
	r.Use(util.TraceLogger())

	// 日志中间件
	r.Use(middleware.GinLogger())

	// 跨域中间件
	r.Use(middleware.CorsMiddleware())

	// IP 级限流中间件
	r.Use(middleware.RateLimitMiddleware(
		middleware.NewRateLimiter(cfg.RateLimitPerSec, cfg.RateLimitBurst),
	))

	// 健康检查（无需认证）
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Prometheus 指标暴露接口
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket 接入点（token 经 query 传入，在 handler 中校验）
	r.GET("/ws", wsHandler.ServeWS)

	// API 路由组
	api := r.Group("/api/v1")
	{
		relation := api.Group("/relation")
		relation.Use(middleware.AuthMiddleware(validator))
		{
			relation.POST("/flip", relationHandler.FlipLike)
			relation.GET("/status", relationHandler.Status)
			relation.GET("/matches", relationHandler.Matches)
			relation.GET("/likes", relationHandler.Likes)
			relation.GET("/liked-by", relationHandler.LikedBy)
			relation.POST("/visit", relationHandler.Visit)
		}
	}

	return r
}
