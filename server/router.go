package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pathmania/logger"
)

// NewRouter 注册 WebSocket、管理与监控接口
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), accessLog())

	r.GET("/ws", h.HandleWS)
	r.GET("/admin/config", h.HandleAdminConfig)
	r.POST("/admin/config", h.HandleAdminConfig)
	r.GET("/admin/sessions", h.HandleSessions)
	r.GET("/metrics", h.HandleMetrics)
	r.GET("/leaderboard", h.HandleLeaderboard)
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

// accessLog 把请求写入 zap 日志
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Log.Debugf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}
