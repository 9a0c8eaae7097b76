// Package router 负责路由注册
// 每个业务域一个注册文件，统一挂到 gin.Engine 上
package router

import (
	"net/http"

	"chat_relay_server/internal/handler"
	jwtutil "chat_relay_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router 路由注册器
type Router struct {
	handlers *handler.Handlers
	tm       *jwtutil.TokenManager
}

// NewRouter 创建路由注册器实例
func NewRouter(handlers *handler.Handlers, tm *jwtutil.TokenManager) *Router {
	return &Router{
		handlers: handlers,
		tm:       tm,
	}
}

// RegisterRoutes 注册全部路由
func (r *Router) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.registerAuthRoutes(engine)
	r.registerMessageRoutes(engine)
	r.registerWsRoutes(engine)
}
