package router

import "github.com/gin-gonic/gin"

// registerWsRoutes WebSocket 路由
// 令牌走查询参数，在握手阶段校验，不走 JWT 中间件
func (r *Router) registerWsRoutes(engine *gin.Engine) {
	engine.GET("/ws", r.handlers.Ws.Connect)
}
