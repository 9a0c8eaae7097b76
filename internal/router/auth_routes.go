package router

import "github.com/gin-gonic/gin"

// registerAuthRoutes 认证路由，无需令牌
func (r *Router) registerAuthRoutes(engine *gin.Engine) {
	group := engine.Group("/api/auth")
	{
		group.POST("/login", r.handlers.Auth.Login)
		group.POST("/register", r.handlers.Auth.Register)
	}
}
