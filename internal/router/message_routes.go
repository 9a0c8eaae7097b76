package router

import (
	"chat_relay_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// registerMessageRoutes 消息 REST 路由，整组挂 JWT 中间件
func (r *Router) registerMessageRoutes(engine *gin.Engine) {
	group := engine.Group("/api/chat")
	group.Use(middleware.JWTAuth(r.tm))
	{
		group.GET("/messages", r.handlers.Message.GetMessages)
		group.GET("/messages/:id", r.handlers.Message.GetMessage)
		group.POST("/messages", r.handlers.Message.CreateMessage)
		group.DELETE("/messages/:id", r.handlers.Message.DeleteMessage)
		group.POST("/messages/:id/read", r.handlers.Message.MarkRead)
		group.GET("/chats", r.handlers.Message.ListChats)
		group.GET("/chats/:id/unread", r.handlers.Message.CountUnread)
		group.GET("/chats/:id/messages", r.handlers.Message.GetChatMessages)
	}
}
