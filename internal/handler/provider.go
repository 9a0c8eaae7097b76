package handler

import (
	"chat_relay_server/internal/service"
	"chat_relay_server/internal/service/chat"
	jwtutil "chat_relay_server/pkg/util/jwt"
)

// Handlers 聚合所有 Handler 实例，作为依赖注入的入口
type Handlers struct {
	Auth    *AuthHandler
	Message *MessageHandler
	Ws      *WsHandler
}

// NewHandlers 创建所有 Handler 实例
func NewHandlers(svc *service.Services, tm *jwtutil.TokenManager, gateway *chat.Gateway) *Handlers {
	return &Handlers{
		Auth:    NewAuthHandler(svc.Auth),
		Message: NewMessageHandler(svc.Message),
		Ws:      NewWsHandler(tm, gateway),
	}
}
