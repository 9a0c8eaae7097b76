package service

import (
	"chat_relay_server/internal/dao/mysql/repository"
	myredis "chat_relay_server/internal/dao/redis"
	"chat_relay_server/internal/service/auth"
	"chat_relay_server/internal/service/message"
	jwtutil "chat_relay_server/pkg/util/jwt"
)

// Services 聚合所有 Service 实例，作为依赖注入的入口
type Services struct {
	Auth    AuthService
	Message MessageService
}

// NewServices 创建所有 Service 实例
func NewServices(repos *repository.Repositories, cache myredis.AsyncCacheService, tm *jwtutil.TokenManager, ingestChatId uint) *Services {
	return &Services{
		Auth:    auth.NewAuthService(repos, tm),
		Message: message.NewMessageService(repos, cache, ingestChatId),
	}
}
