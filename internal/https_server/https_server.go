// Package https_server 负责 gin 引擎的组装
package https_server

import (
	"chat_relay_server/internal/handler"
	"chat_relay_server/internal/infrastructure/logger"
	"chat_relay_server/internal/router"
	jwtutil "chat_relay_server/pkg/util/jwt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 组装 gin 引擎：日志、恢复、跨域中间件加全部路由
func Init(handlers *handler.Handlers, tm *jwtutil.TokenManager) *gin.Engine {
	handler.RegisterValidations()

	engine := gin.New()
	engine.Use(logger.GinLogger(), logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	engine.Use(cors.New(corsConfig))

	router.NewRouter(handlers, tm).RegisterRoutes(engine)
	return engine
}
