package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chat_relay_server/internal/config"
	"chat_relay_server/internal/dao/mysql"
	myredis "chat_relay_server/internal/dao/redis"
	"chat_relay_server/internal/handler"
	"chat_relay_server/internal/https_server"
	"chat_relay_server/internal/infrastructure/logger"
	"chat_relay_server/internal/service"
	"chat_relay_server/internal/service/chat"
	"chat_relay_server/pkg/constants"
	jwtutil "chat_relay_server/pkg/util/jwt"

	"go.uber.org/zap"
)

func main() {
	conf := config.GetConfig()

	if err := logger.Init(&conf.LogConfig, ginMode()); err != nil {
		fmt.Printf("logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zap.L().Sync() }()

	// 数据层
	repos := mysql.Init()
	redisClient, cache := myredis.Init()

	// 认证与业务服务
	tm := jwtutil.NewTokenManager(conf.JWTConfig.Secret, conf.JWTConfig.ExpiryMinutes)
	services := service.NewServices(repos, cache, tm, conf.BusConfig.IngestChatId)

	// 实时核心：中枢、总线、转发器、网关
	hub := chat.NewChatServer()

	var bus chat.Bus
	switch conf.BusConfig.Mode {
	case "kafka":
		bus = chat.NewKafkaBus(conf.BusConfig.KafkaHostPort, constants.CHAT_CHANNEL, conf.BusConfig.Timeout)
	default:
		bus = chat.NewRedisBus(redisClient)
	}
	bus.Subscribe(constants.CHAT_CHANNEL, hub.HandleBusPayload)

	var saver chat.MessageSaver
	if conf.BusConfig.PersistIngest {
		saver = services.Message
	}
	distributor := chat.NewDistributor(bus, saver)
	gateway := chat.NewGateway(hub, distributor)

	// 接入层
	handlers := handler.NewHandlers(services, tm, gateway)
	engine := https_server.Init(handlers, tm)

	go hub.Start()
	if err := bus.Start(); err != nil {
		zap.L().Fatal("消息总线启动失败", zap.Error(err))
	}

	go func() {
		addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
		zap.L().Info("服务启动", zap.String("addr", addr), zap.String("app", conf.MainConfig.AppName))
		if err := engine.Run(addr); err != nil {
			zap.L().Fatal("HTTP 服务异常退出", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("收到退出信号，开始关闭")
	if err := bus.Close(); err != nil {
		zap.L().Error("消息总线关闭失败", zap.Error(err))
	}
	hub.Close()
}

// ginMode 从环境变量读取运行模式，默认 dev
func ginMode() string {
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		return mode
	}
	return "dev"
}
