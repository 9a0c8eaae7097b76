// 本文件仅包含 Redis 连接初始化逻辑
// 使用 github.com/redis/go-redis/v9 作为底层客户端
package redis

import (
	"strconv"

	"chat_relay_server/internal/config"

	"github.com/redis/go-redis/v9"
)

// Init 初始化 Redis 连接并返回客户端和缓存服务
// 同一个客户端同时服务缓存读写和发布/订阅总线
func Init() (*redis.Client, AsyncCacheService) {
	conf := config.GetConfig()
	addr := conf.RedisConfig.Host + ":" + strconv.Itoa(conf.RedisConfig.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: conf.RedisConfig.Password,
		DB:       conf.RedisConfig.Db,
		// 连接池配置
		PoolSize:     50,
		MinIdleConns: 15,
	})

	// 15 个 Worker，缓冲区 3000，多个 Service 共享
	cache := NewRedisCache(client, 15, 3000)
	return client, cache
}
