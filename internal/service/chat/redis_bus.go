// redis_bus.go
// 核心职责：基于 Redis 发布/订阅的跨实例消息总线
// 1. Publish 走 PUBLISH 命令，失败直接返回错误，不重试不缓冲
// 2. 专用接收协程消费 SUBSCRIBE 推送，按频道名查表派发
// 3. Redis Pub/Sub 天然满足至多一次、按发布连接保序的语义
package chat

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBus Bus 接口的 Redis 发布/订阅实现
type RedisBus struct {
	client   *redis.Client
	handlers map[string]HandlerFunc
	pubsub   *redis.PubSub
}

// NewRedisBus 创建 Redis 总线实例
func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{
		client:   client,
		handlers: make(map[string]HandlerFunc),
	}
}

// Subscribe 注册频道处理函数，必须在 Start 之前调用
func (b *RedisBus) Subscribe(channel string, handler HandlerFunc) {
	b.handlers[channel] = handler
}

// Publish 发布消息到共享频道
func (b *RedisBus) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.client.Publish(ctx, channel, payload).Err()
}

// Start 建立订阅并启动投递循环
// 返回前等待订阅确认，保证 Start 之后发布的消息不会漏收
func (b *RedisBus) Start() error {
	if len(b.handlers) == 0 {
		zap.L().Warn("redis bus started without subscriptions")
		return nil
	}

	channels := make([]string, 0, len(b.handlers))
	for channel := range b.handlers {
		channels = append(channels, channel)
	}

	b.pubsub = b.client.Subscribe(context.Background(), channels...)
	if _, err := b.pubsub.Receive(context.Background()); err != nil {
		return err
	}

	go b.receiveLoop()
	zap.L().Info("redis bus subscribed", zap.Strings("channels", channels))
	return nil
}

// receiveLoop 专用投递协程
// 按投递顺序逐条派发，处理函数必须快速返回
func (b *RedisBus) receiveLoop() {
	for msg := range b.pubsub.Channel() {
		handler, ok := b.handlers[msg.Channel]
		if !ok {
			continue
		}
		handler([]byte(msg.Payload))
	}
}

// Close 关闭订阅，投递循环随之退出
func (b *RedisBus) Close() error {
	if b.pubsub != nil {
		return b.pubsub.Close()
	}
	return nil
}
