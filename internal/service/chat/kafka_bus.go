// kafka_bus.go
// 核心职责：基于 Kafka 的跨实例消息总线（部署变体）
// 频道名映射为 Kafka Topic；每个实例使用唯一的消费组 ID，
// 保证一条消息被每个实例各消费一次，而不是组内只消费一次
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaBus Bus 接口的 Kafka 实现
type KafkaBus struct {
	writer   *kafka.Writer
	reader   *kafka.Reader
	topic    string
	handlers map[string]HandlerFunc
	cancel   context.CancelFunc
}

// NewKafkaBus 创建 Kafka 总线实例
// timeoutSec 为读写超时秒数
func NewKafkaBus(hostPort, topic string, timeoutSec int64) *KafkaBus {
	timeout := time.Duration(timeoutSec) * time.Second
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(hostPort),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           timeout,
		RequiredAcks:           kafka.RequireNone,
		AllowAutoTopicCreation: false,
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{hostPort},
		Topic:   topic,
		// 消费组 ID 每实例唯一，否则同组内一条消息只会被一个实例消费，
		// 跨实例广播就失效了
		GroupID:        "chat_relay_" + uuid.NewString(),
		CommitInterval: timeout,
		StartOffset:    kafka.LastOffset,
	})
	return &KafkaBus{
		writer:   writer,
		reader:   reader,
		topic:    topic,
		handlers: make(map[string]HandlerFunc),
	}
}

// Subscribe 注册频道处理函数，必须在 Start 之前调用
func (b *KafkaBus) Subscribe(channel string, handler HandlerFunc) {
	b.handlers[channel] = handler
}

// Publish 发布消息到共享频道
// 只接受构造时绑定的 topic 对应的频道名
func (b *KafkaBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if channel != b.topic {
		return fmt.Errorf("unknown channel %q, bus is bound to %q", channel, b.topic)
	}
	return b.writer.WriteMessages(ctx, kafka.Message{Value: payload})
}

// Start 启动消费循环
func (b *KafkaBus) Start() error {
	handler, ok := b.handlers[b.topic]
	if !ok {
		zap.L().Warn("kafka bus started without subscriptions")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	go func() {
		for {
			msg, err := b.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				zap.L().Error("kafka read message failed", zap.Error(err))
				return
			}
			handler(msg.Value)
		}
	}()

	zap.L().Info("kafka bus subscribed", zap.String("topic", b.topic))
	return nil
}

// Close 关闭生产者和消费者
func (b *KafkaBus) Close() error {
	if b.cancel != nil {
		b.cancel()
	}
	if err := b.writer.Close(); err != nil {
		zap.L().Error(err.Error())
	}
	return b.reader.Close()
}
