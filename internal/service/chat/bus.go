// Package chat 实现聊天系统的实时核心：
// 连接网关、消息转发路径、跨实例扇出总线和本地广播
package chat

import "context"

// HandlerFunc 订阅处理函数，每条投递调用一次，按投递顺序执行
// 运行在总线的专用投递协程上，必须保持快速非阻塞，
// 否则会拖慢本实例上该频道的所有扇出流量
type HandlerFunc func(payload []byte)

// Bus 跨实例消息总线接口
// 把本实例的广播组桥接到共享的发布/订阅频道，
// 每次发布让每个已订阅实例（包括发布者自己）恰好收到一次投递。
// 至多一次投递：发布之后才订阅的实例永远收不到该条消息，不回放不补发。
// 顺序只保证同一发布者内部的先后，不保证跨发布者的全局顺序。
// 支持多种实现：RedisBus（默认）、KafkaBus
type Bus interface {
	// Publish 发布消息到共享频道
	// 底层传输不可达时返回错误，消息不会被投递到任何实例，也不重试
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe 注册频道处理函数，必须在 Start 之前完成
	// 显式的频道名到处理函数映射表，不做反射派发
	Subscribe(channel string, handler HandlerFunc)
	// Start 建立订阅并启动投递循环
	Start() error
	// Close 关闭总线资源
	Close() error
}
