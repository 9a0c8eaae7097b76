// ingest.go
// 核心职责：消息转发器，实时路径的唯一入口
// 1. 打上服务端时间戳，客户端自带的时间戳一律丢弃
// 2. 发布到共享频道；发布失败直接返回错误，消息不广播
// 3. 持久化是发布之后的尽力而为，失败不影响实时转发
package chat

import (
	"context"
	"encoding/json"
	"time"

	"chat_relay_server/internal/dto/request"
	"chat_relay_server/internal/metrics"
	"chat_relay_server/pkg/constants"
	"chat_relay_server/pkg/errorx"

	"go.uber.org/zap"
)

// MessageSaver 落库端口，由消息服务实现
// 转发器只依赖这一个方法，避免实时路径耦合整个服务层
type MessageSaver interface {
	SaveFromWire(ctx context.Context, sender, content string) error
}

// Distributor 消息转发器
type Distributor struct {
	bus   Bus
	saver MessageSaver
}

// NewDistributor 创建转发器实例，saver 传 nil 时关闭落库
func NewDistributor(bus Bus, saver MessageSaver) *Distributor {
	return &Distributor{
		bus:   bus,
		saver: saver,
	}
}

// Dispatch 处理一条入站消息：盖时间戳、发布、落库
func (d *Distributor) Dispatch(ctx context.Context, msg *request.ChatMessageRequest) error {
	// 时间戳以服务端时钟为准
	msg.Timestamp = time.Now().Format(constants.TIMESTAMP_LAYOUT)

	payload, err := json.Marshal(msg)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "消息编码失败")
	}

	if err := d.bus.Publish(ctx, constants.CHAT_CHANNEL, payload); err != nil {
		metrics.PublishFailures.Inc()
		return errorx.Wrapf(err, errorx.CodePublishError, "发布到频道 %s 失败", constants.CHAT_CHANNEL)
	}
	metrics.MessagesSent.Inc()

	if d.saver != nil {
		if err := d.saver.SaveFromWire(ctx, msg.Sender, msg.Content); err != nil {
			// 落库失败不回滚广播，只记日志
			zap.L().Error("消息落库失败", zap.String("sender", msg.Sender), zap.Error(err))
		}
	}
	return nil
}
