// server.go
// 核心职责：本实例的会话中枢和本地广播
// 1. 维护在线会话表（Login/Logout 事件循环）
// 2. 消费总线投递，把消息广播给本实例的所有在线会话
// 3. 本地广播完全由订阅侧驱动，发布侧不直接写任何会话
package chat

import (
	"encoding/json"
	"sync"

	"chat_relay_server/internal/dto/request"
	"chat_relay_server/internal/metrics"

	"go.uber.org/zap"
)

// ChatServer 会话中枢
type ChatServer struct {
	// Clients 在线会话表，Key 为连接 ID，Value 为 *UserConn
	// 使用 sync.Map 实现并发安全
	Clients sync.Map
	// Login 会话登记通道，连接建立时写入
	Login chan *UserConn
	// Logout 会话注销通道，连接断开时写入
	Logout chan *UserConn

	done chan struct{}
}

// NewChatServer 创建会话中枢实例
func NewChatServer() *ChatServer {
	return &ChatServer{
		Login:  make(chan *UserConn, 64),
		Logout: make(chan *UserConn, 64),
		done:   make(chan struct{}),
	}
}

// Start 启动会话管理主循环
func (s *ChatServer) Start() {
	for {
		select {
		case client := <-s.Login:
			if client == nil {
				continue
			}
			s.Clients.Store(client.ConnId, client)
			metrics.ConnectedSessions.Inc()
			zap.L().Info("会话上线", zap.String("username", client.Username), zap.String("conn", client.ConnId))

		case client := <-s.Logout:
			if client == nil {
				continue
			}
			// 注销后不再有任何投递写入该会话
			if _, loaded := s.Clients.LoadAndDelete(client.ConnId); loaded {
				metrics.ConnectedSessions.Dec()
			}
			client.closeSend()
			zap.L().Info("会话下线", zap.String("username", client.Username), zap.String("conn", client.ConnId))

		case <-s.done:
			return
		}
	}
}

// RegisterClient 登记新会话
func (s *ChatServer) RegisterClient(client *UserConn) {
	s.Login <- client
}

// UnregisterClient 注销会话
func (s *ChatServer) UnregisterClient(client *UserConn) {
	s.Logout <- client
}

// HandleBusPayload 总线投递处理函数，注册到共享频道上
// 运行在总线的投递协程：只做解码校验和入队，不做任何阻塞的持久化或缓存操作
func (s *ChatServer) HandleBusPayload(payload []byte) {
	var msg request.ChatMessageRequest
	if err := json.Unmarshal(payload, &msg); err != nil {
		// 无法解码的消息记日志后丢弃，不能影响后续投递
		metrics.MalformedPayloads.Inc()
		zap.L().Error("丢弃无法解码的频道消息", zap.Error(err))
		return
	}
	metrics.BusDeliveries.Inc()
	s.BroadcastLocal(payload)
}

// BroadcastLocal 把消息按投递顺序转发给本实例的每个在线会话
// 不做按会话确认；会话不可写（缓冲满或已注销）时丢弃该条消息
func (s *ChatServer) BroadcastLocal(payload []byte) {
	s.Clients.Range(func(_, value any) bool {
		client := value.(*UserConn)
		if !client.trySend(payload) {
			zap.L().Warn("会话不可写，丢弃消息",
				zap.String("username", client.Username), zap.String("conn", client.ConnId))
		}
		return true
	})
}

// Close 停止主循环
func (s *ChatServer) Close() {
	close(s.done)
}
