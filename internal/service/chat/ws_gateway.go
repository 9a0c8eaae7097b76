// ws_gateway.go
// 核心职责：WebSocket 连接网关
// 1. 升级 HTTP 连接，为已通过认证的用户创建会话
// 2. 读协程：解析客户端消息后交给转发器走总线路径
// 3. 写协程：消费 SendBack 通道，把广播消息推给客户端
package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"chat_relay_server/internal/dto/request"
	"chat_relay_server/pkg/constants"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UserConn 一条在线会话
type UserConn struct {
	Conn *websocket.Conn
	// ConnId 连接唯一标识，同一用户可以有多条并发会话
	ConnId   string
	Username string
	// SendBack 写协程的发送缓冲，投递必须走 trySend，不允许直接写
	SendBack chan []byte

	// mu 保护 closed 与 SendBack 的关闭；
	// 广播协程和中枢的注销分支并发触碰同一条会话
	mu     sync.Mutex
	closed bool
}

// trySend 尝试向会话投递一条消息
// 会话已关闭或发送缓冲已满时返回 false，消息丢弃，绝不阻塞
func (c *UserConn) trySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.SendBack <- payload:
		return true
	default:
		return false
	}
}

// closeSend 关闭发送缓冲，之后 trySend 一律失败，重复调用无害
func (c *UserConn) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.SendBack)
}

// Gateway 连接网关，持有会话中枢和消息转发器
type Gateway struct {
	server      *ChatServer
	distributor *Distributor
}

// NewGateway 创建连接网关实例
func NewGateway(server *ChatServer, distributor *Distributor) *Gateway {
	return &Gateway{
		server:      server,
		distributor: distributor,
	}
}

// NewClientInit 升级连接并登记会话，认证必须在调用前完成
func (g *Gateway) NewClientInit(c *gin.Context, username string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("websocket 升级失败", zap.Error(err))
		return
	}

	client := &UserConn{
		Conn:     conn,
		ConnId:   uuid.NewString(),
		Username: username,
		SendBack: make(chan []byte, constants.CHANNEL_SIZE),
	}
	g.server.RegisterClient(client)

	go g.readLoop(client)
	go g.writeLoop(client)
}

// readLoop 读协程：接收客户端消息，交给转发器
// 连接断开时负责注销会话
func (g *Gateway) readLoop(client *UserConn) {
	defer func() {
		g.server.UnregisterClient(client)
		if err := client.Conn.Close(); err != nil {
			zap.L().Warn("关闭连接失败", zap.Error(err))
		}
	}()

	for {
		_, data, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("连接异常断开", zap.String("username", client.Username), zap.Error(err))
			}
			return
		}

		var msg request.ChatMessageRequest
		if err := json.Unmarshal(data, &msg); err != nil {
			zap.L().Error("丢弃无法解码的客户端消息", zap.String("username", client.Username), zap.Error(err))
			continue
		}

		// 转发失败只记日志，消息丢弃，连接保持
		if err := g.distributor.Dispatch(context.Background(), &msg); err != nil {
			zap.L().Error("消息转发失败", zap.String("username", client.Username), zap.Error(err))
		}
	}
}

// writeLoop 写协程：SendBack 关闭后退出
func (g *Gateway) writeLoop(client *UserConn) {
	for payload := range client.SendBack {
		if err := client.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			zap.L().Warn("消息下发失败", zap.String("username", client.Username), zap.Error(err))
			return
		}
	}
}
