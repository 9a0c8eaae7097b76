package handler

import (
	"net/http"

	"chat_relay_server/internal/service/chat"
	"chat_relay_server/pkg/errorx"
	jwtutil "chat_relay_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsHandler WebSocket 接入处理器
// 认证在握手阶段完成：令牌无效时直接返回 401，不升级连接
type WsHandler struct {
	tm      *jwtutil.TokenManager
	gateway *chat.Gateway
}

// NewWsHandler 创建 WebSocket 处理器实例
func NewWsHandler(tm *jwtutil.TokenManager, gateway *chat.Gateway) *WsHandler {
	return &WsHandler{
		tm:      tm,
		gateway: gateway,
	}
}

// Connect 连接入口
// GET /ws?token=xxx
func (h *WsHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	username, err := h.tm.Validate(token)
	if err != nil {
		zap.L().Warn("websocket 握手认证失败", zap.Error(err))
		c.JSON(http.StatusUnauthorized, Response{
			Code: errorx.CodeUnauthorized,
			Msg:  "认证失败",
		})
		return
	}

	h.gateway.NewClientInit(c, username)
}
