package handler

import (
	"strconv"
	"time"

	"chat_relay_server/internal/dto/request"
	"chat_relay_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息 REST 接口处理器
type MessageHandler struct {
	svc service.MessageService
}

// NewMessageHandler 创建消息处理器实例
func NewMessageHandler(svc service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// GetMessages 返回全部消息
// GET /api/chat/messages
func (h *MessageHandler) GetMessages(c *gin.Context) {
	rsp, err := h.svc.FindAll()
	if err != nil {
		HandleError(c, statusOf(err), err)
		return
	}
	HandleSuccess(c, rsp)
}

// GetMessage 按 id 返回消息
// GET /api/chat/messages/:id
func (h *MessageHandler) GetMessage(c *gin.Context) {
	id, err := parseId(c)
	if err != nil {
		HandleParamError(c, err)
		return
	}

	rsp, err := h.svc.FindByID(id)
	if err != nil {
		HandleError(c, statusOf(err), err)
		return
	}
	HandleSuccess(c, rsp)
}

// CreateMessage 创建消息
// POST /api/chat/messages
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	var req request.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	rsp, err := h.svc.Save(req)
	if err != nil {
		HandleError(c, statusOf(err), err)
		return
	}
	HandleSuccess(c, rsp)
}

// DeleteMessage 删除消息
// DELETE /api/chat/messages/:id
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	id, err := parseId(c)
	if err != nil {
		HandleParamError(c, err)
		return
	}

	if err := h.svc.Delete(id); err != nil {
		HandleError(c, statusOf(err), err)
		return
	}
	HandleSuccess(c, gin.H{"deleted": true})
}

// MarkRead 标记消息为当前用户已读
// POST /api/chat/messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, err := parseId(c)
	if err != nil {
		HandleParamError(c, err)
		return
	}

	if err := h.svc.MarkRead(id, c.GetString("username")); err != nil {
		HandleError(c, statusOf(err), err)
		return
	}
	HandleSuccess(c, nil)
}

// CountUnread 统计当前用户在某会话中的未读消息数
// GET /api/chat/chats/:id/unread
func (h *MessageHandler) CountUnread(c *gin.Context) {
	id, err := parseId(c)
	if err != nil {
		HandleParamError(c, err)
		return
	}

	count, err := h.svc.CountUnread(id, c.GetString("username"))
	if err != nil {
		HandleError(c, statusOf(err), err)
		return
	}
	HandleSuccess(c, gin.H{"unread": count})
}

// GetChatMessages 返回某会话的历史消息
// since 为可选的 RFC3339 时间，只返回该时间之后的消息
// GET /api/chat/chats/:id/messages?since=2026-01-02T15:04:05Z
func (h *MessageHandler) GetChatMessages(c *gin.Context) {
	id, err := parseId(c)
	if err != nil {
		HandleParamError(c, err)
		return
	}

	var since time.Time
	if raw := c.Query("since"); raw != "" {
		since, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			HandleParamError(c, err)
			return
		}
	}

	rsp, err := h.svc.ListChatMessages(id, since)
	if err != nil {
		HandleError(c, statusOf(err), err)
		return
	}
	HandleSuccess(c, rsp)
}

// ListChats 返回当前用户参与的所有会话
// GET /api/chat/chats
func (h *MessageHandler) ListChats(c *gin.Context) {
	rsp, err := h.svc.ListChats(c.GetString("username"))
	if err != nil {
		HandleError(c, statusOf(err), err)
		return
	}
	HandleSuccess(c, rsp)
}

func parseId(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
