// Package service 定义业务服务接口和聚合入口
package service

import (
	"context"
	"time"

	"chat_relay_server/internal/dto/request"
	"chat_relay_server/internal/dto/respond"
)

// AuthService 认证服务接口
type AuthService interface {
	// Login 校验凭证并签发令牌
	Login(req request.LoginRequest) (*respond.LoginRespond, error)
	// Register 注册新用户，用户名重复返回 CodeUserExist 错误
	Register(req request.RegisterRequest) error
}

// MessageService 消息服务接口，读路径走缓存
type MessageService interface {
	// Save 持久化一条消息并让相关缓存失效
	Save(req request.CreateMessageRequest) (*respond.MessageRespond, error)
	// FindAll 返回全部消息，优先读缓存
	FindAll() ([]respond.MessageRespond, error)
	// FindByID 按 id 返回消息，优先读缓存，未找到返回 CodeNotFound 错误
	FindByID(id uint) (*respond.MessageRespond, error)
	// Delete 按 id 删除消息并让相关缓存失效
	Delete(id uint) error
	// MarkRead 为消息添加当前用户的已读标记，重复标记幂等
	MarkRead(id uint, username string) error
	// CountUnread 统计当前用户在某会话中的未读消息数
	CountUnread(chatID uint, username string) (int64, error)
	// ListChats 返回当前用户参与的所有会话
	ListChats(username string) ([]respond.ChatRespond, error)
	// ListChatMessages 返回某会话中某时间点之后的消息，按发送时间升序
	// since 为零值时返回该会话的全部消息
	ListChatMessages(chatID uint, since time.Time) ([]respond.MessageRespond, error)
	// SaveFromWire 实时路径的落库入口，按用户名解析发送者
	SaveFromWire(ctx context.Context, sender, content string) error
}
