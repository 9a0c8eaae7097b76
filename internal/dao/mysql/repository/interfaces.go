package repository

import (
	"time"

	"chat_relay_server/internal/model"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	// Create 创建用户
	Create(user *model.User) error
	// FindByUsername 按用户名查找用户，未找到返回 CodeNotFound 错误
	FindByUsername(username string) (*model.User, error)
}

// ChatRepository 会话数据访问接口
type ChatRepository interface {
	// Create 创建会话并登记成员
	Create(chat *model.Chat, memberIds []uint) error
	// FindByParticipantID 查找用户参与的所有会话
	FindByParticipantID(userID uint) ([]model.Chat, error)
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// Create 创建消息，id 由数据库自增分配
	Create(message *model.Message) error
	// FindAll 按发送时间升序返回全部消息
	FindAll() ([]model.Message, error)
	// FindByID 按 id 查找消息，未找到返回 CodeNotFound 错误
	FindByID(id uint) (*model.Message, error)
	// Delete 按 id 删除消息，未找到返回 CodeNotFound 错误
	Delete(id uint) error
	// MarkRead 为消息添加一条已读标记，重复标记幂等
	MarkRead(messageID, userID uint) error
	// FindReadBy 返回已读该消息的用户 id 列表
	FindReadBy(messageID uint) ([]uint, error)
	// CountUnread 统计某用户在某会话中的未读消息数
	CountUnread(chatID, userID uint) (int64, error)
	// FindByChatSince 返回某会话中某时间点之后的消息，按发送时间升序
	FindByChatSince(chatID uint, since time.Time) ([]model.Message, error)
}

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
// 跨表事务封装在各 Repository 内部（见 chatRepository.Create）
type Repositories struct {
	User    UserRepository
	Chat    ChatRepository
	Message MessageRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Chat:    NewChatRepository(db),
		Message: NewMessageRepository(db),
	}
}
