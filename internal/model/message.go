// 本文件定义消息模型，用于持久化聊天消息
package model

import (
	"time"

	"gorm.io/gorm"
)

// Message 持久化的消息记录
// 对应数据库 messages 表，id 由数据库自增分配
// 只持有 chat_id / sender_id 的整型引用，已读集合存 MessageRead 表
type Message struct {
	gorm.Model

	// ChatID 消息所属会话 id
	ChatID uint `gorm:"column:chat_id;index;not null;comment:会话id"`

	// SenderID 发送者用户 id
	SenderID uint `gorm:"column:sender_id;index;not null;comment:发送者id"`

	// Content 消息文本内容
	Content string `gorm:"column:content;type:TEXT;not null;comment:消息内容"`

	// SentAt 发送时间，由持久化路径在保存时赋值
	SentAt time.Time `gorm:"column:sent_at;index;not null;comment:发送时间"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}

// MessageRead 消息已读标记表
// (message_id, user_id) 唯一，集合只增不减，重复标记是幂等操作
type MessageRead struct {
	ID        uint `gorm:"primarykey"`
	MessageID uint `gorm:"column:message_id;uniqueIndex:idx_message_user;not null;comment:消息id"`
	UserID    uint `gorm:"column:user_id;uniqueIndex:idx_message_user;not null;comment:用户id"`
}

// TableName 指定表名
func (MessageRead) TableName() string {
	return "message_read"
}
