package model

import "gorm.io/gorm"

// Chat 会话模型
// 消息通过 chat_id 引用会话，成员关系走 ChatMember 索引表，
// 实体之间只存 id 引用，不做双向对象关联
type Chat struct {
	gorm.Model

	// Name 会话名称
	Name string `gorm:"column:name;type:varchar(50);not null;comment:会话名称"`

	// IsGroupChat 是否群聊，false 为双人私聊
	IsGroupChat bool `gorm:"column:is_group_chat;not null;default:false;comment:是否群聊"`
}

// TableName 指定表名
func (Chat) TableName() string {
	return "chats"
}

// ChatMember 会话成员关系表
// (chat_id, user_id) 唯一，成员查询走该索引而不是对象图遍历
type ChatMember struct {
	ID     uint `gorm:"primarykey"`
	ChatID uint `gorm:"column:chat_id;uniqueIndex:idx_chat_user;not null;comment:会话id"`
	UserID uint `gorm:"column:user_id;uniqueIndex:idx_chat_user;index;not null;comment:用户id"`
}

// TableName 指定表名
func (ChatMember) TableName() string {
	return "chat_members"
}
