package repository

import (
	"chat_relay_server/internal/model"

	"gorm.io/gorm"
)

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository 创建会话 Repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// Create 创建会话并登记成员，两步在同一事务内完成
func (r *chatRepository) Create(chat *model.Chat, memberIds []uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		for _, userID := range memberIds {
			member := model.ChatMember{ChatID: chat.ID, UserID: userID}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrapDBErrorf(err, "创建会话 %s", chat.Name)
	}
	return nil
}

// FindByParticipantID 查找用户参与的所有会话
// 成员关系走 chat_members 索引表，不做对象图遍历
func (r *chatRepository) FindByParticipantID(userID uint) ([]model.Chat, error) {
	var chats []model.Chat
	err := r.db.
		Joins("JOIN chat_members ON chat_members.chat_id = chats.id").
		Where("chat_members.user_id = ?", userID).
		Find(&chats).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询用户会话 user_id=%d", userID)
	}
	return chats, nil
}
