package repository

import (
	"errors"
	"time"

	"chat_relay_server/internal/model"
	"chat_relay_server/pkg/errorx"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 创建消息
func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBError(err, "创建消息")
	}
	return nil
}

// FindAll 按发送时间升序返回全部消息
func (r *messageRepository) FindAll() ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Order("sent_at ASC").Find(&messages).Error; err != nil {
		return nil, wrapDBError(err, "查询全部消息")
	}
	return messages, nil
}

// FindByID 按 id 查找消息
func (r *messageRepository) FindByID(id uint) (*model.Message, error) {
	var message model.Message
	if err := r.db.First(&message, id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 id=%d", id)
	}
	return &message, nil
}

// Delete 按 id 删除消息
// 不存在时返回 CodeNotFound，不产生任何副作用
func (r *messageRepository) Delete(id uint) error {
	res := r.db.Delete(&model.Message{}, id)
	if res.Error != nil {
		return wrapDBErrorf(res.Error, "删除消息 id=%d", id)
	}
	if res.RowsAffected == 0 {
		return errorx.Newf(errorx.CodeNotFound, "消息 %d 不存在", id)
	}
	return nil
}

// MarkRead 为消息添加一条已读标记
// (message_id, user_id) 唯一索引保证集合语义，重复标记直接忽略
func (r *messageRepository) MarkRead(messageID, userID uint) error {
	read := model.MessageRead{MessageID: messageID, UserID: userID}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&read).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return wrapDBErrorf(err, "标记已读 message_id=%d user_id=%d", messageID, userID)
	}
	return nil
}

// FindReadBy 返回已读该消息的用户 id 列表
func (r *messageRepository) FindReadBy(messageID uint) ([]uint, error) {
	var userIds []uint
	err := r.db.Model(&model.MessageRead{}).
		Where("message_id = ?", messageID).
		Pluck("user_id", &userIds).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询已读用户 message_id=%d", messageID)
	}
	return userIds, nil
}

// CountUnread 统计某用户在某会话中的未读消息数
// 未读 = 会话内不存在对应已读标记的消息
func (r *messageRepository) CountUnread(chatID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Message{}).
		Where("chat_id = ?", chatID).
		Where("id NOT IN (?)", r.db.Model(&model.MessageRead{}).
			Select("message_id").Where("user_id = ?", userID)).
		Count(&count).Error
	if err != nil {
		return 0, wrapDBErrorf(err, "统计未读消息 chat_id=%d user_id=%d", chatID, userID)
	}
	return count, nil
}

// FindByChatSince 返回某会话中某时间点之后的消息
func (r *messageRepository) FindByChatSince(chatID uint, since time.Time) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("chat_id = ? AND sent_at > ?", chatID, since).
		Order("sent_at ASC").Find(&messages).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询会话新消息 chat_id=%d", chatID)
	}
	return messages, nil
}
