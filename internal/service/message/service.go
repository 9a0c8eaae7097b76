// Package message 实现消息的持久化和缓存读路径
// 缓存策略：写路径失效缓存，读路径未命中时回源并重建
// 缓存故障只记日志，不影响请求结果
package message

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"chat_relay_server/internal/dao/mysql/repository"
	myredis "chat_relay_server/internal/dao/redis"
	"chat_relay_server/internal/dto/request"
	"chat_relay_server/internal/dto/respond"
	"chat_relay_server/internal/model"
	"chat_relay_server/pkg/constants"
	"chat_relay_server/pkg/errorx"

	"go.uber.org/zap"
)

type messageService struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
	// ingestChatId 实时路径落库使用的会话 id
	ingestChatId uint
}

// NewMessageService 创建消息服务实例
func NewMessageService(repos *repository.Repositories, cache myredis.AsyncCacheService, ingestChatId uint) *messageService {
	return &messageService{
		repos:        repos,
		cache:        cache,
		ingestChatId: ingestChatId,
	}
}

// Save 持久化一条消息
// 成功后同步失效列表缓存，保证紧随其后的 FindAll 能看到新消息
func (s *messageService) Save(req request.CreateMessageRequest) (*respond.MessageRespond, error) {
	msg := &model.Message{
		ChatID:   req.ChatId,
		SenderID: req.SenderId,
		Content:  req.Content,
		SentAt:   time.Now(),
	}
	if err := s.repos.Message.Create(msg); err != nil {
		return nil, err
	}

	if err := s.cache.Delete(context.Background(), constants.ALL_MESSAGES_KEY); err != nil {
		zap.L().Error("列表缓存失效失败", zap.Error(err))
	}

	return toMessageRespond(msg, nil), nil
}

// FindAll 返回全部消息，按发送时间升序
func (s *messageService) FindAll() ([]respond.MessageRespond, error) {
	ctx := context.Background()

	cached, err := s.cache.GetOrError(ctx, constants.ALL_MESSAGES_KEY)
	if err == nil {
		var rsp []respond.MessageRespond
		if err := json.Unmarshal([]byte(cached), &rsp); err == nil {
			return rsp, nil
		}
		zap.L().Error("列表缓存内容损坏，回源重建", zap.Error(err))
	} else if !errorx.IsNotFound(err) {
		zap.L().Error("列表缓存读取失败，回源数据库", zap.Error(err))
	}

	messages, err := s.repos.Message.FindAll()
	if err != nil {
		return nil, err
	}

	rsp := make([]respond.MessageRespond, 0, len(messages))
	for i := range messages {
		readBy, err := s.repos.Message.FindReadBy(messages[i].ID)
		if err != nil {
			return nil, err
		}
		rsp = append(rsp, *toMessageRespond(&messages[i], readBy))
	}

	if data, err := json.Marshal(rsp); err == nil {
		if err := s.cache.Set(ctx, constants.ALL_MESSAGES_KEY, string(data), constants.CACHE_TIMEOUT); err != nil {
			zap.L().Error("列表缓存写入失败", zap.Error(err))
		}
	}
	return rsp, nil
}

// FindByID 按 id 返回消息
func (s *messageService) FindByID(id uint) (*respond.MessageRespond, error) {
	ctx := context.Background()
	key := messageKey(id)

	cached, err := s.cache.GetOrError(ctx, key)
	if err == nil {
		var rsp respond.MessageRespond
		if err := json.Unmarshal([]byte(cached), &rsp); err == nil {
			return &rsp, nil
		}
		zap.L().Error("消息缓存内容损坏，回源重建", zap.Uint("id", id), zap.Error(err))
	} else if !errorx.IsNotFound(err) {
		zap.L().Error("消息缓存读取失败，回源数据库", zap.Uint("id", id), zap.Error(err))
	}

	msg, err := s.repos.Message.FindByID(id)
	if err != nil {
		return nil, err
	}
	readBy, err := s.repos.Message.FindReadBy(id)
	if err != nil {
		return nil, err
	}
	rsp := toMessageRespond(msg, readBy)

	if data, err := json.Marshal(rsp); err == nil {
		if err := s.cache.Set(ctx, key, string(data), constants.CACHE_TIMEOUT); err != nil {
			zap.L().Error("消息缓存写入失败", zap.Uint("id", id), zap.Error(err))
		}
	}
	return rsp, nil
}

// Delete 删除消息，消息不存在时返回 CodeNotFound 且不改动任何缓存
func (s *messageService) Delete(id uint) error {
	if err := s.repos.Message.Delete(id); err != nil {
		return err
	}

	// 同步失效，保证紧随其后的 FindByID 看不到已删除的消息
	// 单条缓存按前缀整批清掉，不只清被删的那条
	ctx := context.Background()
	if err := s.cache.Delete(ctx, constants.ALL_MESSAGES_KEY); err != nil {
		zap.L().Error("列表缓存失效失败", zap.Error(err))
	}
	if err := s.cache.DeleteByPattern(ctx, constants.MESSAGE_KEY_PREFIX+"*"); err != nil {
		zap.L().Error("消息缓存失效失败", zap.Uint("id", id), zap.Error(err))
	}
	return nil
}

// MarkRead 为消息添加当前用户的已读标记
func (s *messageService) MarkRead(id uint, username string) error {
	user, err := s.repos.User.FindByUsername(username)
	if err != nil {
		return err
	}
	if _, err := s.repos.Message.FindByID(id); err != nil {
		return err
	}
	if err := s.repos.Message.MarkRead(id, user.ID); err != nil {
		return err
	}

	// 已读标记对实时性要求低，异步失效即可
	s.cache.SubmitTask(func() {
		ctx := context.Background()
		if err := s.cache.Delete(ctx, constants.ALL_MESSAGES_KEY); err != nil {
			zap.L().Error("列表缓存失效失败", zap.Error(err))
		}
		if err := s.cache.Delete(ctx, messageKey(id)); err != nil {
			zap.L().Error("消息缓存失效失败", zap.Uint("id", id), zap.Error(err))
		}
	})
	return nil
}

// CountUnread 统计当前用户在某会话中的未读消息数
func (s *messageService) CountUnread(chatID uint, username string) (int64, error) {
	user, err := s.repos.User.FindByUsername(username)
	if err != nil {
		return 0, err
	}
	return s.repos.Message.CountUnread(chatID, user.ID)
}

// ListChats 返回当前用户参与的所有会话
func (s *messageService) ListChats(username string) ([]respond.ChatRespond, error) {
	user, err := s.repos.User.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	chats, err := s.repos.Chat.FindByParticipantID(user.ID)
	if err != nil {
		return nil, err
	}

	rsp := make([]respond.ChatRespond, 0, len(chats))
	for i := range chats {
		rsp = append(rsp, respond.ChatRespond{
			Id:          chats[i].ID,
			Name:        chats[i].Name,
			IsGroupChat: chats[i].IsGroupChat,
		})
	}
	return rsp, nil
}

// ListChatMessages 返回某会话中某时间点之后的消息
// 历史查询不走缓存，直接回源
func (s *messageService) ListChatMessages(chatID uint, since time.Time) ([]respond.MessageRespond, error) {
	messages, err := s.repos.Message.FindByChatSince(chatID, since)
	if err != nil {
		return nil, err
	}

	rsp := make([]respond.MessageRespond, 0, len(messages))
	for i := range messages {
		readBy, err := s.repos.Message.FindReadBy(messages[i].ID)
		if err != nil {
			return nil, err
		}
		rsp = append(rsp, *toMessageRespond(&messages[i], readBy))
	}
	return rsp, nil
}

// SaveFromWire 实时路径的落库入口
// 发送者按用户名解析，解析失败视为落库失败
func (s *messageService) SaveFromWire(ctx context.Context, sender, content string) error {
	user, err := s.repos.User.FindByUsername(sender)
	if err != nil {
		return err
	}
	_, err = s.Save(request.CreateMessageRequest{
		ChatId:   s.ingestChatId,
		SenderId: user.ID,
		Content:  content,
	})
	return err
}

func messageKey(id uint) string {
	return constants.MESSAGE_KEY_PREFIX + strconv.FormatUint(uint64(id), 10)
}

func toMessageRespond(msg *model.Message, readBy []uint) *respond.MessageRespond {
	if readBy == nil {
		readBy = []uint{}
	}
	return &respond.MessageRespond{
		Id:       msg.ID,
		ChatId:   msg.ChatID,
		SenderId: msg.SenderID,
		Content:  msg.Content,
		SentAt:   msg.SentAt.Format(time.RFC3339),
		ReadBy:   readBy,
	}
}
