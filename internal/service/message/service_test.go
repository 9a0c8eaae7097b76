package message

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"chat_relay_server/internal/dao/mysql/repository"
	"chat_relay_server/internal/dto/request"
	"chat_relay_server/internal/model"
	"chat_relay_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeMessageRepo 内存版消息仓库
type fakeMessageRepo struct {
	nextID   uint
	messages map[uint]*model.Message
	readBy   map[uint]map[uint]bool
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		nextID:   1,
		messages: make(map[uint]*model.Message),
		readBy:   make(map[uint]map[uint]bool),
	}
}

func (r *fakeMessageRepo) Create(message *model.Message) error {
	message.ID = r.nextID
	r.nextID++
	clone := *message
	r.messages[message.ID] = &clone
	return nil
}

func (r *fakeMessageRepo) FindAll() ([]model.Message, error) {
	result := make([]model.Message, 0, len(r.messages))
	for _, msg := range r.messages {
		result = append(result, *msg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SentAt.Before(result[j].SentAt) })
	return result, nil
}

func (r *fakeMessageRepo) FindByID(id uint) (*model.Message, error) {
	msg, ok := r.messages[id]
	if !ok {
		return nil, errorx.Newf(errorx.CodeNotFound, "消息 %d 不存在", id)
	}
	clone := *msg
	return &clone, nil
}

func (r *fakeMessageRepo) Delete(id uint) error {
	if _, ok := r.messages[id]; !ok {
		return errorx.Newf(errorx.CodeNotFound, "消息 %d 不存在", id)
	}
	delete(r.messages, id)
	return nil
}

func (r *fakeMessageRepo) MarkRead(messageID, userID uint) error {
	if r.readBy[messageID] == nil {
		r.readBy[messageID] = make(map[uint]bool)
	}
	r.readBy[messageID][userID] = true
	return nil
}

func (r *fakeMessageRepo) FindReadBy(messageID uint) ([]uint, error) {
	ids := make([]uint, 0, len(r.readBy[messageID]))
	for id := range r.readBy[messageID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeMessageRepo) CountUnread(chatID, userID uint) (int64, error) {
	var count int64
	for id, msg := range r.messages {
		if msg.ChatID == chatID && !r.readBy[id][userID] {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) FindByChatSince(chatID uint, since time.Time) ([]model.Message, error) {
	all, _ := r.FindAll()
	result := make([]model.Message, 0)
	for _, msg := range all {
		if msg.ChatID == chatID && msg.SentAt.After(since) {
			result = append(result, msg)
		}
	}
	return result, nil
}

// fakeUserRepo 内存版用户仓库
type fakeUserRepo struct {
	users map[string]*model.User
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.users[user.Username] = user
	return nil
}

func (r *fakeUserRepo) FindByUsername(username string) (*model.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, errorx.Newf(errorx.CodeNotFound, "用户 %s 不存在", username)
	}
	return user, nil
}

// fakeCache 内存缓存，SubmitTask 同步执行方便断言
type fakeCache struct {
	data map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	return c.data[key], nil
}

func (c *fakeCache) GetOrError(_ context.Context, key string) (string, error) {
	value, ok := c.data[key]
	if !ok {
		return "", errorx.Newf(errorx.CodeNotFound, "key %s 不存在", key)
	}
	return value, nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *fakeCache) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
		}
	}
	return nil
}

func (c *fakeCache) SubmitTask(action func()) {
	action()
}

func newTestService() (*messageService, *fakeMessageRepo, *fakeCache) {
	msgRepo := newFakeMessageRepo()
	userRepo := &fakeUserRepo{users: map[string]*model.User{
		"alice": {Model: withID(1), Username: "alice"},
		"bob":   {Model: withID(2), Username: "bob"},
	}}
	repos := &repository.Repositories{
		User:    userRepo,
		Message: msgRepo,
	}
	cache := newFakeCache()
	return NewMessageService(repos, cache, 1), msgRepo, cache
}

func withID(id uint) (m gorm.Model) {
	m.ID = id
	return m
}

func TestSaveThenFindAllContainsMessage(t *testing.T) {
	svc, _, _ := newTestService()

	saved, err := svc.Save(request.CreateMessageRequest{ChatId: 1, SenderId: 1, Content: "hello"})
	require.NoError(t, err)
	assert.NotZero(t, saved.Id)
	assert.Equal(t, "hello", saved.Content)

	// 紧随其后的列表查询必须包含新消息
	all, err := svc.FindAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, saved.Id, all[0].Id)
}

func TestFindAllPopulatesAndReadsCache(t *testing.T) {
	svc, repo, cache := newTestService()

	_, err := svc.Save(request.CreateMessageRequest{ChatId: 1, SenderId: 1, Content: "hello"})
	require.NoError(t, err)

	all, err := svc.FindAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotEmpty(t, cache.data, "FindAll should populate the cache")

	// 清空底层存储后仍能命中缓存
	repo.messages = map[uint]*model.Message{}
	cached, err := svc.FindAll()
	require.NoError(t, err)
	assert.Len(t, cached, 1, "second FindAll should be served from cache")
}

func TestDeleteThenFindByIDReturnsNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	saved, err := svc.Save(request.CreateMessageRequest{ChatId: 1, SenderId: 1, Content: "hello"})
	require.NoError(t, err)

	// 先读一次让单条缓存生效
	_, err = svc.FindByID(saved.Id)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(saved.Id))

	_, err = svc.FindByID(saved.Id)
	require.Error(t, err)
	assert.True(t, errorx.IsNotFound(err), "expected not-found error, got %v", err)
}

func TestDeleteEvictsAllSingleMessageEntries(t *testing.T) {
	svc, _, cache := newTestService()

	first, err := svc.Save(request.CreateMessageRequest{ChatId: 1, SenderId: 1, Content: "one"})
	require.NoError(t, err)
	second, err := svc.Save(request.CreateMessageRequest{ChatId: 1, SenderId: 1, Content: "two"})
	require.NoError(t, err)

	// 两条单条缓存都生效
	_, err = svc.FindByID(first.Id)
	require.NoError(t, err)
	_, err = svc.FindByID(second.Id)
	require.NoError(t, err)
	require.Contains(t, cache.data, messageKey(first.Id))
	require.Contains(t, cache.data, messageKey(second.Id))

	// 删除其中一条要清掉所有单条缓存，不只是被删的那条
	require.NoError(t, svc.Delete(first.Id))
	assert.NotContains(t, cache.data, messageKey(first.Id))
	assert.NotContains(t, cache.data, messageKey(second.Id))

	// 另一条消息仍可从存储回源
	got, err := svc.FindByID(second.Id)
	require.NoError(t, err)
	assert.Equal(t, "two", got.Content)
}

func TestDeleteNonExistentHasNoSideEffects(t *testing.T) {
	svc, _, cache := newTestService()

	_, err := svc.Save(request.CreateMessageRequest{ChatId: 1, SenderId: 1, Content: "keep me"})
	require.NoError(t, err)
	_, err = svc.FindAll()
	require.NoError(t, err)
	cacheBefore := len(cache.data)

	err = svc.Delete(999)
	require.Error(t, err)
	assert.True(t, errorx.IsNotFound(err))
	// 删除不存在的消息不应动缓存
	assert.Equal(t, cacheBefore, len(cache.data))
}

func TestMarkReadShowsUpInReadBy(t *testing.T) {
	svc, _, _ := newTestService()

	saved, err := svc.Save(request.CreateMessageRequest{ChatId: 1, SenderId: 1, Content: "hello"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(saved.Id, "bob"))
	// 幂等
	require.NoError(t, svc.MarkRead(saved.Id, "bob"))

	got, err := svc.FindByID(saved.Id)
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, got.ReadBy)
}

func TestMarkReadUnknownMessage(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.MarkRead(42, "bob")
	require.Error(t, err)
	assert.True(t, errorx.IsNotFound(err))
}

func TestCountUnread(t *testing.T) {
	svc, _, _ := newTestService()

	first, err := svc.Save(request.CreateMessageRequest{ChatId: 1, SenderId: 1, Content: "one"})
	require.NoError(t, err)
	_, err = svc.Save(request.CreateMessageRequest{ChatId: 1, SenderId: 1, Content: "two"})
	require.NoError(t, err)

	count, err := svc.CountUnread(1, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, svc.MarkRead(first.Id, "bob"))
	count, err = svc.CountUnread(1, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestListChatMessagesFiltersBySince(t *testing.T) {
	svc, repo, _ := newTestService()

	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	old := &model.Message{ChatID: 1, SenderID: 1, Content: "old", SentAt: base}
	recent := &model.Message{ChatID: 1, SenderID: 1, Content: "recent", SentAt: base.Add(time.Hour)}
	other := &model.Message{ChatID: 2, SenderID: 1, Content: "other chat", SentAt: base.Add(2 * time.Hour)}
	for _, msg := range []*model.Message{old, recent, other} {
		require.NoError(t, repo.Create(msg))
	}

	// since 零值返回该会话全部消息，按时间升序
	all, err := svc.ListChatMessages(1, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "old", all[0].Content)
	assert.Equal(t, "recent", all[1].Content)

	// since 之后的消息才返回，其他会话的消息不混入
	filtered, err := svc.ListChatMessages(1, base.Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "recent", filtered[0].Content)
}

func TestSaveFromWireResolvesSender(t *testing.T) {
	svc, repo, _ := newTestService()

	require.NoError(t, svc.SaveFromWire(context.Background(), "alice", "from the wire"))

	all, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, uint(1), all[0].SenderID)
	assert.Equal(t, uint(1), all[0].ChatID)
	assert.Equal(t, "from the wire", all[0].Content)
}

func TestSaveFromWireUnknownSender(t *testing.T) {
	svc, repo, _ := newTestService()

	err := svc.SaveFromWire(context.Background(), "mallory", "whatever")
	require.Error(t, err)
	assert.True(t, errorx.IsNotFound(err))
	all, _ := repo.FindAll()
	assert.Empty(t, all)
}
