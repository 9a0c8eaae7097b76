package respond

// MessageRespond 消息记录的响应形状
// ReadBy 为已读用户 id 列表，来源于 message_read 索引表
type MessageRespond struct {
	Id       uint   `json:"id"`
	ChatId   uint   `json:"chatId"`
	SenderId uint   `json:"senderId"`
	Content  string `json:"content"`
	SentAt   string `json:"sentAt"`
	ReadBy   []uint `json:"readBy"`
}

// ChatRespond 会话信息的响应形状
type ChatRespond struct {
	Id          uint   `json:"id"`
	Name        string `json:"name"`
	IsGroupChat bool   `json:"isGroupChat"`
}
