package request

// CreateMessageRequest 通过 REST 创建消息的请求
// sentAt 由服务端赋值，不接受客户端传入
type CreateMessageRequest struct {
	ChatId   uint   `json:"chatId" binding:"required"`
	SenderId uint   `json:"senderId" binding:"required"`
	Content  string `json:"content" binding:"required"`
}
