// Package request 定义客户端请求的 DTO
package request

// ChatMessageRequest WebSocket 线上传输的聊天消息
// 客户端到服务端、共享频道、服务端到客户端三段使用同一个 JSON 形状
// Timestamp 由转发路径在服务端赋值，客户端传入的值会被丢弃
type ChatMessageRequest struct {
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}
