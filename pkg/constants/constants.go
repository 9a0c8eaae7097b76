package constants

import "time"

const (
	// CHANNEL_SIZE 连接收发通道的缓冲大小
	CHANNEL_SIZE = 100

	// CHAT_CHANNEL 跨实例共享的发布/订阅频道名
	// 发布端和订阅端必须使用同一个名字
	CHAT_CHANNEL = "chat"

	// CACHE_TIMEOUT 缓存过期时间（分钟），兜底跨实例的缓存一致性
	CACHE_TIMEOUT = 10 * time.Minute

	// TIMESTAMP_LAYOUT 聊天消息展示时间格式
	TIMESTAMP_LAYOUT = "15:04:05"

	// ALL_MESSAGES_KEY 全量消息列表的缓存键
	ALL_MESSAGES_KEY = "messages_all"

	// MESSAGE_KEY_PREFIX 单条消息缓存键前缀，后接消息 id
	MESSAGE_KEY_PREFIX = "message_"
)
