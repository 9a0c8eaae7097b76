// Package metrics 提供聊天系统的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// MessagesSent 经由本实例转发路径发出的消息总数
	MessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_sent_total",
		Help: "Total number of chat messages ingested and published",
	})
	// BusDeliveries 从共享频道收到并本地广播的消息总数
	BusDeliveries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_bus_deliveries_total",
		Help: "Total number of payloads delivered from the shared channel",
	})
	// MalformedPayloads 订阅侧丢弃的无法解码的消息总数
	MalformedPayloads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_malformed_payloads_total",
		Help: "Total number of undecodable payloads dropped by the subscriber",
	})
	// ConnectedSessions 当前在线的 WebSocket 会话数
	ConnectedSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_sessions",
		Help: "Current number of connected websocket sessions",
	})
	// PublishFailures 共享频道发布失败次数
	PublishFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_publish_failures_total",
		Help: "Total number of failed publishes to the shared channel",
	})
)

func init() {
	prometheus.MustRegister(MessagesSent, BusDeliveries, MalformedPayloads, ConnectedSessions, PublishFailures)
}
