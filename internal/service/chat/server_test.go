package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"chat_relay_server/internal/dto/request"
	"chat_relay_server/pkg/constants"
)

func newTestConn(username string) *UserConn {
	return &UserConn{
		ConnId:   username + "-conn",
		Username: username,
		SendBack: make(chan []byte, constants.CHANNEL_SIZE),
	}
}

func waitForClient(t *testing.T, s *ChatServer, connId string, present bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		_, ok := s.Clients.Load(connId)
		if ok == present {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client %s presence never became %v", connId, present)
}

func TestHubBroadcastsToAllSessions(t *testing.T) {
	hub := NewChatServer()
	go hub.Start()
	defer hub.Close()

	alice := newTestConn("alice")
	bob := newTestConn("bob")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)
	waitForClient(t, hub, alice.ConnId, true)
	waitForClient(t, hub, bob.ConnId, true)

	payload, _ := json.Marshal(request.ChatMessageRequest{Sender: "alice", Content: "hi", Timestamp: "12:00:00"})
	hub.HandleBusPayload(payload)

	for _, client := range []*UserConn{alice, bob} {
		select {
		case got := <-client.SendBack:
			if string(got) != string(payload) {
				t.Errorf("%s received altered payload: %s", client.Username, got)
			}
		case <-time.After(time.Second):
			t.Errorf("%s did not receive the broadcast", client.Username)
		}
	}
}

func TestHubPreservesDeliveryOrder(t *testing.T) {
	hub := NewChatServer()
	go hub.Start()
	defer hub.Close()

	alice := newTestConn("alice")
	hub.RegisterClient(alice)
	waitForClient(t, hub, alice.ConnId, true)

	contents := []string{"first", "second", "third"}
	for _, content := range contents {
		payload, _ := json.Marshal(request.ChatMessageRequest{Sender: "a", Content: content})
		hub.HandleBusPayload(payload)
	}

	for _, want := range contents {
		select {
		case got := <-alice.SendBack:
			var msg request.ChatMessageRequest
			if err := json.Unmarshal(got, &msg); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if msg.Content != want {
				t.Errorf("out of order: expected %q, got %q", want, msg.Content)
			}
		case <-time.After(time.Second):
			t.Fatalf("message %q never delivered", want)
		}
	}
}

func TestHubDropsMalformedPayload(t *testing.T) {
	hub := NewChatServer()
	go hub.Start()
	defer hub.Close()

	alice := newTestConn("alice")
	hub.RegisterClient(alice)
	waitForClient(t, hub, alice.ConnId, true)

	// 无法解码的投递直接丢弃，不到达任何会话
	hub.HandleBusPayload([]byte("{not json"))

	select {
	case got := <-alice.SendBack:
		t.Errorf("malformed payload should be dropped, got %s", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewChatServer()
	go hub.Start()
	defer hub.Close()

	alice := newTestConn("alice")
	hub.RegisterClient(alice)
	waitForClient(t, hub, alice.ConnId, true)

	hub.UnregisterClient(alice)
	waitForClient(t, hub, alice.ConnId, false)

	payload, _ := json.Marshal(request.ChatMessageRequest{Sender: "a", Content: "after logout"})
	hub.HandleBusPayload(payload)

	// 注销后 SendBack 被关闭且不再有新投递
	select {
	case got, ok := <-alice.SendBack:
		if ok {
			t.Errorf("unregistered session received payload: %s", got)
		}
	case <-time.After(time.Second):
		t.Error("SendBack should be closed after unregister")
	}
}

func TestBroadcastDuringDisconnectDoesNotPanic(t *testing.T) {
	// 广播协程和注销分支并发触碰同一条会话时，
	// 投递绝不能写已关闭的发送缓冲
	hub := NewChatServer()
	go hub.Start()
	defer hub.Close()

	payload, _ := json.Marshal(request.ChatMessageRequest{Sender: "a", Content: "x"})

	stop := make(chan struct{})
	panicked := make(chan any, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				panicked <- r
			}
		}()
		for {
			select {
			case <-stop:
				return
			default:
				hub.BroadcastLocal(payload)
			}
		}
	}()

	deadline := time.Now().Add(500 * time.Millisecond)
	for i := 0; time.Now().Before(deadline); i++ {
		conns := make([]*UserConn, 8)
		for j := range conns {
			conns[j] = newTestConn(fmt.Sprintf("u%d-%d", i, j))
			hub.RegisterClient(conns[j])
		}
		for _, conn := range conns {
			hub.UnregisterClient(conn)
		}
		select {
		case r := <-panicked:
			t.Fatalf("broadcast panicked during disconnect: %v", r)
		default:
		}
	}
	close(stop)

	select {
	case r := <-panicked:
		t.Fatalf("broadcast panicked during disconnect: %v", r)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTrySendAfterCloseIsRejected(t *testing.T) {
	conn := newTestConn("alice")
	if !conn.trySend([]byte("before")) {
		t.Fatal("send to open session should succeed")
	}
	conn.closeSend()
	// 重复关闭无害
	conn.closeSend()
	if conn.trySend([]byte("after")) {
		t.Error("send to closed session should be rejected")
	}
}

func TestBusLoopbackReachesLocalSessions(t *testing.T) {
	// 发布者所在实例也通过订阅路径收到自己的消息
	hub := NewChatServer()
	go hub.Start()
	defer hub.Close()

	bus := newFakeBus()
	bus.Subscribe(constants.CHAT_CHANNEL, hub.HandleBusPayload)
	d := NewDistributor(bus, nil)

	alice := newTestConn("alice")
	hub.RegisterClient(alice)
	waitForClient(t, hub, alice.ConnId, true)

	if err := d.Dispatch(context.Background(), &request.ChatMessageRequest{Sender: "alice", Content: "loopback"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	select {
	case got := <-alice.SendBack:
		var msg request.ChatMessageRequest
		if err := json.Unmarshal(got, &msg); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if msg.Content != "loopback" {
			t.Errorf("expected loopback, got %q", msg.Content)
		}
		if msg.Timestamp == "" {
			t.Error("timestamp missing on delivered payload")
		}
	case <-time.After(time.Second):
		t.Fatal("publisher's own session did not receive the message")
	}
}
