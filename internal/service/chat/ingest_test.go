package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"chat_relay_server/internal/dto/request"
	"chat_relay_server/pkg/constants"
	"chat_relay_server/pkg/errorx"
)

// fakeBus 进程内总线，发布即同步回投给已订阅的处理函数
// 模拟共享频道的至多一次语义：发布时未订阅的处理函数收不到消息
type fakeBus struct {
	handlers   map[string]HandlerFunc
	published  [][]byte
	publishErr error
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[string]HandlerFunc)}
}

func (b *fakeBus) Publish(_ context.Context, channel string, payload []byte) error {
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, payload)
	if handler, ok := b.handlers[channel]; ok {
		handler(payload)
	}
	return nil
}

func (b *fakeBus) Subscribe(channel string, handler HandlerFunc) {
	b.handlers[channel] = handler
}

func (b *fakeBus) Start() error { return nil }
func (b *fakeBus) Close() error { return nil }

// fakeSaver 记录落库调用，可注入失败
type fakeSaver struct {
	calls   int
	lastMsg string
	err     error
}

func (s *fakeSaver) SaveFromWire(_ context.Context, _, content string) error {
	s.calls++
	s.lastMsg = content
	return s.err
}

func TestDispatchAssignsServerTimestamp(t *testing.T) {
	bus := newFakeBus()
	d := NewDistributor(bus, nil)

	// 客户端自带的时间戳必须被覆盖
	msg := &request.ChatMessageRequest{Sender: "alice", Content: "hi", Timestamp: "23:59:59"}
	if err := d.Dispatch(context.Background(), msg); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	if msg.Timestamp == "23:59:59" || msg.Timestamp == "" {
		t.Errorf("client timestamp should be replaced, got %q", msg.Timestamp)
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected 1 published payload, got %d", len(bus.published))
	}
	var onWire request.ChatMessageRequest
	if err := json.Unmarshal(bus.published[0], &onWire); err != nil {
		t.Fatalf("published payload is not valid JSON: %v", err)
	}
	if onWire.Sender != "alice" || onWire.Content != "hi" {
		t.Errorf("payload fields lost: %+v", onWire)
	}
	if onWire.Timestamp != msg.Timestamp {
		t.Errorf("published timestamp %q differs from assigned %q", onWire.Timestamp, msg.Timestamp)
	}
}

func TestDispatchSurfacesPublishFailure(t *testing.T) {
	bus := newFakeBus()
	bus.publishErr = errors.New("connection refused")
	saver := &fakeSaver{}
	d := NewDistributor(bus, saver)

	err := d.Dispatch(context.Background(), &request.ChatMessageRequest{Sender: "alice", Content: "hi"})
	if err == nil {
		t.Fatal("expected error when publish fails")
	}
	if errorx.GetCode(err) != errorx.CodePublishError {
		t.Errorf("expected CodePublishError, got code %d", errorx.GetCode(err))
	}
	// 发布失败时消息不落库
	if saver.calls != 0 {
		t.Errorf("saver should not be called on publish failure, got %d calls", saver.calls)
	}
}

func TestDispatchPersistFailureDoesNotBlock(t *testing.T) {
	bus := newFakeBus()
	saver := &fakeSaver{err: errors.New("db down")}
	d := NewDistributor(bus, saver)

	// 落库失败只记日志，转发本身成功
	if err := d.Dispatch(context.Background(), &request.ChatMessageRequest{Sender: "alice", Content: "hi"}); err != nil {
		t.Fatalf("Dispatch should succeed despite persist failure: %v", err)
	}
	if saver.calls != 1 {
		t.Errorf("expected 1 saver call, got %d", saver.calls)
	}
	if len(bus.published) != 1 {
		t.Errorf("expected 1 published payload, got %d", len(bus.published))
	}
}

func TestDispatchWithoutSaver(t *testing.T) {
	bus := newFakeBus()
	d := NewDistributor(bus, nil)

	if err := d.Dispatch(context.Background(), &request.ChatMessageRequest{Sender: "alice", Content: "hi"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
}

func TestLateSubscriberGetsNoReplay(t *testing.T) {
	bus := newFakeBus()
	d := NewDistributor(bus, nil)

	// 订阅之前的发布不回放
	if err := d.Dispatch(context.Background(), &request.ChatMessageRequest{Sender: "alice", Content: "early"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	var received [][]byte
	bus.Subscribe(constants.CHAT_CHANNEL, func(payload []byte) {
		received = append(received, payload)
	})

	if err := d.Dispatch(context.Background(), &request.ChatMessageRequest{Sender: "alice", Content: "late"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	if len(received) != 1 {
		t.Fatalf("late subscriber should only see messages published after subscribing, got %d", len(received))
	}
	var msg request.ChatMessageRequest
	if err := json.Unmarshal(received[0], &msg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if msg.Content != "late" {
		t.Errorf("expected content late, got %q", msg.Content)
	}
}
