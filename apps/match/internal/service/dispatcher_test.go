package service

import (
	"context"
	"testing"
	"time"

	"MatchServer/consts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversInOrder(t *testing.T) {
	sender := &fakeSender{}
	d := NewEventDispatcher(sender)

	events := []Event{
		notifyEvent("u2", consts.NotifyMatch, "u1"),
		notifyEvent("u1", consts.NotifyMatch, "u2"),
		{To: "u1", Name: consts.EventNewChat, Payload: "chat"},
	}
	d.DispatchAsync(context.Background(), events)

	require.Eventually(t, func() bool {
		return len(sender.snapshot()) == len(events)
	}, 2*time.Second, 10*time.Millisecond)

	// 同一批事件保持产出顺序
	sent := sender.snapshot()
	for i, ev := range events {
		assert.Equal(t, ev.To, sent[i].To)
		assert.Equal(t, ev.Name, sent[i].Name)
		assert.Equal(t, ev.Payload, sent[i].Payload)
	}
}

func TestDispatcherEmptyBatch(t *testing.T) {
	sender := &fakeSender{}
	d := NewEventDispatcher(sender)

	d.DispatchAsync(context.Background(), nil)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, sender.snapshot())
}

func TestDispatcherOutlivesCaller(t *testing.T) {
	sender := &fakeSender{}
	d := NewEventDispatcher(sender)

	// 调用方 ctx 立即取消，投递不受影响
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.DispatchAsync(ctx, []Event{notifyEvent("u2", consts.NotifyLike, "u1")})

	require.Eventually(t, func() bool {
		return len(sender.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
