package service

import (
	"context"
	"sync"
	"testing"

	"MatchServer/consts"
	"MatchServer/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// notificationsOf 过滤出指定类型的 notification 事件。
func notificationsOf(events []Event, notifyType string) []Event {
	var out []Event
	for _, ev := range events {
		payload, ok := ev.Payload.(NotificationPayload)
		if ok && payload.Type == notifyType {
			out = append(out, ev)
		}
	}
	return out
}

// eventsNamed 过滤出指定事件名的事件。
func eventsNamed(events []Event, name string) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func TestFlipLikeValidation(t *testing.T) {
	svc, _ := newTestMatchService()
	ctx := context.Background()

	t.Run("empty_actor", func(t *testing.T) {
		_, _, err := svc.FlipLike(ctx, "", "u2")
		require.ErrorIs(t, err, ErrInvalidUser)
	})

	t.Run("empty_target", func(t *testing.T) {
		_, _, err := svc.FlipLike(ctx, "u1", "")
		require.ErrorIs(t, err, ErrInvalidUser)
	})

	t.Run("self_target", func(t *testing.T) {
		_, _, err := svc.FlipLike(ctx, "u1", "u1")
		require.ErrorIs(t, err, ErrSelfTarget)
	})
}

func TestFlipLikeFirstLike(t *testing.T) {
	svc, store := newTestMatchService()
	ctx := context.Background()

	liked, events, err := svc.FlipLike(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.True(t, liked)

	// 单向喜欢：只有一条发给对方的 LIKE 通知
	require.Len(t, events, 1)
	assert.Equal(t, "u2", events[0].To)
	assert.Equal(t, consts.EventNotification, events[0].Name)
	assert.Equal(t, NotificationPayload{Type: consts.NotifyLike, From: "u1"}, events[0].Payload)

	// 不产生配对与会话
	assert.Empty(t, store.conns)
	assert.Empty(t, store.chats)
}

func TestFlipLikeToggleIsInverse(t *testing.T) {
	svc, store := newTestMatchService()
	ctx := context.Background()

	liked, _, err := svc.FlipLike(ctx, "u1", "u2")
	require.NoError(t, err)
	require.True(t, liked)

	liked, events, err := svc.FlipLike(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.False(t, liked)

	// 无配对时的取消喜欢：只有一条发给对方的 UNLIKE 通知
	require.Len(t, events, 1)
	assert.Equal(t, "u2", events[0].To)
	assert.Equal(t, NotificationPayload{Type: consts.NotifyUnlike, From: "u1"}, events[0].Payload)

	// 存储回到初始状态
	assert.Empty(t, store.likes)
	assert.Empty(t, store.conns)
}

func TestFlipLikeMutualMatch(t *testing.T) {
	svc, store := newTestMatchService()
	ctx := context.Background()

	_, _, err := svc.FlipLike(ctx, "u2", "u1")
	require.NoError(t, err)

	liked, events, err := svc.FlipLike(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.True(t, liked)

	// MATCH 通知发给双方，from 都是对端
	matches := notificationsOf(events, consts.NotifyMatch)
	require.Len(t, matches, 2)
	byTo := map[string]NotificationPayload{}
	for _, ev := range matches {
		byTo[ev.To] = ev.Payload.(NotificationPayload)
	}
	assert.Equal(t, "u1", byTo["u2"].From)
	assert.Equal(t, "u2", byTo["u1"].From)

	// newChat 发给双方，载荷是同一个会话
	newChats := eventsNamed(events, consts.EventNewChat)
	require.Len(t, newChats, 2)
	assert.Equal(t, newChats[0].Payload, newChats[1].Payload)

	// 配对与会话落库
	assert.Equal(t, model.ConnectionMatched, store.conns[pairKey("u1", "u2")])
	require.Contains(t, store.chats, pairKey("u1", "u2"))
	assert.False(t, store.chats[pairKey("u1", "u2")].deleted)
}

func TestFlipLikeUnmatch(t *testing.T) {
	svc, store := newTestMatchService()
	ctx := context.Background()

	_, _, err := svc.FlipLike(ctx, "u2", "u1")
	require.NoError(t, err)
	_, _, err = svc.FlipLike(ctx, "u1", "u2")
	require.NoError(t, err)

	liked, events, err := svc.FlipLike(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.False(t, liked)

	// UNMATCH 通知发给双方
	unmatches := notificationsOf(events, consts.NotifyUnmatch)
	require.Len(t, unmatches, 2)

	// deleteChat 发给双方，载荷是各自的对端 id
	deletes := eventsNamed(events, consts.EventDeleteChat)
	require.Len(t, deletes, 2)
	byTo := map[string]DeleteChatPayload{}
	for _, ev := range deletes {
		byTo[ev.To] = ev.Payload.(DeleteChatPayload)
	}
	assert.Equal(t, DeleteChatPayload{ID: "u1"}, byTo["u2"])
	assert.Equal(t, DeleteChatPayload{ID: "u2"}, byTo["u1"])

	// 配对翻转为 UNMATCHED，会话软删除，对方的喜欢边保留
	assert.Equal(t, model.ConnectionUnmatched, store.conns[pairKey("u1", "u2")])
	assert.True(t, store.chats[pairKey("u1", "u2")].deleted)
	require.Len(t, store.likes, 1)
	assert.Equal(t, "u1", store.likes[0].liker)
}

func TestFlipLikeRematchRestoresChat(t *testing.T) {
	svc, store := newTestMatchService()
	ctx := context.Background()

	// 配对并留下一条历史消息
	_, _, err := svc.FlipLike(ctx, "u2", "u1")
	require.NoError(t, err)
	_, _, err = svc.FlipLike(ctx, "u1", "u2")
	require.NoError(t, err)

	chatSvc := NewChatService(&fakeChatRepo{store: store})
	room := store.chats[pairKey("u1", "u2")]
	_, _, err = chatSvc.SendMessage(ctx, "u1", room.id, "hello", "u2")
	require.NoError(t, err)

	// 解除配对后再次互相喜欢
	_, _, err = svc.FlipLike(ctx, "u2", "u1")
	require.NoError(t, err)
	require.True(t, store.chats[pairKey("u1", "u2")].deleted)

	_, events, err := svc.FlipLike(ctx, "u2", "u1")
	require.NoError(t, err)

	// 恢复的是同一个会话，历史消息保留
	restored := store.chats[pairKey("u1", "u2")]
	assert.False(t, restored.deleted)
	assert.Equal(t, room.id, restored.id)
	require.Len(t, restored.msgs, 1)
	assert.Equal(t, "hello", restored.msgs[0].Body)

	newChats := eventsNamed(events, consts.EventNewChat)
	require.Len(t, newChats, 2)
}

// TestFlipLikeConcurrentMutualFirstLikes 验证丢失更新防护：
// 两个方向的首次喜欢并发到达时，必须恰好产生一次配对。
func TestFlipLikeConcurrentMutualFirstLikes(t *testing.T) {
	svc, store := newTestMatchService()
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([][]Event, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, events, err := svc.FlipLike(ctx, "u1", "u2")
		assert.NoError(t, err)
		results[0] = events
	}()
	go func() {
		defer wg.Done()
		_, events, err := svc.FlipLike(ctx, "u2", "u1")
		assert.NoError(t, err)
		results[1] = events
	}()
	wg.Wait()

	// 恰好一次 flip 触发配对，另一次只是单向喜欢
	matchFlips := 0
	for _, events := range results {
		if len(notificationsOf(events, consts.NotifyMatch)) > 0 {
			matchFlips++
		}
	}
	assert.Equal(t, 1, matchFlips)

	assert.Equal(t, model.ConnectionMatched, store.conns[pairKey("u1", "u2")])
	assert.Len(t, store.chats, 1)
	assert.Len(t, store.likes, 2)
}

func TestLikesAndLikedByAreInverse(t *testing.T) {
	svc, _ := newTestMatchService()
	ctx := context.Background()

	_, _, err := svc.FlipLike(ctx, "u1", "u2")
	require.NoError(t, err)

	likes, err := svc.LikesBy(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, likes)

	likedBy, err := svc.LikedBy(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, likedBy)

	likedBy, err = svc.LikedBy(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, likedBy)
}

func TestMatchStatusAndMatchesFor(t *testing.T) {
	svc, _ := newTestMatchService()
	ctx := context.Background()

	_, _, err := svc.FlipLike(ctx, "u1", "u2")
	require.NoError(t, err)
	_, _, err = svc.FlipLike(ctx, "u2", "u1")
	require.NoError(t, err)

	t.Run("status_viewer_first", func(t *testing.T) {
		status, err := svc.MatchStatus(ctx, "u2", "u1")
		require.NoError(t, err)
		require.NotNil(t, status)
		assert.Equal(t, "u2", status.UserOne)
		assert.Equal(t, "u1", status.UserTwo)
		assert.Equal(t, model.ConnectionMatched, status.Status)
	})

	t.Run("matches_for", func(t *testing.T) {
		matches, err := svc.MatchesFor(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "u1", matches[0].UserOne)
		assert.Equal(t, "u2", matches[0].UserTwo)
	})

	t.Run("no_connection", func(t *testing.T) {
		status, err := svc.MatchStatus(ctx, "u1", "u9")
		require.NoError(t, err)
		assert.Nil(t, status)
	})
}

func TestVisit(t *testing.T) {
	svc, _ := newTestMatchService()
	ctx := context.Background()

	t.Run("self_target", func(t *testing.T) {
		_, err := svc.Visit(ctx, "u1", "u1")
		require.ErrorIs(t, err, ErrSelfTarget)
	})

	t.Run("notify_target", func(t *testing.T) {
		events, err := svc.Visit(ctx, "u1", "u2")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "u2", events[0].To)
		assert.Equal(t, NotificationPayload{Type: consts.NotifyVisit, From: "u1"}, events[0].Payload)
	})
}
