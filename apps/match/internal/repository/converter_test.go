package repository

import (
	"errors"
	"testing"
	"time"

	"MatchServer/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSentAtRoundTrip(t *testing.T) {
	sent := time.Date(2026, 8, 28, 9, 30, 15, 123456789, time.UTC)

	text := formatSentAt(sent)
	assert.Equal(t, "2026-08-28 09:30:15", text)

	msg, err := toDomainMessage(&model.Message{Id: 1, ChatId: 2, SenderId: "u1", Body: "hi", SentAt: text})
	require.NoError(t, err)

	// 秒以下精度在持久化时截断
	assert.Equal(t, sent.Truncate(time.Second), msg.SentAt)
	assert.Equal(t, time.UTC, msg.SentAt.Location())
}

func TestFormatSentAtNormalizesZone(t *testing.T) {
	zone := time.FixedZone("UTC+8", 8*3600)
	local := time.Date(2026, 8, 28, 17, 0, 0, 0, zone)

	assert.Equal(t, "2026-08-28 09:00:00", formatSentAt(local))
}

func TestToDomainMessageMalformed(t *testing.T) {
	tests := []struct {
		name   string
		sentAt string
	}{
		{"empty", ""},
		{"wrong_layout", "2026/08/28 09:30:15"},
		{"garbage", "not a time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := toDomainMessage(&model.Message{Id: 7, SentAt: tt.sentAt})
			require.ErrorIs(t, err, ErrDatabase)
		})
	}
}

func TestToDomainChat(t *testing.T) {
	row := &model.Chat{Id: 10, UserLow: "a", UserHigh: "b"}

	t.Run("nil_messages_empty_list", func(t *testing.T) {
		chat, err := toDomainChat(row, nil)
		require.NoError(t, err)
		assert.NotNil(t, chat.Messages)
		assert.Empty(t, chat.Messages)
		assert.Equal(t, "a", chat.UserOne)
		assert.Equal(t, "b", chat.UserTwo)
	})

	t.Run("malformed_message_fails_whole_chat", func(t *testing.T) {
		_, err := toDomainChat(row, []model.Message{{Id: 1, SentAt: "bad"}})
		require.ErrorIs(t, err, ErrDatabase)
	})
}

func TestToMatchStatusViewerFirst(t *testing.T) {
	row := &model.Connection{UserLow: "a", UserHigh: "b", Status: model.ConnectionMatched}

	got := toMatchStatus(row, "b")
	assert.Equal(t, MatchStatus{UserOne: "b", UserTwo: "a", Status: model.ConnectionMatched}, got)

	got = toMatchStatus(row, "a")
	assert.Equal(t, MatchStatus{UserOne: "a", UserTwo: "b", Status: model.ConnectionMatched}, got)
}

func TestWrapDBError(t *testing.T) {
	assert.NoError(t, WrapDBError(nil))
	assert.ErrorIs(t, WrapDBError(gorm.ErrRecordNotFound), ErrRecordNotFound)
	assert.ErrorIs(t, WrapDBError(gorm.ErrDuplicatedKey), ErrDuplicateKey)
	assert.ErrorIs(t, WrapDBError(errors.New("connection refused")), ErrDatabase)
}

func TestWrapDBErrorf(t *testing.T) {
	// 可判别错误保持原样，便于调用方 errors.Is 分支
	err := WrapDBErrorf(gorm.ErrDuplicatedKey, "create chat")
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.NotContains(t, err.Error(), "create chat")

	// 其余错误附加操作上下文
	err = WrapDBErrorf(errors.New("connection refused"), "create chat")
	require.ErrorIs(t, err, ErrDatabase)
	assert.Contains(t, err.Error(), "create chat")
}
