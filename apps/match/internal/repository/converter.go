package repository

import (
	"fmt"
	"time"

	"MatchServer/model"
)

// ==================== 存储行 -> 领域对象 ====================

// toDomainChat 将会话行转换为领域对象，messages 为 nil 时得到空列表。
func toDomainChat(row *model.Chat, messages []model.Message) (*Chat, error) {
	chat := &Chat{
		ID:       row.Id,
		UserOne:  row.UserLow,
		UserTwo:  row.UserHigh,
		Messages: make([]Message, 0, len(messages)),
	}
	for i := range messages {
		msg, err := toDomainMessage(&messages[i])
		if err != nil {
			return nil, err
		}
		chat.Messages = append(chat.Messages, *msg)
	}
	return chat, nil
}

// toDomainMessage 将消息行转换为领域对象。
// sent_at 文本必须能按固定格式无损解析，解析失败说明存储被破坏，直接报错。
func toDomainMessage(row *model.Message) (*Message, error) {
	sentAt, err := time.ParseInLocation(model.SentAtLayout, row.SentAt, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed sent_at %q on message %d", ErrDatabase, row.SentAt, row.Id)
	}
	return &Message{
		ID:     row.Id,
		ChatID: row.ChatId,
		Sender: row.SenderId,
		Body:   row.Body,
		SentAt: sentAt,
	}, nil
}

// formatSentAt 生成消息时间的持久化文本（UTC，秒精度）。
func formatSentAt(t time.Time) string {
	return t.UTC().Format(model.SentAtLayout)
}

// toMatchStatus 将连接行转换为以 viewer 视角呈现的配对状态。
func toMatchStatus(row *model.Connection, viewer string) MatchStatus {
	other := model.PairOther(row.UserLow, row.UserHigh, viewer)
	return MatchStatus{
		UserOne: viewer,
		UserTwo: other,
		Status:  row.Status,
	}
}
