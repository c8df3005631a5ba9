package service

import (
	"MatchServer/apps/match/internal/repository"
	"MatchServer/consts"
)

// Event 一条待投递的下行事件。
// 状态机只负责产出事件列表，投递由 EventDispatcher 在事务提交后完成，
// “状态是否变了”与“是否通知到了”彻底解耦。
type Event struct {
	To      string // 目标用户 id
	Name    string // 下行事件名（consts.Event*）
	Payload any    // 事件载荷，直接 JSON 序列化
}

// NotificationPayload notification 事件载荷。
type NotificationPayload struct {
	Type string `json:"type"`
	From string `json:"from"`
}

// DeleteChatPayload deleteChat 事件载荷。
// 客户端按对端身份寻址会话，因此 id 是对方用户 id 而非会话 id。
type DeleteChatPayload struct {
	ID string `json:"id"`
}

// MessagePayload message 事件载荷。
type MessagePayload struct {
	ChatID  int64              `json:"chatId"`
	Message repository.Message `json:"message"`
}

// notifyEvent 构造发给 to 的 notification 事件。
func notifyEvent(to, notifyType, from string) Event {
	return Event{
		To:   to,
		Name: consts.EventNotification,
		Payload: NotificationPayload{
			Type: notifyType,
			From: from,
		},
	}
}

// chatEventsForPair 构造发给双方的同一会话级事件（newChat/message）。
func chatEventsForPair(userA, userB, name string, payload any) []Event {
	return []Event{
		{To: userA, Name: name, Payload: payload},
		{To: userB, Name: name, Payload: payload},
	}
}
