package service

import (
	"context"
	"errors"

	"MatchServer/apps/match/internal/repository"
	"MatchServer/consts"
	"MatchServer/model"
)

// chatServiceImpl 会话服务实现
type chatServiceImpl struct {
	chat repository.IChatRepository
}

// NewChatService 创建会话服务实例
func NewChatService(chat repository.IChatRepository) IChatService {
	return &chatServiceImpl{chat: chat}
}

// ChatsForUser 返回用户的全部活跃会话
func (s *chatServiceImpl) ChatsForUser(ctx context.Context, userID string) ([]repository.Chat, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	return s.chat.ChatsForUser(ctx, userID)
}

// CreateChat 手动创建会话。
// 该对已有活跃会话时返回 ErrDuplicateChat（由存储唯一键冲突推导），
// 调用方可据此做幂等处理而不误吞其他存储错误。
func (s *chatServiceImpl) CreateChat(ctx context.Context, userID, partnerID string) (*repository.Chat, []Event, error) {
	if err := validatePair(userID, partnerID); err != nil {
		return nil, nil, err
	}

	room, err := s.chat.CreateChat(ctx, userID, partnerID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, nil, ErrDuplicateChat
		}
		return nil, nil, err
	}

	events := chatEventsForPair(userID, partnerID, consts.EventNewChat, *room)
	return room, events, nil
}

// SendMessage 持久化消息并产出投递事件。
// 发送方必须是会话成员；message 事件只发给会话双方，
// MESSAGE 通知发给 to 指定的对端。
func (s *chatServiceImpl) SendMessage(ctx context.Context, senderID string, chatID int64, body, to string) (*repository.Message, []Event, error) {
	if senderID == "" || body == "" || chatID == 0 {
		return nil, nil, ErrInvalidUser
	}

	room, err := s.chat.ChatByID(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	if room == nil {
		return nil, nil, ErrChatNotFound
	}
	if model.PairOther(room.UserOne, room.UserTwo, senderID) == "" {
		return nil, nil, ErrNotChatMember
	}

	msg, err := s.chat.SaveMessage(ctx, chatID, senderID, body)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, nil, ErrChatNotFound
		}
		return nil, nil, err
	}

	events := make([]Event, 0, 3)
	if to != "" {
		events = append(events, notifyEvent(to, consts.NotifyMessage, senderID))
	}
	events = append(events, chatEventsForPair(
		room.UserOne, room.UserTwo,
		consts.EventMessage,
		MessagePayload{ChatID: chatID, Message: *msg},
	)...)

	return msg, events, nil
}
