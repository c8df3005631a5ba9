package service

import (
	"context"

	"MatchServer/apps/match/internal/repository"
)

// IMatchService 配对状态机与关系查询。
type IMatchService interface {
	// FlipLike 翻转 actor 对 target 的喜欢边，驱动完整状态迁移。
	// 返回翻转后的喜欢状态与一组待投递的提交后事件；
	// 事件不在事务内投递，调用方交给 EventDispatcher 即发即弃。
	FlipLike(ctx context.Context, actorID, targetID string) (liked bool, events []Event, err error)
	// MatchStatus 查询两用户的配对状态，viewer 固定为返回值的 UserOne。
	MatchStatus(ctx context.Context, viewerID, otherID string) (*repository.MatchStatus, error)
	// MatchesFor 返回用户的全部 MATCHED 配对。
	MatchesFor(ctx context.Context, userID string) ([]repository.MatchStatus, error)
	// LikesBy 返回用户喜欢的全部用户。
	LikesBy(ctx context.Context, userID string) ([]string, error)
	// LikedBy 返回喜欢该用户的全部用户。
	LikedBy(ctx context.Context, userID string) ([]string, error)
	// Visit 记录 visitor 访问 target 主页，产出 VISIT 通知事件。
	Visit(ctx context.Context, visitorID, targetID string) ([]Event, error)
}

// IChatService 会话生命周期与消息收发。
type IChatService interface {
	// ChatsForUser 返回用户的全部活跃会话。
	ChatsForUser(ctx context.Context, userID string) ([]repository.Chat, error)
	// CreateChat 为当前用户与 partner 创建会话，产出发给双方的 newChat 事件。
	CreateChat(ctx context.Context, userID, partnerID string) (*repository.Chat, []Event, error)
	// SendMessage 持久化消息并产出 MESSAGE 通知与 message 事件。
	SendMessage(ctx context.Context, senderID string, chatID int64, body, to string) (*repository.Message, []Event, error)
}

// MessageSender 向单个用户的活跃通道投递一条命名事件。
// 由通知网关实现；投递是尽力而为的，失败不回传。
type MessageSender interface {
	SendMessageToUser(ctx context.Context, targetUserID, eventName string, payload any)
}

// EventDispatcher 消费状态机产出的提交后事件列表。
type EventDispatcher interface {
	// DispatchAsync 异步投递全部事件，调用立刻返回。
	// 同一任务内按序投递，保证发往同一用户通道的事件保持产出顺序。
	DispatchAsync(ctx context.Context, events []Event)
}
