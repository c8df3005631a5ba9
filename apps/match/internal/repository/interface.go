package repository

import (
	"context"

	"MatchServer/model"
)

// IRelationRepository 喜欢边与配对状态的数据访问层。
// 无向对参数（userA/userB）不要求调用方预先排序，内部统一做规范化。
type IRelationRepository interface {
	// HasLike 查询有向喜欢边，不存在时返回 (nil, nil)。
	HasLike(ctx context.Context, likerID, likedID string) (*model.Like, error)
	// InsertLike 插入有向喜欢边。
	InsertLike(ctx context.Context, likerID, likedID string) error
	// DeleteLike 按主键删除喜欢边。
	DeleteLike(ctx context.Context, likeID int64) error
	// UpsertConnectionMatched 将无向对的配对状态置为 MATCHED。
	// 行已存在时复用并翻转状态（跨多轮 match/unmatch 复用同一行）。
	UpsertConnectionMatched(ctx context.Context, userA, userB string) error
	// SetConnectionStatus 仅当无向对已有记录时更新其状态。
	// 返回值表示是否有行真正发生了变化。
	SetConnectionStatus(ctx context.Context, userA, userB, status string) (bool, error)
	// GetConnectionStatus 查询无向对的配对状态，userA 固定为返回值的 UserOne。
	// 不存在时返回 (nil, nil)。
	GetConnectionStatus(ctx context.Context, userA, userB string) (*MatchStatus, error)
	// LikesBy 返回 userID 喜欢的全部用户。
	LikesBy(ctx context.Context, userID string) ([]string, error)
	// LikedBy 返回喜欢 userID 的全部用户。
	LikedBy(ctx context.Context, userID string) ([]string, error)
	// MatchesFor 返回 userID 所有 MATCHED 配对，userID 固定为每项的 UserOne。
	MatchesFor(ctx context.Context, userID string) ([]MatchStatus, error)
}

// IChatRepository 会话与消息的数据访问层。
type IChatRepository interface {
	// CreateChat 为无向对创建会话。
	// 该对已有活跃会话时返回 ErrDuplicateKey（稳定冲突判别）；
	// 存在软删除的历史会话时恢复同一行，保留历史消息。
	CreateChat(ctx context.Context, userA, userB string) (*Chat, error)
	// ChatByPair 查询无向对的活跃会话（含消息），不存在时返回 (nil, nil)。
	ChatByPair(ctx context.Context, userA, userB string) (*Chat, error)
	// ChatByID 按会话 id 查询活跃会话（不含消息），不存在时返回 (nil, nil)。
	ChatByID(ctx context.Context, chatID int64) (*Chat, error)
	// ChatsForUser 返回用户的全部活跃会话，每个会话的消息按最新在前排序。
	ChatsForUser(ctx context.Context, userID string) ([]Chat, error)
	// SaveMessage 持久化一条消息并返回解析后的领域对象。
	SaveMessage(ctx context.Context, chatID int64, senderID, body string) (*Message, error)
	// DeleteChatBetweenUsers 软删除无向对的活跃会话，消息保留。
	DeleteChatBetweenUsers(ctx context.Context, userA, userB string) error
}

// ITxRunner 在单个可串行化事务中执行跨仓储的读-判-写序列。
// fn 内拿到的仓储实例绑定在同一事务句柄上；fn 返回错误时整体回滚。
type ITxRunner interface {
	InTx(ctx context.Context, fn func(rel IRelationRepository, chat IChatRepository) error) error
}
