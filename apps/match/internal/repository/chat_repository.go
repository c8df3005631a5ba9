package repository

import (
	"context"
	"errors"
	"time"

	"MatchServer/model"
	"MatchServer/pkg/id"

	"gorm.io/gorm"
)

// chatRepositoryImpl 会话与消息数据访问层实现
type chatRepositoryImpl struct {
	db *gorm.DB
}

// NewChatRepository 创建会话仓储实例
func NewChatRepository(db *gorm.DB) IChatRepository {
	return &chatRepositoryImpl{db: db}
}

// CreateChat 为无向对创建会话。
// 三种落点：
//  1. 全新对：插入新行，空消息列表；
//  2. 有软删除的历史行：恢复同一行（deleted_at 置空），历史消息随之可见；
//  3. 已有活跃行：返回 ErrDuplicateKey，由上层映射为稳定的冲突判别。
//
// 唯一索引覆盖软删除行，因此活跃/历史两种冲突都先走 ErrDuplicatedKey 分支，
// 再按 deleted_at 区分恢复还是报冲突。
func (r *chatRepositoryImpl) CreateChat(ctx context.Context, userA, userB string) (*Chat, error) {
	low, high := model.CanonicalPair(userA, userB)
	row := &model.Chat{
		Id:       id.Next(),
		UserLow:  low,
		UserHigh: high,
	}

	err := r.db.WithContext(ctx).Create(row).Error
	if err == nil {
		return toDomainChat(row, nil)
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, WrapDBErrorf(err, "create chat")
	}

	// 唯一键冲突：查出既有行（含软删除）判断是恢复还是真冲突
	var existing model.Chat
	findErr := r.db.WithContext(ctx).Unscoped().
		Where("user_low = ? AND user_high = ?", low, high).
		First(&existing).Error
	if findErr != nil {
		return nil, WrapDBErrorf(findErr, "create chat: load conflicting row")
	}
	if !existing.DeletedAt.Valid {
		return nil, ErrDuplicateKey
	}

	// 恢复软删除的历史会话，保留全部历史消息
	restoreErr := r.db.WithContext(ctx).Unscoped().
		Model(&model.Chat{}).
		Where("id = ?", existing.Id).
		Update("deleted_at", nil).Error
	if restoreErr != nil {
		return nil, WrapDBErrorf(restoreErr, "create chat: restore row")
	}

	messages, msgErr := r.messagesForChat(ctx, existing.Id)
	if msgErr != nil {
		return nil, msgErr
	}
	return toDomainChat(&existing, messages)
}

// ChatByPair 查询无向对的活跃会话（含消息）
func (r *chatRepositoryImpl) ChatByPair(ctx context.Context, userA, userB string) (*Chat, error) {
	low, high := model.CanonicalPair(userA, userB)
	var row model.Chat
	err := r.db.WithContext(ctx).
		Where("user_low = ? AND user_high = ?", low, high).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBErrorf(err, "query chat by pair")
	}

	messages, msgErr := r.messagesForChat(ctx, row.Id)
	if msgErr != nil {
		return nil, msgErr
	}
	return toDomainChat(&row, messages)
}

// ChatByID 按会话 id 查询活跃会话（不含消息，用于投递寻址）
func (r *chatRepositoryImpl) ChatByID(ctx context.Context, chatID int64) (*Chat, error) {
	var row model.Chat
	err := r.db.WithContext(ctx).First(&row, chatID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBErrorf(err, "query chat by id")
	}
	return toDomainChat(&row, nil)
}

// ChatsForUser 返回用户的全部活跃会话，消息按最新在前
func (r *chatRepositoryImpl) ChatsForUser(ctx context.Context, userID string) ([]Chat, error) {
	var rows []model.Chat
	err := r.db.WithContext(ctx).
		Where("user_low = ? OR user_high = ?", userID, userID).
		Order("updated_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, WrapDBErrorf(err, "query chats for user")
	}

	chats := make([]Chat, 0, len(rows))
	for i := range rows {
		messages, msgErr := r.messagesForChat(ctx, rows[i].Id)
		if msgErr != nil {
			return nil, msgErr
		}
		chat, convErr := toDomainChat(&rows[i], messages)
		if convErr != nil {
			return nil, convErr
		}
		chats = append(chats, *chat)
	}
	return chats, nil
}

// SaveMessage 持久化一条消息。
// 目标会话必须是活跃会话；sent_at 以固定格式 UTC 文本落库，秒精度。
func (r *chatRepositoryImpl) SaveMessage(ctx context.Context, chatID int64, senderID, body string) (*Message, error) {
	var chat model.Chat
	if err := r.db.WithContext(ctx).First(&chat, chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, WrapDBErrorf(err, "save message: load chat")
	}

	row := &model.Message{
		Id:       id.Next(),
		ChatId:   chatID,
		SenderId: senderID,
		Body:     body,
		SentAt:   formatSentAt(time.Now()),
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, WrapDBErrorf(err, "save message")
	}
	return toDomainMessage(row)
}

// DeleteChatBetweenUsers 软删除无向对的活跃会话。
// 消息行保留，复配恢复会话时历史随之回归；该对没有活跃会话时为幂等空操作。
func (r *chatRepositoryImpl) DeleteChatBetweenUsers(ctx context.Context, userA, userB string) error {
	low, high := model.CanonicalPair(userA, userB)
	result := r.db.WithContext(ctx).
		Where("user_low = ? AND user_high = ?", low, high).
		Delete(&model.Chat{})
	if result.Error != nil {
		return WrapDBErrorf(result.Error, "delete chat between users")
	}
	return nil
}

// messagesForChat 拉取会话消息行，按发送时间倒序（加二级排序保证稳定性）
func (r *chatRepositoryImpl) messagesForChat(ctx context.Context, chatID int64) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("sent_at DESC, id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, WrapDBErrorf(err, "query chat messages")
	}
	return messages, nil
}
