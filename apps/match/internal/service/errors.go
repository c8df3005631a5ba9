package service

import "errors"

// ==================== Service 层业务错误 ====================

var (
	// ErrInvalidUser 用户 id 缺失或非法，未触达存储即被拒绝
	ErrInvalidUser = errors.New("invalid user id")

	// ErrSelfTarget 操作目标是自己
	ErrSelfTarget = errors.New("target user is self")

	// ErrDuplicateChat 该用户对已存在活跃会话（稳定冲突判别）
	ErrDuplicateChat = errors.New("duplicate chat for user pair")

	// ErrChatNotFound 会话不存在
	ErrChatNotFound = errors.New("chat not found")

	// ErrNotChatMember 当前用户不是会话成员
	ErrNotChatMember = errors.New("user is not a chat member")
)
