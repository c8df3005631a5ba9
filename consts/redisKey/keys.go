package rediskey

import (
	"fmt"
	"time"
)

// ==================== TTL 常量 ====================

const (
	// SessionTokenTTL 会话 token 哈希的缓存 TTL，与签发方的会话有效期对齐。
	SessionTokenTTL = 30 * 24 * time.Hour
)

// ==================== Key 构造函数 ====================

// SessionTokenKey 生成会话 token Key: session:at:{user_id}
// value 约定为 md5(token)，由会话签发方写入、吊销时删除；本服务只读。
func SessionTokenKey(userID string) string {
	return fmt.Sprintf("session:at:%s", userID)
}
