package model

import (
	"time"

	"gorm.io/gorm"
)

// Chat 维护一对已配对用户的私聊房间。
// 存储约定：
// - 与 Connection 相同的无向对规范化（UserLow/UserHigh 字典序）；
// - uniqueIndex 含软删除行，解除配对时软删除，复配时恢复同一行以保留历史消息。
type Chat struct {
	Id        int64          `gorm:"column:id;primaryKey;comment:会话id(snowflake)"`
	UserLow   string         `gorm:"column:user_low;type:char(36);not null;uniqueIndex:uidx_chat_pair;comment:字典序较小的用户id"`
	UserHigh  string         `gorm:"column:user_high;type:char(36);not null;index;uniqueIndex:uidx_chat_pair;comment:字典序较大的用户id"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Chat) TableName() string { return "chats" }
