package model

import "time"

// 连接状态取值。
const (
	// ConnectionMatched 双方互相喜欢，处于配对状态。
	ConnectionMatched = "MATCHED"
	// ConnectionUnmatched 曾经配对过但已解除。
	ConnectionUnmatched = "UNMATCHED"
)

// Connection 维护一对用户的配对状态（无向）。
// 存储约定：
// - UserLow/UserHigh 按字典序排列（见 CanonicalPair），同一对用户只有一种存储方向；
// - 记录只做状态翻转，从不删除，跨多轮 match/unmatch 复用同一行。
type Connection struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	UserLow   string    `gorm:"column:user_low;type:char(36);not null;uniqueIndex:uidx_conn_pair;comment:配对中字典序较小的用户id"`
	UserHigh  string    `gorm:"column:user_high;type:char(36);not null;index;uniqueIndex:uidx_conn_pair;comment:配对中字典序较大的用户id"`
	Status    string    `gorm:"column:status;type:varchar(16);not null;comment:配对状态 MATCHED/UNMATCHED"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Connection) TableName() string { return "connections" }
