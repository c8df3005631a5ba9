package model

import "time"

// Like 维护用户之间的单向喜欢关系（有向边）。
// 约束：uniqueIndex:uidx_liker_liked 确保同一有向对最多一条记录；
// 取消喜欢时物理删除，保证 flip 语义下的干净重插。
type Like struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	LikerId   string    `gorm:"column:liker_id;type:char(36);not null;uniqueIndex:uidx_liker_liked;comment:发起方用户id"`
	LikedId   string    `gorm:"column:liked_id;type:char(36);not null;index;uniqueIndex:uidx_liker_liked;comment:被喜欢方用户id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Like) TableName() string { return "likes" }
