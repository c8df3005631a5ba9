package repository

import "time"

// 本文件定义仓储层对外暴露的领域对象。
// 存储行（model 包）到领域对象的转换集中在 converter.go，
// 业务层与下行事件载荷不接触存储行结构。

// Chat 一对用户的私聊会话及其消息列表。
// Messages 永远非 nil，按发送时间倒序（最新在前）。
type Chat struct {
	ID       int64     `json:"id"`
	UserOne  string    `json:"userOne"`
	UserTwo  string    `json:"userTwo"`
	Messages []Message `json:"messages"`
}

// Message 会话内的一条消息，SentAt 已从持久化文本解析为结构化时间。
type Message struct {
	ID     int64     `json:"id"`
	ChatID int64     `json:"chatId"`
	Sender string    `json:"sender"`
	Body   string    `json:"message"`
	SentAt time.Time `json:"sentAt"`
}

// MatchStatus 一对用户的配对状态。
// 约定：查询方永远是 UserOne，与存储方向无关。
type MatchStatus struct {
	UserOne string `json:"userOne"`
	UserTwo string `json:"userTwo"`
	Status  string `json:"status"`
}
