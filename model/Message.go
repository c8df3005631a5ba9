package model

// SentAtLayout 消息时间的持久化格式。
// 固定、与 locale 无关的文本格式，精确到秒；读取时必须能无损解析回 time.Time。
const SentAtLayout = "2006-01-02 15:04:05"

// Message 维护会话内的一条消息，写入后不可变。
// SentAt 以 SentAtLayout 格式的 UTC 文本存储，行到领域对象的转换在仓储层完成。
type Message struct {
	Id       int64  `gorm:"column:id;primaryKey;comment:消息id(snowflake)"`
	ChatId   int64  `gorm:"column:chat_id;not null;index:idx_chat_sent;comment:所属会话id"`
	SenderId string `gorm:"column:sender_id;type:char(36);not null;comment:发送方用户id"`
	Body     string `gorm:"column:message;type:text;not null;comment:消息内容"`
	SentAt   string `gorm:"column:sent_at;type:char(19);not null;index:idx_chat_sent;comment:发送时间(UTC文本)"`
}

func (Message) TableName() string { return "messages" }
