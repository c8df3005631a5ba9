package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// gormTxRunner 基于 gorm 事务的 ITxRunner 实现。
// 隔离级别固定为 SERIALIZABLE：flip 的读-判-写序列依赖它阻止
// 双方同时首次互相喜欢时各自读到“对方还没喜欢”的丢失更新。
type gormTxRunner struct {
	db *gorm.DB
}

// NewTxRunner 创建事务执行器实例
func NewTxRunner(db *gorm.DB) ITxRunner {
	return &gormTxRunner{db: db}
}

// InTx 在单个可串行化事务中执行 fn。
// fn 内的仓储实例绑定事务句柄，fn 返回错误时 gorm 自动回滚。
func (t *gormTxRunner) InTx(ctx context.Context, fn func(rel IRelationRepository, chat IChatRepository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRelationRepository(tx), NewChatRepository(tx))
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}
