package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ==================== Repository 层统一错误定义 ====================

var (
	// ErrRecordNotFound 记录不存在
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey 唯一键冲突
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrDatabase 数据库操作错误
	ErrDatabase = errors.New("database error")
)

// wrapError 通用错误包装函数
// err: 要包装的错误
// rules: 映射规则 map[源错误]目标错误
// defaultErr: 默认错误
func wrapError(err error, rules map[error]error, defaultErr error) error {
	if err == nil {
		return nil
	}

	for source, target := range rules {
		if errors.Is(err, source) {
			return target
		}
	}

	// 未匹配任何规则，包装默认错误（保留原始错误信息用于日志）
	return fmt.Errorf("%w: %v", defaultErr, err)
}

// dbErrorRules 数据库错误映射规则
var dbErrorRules = map[error]error{
	gorm.ErrRecordNotFound: ErrRecordNotFound,
	gorm.ErrDuplicatedKey:  ErrDuplicateKey,
}

// WrapDBError 包装数据库错误
func WrapDBError(err error) error {
	return wrapError(err, dbErrorRules, ErrDatabase)
}

// WrapDBErrorf 包装数据库错误并附加操作上下文。
// 冲突/未找到这类可判别错误保持原样透出，只对其余错误补充操作描述。
func WrapDBErrorf(err error, op string) error {
	wrapped := WrapDBError(err)
	if wrapped == nil {
		return nil
	}
	if errors.Is(wrapped, ErrRecordNotFound) || errors.Is(wrapped, ErrDuplicateKey) {
		return wrapped
	}
	return fmt.Errorf("%s: %w", op, wrapped)
}
