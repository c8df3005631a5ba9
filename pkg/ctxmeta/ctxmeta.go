package ctxmeta

import (
	"context"

	"github.com/gin-gonic/gin"
)

// ctxKey 私有 key 类型，避免与其他包的 context key 冲突。
type ctxKey string

const (
	traceIDKey ctxKey = "trace_id"
	userIDKey  ctxKey = "user_id"
)

// WithTraceID 在 ctx 中写入 trace_id。
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID 读取 ctx 中的 trace_id，不存在时返回空串。
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// WithUserID 在 ctx 中写入当前用户 id。
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID 读取 ctx 中的当前用户 id，不存在时返回空串。
func UserID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// TraceIDFromGin 从 Gin 上下文提取 trace_id（由 TraceLogger 中间件写入）。
func TraceIDFromGin(c *gin.Context) string {
	return c.GetString("trace_id")
}

// Propagate 把需要跨协程透传的字段复制到一个全新的 ctx 上。
// 用于异步任务：摆脱父 ctx 的取消/超时，但保留排障所需的元信息。
func Propagate(parent context.Context) context.Context {
	ctx := context.Background()
	if traceID := TraceID(parent); traceID != "" {
		ctx = WithTraceID(ctx, traceID)
	}
	if userID := UserID(parent); userID != "" {
		ctx = WithUserID(ctx, userID)
	}
	return ctx
}
