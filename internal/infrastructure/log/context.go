package log

import (
	"context"
	"log/slog"
)

type contextKey string

// 上下文键定义
const (
	// RequestContextID HTTP 请求 ID
	RequestContextID contextKey = "request_id"

	// SessionContextID 后台计时会话 ID
	SessionContextID contextKey = "session_id"

	// ClientContextID 展示端连接 ID
	ClientContextID contextKey = "client_id"

	// IntentContextID 正在处理的用户意图
	IntentContextID contextKey = "intent"
)

var contextKeys = []contextKey{
	RequestContextID,
	SessionContextID,
	ClientContextID,
	IntentContextID,
}

// WithRequestID 在上下文中添加请求 ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestContextID, requestID)
}

// WithSessionID 在上下文中添加会话 ID
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionContextID, sessionID)
}

// WithClientID 在上下文中添加展示端 ID
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, ClientContextID, clientID)
}

// WithIntent 在上下文中添加意图名
func WithIntent(ctx context.Context, intent string) context.Context {
	return context.WithValue(ctx, IntentContextID, intent)
}

// LogCtxFromContext 从上下文中提取日志字段
func LogCtxFromContext(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for _, key := range contextKeys {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}

// FromContext 返回附带上下文字段的 logger
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	attrs := LogCtxFromContext(ctx)
	if len(attrs) == 0 {
		return logger
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return logger.With(args...)
}
