package logger

import (
	"context"
	"strconv"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey        contextKey = "logger"
	correlationIDKey contextKey = "correlation_id"
	operatorIDKey    contextKey = "operator_id"
	terminalKey      contextKey = "terminal"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithCorrelationID tags the context with an identifier shared by every log
// line of one counter operation.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// WithOperatorID tags the context with the operator running the terminal
func WithOperatorID(ctx context.Context, operatorID int64) context.Context {
	return context.WithValue(ctx, operatorIDKey, operatorID)
}

// WithTerminal tags the context with the POS terminal name
func WithTerminal(ctx context.Context, terminal string) context.Context {
	return context.WithValue(ctx, terminalKey, terminal)
}

// GetCorrelationID returns the correlation ID or ""
func GetCorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// GetOperatorID returns the operator ID or 0
func GetOperatorID(ctx context.Context) int64 {
	id, _ := ctx.Value(operatorIDKey).(int64)
	return id
}

// GetTerminal returns the terminal name or ""
func GetTerminal(ctx context.Context) string {
	t, _ := ctx.Value(terminalKey).(string)
	return t
}

// Fields returns the zap fields carried by ctx
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if id := GetCorrelationID(ctx); id != "" {
		fields = append(fields, zap.String("correlation_id", id))
	}
	if id := GetOperatorID(ctx); id != 0 {
		fields = append(fields, zap.String("operator_id", strconv.FormatInt(id, 10)))
	}
	if t := GetTerminal(ctx); t != "" {
		fields = append(fields, zap.String("terminal", t))
	}
	return fields
}

// L returns base enriched with the fields carried by ctx.
// Usage: logger.L(ctx, s.logger).Info("sale finalized", zap.Int64("sale_id", id))
func L(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = FromContext(ctx)
	}
	fields := Fields(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
