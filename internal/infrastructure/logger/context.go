package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	actorKey     contextKey = "actor"
)

// ActorFields identifies who issued a request, for log correlation
type ActorFields struct {
	UserID   string
	Role     string
	BranchID string
}

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

// WithRequestID stores the request id in ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request id from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithActor stores the authenticated actor in ctx and returns a logger
// carrying its fields.
func WithActor(ctx context.Context, actor ActorFields) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, actorKey, actor)
	enriched := FromContext(ctx).With(actor.fields()...)
	return WithContext(ctx, enriched), enriched
}

// GetActor retrieves the actor fields from context
func GetActor(ctx context.Context) (ActorFields, bool) {
	actor, ok := ctx.Value(actorKey).(ActorFields)
	return actor, ok
}

func (a ActorFields) fields() []zap.Field {
	fields := []zap.Field{zap.String("user_id", a.UserID), zap.String("role", a.Role)}
	if a.BranchID != "" {
		fields = append(fields, zap.String("branch_id", a.BranchID))
	}
	return fields
}

// WithTraceContext adds trace_id and span_id from the active span, if any.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}

// L returns the request logger from ctx with trace correlation fields.
//
//	logger.L(ctx).Info("Order approved", zap.String("order_id", id))
func L(ctx context.Context) *zap.Logger {
	return WithTraceContext(ctx, FromContext(ctx))
}
