package logger

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

type ctxKey struct{}

// WithContext returns a copy of ctx carrying l.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger carried by ctx, or the process-wide logger.
// The result attaches the span's trace and span ids when ctx carries a span.
func FromContext(ctx context.Context) otelzap.LoggerWithCtx {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return otelzap.New(l).Ctx(ctx)
	}
	return otelzap.New(L()).Ctx(ctx)
}
