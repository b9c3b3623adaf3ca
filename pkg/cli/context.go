// pkg/cli/context.go

package cli

import (
	"context"
	"time"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/logger"
	"go.uber.org/zap"
)

// RuntimeContext carries what a command handler needs from the wrapper.
type RuntimeContext struct {
	Ctx       context.Context
	Log       *zap.Logger
	TraceID   string
	Timestamp time.Time
}

func newRuntimeContext(parent context.Context, name string) *RuntimeContext {
	if parent == nil {
		parent = context.Background()
	}
	traceID := logger.GenerateTraceID()
	log := logger.L().Named(name).With(zap.String("trace_id", traceID))
	return &RuntimeContext{
		Ctx:       logger.WithContext(parent, log),
		Log:       log,
		TraceID:   traceID,
		Timestamp: time.Now(),
	}
}
