// pkg/cli/wrap.go

package cli

import (
	"time"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay_err"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Wrap adapts a handler to cobra's RunE, injecting a RuntimeContext with a
// named logger and a command span, recovering panics and logging the outcome.
func Wrap(fn func(rc *RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		rc := newRuntimeContext(cmd.Context(), cmd.Name())
		ctx, span := telemetry.Start(rc.Ctx, "cli."+cmd.Name(),
			attribute.String("trace_id", rc.TraceID))
		rc.Ctx = ctx
		defer span.End()

		log := rc.Log
		log.Info("🚀 Command execution started", zap.Time("timestamp", rc.Timestamp))

		done := logger.LogCommandLifecycle(log, cmd.Name())
		defer func() {
			if r := recover(); r != nil {
				log.Error("💥 Panic recovered", zap.Any("panic", r))
				err = cerr.Newf("panic: %v", r)
			}

			duration := time.Since(rc.Timestamp)
			done(&err)

			if err != nil {
				span.RecordError(err)
				log.Error("❌ Command failed",
					zap.Error(err),
					zap.Stringer("category", relay_err.Category(err)),
					zap.Strings("hints", relay_err.Hints(err)),
					zap.Duration("duration", duration))
			} else {
				log.Info("✅ Command finished successfully", zap.Duration("duration", duration))
			}
			_ = logger.Sync()
		}()

		log.Debug("Entering wrapped command function")
		return fn(rc, cmd, args)
	}
}
