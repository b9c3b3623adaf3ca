// cmd/run/run.go

package run

import (
	"context"
	"time"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/config"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/hostloop"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/managedupdate"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/output"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/registry"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay_err"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// RunCmd drives the dispatcher with the reference host loop.
	RunCmd = &cobra.Command{
		Use:   "run",
		Short: "Drive the frame channels with the reference host loop",
		Long: `Run the reference host loop against a fresh registry and print a summary.

Examples:
  framerelay run --frames 600 --fps 60
  framerelay run --fps 0 --frames 100 --duplicates 3 -o json
  framerelay run --reset-every 50 -o yaml`,
		Args: cobra.NoArgs,
		RunE: cli.Wrap(runFrames),
	}

	outputFormat string
	duplicates   int
	resetEvery   int
)

func init() {
	hostDefaults := hostloop.DefaultConfig()
	RunCmd.Flags().Float64("fps", hostDefaults.FPS, "frame rate cap, 0 runs unpaced")
	RunCmd.Flags().Duration("fixed-step", hostDefaults.FixedStep, "simulated time per fixed update")
	cli.AddIntFlag(RunCmd, "max-catchup", "", hostDefaults.MaxCatchUp, "maximum fixed updates per frame")
	cli.AddIntFlag(RunCmd, "frames", "n", 120, "frames to run, 0 runs until interrupted")

	RunCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "summary format: text, json or yaml")
	RunCmd.Flags().IntVar(&duplicates, "duplicates", 0, "extra relays the host instantiates at startup")
	RunCmd.Flags().IntVar(&resetEvery, "reset-every", 0, "reset the registry every N frames, 0 never")
}

func runFrames(rc *cli.RuntimeContext, cmd *cobra.Command, _ []string) error {
	cfg := config.FromContext(rc.Ctx)
	if cfg == nil {
		return cerr.AssertionFailedf("configuration was not loaded")
	}
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	if duplicates < 0 || resetEvery < 0 {
		return relay_err.WrapConfigError(cerr.New("--duplicates and --reset-every must not be negative"))
	}

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		rc.Log.Warn("Metrics unavailable, continuing without", zap.Error(err))
		metrics = telemetry.Noop()
	}

	h := newHost(rc.Log)
	reg := registry.New(registry.WithLogger(rc.Log), registry.WithMetrics(metrics))
	d := managedupdate.New(reg,
		managedupdate.WithLogger(rc.Log),
		managedupdate.WithMetrics(metrics),
		managedupdate.WithRelayOptions(relay.WithDisposer(h.dispose)))
	defer d.Close()

	counts := h.subscribe(d)
	if err := d.Init(rc.Ctx); err != nil {
		return err
	}
	for i := 0; i < duplicates; i++ {
		if err := d.NewRelay().Enable(rc.Ctx); err != nil {
			return err
		}
	}

	loop, err := hostloop.New(cfg.HostLoopConfig(), h.source(rc.Ctx, d),
		hostloop.WithLogger(rc.Log),
		hostloop.WithFrameHook(func(ctx context.Context, frame int) error {
			if resetEvery == 0 || frame%resetEvery != 0 {
				return nil
			}
			h.resets++
			return reg.Reset(ctx)
		}))
	if err != nil {
		return err
	}

	ctx, stop := signalContext(rc.Ctx)
	defer stop()

	stats, runErr := loop.Run(ctx)

	sum := Summary{
		RunID:        uuid.NewString(),
		Loop:         stats,
		Updates:      counts.update,
		LateUpdates:  counts.late,
		FixedUpdates: counts.fixed,
		Resets:       h.resets,
		InertRelays:  h.disposed,
		Elapsed:      stats.Elapsed.Round(time.Millisecond).String(),
	}
	if r := d.Relay(rc.Ctx); r != nil {
		sum.ActiveRelay = r.InstanceID()
	}
	if runErr != nil {
		sum.Error = runErr.Error()
	}

	if err := output.Write(cmd.OutOrStdout(), format, sum); err != nil {
		return cerr.Wrap(err, "write summary")
	}
	return runErr
}
