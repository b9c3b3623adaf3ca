/* cmd/root.go */

package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/CodeMonkeyCybersecurity/framerelay/cmd/run"
	"github.com/CodeMonkeyCybersecurity/framerelay/cmd/version"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/config"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay_err"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	envFile    string

	v = config.NewViper()

	shutdownTelemetry = func(context.Context) error { return nil }
)

// flagKeys maps flag names onto config keys.
var flagKeys = map[string]string{
	"log-level":      "log.level",
	"log-format":     "log.format",
	"log-file":       "log.file",
	"telemetry":      "telemetry.enabled",
	"telemetry-path": "telemetry.path",
	"fps":            "loop.fps",
	"fixed-step":     "loop.fixed_step",
	"max-catchup":    "loop.max_catchup",
	"frames":         "loop.frames",
}

// RootCmd is the base command for framerelay.
var RootCmd = &cobra.Command{
	Use:   "framerelay",
	Short: "Frame-tick dispatcher with a self-healing singleton relay",
	Long: `framerelay drives the update, late-update and fixed-update channels from a
reference host loop. Exactly one relay is registered at a time; duplicates
yield and a registry reset spawns a replacement automatically.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: cli.Wrap(func(rc *cli.RuntimeContext, cmd *cobra.Command, args []string) error {
		rc.Log.Info("No subcommand provided")
		return cmd.Help()
	}),
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading FRAMERELAY_* variables")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "auto", "log encoding: auto, json or console")
	flags.String("log-file", "", "also append JSON logs to this file")
	flags.Bool("telemetry", false, "export trace spans as JSON lines")
	flags.String("telemetry-path", "framerelay-telemetry.jsonl", "file the trace spans are appended to")
}

var registerOnce sync.Once

// RegisterCommands adds all subcommands to the root command.
func RegisterCommands() {
	registerOnce.Do(func() {
		for _, sub := range []*cobra.Command{
			run.RunCmd,
			version.VersionCmd,
		} {
			RootCmd.AddCommand(sub)
		}
	})
}

// setup loads configuration and installs the logger and tracer before any
// subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	if err := cli.BindFlags(cmd.Flags(), v, flagKeys); err != nil {
		return relay_err.WrapConfigError(cerr.Wrap(err, "bind flags"))
	}

	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}

	l, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return relay_err.WrapConfigError(err)
	}
	logger.SetLogger(l)

	shutdown, err := telemetry.Init(cfg.TelemetryConfig())
	if err != nil {
		return relay_err.WrapConfigError(err)
	}
	shutdownTelemetry = shutdown

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(config.WithContext(ctx, cfg))

	l.Debug("Configuration loaded",
		zap.String("config_version", cfg.ConfigVersion),
		zap.String("config_file", v.ConfigFileUsed()),
		zap.Duration("fixed_step", cfg.Loop.FixedStep),
		zap.Float64("fps", cfg.Loop.FPS))
	return nil
}

// Execute initializes and runs the root command, returning the process exit code.
func Execute(ctx context.Context) int {
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Failed to flush telemetry: %v\n", err)
		}
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Failed to flush logs: %v\n", err)
		}
	}()

	RegisterCommands()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		code := relay_err.ExitCode(err)
		logger.L().Error("CLI execution error",
			zap.Error(err),
			zap.Stringer("category", relay_err.Category(err)),
			zap.Int("exit_code", code))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range relay_err.Hints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		return code
	}
	return 0
}
