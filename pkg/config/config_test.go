package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay_err"
	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, cfg.ConfigVersion)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "auto", cfg.Log.Format)
	assert.Equal(t, 60.0, cfg.Loop.FPS)
	assert.Equal(t, 20*time.Millisecond, cfg.Loop.FixedStep)
	assert.Equal(t, 5, cfg.Loop.MaxCatchUp)
	assert.Equal(t, 120, cfg.Loop.Frames)
	assert.False(t, cfg.Telemetry.Enabled)

	loop := cfg.HostLoopConfig()
	assert.Equal(t, cfg.Loop.FixedStep, loop.FixedStep)
	assert.Equal(t, "info", cfg.LoggerConfig().Level)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("FRAMERELAY_LOG_LEVEL", "debug")
	t.Setenv("FRAMERELAY_LOOP_FIXED_STEP", "10ms")
	t.Setenv("FRAMERELAY_LOOP_FRAMES", "7")

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10*time.Millisecond, cfg.Loop.FixedStep)
	assert.Equal(t, 7, cfg.Loop.Frames)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framerelay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
config_version: "1.2"
log:
  format: json
loop:
  fps: 0
  max_catchup: 3
telemetry:
  enabled: true
  path: /tmp/spans.jsonl
`), 0o600))

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "1.2", cfg.ConfigVersion)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Zero(t, cfg.Loop.FPS)
	assert.Equal(t, 3, cfg.Loop.MaxCatchUp)
	assert.True(t, cfg.TelemetryConfig().Enabled)
	assert.Equal(t, "/tmp/spans.jsonl", cfg.TelemetryConfig().Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, cerr.Is(err, relay_err.ErrInvalidConfig))
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()
	valid := func() Config {
		return Config{
			ConfigVersion: "1.0",
			Log:           LogConfig{Level: "info", Format: "auto"},
			Loop:          LoopConfig{FPS: 60, FixedStep: time.Millisecond, MaxCatchUp: 1},
		}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"negative fps", func(c *Config) { c.Loop.FPS = -1 }},
		{"zero step", func(c *Config) { c.Loop.FixedStep = 0 }},
		{"zero catch-up", func(c *Config) { c.Loop.MaxCatchUp = 0 }},
		{"telemetry without path", func(c *Config) { c.Telemetry.Enabled = true }},
		{"missing version", func(c *Config) { c.ConfigVersion = "" }},
		{"garbage version", func(c *Config) { c.ConfigVersion = "one" }},
		{"future version", func(c *Config) { c.ConfigVersion = "2.0" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(&cfg)
			err := Validate(&cfg)
			require.Error(t, err)
			assert.True(t, cerr.Is(err, relay_err.ErrInvalidConfig))
			assert.Equal(t, relay_err.CategoryConfig, relay_err.Category(err))
		})
	}

	cfg := valid()
	assert.NoError(t, Validate(&cfg))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))

	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("FRAMERELAY_LOG_FORMAT=console\n"), 0o600))
	t.Setenv("FRAMERELAY_LOG_FORMAT", "")
	require.NoError(t, os.Unsetenv("FRAMERELAY_LOG_FORMAT"))

	require.NoError(t, LoadDotEnv(path))
	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	cfg := &Config{ConfigVersion: "1.0"}
	ctx := WithContext(context.Background(), cfg)

	assert.Same(t, cfg, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}
