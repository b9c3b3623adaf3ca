// pkg/config/config.go

// Package config loads framerelay settings from defaults, an optional config
// file, a .env file, FRAMERELAY_* environment variables and bound flags, in
// increasing order of precedence.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/hostloop"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay_err"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-version"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "FRAMERELAY"

	// CurrentVersion is the config_version assumed when none is set.
	CurrentVersion = "1.0"
	// SupportedVersions is the range of config_version values this build reads.
	SupportedVersions = ">= 1.0, < 2.0"
)

// Config is the full settings tree.
type Config struct {
	ConfigVersion string          `mapstructure:"config_version" validate:"required"`
	Log           LogConfig       `mapstructure:"log"`
	Loop          LoopConfig      `mapstructure:"loop"`
	Telemetry     TelemetryConfig `mapstructure:"telemetry"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error dpanic panic fatal"`
	Format string `mapstructure:"format" validate:"oneof=auto json console"`
	File   string `mapstructure:"file"`
}

type LoopConfig struct {
	FPS        float64       `mapstructure:"fps" validate:"gte=0,lte=1000"`
	FixedStep  time.Duration `mapstructure:"fixed_step" validate:"gt=0"`
	MaxCatchUp int           `mapstructure:"max_catchup" validate:"gte=1,lte=100"`
	Frames     int           `mapstructure:"frames" validate:"gte=0"`
}

type TelemetryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	loop := hostloop.DefaultConfig()
	v.SetDefault("config_version", CurrentVersion)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.file", "")
	v.SetDefault("loop.fps", loop.FPS)
	v.SetDefault("loop.fixed_step", loop.FixedStep)
	v.SetDefault("loop.max_catchup", loop.MaxCatchUp)
	v.SetDefault("loop.frames", 120)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.path", "framerelay-telemetry.jsonl")
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv reads path (".env" when empty) into the process environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return relay_err.WrapConfigError(cerr.Wrapf(err, "load %s", path))
	}
	return nil
}

// Load reads file (if non-empty) into v, decodes and validates the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, relay_err.WrapConfigError(cerr.Wrapf(err, "read config file %s", file))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, relay_err.WrapConfigError(cerr.Wrap(err, "decode config"))
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints and the config version range.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return relay_err.WrapConfigError(cerr.Wrap(err, "invalid config"))
	}
	return checkVersion(cfg.ConfigVersion)
}

func checkVersion(raw string) error {
	got, err := version.NewVersion(raw)
	if err != nil {
		return relay_err.WrapConfigError(cerr.Wrapf(err, "parse config_version %q", raw))
	}
	constraints, err := version.NewConstraint(SupportedVersions)
	if err != nil {
		return relay_err.WrapConfigError(cerr.Wrap(err, "parse supported versions"))
	}
	if !constraints.Check(got) {
		return relay_err.WrapConfigError(cerr.WithHintf(
			cerr.Newf("config_version %s is not supported", got),
			"this build reads config versions %s", SupportedVersions))
	}
	return nil
}

// LoggerConfig maps the log section onto logger.Config.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{Level: c.Log.Level, Format: c.Log.Format, File: c.Log.File}
}

// HostLoopConfig maps the loop section onto hostloop.Config.
func (c *Config) HostLoopConfig() hostloop.Config {
	return hostloop.Config{
		FPS:        c.Loop.FPS,
		FixedStep:  c.Loop.FixedStep,
		MaxCatchUp: c.Loop.MaxCatchUp,
		Frames:     c.Loop.Frames,
	}
}

// TelemetryConfig maps the telemetry section onto telemetry.Config.
func (c *Config) TelemetryConfig() telemetry.Config {
	return telemetry.Config{Enabled: c.Telemetry.Enabled, Path: c.Telemetry.Path}
}
