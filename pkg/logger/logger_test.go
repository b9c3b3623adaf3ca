package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"TRACE":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), "level %q", in)
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "framerelay.log")

	l, err := New(Config{Level: "debug", Format: "json", File: path})
	require.NoError(t, err)

	l.Debug("relay claimed", zap.String("instance", "abc"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "relay claimed")
	assert.Contains(t, string(data), `"instance":"abc"`)
}

func TestFromContextPrefersCarriedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	FromContext(ctx).Info("frame dispatched")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "frame dispatched", logs.All()[0].Message)
}

func TestLogCommandLifecycle(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.InfoLevel)
	l := zap.New(core)

	err := errors.New("failed")
	LogCommandLifecycle(l, "run")(&err)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "Command started", logs.All()[0].Message)
	assert.Equal(t, "Command failed", logs.All()[1].Message)
}

func TestGenerateTraceID(t *testing.T) {
	t.Parallel()
	id := GenerateTraceID()
	assert.Len(t, id, 8)
	assert.NotEqual(t, id, GenerateTraceID())
}
