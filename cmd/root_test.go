package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionThroughRoot(t *testing.T) {
	t.Cleanup(logger.InitFallback)
	RegisterCommands()

	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetArgs([]string{"version", "-o", "json", "--log-level", "error"})
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetArgs(nil)
	})

	require.NoError(t, RootCmd.ExecuteContext(context.Background()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.NotEmpty(t, got["version"])
	assert.Equal(t, ">= 1.0, < 2.0", got["config_versions"])
}

func TestRunThroughRoot(t *testing.T) {
	t.Cleanup(logger.InitFallback)
	RegisterCommands()

	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetArgs([]string{"run", "--fps", "0", "--frames", "4", "--fixed-step", "1ms", "-o", "json", "--log-level", "error"})
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetArgs(nil)
	})

	require.NoError(t, RootCmd.ExecuteContext(context.Background()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.EqualValues(t, 4, got["update_calls"])
}

func TestBadConfigVersionExitCode(t *testing.T) {
	t.Cleanup(logger.InitFallback)
	t.Setenv("FRAMERELAY_CONFIG_VERSION", "9.0")
	RegisterCommands()
	RootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { RootCmd.SetArgs(nil) })

	assert.Equal(t, 2, Execute(context.Background()))
}
