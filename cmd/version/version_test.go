package version

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCurrent(t *testing.T) {
	info, err := Current()
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", info.Version)
	assert.Equal(t, "dev", info.Prerelease)
	assert.NotEmpty(t, info.GoVersion)
}

func TestCurrentRejectsBadVersion(t *testing.T) {
	saved := Version
	Version = "not-a-version"
	t.Cleanup(func() { Version = saved })

	_, err := Current()
	assert.Error(t, err)
}

func TestPrintVersionYAML(t *testing.T) {
	outputFormat = "yaml"
	t.Cleanup(func() { outputFormat = "text" })

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	require.NoError(t, printVersion(nil, cmd, nil))

	var got Info
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "0.1.0", got.Version)
	assert.Equal(t, Commit, got.Commit)
}
