package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay_err"
	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type summary struct {
	Frames int    `json:"frames" yaml:"frames"`
	Relay  string `json:"relay" yaml:"relay"`
}

func (s summary) Rows() map[string]string {
	return map[string]string{"frames": "3", "relay": s.Relay}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"text", FormatText},
		{"JSON", FormatJSON},
		{" yaml ", FormatYAML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.True(t, cerr.Is(err, relay_err.ErrInvalidConfig))
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, summary{Frames: 3, Relay: "abc"}))

	var got summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, summary{Frames: 3, Relay: "abc"}, got)
	assert.Contains(t, buf.String(), "\n  \"frames\"")
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, summary{Frames: 3, Relay: "abc"}))

	var got summary
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 3, got.Frames)
}

func TestWriteText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, summary{Relay: "abc"}))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Contains(t, string(lines[0]), "KEY")
	assert.Contains(t, string(lines[2]), "frames")
	assert.Contains(t, string(lines[3]), "relay")
	assert.Contains(t, string(lines[3]), "abc")

	err := Write(&buf, FormatText, 42)
	assert.Error(t, err)
}
