package output

import (
	"io"
	"strings"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay_err"
	cerr "github.com/cockroachdb/errors"
)

// Format selects how a result is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json or yaml in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", relay_err.WrapConfigError(cerr.Newf("unknown output format %q", s))
	}
}

// Texter is implemented by results that have a text rendering.
type Texter interface {
	Rows() map[string]string
}

// Write renders data in format f. Text output requires data to implement Texter.
func Write(w io.Writer, f Format, data interface{}) error {
	switch f {
	case FormatJSON:
		return JSONTo(w, data)
	case FormatYAML:
		return YAMLTo(w, data)
	case FormatText, "":
		t, ok := data.(Texter)
		if !ok {
			return cerr.Newf("%T has no text rendering", data)
		}
		return KeyValueTable(w, t.Rows())
	default:
		return relay_err.WrapConfigError(cerr.Newf("unknown output format %q", f))
	}
}
