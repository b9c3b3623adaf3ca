// cmd/version/version.go

package version

import (
	"fmt"
	"runtime"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/config"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/output"
	cerr "github.com/cockroachdb/errors"
	goversion "github.com/hashicorp/go-version"
	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X .../cmd/version.Version=...".
var (
	Version = "0.1.0-dev"
	Commit  = "unknown"
)

var outputFormat string

// VersionCmd prints build information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the framerelay version",
	Args:  cobra.NoArgs,
	RunE:  cli.Wrap(printVersion),
}

func init() {
	VersionCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, json or yaml")
}

// Info describes this build.
type Info struct {
	Version        string `json:"version" yaml:"version"`
	Prerelease     string `json:"prerelease,omitempty" yaml:"prerelease,omitempty"`
	Commit         string `json:"commit" yaml:"commit"`
	GoVersion      string `json:"go_version" yaml:"go_version"`
	ConfigVersions string `json:"config_versions" yaml:"config_versions"`
}

// Rows implements output.Texter.
func (i Info) Rows() map[string]string {
	rows := map[string]string{
		"version":         i.Version,
		"commit":          i.Commit,
		"go_version":      i.GoVersion,
		"config_versions": i.ConfigVersions,
	}
	if i.Prerelease != "" {
		rows["prerelease"] = i.Prerelease
	}
	return rows
}

// Current parses Version and returns the build info.
func Current() (Info, error) {
	v, err := goversion.NewVersion(Version)
	if err != nil {
		return Info{}, cerr.Wrapf(err, "invalid build version %q", Version)
	}
	seg := v.Segments()
	return Info{
		Version:        fmt.Sprintf("%d.%d.%d", seg[0], seg[1], seg[2]),
		Prerelease:     v.Prerelease(),
		Commit:         Commit,
		GoVersion:      runtime.Version(),
		ConfigVersions: config.SupportedVersions,
	}, nil
}

func printVersion(_ *cli.RuntimeContext, cmd *cobra.Command, _ []string) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	info, err := Current()
	if err != nil {
		return err
	}
	return output.Write(cmd.OutOrStdout(), format, info)
}
