// pkg/cli/cli.go
//
// Flag and viper helpers shared by framerelay commands. Flags are declared on
// the cobra command and bound into viper so that flag > env > file > default
// precedence holds for every setting.
package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AddStringFlag adds a string flag and optionally marks it required.
func AddStringFlag(cmd *cobra.Command, name, shorthand, def, help string, required bool) {
	cmd.Flags().StringP(name, shorthand, def, help)
	if required {
		if err := cmd.MarkFlagRequired(name); err != nil {
			// cobra still validates required flags at runtime
			fmt.Fprintf(os.Stderr, "warning: failed to mark flag %s as required: %v\n", name, err)
		}
	}
}

// AddIntFlag adds an int flag.
func AddIntFlag(cmd *cobra.Command, name, shorthand string, def int, help string) {
	cmd.Flags().IntP(name, shorthand, def, help)
}

// AddBoolFlag adds a boolean flag.
func AddBoolFlag(cmd *cobra.Command, name, shorthand string, def bool, help string) {
	cmd.Flags().BoolP(name, shorthand, def, help)
}

// BindFlags binds flags to viper keys. keys maps flag name to config key and
// flags missing from it are skipped; a nil map binds every flag under its
// own name.
func BindFlags(flags *pflag.FlagSet, v *viper.Viper, keys map[string]string) error {
	var result error
	flags.VisitAll(func(f *pflag.Flag) {
		key := f.Name
		if keys != nil {
			k, ok := keys[f.Name]
			if !ok {
				return
			}
			key = k
		}
		if err := v.BindPFlag(key, f); err != nil {
			result = multierror.Append(result, err)
		}
	})
	return result
}
