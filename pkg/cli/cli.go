// pkg/cli/cli.go
//
// Shared flag helpers for the Cerberus operator commands. The gate itself
// takes no flags; everything here serves `check`, `inspect`, and `telemetry`.
// Every operator flag is optional, so the helpers carry no required-flag
// plumbing; behaviors compose from whichever flags are present.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// AddStringFlag adds a string flag.
func AddStringFlag(cmd *cobra.Command, name, shorthand, def, help string) {
	cmd.Flags().StringP(name, shorthand, def, help)
}

// AddBoolFlag adds a boolean flag.
func AddBoolFlag(cmd *cobra.Command, name, shorthand string, def bool, help string) {
	cmd.Flags().BoolP(name, shorthand, def, help)
}

// AddIntFlag adds an int flag.
func AddIntFlag(cmd *cobra.Command, name, shorthand string, def int, help string) {
	cmd.Flags().IntP(name, shorthand, def, help)
}

// AddStringSliceFlag adds a string slice flag. Repeating the flag
// accumulates values.
func AddStringSliceFlag(cmd *cobra.Command, name, shorthand string, def []string, help string) {
	cmd.Flags().StringSliceP(name, shorthand, def, help)
}

// FlagDebugString renders every flag with its effective value for debug logs.
func FlagDebugString(cmd *cobra.Command) string {
	var sb strings.Builder
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		fmt.Fprintf(&sb, "--%s=%s ", f.Name, f.Value.String())
	})
	return strings.TrimSpace(sb.String())
}

// GetStringOrEmpty returns the flag's string value, reading a missing or
// mistyped flag as empty rather than failing the command.
func GetStringOrEmpty(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to get flag %s: %v\n", name, err)
		return ""
	}
	return val
}
