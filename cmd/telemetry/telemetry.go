// cmd/telemetry/telemetry.go
/*
Copyright © 2025 CODE MONKEY CYBERSECURITY git@cybermonkey.net.au

*/
package telemetry

import (
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_cli"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/telemetry/telemetry_management"
	"github.com/spf13/cobra"
)

// TelemetryCmd controls the local-only span recording. Enabling requires
// write access to the state directory, so operators typically run these with
// sudo; the gate itself never needs them.
var TelemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Control local-only invocation tracing",
	Long: `Telemetry appends admission spans to a local JSONL file when the operator
has opted in. Nothing is ever transmitted anywhere.`,
	RunE: cerberus_cli.Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		telemetry_management.Show(rc)
		return nil
	}),
}

var telemetryOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable local span recording",
	RunE: cerberus_cli.Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return telemetry_management.Enable(rc)
	}),
}

var telemetryOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable local span recording",
	RunE: cerberus_cli.Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return telemetry_management.Disable(rc)
	}),
}

var telemetryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the telemetry state and span file location",
	RunE: cerberus_cli.Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		telemetry_management.Show(rc)
		return nil
	}),
}

var telemetryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the recorded span file",
	RunE: cerberus_cli.Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		top, _ := cmd.Flags().GetInt("top")
		return telemetry_management.ShowStats(rc, top)
	}),
}

func init() {
	cli.AddIntFlag(telemetryStatsCmd, "top", "", 5, "How many span names to list in the frequency table")

	TelemetryCmd.AddCommand(telemetryOnCmd)
	TelemetryCmd.AddCommand(telemetryOffCmd)
	TelemetryCmd.AddCommand(telemetryStatusCmd)
	TelemetryCmd.AddCommand(telemetryStatsCmd)
}
