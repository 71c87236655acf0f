/* cmd/root.go */

package cmd

import (
	"os"
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_cli"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/gateway"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	// Subcommands
	"github.com/CodeMonkeyCybersecurity/cerberus/cmd/check"
	"github.com/CodeMonkeyCybersecurity/cerberus/cmd/inspect"
	"github.com/CodeMonkeyCybersecurity/cerberus/cmd/telemetry"
	"github.com/CodeMonkeyCybersecurity/cerberus/cmd/version"
)

// RootCmd is the gate itself. The web server invokes the binary with no
// arguments and the whole admission pipeline runs; subcommands exist only
// for operators working unprivileged.
var RootCmd = &cobra.Command{
	Use:   "cerberus",
	Short: "Privilege-dropping CGI gateway",
	Long: `Cerberus admits one CGI request at a time: it validates the target script,
its owner, and its location, drops irreversibly to that owner's identity,
and replaces itself with the configured handler. Every verdict is a single
stderr line and a sysexits code for the web server's error log.`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		cerberus_err.SetDebugMode(debug)
		if debug {
			logger.SetLevel(zapcore.DebugLevel)
		}
	},

	RunE: cerberus_cli.Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		pc, err := gateway.NewProgramContext(rc.Ctx)
		if err != nil {
			return cerberus_err.ClassifyError(err, "program discovery")
		}
		return cerberus_err.ClassifyError(gateway.New(pc).Run(rc), "admission")
	}),
}

func init() {
	RootCmd.PersistentFlags().Bool("debug", false, "Verbose error reporting for operator commands")
}

// RegisterCommands adds all subcommands to the root command.
func RegisterCommands() {
	for _, subCmd := range []*cobra.Command{
		check.CheckCmd,
		inspect.InspectCmd,
		telemetry.TelemetryCmd,
		version.VersionCmd,
	} {
		RootCmd.AddCommand(subCmd)
	}
}

// Execute runs the root command and turns its error into the exit status.
// The gate path gets the one-line stderr verdict the web server log expects;
// operator subcommands get the human report, remediation steps included.
func Execute() {
	RegisterCommands()

	cmd, err := RootCmd.ExecuteC()
	if err == nil {
		return
	}

	shared.SafeSync()

	if cmd != nil && cmd != RootCmd {
		cerberus_err.ExitWithError(cmd.Context(), "Command failed", err)
	}

	cerberus_err.EmitDiagnostic(progname(), err)
	os.Exit(cerberus_err.GetExitCode(err))
}

// progname names this binary the way the invocation did, so the verdict line
// matches what appears in the web server's own log.
func progname() string {
	if len(os.Args) > 0 && os.Args[0] != "" {
		return filepath.Base(os.Args[0])
	}
	return shared.CerberusID
}
