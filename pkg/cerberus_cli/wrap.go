// pkg/cerberus_cli/wrap.go

package cerberus_cli

import (
	"strings"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/logger"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// maxArgBytes bounds a single argument. The web server never passes anything
// longer than a filesystem path.
const maxArgBytes = 4096

// Wrap ensures panic recovery, telemetry, logging, and input hygiene
func Wrap(fn func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		logger.InitFallback()

		rc := cerberus_io.NewContext(cmd.Context(), cmd.Name())
		defer rc.End(&err)

		// Panic recovery
		defer func() {
			if r := recover(); r != nil {
				err = cerr.AssertionFailedf("panic: %v", r)
				rc.Log.Error("Panic recovered", zap.Any("panic", r))
			}
		}()

		cerberus_io.LogRuntimeExecutionContext()
		if cmd.Flags().NFlag() > 0 {
			rc.Log.Debug("🔎 Flags", zap.String("flags", cli.FlagDebugString(cmd)))
		}

		// Arguments arrive from the invoking process, which is untrusted
		// until admission completes
		if sanitizeErr := rejectHostileArguments(args); sanitizeErr != nil {
			rc.Log.Error("Input sanitization failed",
				zap.Error(sanitizeErr),
				zap.String("command", cmd.Name()))
			return cerberus_err.NewExpectedError(rc.Ctx, cerr.Wrap(sanitizeErr, "invalid input"))
		}

		err = fn(rc, cmd, args)
		if err != nil && !cerberus_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}

// rejectHostileArguments refuses argument vectors that could smuggle bytes
// into log lines or downstream system calls.
func rejectHostileArguments(args []string) error {
	for i, arg := range args {
		if strings.ContainsRune(arg, 0) {
			return cerr.Newf("argument %d contains a NUL byte", i)
		}
		if strings.ContainsAny(arg, "\n\r") {
			return cerr.Newf("argument %d contains a line break", i)
		}
		if len(arg) > maxArgBytes {
			return cerr.Newf("argument %d exceeds %d bytes", i, maxArgBytes)
		}
	}
	return nil
}
