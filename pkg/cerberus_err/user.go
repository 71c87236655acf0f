// pkg/cerberus_err/user.go

package cerberus_err

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var debugMode bool

// SetDebugMode toggles verbose error reporting for operator commands
func SetDebugMode(enabled bool) {
	debugMode = enabled
}

// DebugEnabled reports whether --debug was requested
func DebugEnabled() bool {
	return debugMode
}

// UserError marks an error as expected and operator-correctable: wrong
// flags, a host that legitimately fails a check. These read as notices,
// never as failures of the program itself.
type UserError struct {
	cause error
}

func (e *UserError) Error() string {
	return e.cause.Error()
}

func (e *UserError) Unwrap() error {
	return e.cause
}

// NewExpectedError wraps err as a UserError. Returns nil for nil.
func NewExpectedError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	otelzap.Ctx(ctx).Info("Expected user error", zap.Error(err))
	return &UserError{cause: err}
}

// IsExpectedUserError reports whether err is a UserError
func IsExpectedUserError(err error) bool {
	var userErr *UserError
	return errors.As(err, &userErr)
}

// PrintError reports err to the operator on stderr. User errors read as
// notices, everything else as errors. Nil produces no output. Under --debug
// the full chain is printed, stacks and hints included, without changing
// the exit code the caller will use.
func PrintError(ctx context.Context, userMessage string, err error) {
	if err == nil {
		return
	}

	logger := otelzap.Ctx(ctx)

	if debugMode {
		logger.Error(userMessage, zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %s\n%+v\n", userMessage, err)
		return
	}

	if IsExpectedUserError(err) {
		logger.Info(userMessage, zap.Error(err))
		fmt.Fprintf(os.Stderr, "Notice: %s\n  %v\n", userMessage, err)
		return
	}

	logger.Error(userMessage, zap.Error(err))
	fmt.Fprintf(os.Stderr, "Error: %s\n  %v\n", userMessage, err)
}

// ExitWithError prints err and terminates with its classified exit code
func ExitWithError(ctx context.Context, userMessage string, err error) {
	PrintError(ctx, userMessage, err)
	if !DebugEnabled() {
		_, _ = os.Stderr.WriteString(" Tip: rerun with --debug for more details.\n")
	}
	os.Exit(GetExitCode(err))
}
