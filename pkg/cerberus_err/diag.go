// pkg/cerberus_err/diag.go
//
// The one-line verdict written to stderr before exiting. When stderr is a
// pipe the web server owns it and prepends nothing, so the line carries its
// own syslog-style timestamp; on a terminal the operator is watching and the
// timestamp is noise.

package cerberus_err

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// timestampLayout matches the classic syslog prefix, day padded with a space.
const timestampLayout = "Jan _2 15:04:05"

// Seams for tests.
var (
	isTerminal = term.IsTerminal
	now        = time.Now
)

// DiagnosticLine renders the verdict line for err.
func DiagnosticLine(progname string, err error, tty bool, at time.Time) string {
	var sb strings.Builder

	if !tty {
		sb.WriteString(at.Format(timestampLayout))
		sb.WriteString(": ")
	}

	sb.WriteString(progname)
	sb.WriteString(": ")
	sb.WriteString(flattenMessage(err))
	sb.WriteString("\n")

	return sb.String()
}

// EmitDiagnostic writes the verdict line for err to stderr. Nil is a no-op.
func EmitDiagnostic(progname string, err error) {
	if err == nil {
		return
	}

	line := DiagnosticLine(progname, err, isTerminal(int(os.Stderr.Fd())), now())
	_, _ = fmt.Fprint(os.Stderr, line)
}

// flattenMessage collapses err into a single line. Web server error logs are
// line oriented; a multi-line message would shear into orphan records.
func flattenMessage(err error) string {
	var classified *ClassifiedError

	msg := err.Error()
	if errors.As(err, &classified) {
		msg = classified.DiagnosticMessage()
	}

	return strings.Join(strings.Fields(msg), " ")
}
