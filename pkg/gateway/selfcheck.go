// pkg/gateway/selfcheck.go

package gateway

import (
	"context"
	"fmt"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/pathcheck"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// SelfCheck audits the gateway's own binary. A setuid binary that can be
// rewritten, or executed by arbitrary local users, is a standing escalation
// offer; the gateway refuses to serve from such a footing. The binary must
// be a superuser-owned regular file, closed to world writes, not executable
// by others, with a superuser-owned ancestor chain all the way up.
func SelfCheck(ctx context.Context, pc *ProgramContext) error {
	logger := otelzap.Ctx(ctx)

	if err := pathcheck.ValidateChain(ctx, pc.ExecutablePath, "", 0, 0); err != nil {
		return err
	}

	rec, err := pathcheck.StatRecord(ctx, pc.ExecutablePath)
	if err != nil {
		return err
	}
	switch {
	case !rec.IsRegular():
		return cerberus_err.NewSecurityError(
			fmt.Sprintf("gateway binary %s is not a regular file", pc.ExecutablePath))
	case !rec.OwnedBy(0, 0):
		return cerberus_err.NewSecurityError(
			fmt.Sprintf("gateway binary %s is owned by uid %d gid %d, expected the superuser",
				pc.ExecutablePath, rec.UID, rec.GID),
			fmt.Sprintf("Fix with: chown 0:0 %s", pc.ExecutablePath))
	case rec.WorldWritable():
		return cerberus_err.NewSecurityError(
			fmt.Sprintf("gateway binary %s is writable by others", pc.ExecutablePath),
			fmt.Sprintf("Fix with: chmod o-w %s", pc.ExecutablePath))
	case rec.WorldExecutable():
		return cerberus_err.NewSecurityError(
			fmt.Sprintf("gateway binary %s is executable by others", pc.ExecutablePath),
			"Only the web server's group may execute a privilege gate",
			fmt.Sprintf("Fix with: chmod o-x %s", pc.ExecutablePath))
	}

	logger.Debug("✅ Gateway binary audit passed",
		zap.String("executable", pc.ExecutablePath),
		zap.String("mode", rec.Mode.String()))
	return nil
}
