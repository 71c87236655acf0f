// pkg/shared/vars.go

package shared

import (
	"sync/atomic"

	"go.uber.org/zap"
)

const (
	// CerberusID is the application identifier used for log and state paths.
	CerberusID = "cerberus"

	// CerberusLogDir is the preferred system log directory.
	CerberusLogDir = "/var/log/cyberMonkey"

	// CerberusLogFile is the preferred system log file.
	CerberusLogFile = "/var/log/cyberMonkey/cerberus.log"

	// CerberusLogPWD is the working-directory fallback log file.
	CerberusLogPWD = "./cerberus.log"

	// CerberusStateDir holds telemetry opt-in markers and state. A fixed
	// system path on purpose: a setuid binary must never derive state
	// locations from the inherited environment.
	CerberusStateDir = "/var/lib/cerberus"
)

var syncedAlready atomic.Bool

// SafeSync flushes buffered log entries once. zap returns EINVAL or ENOTTY
// when stderr is a terminal or pipe; that noise is not actionable and is
// swallowed here.
func SafeSync() {
	if !syncedAlready.CompareAndSwap(false, true) {
		return
	}
	_ = zap.L().Sync()
}
