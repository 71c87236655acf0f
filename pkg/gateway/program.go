// pkg/gateway/program.go

// Package gateway drives the admission pipeline: rebuild the environment,
// audit the compiled-in policy, audit ourselves, audit the requested script
// and its owner, drop to that owner irreversibly, re-check who invoked us,
// audit the script's location, and finally replace this process with the
// configured handler. Every stage must pass before the next one runs.
package gateway

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/pathcheck"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// executablePath is swappable so tests can steer self-discovery.
var executablePath = os.Executable

// ProgramContext captures the facts about this invocation that later stages
// must not re-derive: where our binary really lives, and the real identity
// of whoever invoked us, recorded before any privilege change.
type ProgramContext struct {
	ExecutablePath string
	ProgramName    string
	RealUID        uint32
	RealGID        uint32
	StartedAt      time.Time
}

// NewProgramContext discovers the running binary and records the pre-drop
// real uid/gid. Discovery prefers the kernel's answer and falls back to
// argv[0] when /proc is unavailable.
func NewProgramContext(ctx context.Context) (*ProgramContext, error) {
	logger := otelzap.Ctx(ctx)

	exe, err := executablePath()
	if err != nil {
		logger.Debug("⚠️ Kernel executable discovery failed, falling back to argv[0]",
			zap.Error(err))
		if len(os.Args) == 0 || os.Args[0] == "" {
			return nil, cerberus_err.NewSecurityError(
				"cannot discover own executable path",
				"The gateway refuses to run without knowing which binary it is")
		}
		exe = os.Args[0]
	}

	canonical, err := pathcheck.Resolve(ctx, exe)
	if err != nil {
		return nil, err
	}

	pc := &ProgramContext{
		ExecutablePath: canonical,
		ProgramName:    filepath.Base(canonical),
		RealUID:        uint32(os.Getuid()),
		RealGID:        uint32(os.Getgid()),
		StartedAt:      time.Now(),
	}
	logger.Debug("🧱 Program context established",
		zap.String("executable", pc.ExecutablePath),
		zap.Uint32("real_uid", pc.RealUID),
		zap.Uint32("real_gid", pc.RealGID))
	return pc, nil
}
