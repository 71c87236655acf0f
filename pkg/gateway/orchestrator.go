// pkg/gateway/orchestrator.go

package gateway

import (
	"context"
	"fmt"
	"os"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/envsafe"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/gateconfig"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/identity"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/pathcheck"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/privilege_drop"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/telemetry"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Gateway threads one admission run through its stages. A Gateway is
// single-use: stages write resolved state into it and later stages read
// that state back.
type Gateway struct {
	cfg     *gateconfig.Config
	pc      *ProgramContext
	dropper *privilege_drop.Transitioner
	exec    func(argv0 string, argv []string, envv []string) error

	snap   *envsafe.Snapshot
	script string
	rec    pathcheck.FileSecurityRecord
	ident  identity.ScriptIdentity
}

// New builds a Gateway around the program context captured at startup.
func New(pc *ProgramContext) *Gateway {
	return &Gateway{
		pc:      pc,
		dropper: privilege_drop.New(),
		exec:    unix.Exec,
	}
}

// Run drives the admission pipeline stage by stage. Every stage is a
// precondition gate: the first failure aborts the run and its error carries
// the verdict. On full success the process image is replaced by the handler
// and Run never returns; a return from the final stage means the exec call
// itself failed.
func (g *Gateway) Run(rc *cerberus_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Debug("🚪 Admission run starting",
		zap.String("program", g.pc.ProgramName),
		zap.Uint32("real_uid", g.pc.RealUID),
		zap.Uint32("real_gid", g.pc.RealGID))

	stages := []struct {
		name string
		run  func(ctx context.Context) error
	}{
		{"load_config", g.loadConfig},
		{"sanitize_environment", g.sanitizeEnvironment},
		{"validate_config", func(ctx context.Context) error { return gateconfig.Validate(rc, g.cfg) }},
		{"self_check", g.selfCheck},
		{"resolve_script_path", g.resolveScriptPath},
		{"derive_script_identity", g.deriveScriptIdentity},
		{"drop_privileges", g.dropPrivileges},
		{"recheck_caller", g.recheckCaller},
		{"validate_script_location", g.validateScriptLocation},
	}

	for _, s := range stages {
		ctx, span := telemetry.Start(rc.Ctx, "gateway."+s.name)
		err := s.run(ctx)
		span.End()
		if err != nil {
			logger.Debug("🚫 Admission stage refused the request",
				zap.String("stage", s.name),
				zap.Error(err))
			return err
		}
		logger.Debug("✅ Admission stage passed", zap.String("stage", s.name))
	}

	ctx, span := telemetry.Start(rc.Ctx, "gateway.hand_off")
	defer span.End()
	return g.handOff(ctx)
}

func (g *Gateway) loadConfig(ctx context.Context) error {
	cfg, err := gateconfig.Load(ctx)
	if err != nil {
		return err
	}
	g.cfg = cfg
	return nil
}

// sanitizeEnvironment rebuilds the environment from the allow list, applies
// it to the live process, and moves to / so no inherited working directory
// leaks into later stages or the handler.
func (g *Gateway) sanitizeEnvironment(ctx context.Context) error {
	snap, err := envsafe.Sanitize(ctx, os.Environ(),
		envsafe.DefaultAllow, envsafe.DefaultDeny, g.cfg.SecurePath)
	if err != nil {
		return err
	}
	if err := snap.Apply(ctx); err != nil {
		return err
	}
	if err := os.Chdir("/"); err != nil {
		return cerberus_err.NewOSError("failed to change directory to /", err)
	}
	g.snap = snap
	return nil
}

func (g *Gateway) selfCheck(ctx context.Context) error {
	return SelfCheck(ctx, g.pc)
}

// resolveScriptPath takes the script path from the sanitized snapshot, never
// from the raw inherited environment.
func (g *Gateway) resolveScriptPath(ctx context.Context) error {
	raw, ok := g.snap.Get(shared.EnvPathTranslated)
	if !ok || raw == "" {
		return cerberus_err.NewUsageError(
			"PATH_TRANSLATED is not set",
			"Invoke through the web server's CGI machinery, not by hand")
	}
	script, err := pathcheck.ResolveSame(ctx, raw)
	if err != nil {
		return err
	}
	g.script = script
	return nil
}

func (g *Gateway) deriveScriptIdentity(ctx context.Context) error {
	rec, err := pathcheck.StatRecord(ctx, g.script)
	if err != nil {
		return err
	}
	ident, err := identity.DeriveScriptIdentity(ctx, rec.UID, rec.GID,
		g.cfg.UIDRange(), g.cfg.GIDRange())
	if err != nil {
		return err
	}
	g.rec = rec
	g.ident = ident
	return nil
}

func (g *Gateway) dropPrivileges(ctx context.Context) error {
	return g.dropper.Drop(ctx, g.ident.UID, g.ident.GID)
}

// recheckCaller compares the pre-drop real identity captured at startup
// against the configured trusted caller. Runs after the drop: the boundary
// being enforced is who was allowed to reach the drop at all, and a refusal
// here must not leave the process holding superuser credentials.
func (g *Gateway) recheckCaller(ctx context.Context) error {
	if g.pc.RealUID != g.cfg.CallerUID || g.pc.RealGID != g.cfg.CallerGID {
		return cerberus_err.NewCallerError(
			fmt.Sprintf("invoked by uid %d gid %d, not the trusted caller %s:%s",
				g.pc.RealUID, g.pc.RealGID, g.cfg.CallerUser, g.cfg.CallerGroup),
			fmt.Sprintf("Only the %s account may invoke this gate", g.cfg.CallerUser))
	}
	return nil
}

func (g *Gateway) validateScriptLocation(ctx context.Context) error {
	docRoot, _ := g.snap.Get(shared.EnvDocumentRoot)
	return ValidateScriptLocation(ctx, g.script, g.rec, g.ident, g.cfg, docRoot)
}

// handOff replaces the process image with the handler. The handler receives
// only its own path as argv and the sanitized snapshot as environment; the
// script path travels in PATH_TRANSLATED as the CGI contract requires.
// A successful exec never returns, so every return from here is a failure.
func (g *Gateway) handOff(ctx context.Context) error {
	logger := otelzap.Ctx(ctx)
	logger.Debug("🚀 Handing off to handler",
		zap.String("handler", g.cfg.Handler),
		zap.String("script", g.script),
		zap.String("user", g.ident.Username),
		zap.Int("environment_variables", g.snap.Len()))

	err := g.exec(g.cfg.Handler, []string{g.cfg.Handler}, g.snap.Environ())
	return cerberus_err.NewOSError(
		fmt.Sprintf("failed to exec handler %s", g.cfg.Handler), err)
}
