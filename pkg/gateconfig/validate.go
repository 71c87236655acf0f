// pkg/gateconfig/validate.go

package gateconfig

import (
	"context"
	"fmt"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/identity"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/pathcheck"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Validate audits the compiled-in policy against the live system: tag-shape
// first, then handler and base-directory admission checks, then caller
// resolution. Every failure is a deployment mistake, so every failure is
// reported as configuration, whatever check tripped underneath. On success
// the caller's uid/gid are filled in for the post-drop recheck.
func Validate(rc *cerberus_io.RuntimeContext, cfg *Config) error {
	logger := otelzap.Ctx(rc.Ctx)

	if err := rc.ValidateStruct(cfg); err != nil {
		return cerberus_err.NewConfigError(
			"compiled-in policy fails shape validation", err,
			"Rebuild with corrected -ldflags values")
	}

	if err := validateHandler(rc.Ctx, cfg); err != nil {
		return err
	}
	if err := validateBaseDir(rc.Ctx, cfg); err != nil {
		return err
	}
	if err := resolveCaller(rc.Ctx, cfg); err != nil {
		return err
	}

	logger.Debug("✅ Compiled-in policy validated",
		zap.String("caller", cfg.CallerUser),
		zap.Uint32("caller_uid", cfg.CallerUID),
		zap.Uint32("caller_gid", cfg.CallerGID))
	return nil
}

func validateHandler(ctx context.Context, cfg *Config) error {
	if _, err := pathcheck.ResolveSame(ctx, cfg.Handler); err != nil {
		return cerberus_err.NewConfigError(
			fmt.Sprintf("handler %s must exist in canonical form", cfg.Handler), err,
			"Point HandlerPath at the real interpreter, not a symlink")
	}
	if err := pathcheck.ValidateChain(ctx, cfg.Handler, "", 0, 0); err != nil {
		return cerberus_err.NewConfigError(
			fmt.Sprintf("directories above handler %s must be superuser-owned and closed to world writes", cfg.Handler),
			cerberus_err.WrapOwnershipError(err))
	}

	rec, err := pathcheck.StatRecord(ctx, cfg.Handler)
	if err != nil {
		return cerberus_err.NewConfigError(
			fmt.Sprintf("handler %s must be statable", cfg.Handler), err)
	}
	switch {
	case !rec.IsRegular():
		return cerberus_err.NewConfigError(
			fmt.Sprintf("handler %s is not a regular file", cfg.Handler), nil)
	case !rec.OwnedBy(0, 0):
		return cerberus_err.NewConfigError(
			fmt.Sprintf("handler %s is owned by uid %d gid %d, expected the superuser", cfg.Handler, rec.UID, rec.GID), nil,
			fmt.Sprintf("Fix with: chown 0:0 %s", cfg.Handler))
	case rec.WorldWritable():
		return cerberus_err.NewConfigError(
			fmt.Sprintf("handler %s is writable by others", cfg.Handler), nil,
			fmt.Sprintf("Fix with: chmod o-w %s", cfg.Handler))
	case rec.Setuid() || rec.Setgid():
		return cerberus_err.NewConfigError(
			fmt.Sprintf("handler %s carries setuid or setgid bits", cfg.Handler), nil,
			"The handler runs after the drop and must not escalate on its own")
	case !rec.WorldExecutable():
		return cerberus_err.NewConfigError(
			fmt.Sprintf("handler %s is not executable by others", cfg.Handler), nil,
			fmt.Sprintf("The dropped identity must be able to exec it: chmod o+x %s", cfg.Handler))
	}
	return nil
}

func validateBaseDir(ctx context.Context, cfg *Config) error {
	if _, err := pathcheck.ResolveSame(ctx, cfg.BaseDir); err != nil {
		return cerberus_err.NewConfigError(
			fmt.Sprintf("base directory %s must exist in canonical form", cfg.BaseDir), err)
	}
	if err := pathcheck.ValidateChain(ctx, cfg.BaseDir, "", 0, 0); err != nil {
		return cerberus_err.NewConfigError(
			fmt.Sprintf("directories above base directory %s must be superuser-owned and closed to world writes", cfg.BaseDir),
			cerberus_err.WrapOwnershipError(err))
	}

	rec, err := pathcheck.StatRecord(ctx, cfg.BaseDir)
	if err != nil {
		return cerberus_err.NewConfigError(
			fmt.Sprintf("base directory %s must be statable", cfg.BaseDir), err)
	}
	switch {
	case !rec.IsDir():
		return cerberus_err.NewConfigError(
			fmt.Sprintf("base directory %s is not a directory", cfg.BaseDir), nil)
	case !rec.OwnedBy(0, 0):
		return cerberus_err.NewConfigError(
			fmt.Sprintf("base directory %s is owned by uid %d gid %d, expected the superuser", cfg.BaseDir, rec.UID, rec.GID), nil)
	case rec.WorldWritable():
		return cerberus_err.NewConfigError(
			fmt.Sprintf("base directory %s is writable by others", cfg.BaseDir), nil,
			fmt.Sprintf("Fix with: chmod o-w %s", cfg.BaseDir))
	case !rec.WorldExecutable():
		return cerberus_err.NewConfigError(
			fmt.Sprintf("base directory %s is not traversable by others", cfg.BaseDir), nil,
			fmt.Sprintf("Script owners must be able to pass through it: chmod o+x %s", cfg.BaseDir))
	}
	return nil
}

func resolveCaller(ctx context.Context, cfg *Config) error {
	// Configured names are held to the strict POSIX-portable rule; the looser
	// charset in identity.CheckPortableName is for names the name database
	// hands back, not for policy the deployer chose.
	if err := shared.ValidatePrincipalName(cfg.CallerUser, "caller username"); err != nil {
		return cerberus_err.NewConfigError(
			fmt.Sprintf("caller username %q is not a portable name", cfg.CallerUser), err)
	}
	if err := shared.ValidatePrincipalName(cfg.CallerGroup, "caller groupname"); err != nil {
		return cerberus_err.NewConfigError(
			fmt.Sprintf("caller groupname %q is not a portable name", cfg.CallerGroup), err)
	}

	acct, err := identity.LookupUsername(ctx, cfg.CallerUser)
	if err != nil {
		return cerberus_err.NewConfigError(
			fmt.Sprintf("caller account %s does not exist on this system", cfg.CallerUser), err,
			"Install or rename the web server account the policy names")
	}
	grp, err := identity.LookupGroupname(ctx, cfg.CallerGroup)
	if err != nil {
		return cerberus_err.NewConfigError(
			fmt.Sprintf("caller group %s does not exist on this system", cfg.CallerGroup), err)
	}

	cfg.CallerUID = acct.UID
	cfg.CallerGID = grp.GID
	return nil
}
