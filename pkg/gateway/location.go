// pkg/gateway/location.go

package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/gateconfig"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/identity"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/pathcheck"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ValidateScriptLocation runs the geography checks: the script must sit
// inside the served base, inside its owner's home, and inside the request's
// document root; the owner controls every directory from the script up to
// the home; the system controls everything from the home up to /; and the
// script file itself must be an ordinary, non-escalating, suffix-matching
// target. Runs after the drop, so directory traversal happens with the
// script owner's own access rights.
func ValidateScriptLocation(ctx context.Context, script string, rec pathcheck.FileSecurityRecord,
	ident identity.ScriptIdentity, cfg *gateconfig.Config, docRoot string) error {
	logger := otelzap.Ctx(ctx)

	home, err := checkContainment(ctx, script, ident, cfg)
	if err != nil {
		return err
	}
	if err := checkDocumentRoot(ctx, script, docRoot); err != nil {
		return err
	}
	if err := pathcheck.ValidateChain(ctx, script, home, ident.UID, ident.GID); err != nil {
		return err
	}
	if err := pathcheck.ValidateChain(ctx, home, "", 0, 0); err != nil {
		return err
	}
	if err := checkScriptFile(script, rec); err != nil {
		return err
	}
	if err := checkSuffix(script, cfg.Suffix); err != nil {
		return err
	}

	logger.Debug("✅ Script location audit passed",
		zap.String("script", script),
		zap.String("home", home),
		zap.String("document_root", docRoot))
	return nil
}

// checkContainment pins the script under the served base directory and under
// its owner's canonical home, returning the canonical home for the walks.
func checkContainment(ctx context.Context, script string, ident identity.ScriptIdentity,
	cfg *gateconfig.Config) (string, error) {
	if !pathcheck.Contains(script, cfg.BaseDir) {
		return "", cerberus_err.NewSecurityError(
			fmt.Sprintf("script %s is outside the served base directory %s", script, cfg.BaseDir),
			"Only scripts under the configured base are ever served")
	}

	home, err := pathcheck.ResolveSame(ctx, ident.HomeDir)
	if err != nil {
		return "", err
	}
	if !pathcheck.Contains(script, home) {
		return "", cerberus_err.NewSecurityError(
			fmt.Sprintf("script %s is outside its owner's home directory %s", script, home),
			"A script must live inside the home of the account it runs as")
	}
	return home, nil
}

// checkDocumentRoot requires the request's document root to be present,
// canonical, and to contain the script.
func checkDocumentRoot(ctx context.Context, script, docRoot string) error {
	if docRoot == "" {
		return cerberus_err.NewUsageError(
			"DOCUMENT_ROOT is not set",
			"Invoke through the web server's CGI machinery, not by hand")
	}
	canonical, err := pathcheck.ResolveSame(ctx, docRoot)
	if err != nil {
		return err
	}
	if !pathcheck.Contains(script, canonical) {
		return cerberus_err.NewSecurityError(
			fmt.Sprintf("script %s is outside the document root %s", script, canonical))
	}
	return nil
}

// checkScriptFile vets the script's own stat record.
func checkScriptFile(script string, rec pathcheck.FileSecurityRecord) error {
	switch {
	case !rec.IsRegular():
		return cerberus_err.NewSecurityError(
			fmt.Sprintf("script %s is not a regular file", script))
	case rec.WorldWritable():
		return cerberus_err.NewSecurityError(
			fmt.Sprintf("script %s is writable by others", script),
			fmt.Sprintf("Fix with: chmod o-w %s", script))
	case rec.Setuid() || rec.Setgid():
		return cerberus_err.NewSecurityError(
			fmt.Sprintf("script %s carries setuid or setgid bits", script),
			"Scripts are run by the handler and must not escalate on their own")
	}
	return nil
}

// checkSuffix requires the script's filename to end with the configured
// suffix.
func checkSuffix(script, suffix string) error {
	if !strings.HasSuffix(script, suffix) {
		return cerberus_err.NewSecurityError(
			fmt.Sprintf("script %s does not carry the required %s suffix", script, suffix),
			"Rename the script or adjust the build-time suffix policy")
	}
	return nil
}
