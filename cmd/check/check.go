// cmd/check/check.go
/*
Copyright © 2025 CODE MONKEY CYBERSECURITY git@cybermonkey.net.au

*/
package check

import (
	"fmt"
	"sort"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_cli"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/envsafe"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/gateconfig"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/gateway"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/identity"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/pathcheck"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// CheckCmd preflights a deployment without privileges: it audits the
// compiled-in policy against the live system, classifies request variables,
// and dry-runs the geometry checks for a given script. Nothing here drops
// privileges or execs anything.
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Preflight the compiled-in policy without privileges",
	Long: `Check audits this binary's compiled-in policy against the live system and
reports every problem it can find, instead of stopping at the first one the
way the gate does.

Examples:
  cerberus check                                   # Audit the policy
  cerberus check --request-env request.env         # Classify request variables
  cerberus check --script /home/alice/web/x.php    # Dry-run the script checks
  cerberus check --request-env r.env --expect e.yaml
  cerberus check --keep PATH_INFO --drop LD_PRELOAD`,
	RunE: cerberus_cli.Wrap(runCheck),
}

func init() {
	cli.AddStringFlag(CheckCmd, "request-env", "", "", "Dotenv file of request variables to classify")
	cli.AddStringFlag(CheckCmd, "script", "", "", "Dry-run the script checks against this path")
	cli.AddStringFlag(CheckCmd, "expect", "", "", "YAML file of variable names expected to survive or be dropped")
	cli.AddStringSliceFlag(CheckCmd, "keep", "", nil, "Names expected to survive sanitization, in addition to --expect")
	cli.AddStringSliceFlag(CheckCmd, "drop", "", nil, "Names expected to be dropped by sanitization, in addition to --expect")
	cli.AddBoolFlag(CheckCmd, "explain", "", false, "Print the sanitizer verdict for every request variable")
}

// expectations is the --expect file shape: names the operator requires to
// survive sanitization, and names that must not.
type expectations struct {
	Keep []string `yaml:"keep"`
	Drop []string `yaml:"drop"`
}

func runCheck(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	logger := otelzap.Ctx(rc.Ctx)

	requestEnvPath := cli.GetStringOrEmpty(cmd, "request-env")
	scriptPath := cli.GetStringOrEmpty(cmd, "script")
	expectPath := cli.GetStringOrEmpty(cmd, "expect")
	explain, _ := cmd.Flags().GetBool("explain")

	var findings *multierror.Error
	report := func(err error) {
		findings = multierror.Append(findings, err)
		logger.Info("terminal prompt: ❌ " + err.Error())
	}

	logger.Info("terminal prompt: 🔎 Cerberus policy preflight")

	cfg, err := gateconfig.Load(rc.Ctx)
	if err != nil {
		report(err)
	} else {
		logger.Info("terminal prompt:    Handler:  " + cfg.Handler)
		logger.Info("terminal prompt:    Base:     " + cfg.BaseDir)
		logger.Info("terminal prompt:    Suffix:   " + cfg.Suffix)
		logger.Info("terminal prompt:    Caller:   " + cfg.CallerUser + ":" + cfg.CallerGroup)
		logger.Info(fmt.Sprintf("terminal prompt:    UID band: %d-%d", cfg.MinUID, cfg.MaxUID))
		logger.Info(fmt.Sprintf("terminal prompt:    GID band: %d-%d", cfg.MinGID, cfg.MaxGID))

		if err := gateconfig.Validate(rc, cfg); err != nil {
			report(err)
		} else {
			logger.Info("terminal prompt: ✅ Policy validates against this system")
		}
	}

	request := map[string]string{}
	if requestEnvPath != "" {
		request, err = godotenv.Read(requestEnvPath)
		if err != nil {
			report(fmt.Errorf("cannot read request environment %s: %w", requestEnvPath, err))
		} else {
			checkRequestEnvironment(rc, request, explain)
		}
	}

	var expect expectations
	haveExpectations := false
	if expectPath != "" {
		if err := cerberus_io.ReadYAML(rc.Ctx, expectPath, &expect); err != nil {
			report(err)
		} else {
			haveExpectations = true
		}
	}
	keepFlags, _ := cmd.Flags().GetStringSlice("keep")
	dropFlags, _ := cmd.Flags().GetStringSlice("drop")
	if len(keepFlags) > 0 || len(dropFlags) > 0 {
		expect.Keep = append(expect.Keep, keepFlags...)
		expect.Drop = append(expect.Drop, dropFlags...)
		haveExpectations = true
	}
	if haveExpectations {
		checkExpectations(rc, expect, request, report)
	}

	if scriptPath != "" && cfg != nil {
		checkScript(rc, cfg, scriptPath, request, report)
	}

	if err := findings.ErrorOrNil(); err != nil {
		logger.Info(fmt.Sprintf("terminal prompt: 🚫 Preflight found %d problem(s)", findings.Len()))
		return err
	}
	logger.Info("terminal prompt: ✅ Preflight passed")
	return nil
}

// checkRequestEnvironment classifies each request variable the way the gate's
// sanitizer would and flags names the CGI layer should never produce.
func checkRequestEnvironment(rc *cerberus_io.RuntimeContext, request map[string]string, explain bool) {
	logger := otelzap.Ctx(rc.Ctx)

	names := make([]string, 0, len(request))
	for name := range request {
		names = append(names, name)
	}
	sort.Strings(names)

	kept := 0
	for _, name := range names {
		entry := name + "=" + request[name]
		verdict := envsafe.Classify(entry, envsafe.DefaultAllow, envsafe.DefaultDeny)
		if verdict == envsafe.VerdictKept {
			kept++
		}
		if explain || verdict != envsafe.VerdictKept {
			logger.Info(fmt.Sprintf("terminal prompt:    %-28s %s", name, verdict))
		}
		if !shared.EnvNamePattern.MatchString(name) {
			logger.Warn("⚠️ Request variable has a hostile name",
				zap.String("name", shared.SanitizeForLogging(name)))
		}
	}
	logger.Info(fmt.Sprintf("terminal prompt: 🧹 Sanitizer keeps %d of %d request variables", kept, len(names)))
}

// checkExpectations verifies the operator's keep/drop lists against the
// sanitizer's actual verdicts.
func checkExpectations(rc *cerberus_io.RuntimeContext, expect expectations,
	request map[string]string, report func(error)) {
	logger := otelzap.Ctx(rc.Ctx)

	entryFor := func(name string) string {
		if value, ok := request[name]; ok && value != "" {
			return name + "=" + value
		}
		// Placeholder value so the verdict reflects the name rules alone.
		return name + "=1"
	}

	for _, name := range expect.Keep {
		if v := envsafe.Classify(entryFor(name), envsafe.DefaultAllow, envsafe.DefaultDeny); v != envsafe.VerdictKept {
			report(fmt.Errorf("expected %s to survive sanitization, got verdict %q", name, v))
		}
	}
	for _, name := range expect.Drop {
		if v := envsafe.Classify(entryFor(name), envsafe.DefaultAllow, envsafe.DefaultDeny); v == envsafe.VerdictKept {
			report(fmt.Errorf("expected %s to be dropped by sanitization, but it survives", name))
		}
	}
	logger.Info(fmt.Sprintf("terminal prompt: 📇 Checked %d keep and %d drop expectations",
		len(expect.Keep), len(expect.Drop)))
}

// checkScript dry-runs the script-facing admission checks: canonical path,
// owner derivation, and the location audit. Walk results depend on who runs
// the preflight, so a refusal here is a finding, not proof the gate would
// refuse for the web server.
func checkScript(rc *cerberus_io.RuntimeContext, cfg *gateconfig.Config,
	scriptPath string, request map[string]string, report func(error)) {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("terminal prompt: 🗂️ Dry-running script checks for " + scriptPath)

	script, err := pathcheck.ResolveSame(rc.Ctx, scriptPath)
	if err != nil {
		report(err)
		return
	}
	rec, err := pathcheck.StatRecord(rc.Ctx, script)
	if err != nil {
		report(err)
		return
	}
	ident, err := identity.DeriveScriptIdentity(rc.Ctx, rec.UID, rec.GID,
		cfg.UIDRange(), cfg.GIDRange())
	if err != nil {
		report(err)
		return
	}
	logger.Info(fmt.Sprintf("terminal prompt:    Would run as %s:%s (uid %d gid %d)",
		ident.Username, ident.Groupname, ident.UID, ident.GID))

	docRoot := request[shared.EnvDocumentRoot]
	if docRoot == "" {
		logger.Info("terminal prompt: ⚠️ No DOCUMENT_ROOT in the request environment; using the owner's home")
		docRoot = ident.HomeDir
	}
	if err := gateway.ValidateScriptLocation(rc.Ctx, script, rec, ident, cfg, docRoot); err != nil {
		report(err)
		return
	}
	logger.Info("terminal prompt: ✅ Script checks passed")
}
