// cmd/inspect/inspect.go
/*
Copyright © 2025 CODE MONKEY CYBERSECURITY git@cybermonkey.net.au

*/
package inspect

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_cli"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/envsafe"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/gateconfig"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"gopkg.in/yaml.v3"
)

// InspectCmd shows the policy this binary was built with. Reads nothing from
// the live system, so it is safe to run anywhere the binary can be copied.
var InspectCmd = &cobra.Command{
	Use:     "inspect",
	Aliases: []string{"policy"},
	Short:   "Show the compiled-in policy",
	Long: `Inspect prints the policy baked into this binary at build time: the handler,
the served directory and identity bands, the trusted caller, and the
sanitizer's allow and deny lists.

Examples:
  cerberus inspect                         # Human-readable policy
  cerberus inspect --format yaml           # Policy as YAML on stdout
  cerberus inspect --output policy.yaml    # Policy written to a file`,
	RunE: cerberus_cli.Wrap(runInspect),
}

func init() {
	cli.AddStringFlag(InspectCmd, "format", "", "text", "Output format: text or yaml")
	cli.AddStringFlag(InspectCmd, "output", "", "", "Write the policy as YAML to this file")
}

// policyView is the serialized shape of the compiled-in policy.
type policyView struct {
	Version     string   `yaml:"version"`
	Handler     string   `yaml:"handler"`
	BaseDir     string   `yaml:"base_dir"`
	Suffix      string   `yaml:"suffix"`
	MinUID      uint32   `yaml:"min_uid"`
	MaxUID      uint32   `yaml:"max_uid"`
	MinGID      uint32   `yaml:"min_gid"`
	MaxGID      uint32   `yaml:"max_gid"`
	SecurePath  string   `yaml:"secure_path"`
	CallerUser  string   `yaml:"caller_user"`
	CallerGroup string   `yaml:"caller_group"`
	EnvAllow    []string `yaml:"env_allow"`
	EnvDeny     []string `yaml:"env_deny"`
}

func runInspect(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	logger := otelzap.Ctx(rc.Ctx)

	format := cli.GetStringOrEmpty(cmd, "format")
	output := cli.GetStringOrEmpty(cmd, "output")

	cfg, err := gateconfig.Load(rc.Ctx)
	if err != nil {
		return err
	}

	view := policyView{
		Version:     shared.Version,
		Handler:     cfg.Handler,
		BaseDir:     cfg.BaseDir,
		Suffix:      cfg.Suffix,
		MinUID:      cfg.MinUID,
		MaxUID:      cfg.MaxUID,
		MinGID:      cfg.MinGID,
		MaxGID:      cfg.MaxGID,
		SecurePath:  cfg.SecurePath,
		CallerUser:  cfg.CallerUser,
		CallerGroup: cfg.CallerGroup,
		EnvAllow:    envsafe.DefaultAllow,
		EnvDeny:     envsafe.DefaultDeny,
	}

	if output != "" {
		if err := cerberus_io.WriteYAML(rc.Ctx, output, view); err != nil {
			return err
		}
		logger.Info("terminal prompt: ✅ Policy written to " + output)
		return nil
	}

	switch format {
	case "yaml":
		data, err := yaml.Marshal(view)
		if err != nil {
			return cerberus_err.NewBugError("failed to marshal policy", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
	case "text":
		logger.Info("terminal prompt: 📇 Compiled-in policy (version " + view.Version + ")")
		logger.Info("terminal prompt:    Handler:     " + view.Handler)
		logger.Info("terminal prompt:    Base dir:    " + view.BaseDir)
		logger.Info("terminal prompt:    Suffix:      " + view.Suffix)
		logger.Info(fmt.Sprintf("terminal prompt:    UID band:    %d-%d", view.MinUID, view.MaxUID))
		logger.Info(fmt.Sprintf("terminal prompt:    GID band:    %d-%d", view.MinGID, view.MaxGID))
		logger.Info("terminal prompt:    Secure PATH: " + view.SecurePath)
		logger.Info("terminal prompt:    Caller:      " + view.CallerUser + ":" + view.CallerGroup)
		logger.Info(fmt.Sprintf("terminal prompt:    Env allow:   %d patterns", len(view.EnvAllow)))
		logger.Info(fmt.Sprintf("terminal prompt:    Env deny:    %d patterns", len(view.EnvDeny)))
	default:
		return cerberus_err.NewExpectedError(rc.Ctx,
			fmt.Errorf("unknown format %q, use text or yaml", format))
	}
	return nil
}
