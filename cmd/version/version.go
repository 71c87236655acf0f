// cmd/version/version.go
/*
Copyright © 2025 CODE MONKEY CYBERSECURITY git@cybermonkey.net.au

*/
package version

import (
	"fmt"
	"runtime"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_cli"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cerberus version",
	RunE: cerberus_cli.Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		logger := otelzap.Ctx(rc.Ctx)
		logger.Info(fmt.Sprintf("terminal prompt: cerberus %s %s %s/%s",
			shared.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH))
		return nil
	}),
}
