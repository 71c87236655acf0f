// pkg/telemetry/telemetry_management/config.go
//
// Operator control over the local-only telemetry opt-in. Telemetry is a
// filesystem marker, nothing more: present means spans are appended to a
// local JSONL file, absent means the tracer is a no-op.

package telemetry_management

import (
	"os"
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/telemetry"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/xdg"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Enable creates the opt-in marker so subsequent invocations record spans.
func Enable(rc *cerberus_io.RuntimeContext) error {
	return enable(rc, telemetry.MarkerPath())
}

// Disable removes the opt-in marker. Removing an absent marker is fine.
func Disable(rc *cerberus_io.RuntimeContext) error {
	return disable(rc, telemetry.MarkerPath())
}

// Show reports the current opt-in state, where spans land, and how to read
// them.
func Show(rc *cerberus_io.RuntimeContext) {
	logger := otelzap.Ctx(rc.Ctx)

	state := "disabled"
	if telemetry.IsEnabled() {
		state = "enabled"
	}
	spanFile := telemetry.SpanFilePath()

	logger.Info("terminal prompt: 📊 Telemetry is " + state)
	logger.Info("terminal prompt:    Marker:   " + telemetry.MarkerPath())
	logger.Info("terminal prompt:    Spans:    " + spanFile)
	logger.Info("terminal prompt:    Privacy:  local JSONL only, nothing is transmitted")
	logger.Info("terminal prompt:    Identity: " + telemetry.AnonTelemetryID())

	logger.Info(" Analysis commands",
		zap.String("summary", "cerberus telemetry stats"),
		zap.String("stage_frequency", "jq -r '.Name' "+spanFile+" | sort | uniq -c | sort -nr"))
}

func enable(rc *cerberus_io.RuntimeContext, marker string) error {
	logger := otelzap.Ctx(rc.Ctx)

	if err := os.MkdirAll(filepath.Dir(marker), xdg.FilePermOwnerRWX); err != nil {
		return cerberus_err.NewOSError("cannot create telemetry state directory", err)
	}
	if err := os.WriteFile(marker, []byte{}, xdg.FilePermOwnerReadWrite); err != nil {
		return cerberus_err.NewOSError("cannot create telemetry opt-in marker", err)
	}

	logger.Info("terminal prompt: ✅ Telemetry enabled")
	logger.Info("terminal prompt:    Spans will be appended to " + telemetry.SpanFilePath())
	return nil
}

func disable(rc *cerberus_io.RuntimeContext, marker string) error {
	logger := otelzap.Ctx(rc.Ctx)

	if err := os.Remove(marker); err != nil && !os.IsNotExist(err) {
		return cerberus_err.NewOSError("cannot remove telemetry opt-in marker", err)
	}

	logger.Info("terminal prompt: ✅ Telemetry disabled")
	return nil
}
