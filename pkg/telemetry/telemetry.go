// pkg/telemetry/telemetry.go
//
// Local-only invocation tracing. Spans are appended as JSONL to a file on
// this machine; nothing is ever transmitted. Telemetry is off unless the
// operator creates the opt-in marker. All paths are fixed system locations
// with an XDG fallback for unprivileged operator runs: the gate must never
// derive a path from HOME or any other inherited variable.
package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/xdg"
	cerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var tracer trace.Tracer = noop.NewTracerProvider().Tracer(shared.CerberusID)

// Init configures OpenTelemetry; call early in main(). A disabled or
// unwritable telemetry setup is never fatal: the gate's job is admission
// control, not observability.
func Init(service string) error {
	if !IsEnabled() {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		tracer = tp.Tracer(service)
		return nil
	}

	file, err := os.OpenFile(SpanFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, xdg.FilePermStandard)
	if err != nil {
		return cerr.Wrap(err, "failed to open telemetry file")
	}

	// stdout exporter pointed at the file: spans land as JSONL.
	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(file),
	)
	if err != nil {
		_ = file.Close()
		return cerr.Wrap(err, "failed to create file exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(
			sdkresource.NewWithAttributes(
				semconv.SchemaURL,
				attribute.String("service.name", service),
				attribute.String("host.name", hostname()),
			),
		),
	)

	otel.SetTracerProvider(tp)
	tracer = tp.Tracer(service)
	return nil
}

// Start a telemetry span with optional attributes.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// MarkerPath returns the opt-in marker file location.
func MarkerPath() string {
	return filepath.Join(shared.CerberusStateDir, "telemetry_on")
}

// IsEnabled reports whether the operator created the opt-in marker.
func IsEnabled() bool {
	if _, err := os.Stat(MarkerPath()); err == nil {
		return true
	}
	return false
}

// SpanFilePath returns where spans are appended: the system log directory
// when it exists, otherwise the operator's XDG state directory.
func SpanFilePath() string {
	system := filepath.Join(shared.CerberusLogDir, "cerberus-telemetry.jsonl")
	if _, err := os.Stat(shared.CerberusLogDir); err == nil {
		return system
	}
	return xdg.XDGStatePath(shared.CerberusID, "cerberus-telemetry.jsonl")
}

// AnonTelemetryID returns a stable random identifier with no relation to
// any account on the system. Stored in the state directory; ephemeral when
// that is unwritable.
func AnonTelemetryID() string {
	path := filepath.Join(shared.CerberusStateDir, "telemetry_id")

	if data, err := os.ReadFile(path); err == nil {
		return strings.TrimSpace(string(data))
	}

	id := "anon-" + uuid.New().String()
	if err := os.MkdirAll(shared.CerberusStateDir, xdg.FilePermOwnerRWX); err == nil {
		_ = os.WriteFile(path, []byte(id), xdg.FilePermOwnerReadWrite)
	}

	return id
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}

// TruncateOrHashArgs flattens argv for span attributes, bounding length.
func TruncateOrHashArgs(args []string) string {
	full := strings.Join(args, " ")
	if len(full) > 256 {
		return full[:256] + "..."
	}
	return full
}

// CommandCategory buckets command names for span attributes.
func CommandCategory(cmd string) string {
	switch {
	case cmd == "cerberus" || cmd == "gate":
		return "gate"
	case strings.HasPrefix(cmd, "check"), strings.HasPrefix(cmd, "inspect"):
		return "operate"
	default:
		return "general"
	}
}
