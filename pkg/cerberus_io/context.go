// pkg/cerberus_io/context.go

package cerberus_io

import (
	"context"
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type RuntimeContext struct {
	Ctx          context.Context
	Log          *zap.Logger
	Timestamp    time.Time
	Span         trace.Span
	Command      string
	Component    string
	InvocationID string
	Attributes   map[string]string
	Validate     *validator.Validate
}

// NewContext sets up tracing, logging and validation hooks.
func NewContext(ctx context.Context, cmdName string) *RuntimeContext {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := telemetry.Start(ctx, cmdName)
	traceID := span.SpanContext().TraceID().String()
	invocationID := uuid.New().String()

	comp, action := resolveCallContext(3)
	logger := zap.L().With(
		zap.String("component", comp),
		zap.String("action", action),
		zap.String("trace_id", traceID),
		zap.String("invocation_id", invocationID),
	).Named(comp)

	return &RuntimeContext{
		Ctx:          ctx,
		Span:         span,
		Log:          logger,
		Timestamp:    time.Now(), // capture start time
		Component:    comp,
		Command:      cmdName,
		InvocationID: invocationID,
		Attributes:   make(map[string]string),
		Validate:     validator.New(),
	}
}

// HandlePanic recovers panics, logs them, and converts to an error.
func (rc *RuntimeContext) HandlePanic(errPtr *error) {
	if r := recover(); r != nil {
		*errPtr = cerr.AssertionFailedf("panic: %v", r)
		rc.Log.Error("panic recovered", zap.Any("panic", r))
	}
}

// ValidateStruct runs tag-based validation against the shared validator.
func (rc *RuntimeContext) ValidateStruct(cfg interface{}) error {
	if rc.Validate == nil {
		return nil
	}
	if err := rc.Validate.Struct(cfg); err != nil {
		return cerberus_err.WrapValidationError(err)
	}
	return nil
}

// End logs outcome, emits a telemetry span with key attributes, and flushes.
func (rc *RuntimeContext) End(errPtr *error) {
	defer rc.Span.End()

	duration := time.Since(rc.Timestamp)
	success := (*errPtr == nil)

	// 1) operator-facing log
	if success {
		rc.Log.Info("Command completed", zap.Duration("duration", duration))
	} else {
		rc.Log.Error("Command failed", zap.Duration("duration", duration), zap.Error(*errPtr))
	}

	// 2) telemetry attributes; argv may carry request data, so it is
	//    sanitized and bounded before it becomes a span attribute
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
		attribute.Int64("duration_ms", duration.Milliseconds()),
		attribute.String("os", runtime.GOOS),
		attribute.String("args", shared.SanitizeForLogging(telemetry.TruncateOrHashArgs(os.Args[1:]))),
		attribute.String("version", shared.Version),
		attribute.String("category", telemetry.CommandCategory(rc.Command)),
		attribute.String("error_type", classifyError(*errPtr)),
		attribute.Int("exit_code", cerberus_err.GetExitCode(*errPtr)),
	}

	// 3) record final span
	_, span := telemetry.Start(rc.Ctx, rc.Command, attrs...)
	span.End()

	// 4) ensure logs/telemetry are flushed
	shared.SafeSync()
}

// ––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// Helper functions
// ––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if cerberus_err.IsExpectedUserError(err) {
		return "user"
	}
	return cerberus_err.SafeErrorSummary(err)
}

func resolveCallContext(skip int) (component, action string) {
	pc, file, _, ok := runtime.Caller(skip)
	if !ok {
		return "unknown", "unknown"
	}
	parts := strings.Split(file, "/")
	component = parts[len(parts)-2]
	if fn := runtime.FuncForPC(pc); fn != nil {
		name := fn.Name()
		fields := strings.Split(name, ".")
		action = fields[len(fields)-1]
	} else {
		action = "unknown"
	}
	return
}

// LogRuntimeExecutionContext records the full identity of the running
// process. Real and effective ids diverge while the setuid bit is in play,
// so both are logged.
func LogRuntimeExecutionContext() {
	currentUser, err := user.Current()
	if err != nil {
		zap.L().Warn("⚠️ Failed to get current user", zap.Error(err))
	} else {
		zap.L().Info("🔎 User + UID/GID context",
			zap.String("username", currentUser.Username),
			zap.String("uid_str", currentUser.Uid),
			zap.String("gid_str", currentUser.Gid),
			zap.String("home", currentUser.HomeDir),
			zap.Int("real_uid", os.Getuid()),
			zap.Int("effective_uid", os.Geteuid()),
			zap.Int("real_gid", os.Getgid()),
			zap.Int("effective_gid", os.Getegid()),
		)
	}

	if execPath, err := os.Executable(); err != nil {
		zap.L().Warn("⚠️ Failed to resolve executable path", zap.Error(err))
	} else {
		zap.L().Info("🗂️ Executing binary", zap.String("path", execPath))
	}
}
