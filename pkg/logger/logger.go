// pkg/logger/logger.go
//
// Structured logging for cerberus. Two hard rules shape everything here:
//
//  1. Nothing is ever written to stdout. On a successful gate run stdout
//     becomes the CGI handler's response stream; a stray log line there
//     would corrupt an HTTP response.
//  2. The gate is quiet by default. The single user-visible failure
//     diagnostic is emitted by pkg/cerberus_err, not by zap; structured
//     logs exist for operators who raise LOG_LEVEL or run the inspection
//     subcommands.

package logger

import (
	"os"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log   *zap.Logger
	level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
)

// ParseLogLevel maps a LOG_LEVEL value to a zap level. Unset or unknown
// values keep the gate's quiet default.
func ParseLogLevel(s string) zapcore.Level {
	switch s {
	case "TRACE", "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "FATAL":
		return zapcore.FatalLevel
	default:
		return zapcore.WarnLevel
	}
}

// SetLevel adjusts verbosity at runtime; the root --debug flag uses this to
// open up the quiet default.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// SetLogger installs a logger as both the package and the process-wide
// default, so that otelzap.Ctx picks it up everywhere.
func SetLogger(l *zap.Logger) {
	log = l
	zap.ReplaceGlobals(l)
	otelzap.ReplaceGlobals(otelzap.New(l))
}

// L returns the package logger, initializing a fallback if needed.
func L() *zap.Logger {
	if log == nil {
		InitializeWithFallback()
	}
	return log
}

// InitializeWithFallback builds the standard logger: a console core on
// stderr plus, when a writable location exists, a JSON file core. It never
// fails; when no file location is writable the console core stands alone.
func InitializeWithFallback() {
	level.SetLevel(ParseLogLevel(os.Getenv("LOG_LEVEL")))

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()),
		zapcore.Lock(os.Stderr),
		level,
	)

	path, err := FindWritableLogPath()
	if err != nil {
		SetLogger(zap.New(consoleCore, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)))
		return
	}

	writer, err := GetLogFileWriter(path)
	if err != nil {
		SetLogger(zap.New(consoleCore, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)))
		return
	}

	jsonCfg := zap.NewProductionEncoderConfig()
	jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewTee(
		consoleCore,
		zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), writer, level),
	)

	SetLogger(zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)))
}
