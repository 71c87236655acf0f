/* pkg/logger/paths.go */

package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/xdg"
	"go.uber.org/zap/zapcore"
)

// PlatformLogPaths returns candidate log paths in order of priority.
func PlatformLogPaths() []string {
	switch runtime.GOOS {
	case "linux":
		return []string{
			shared.CerberusLogFile, // writable when invoked as root, the normal case
			xdg.XDGStatePath(shared.CerberusID, "cerberus.log"), // operator runs without sudo
			shared.CerberusLogPWD,
			"/tmp/cerberus/cerberus.log", // ephemeral
		}
	case "darwin":
		return []string{
			xdg.XDGStatePath(shared.CerberusID, "cerberus.log"),
			shared.CerberusLogPWD,
			"/tmp/cerberus/cerberus.log",
		}
	default:
		return []string{shared.CerberusLogPWD}
	}
}

// EnsureLogPermissions creates the log directory and file with owner-only
// access. The gate usually runs as root; its logs must not be readable by
// the accounts whose scripts it launches.
func EnsureLogPermissions(logFilePath string) error {
	dir := filepath.Dir(logFilePath)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, xdg.FilePermOwnerRWX); err != nil {
			return err
		}
	} else if err := os.Chmod(dir, xdg.FilePermOwnerRWX); err != nil {
		return err
	}

	if _, err := os.Stat(logFilePath); os.IsNotExist(err) {
		file, err := os.Create(logFilePath)
		if err != nil {
			return err
		}
		if err := file.Close(); err != nil {
			return err
		}
	}

	return os.Chmod(logFilePath, xdg.FilePermOwnerReadWrite)
}

// GetLogFileWriter opens an append-only writer at path, creating it with
// restrictive permissions first.
func GetLogFileWriter(path string) (zapcore.WriteSyncer, error) {
	if err := EnsureLogPermissions(path); err != nil {
		return nil, fmt.Errorf("log permission error: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, xdg.FilePermOwnerReadWrite)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return zapcore.AddSync(file), nil
}

// FindWritableLogPath returns the first usable log path for this platform.
func FindWritableLogPath() (string, error) {
	for _, path := range PlatformLogPaths() {
		if _, err := GetLogFileWriter(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no writable log path found")
}
