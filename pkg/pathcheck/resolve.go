// pkg/pathcheck/resolve.go

// Package pathcheck canonicalizes filesystem paths and validates the
// ownership of entire directory chains. Every path the gateway trusts goes
// through here first: symlinks are resolved away, and each ancestor directory
// is held to the same ownership standard as the file it leads to.
package pathcheck

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// MaxPathLen bounds every canonical path we will operate on. Linux PATH_MAX.
const MaxPathLen = 4096

// Resolve returns the canonical form of path: absolute, lexically normalized,
// with every symlink resolved. The path must exist.
func Resolve(ctx context.Context, path string) (string, error) {
	logger := otelzap.Ctx(ctx)

	if path == "" {
		return "", cerberus_err.NewNoInputError("empty path cannot be resolved", nil)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", cerberus_err.NewNoInputError(
			fmt.Sprintf("cannot make %s absolute", path), err)
	}

	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		logger.Debug("❌ Canonicalization failed", zap.String("path", path), zap.Error(err))
		return "", cerberus_err.NewNoInputError(
			fmt.Sprintf("cannot resolve %s", path), err)
	}

	if canonical == "" {
		return "", cerberus_err.NewSecurityError(
			fmt.Sprintf("path %s resolved to an empty string", path))
	}
	if len(canonical) > MaxPathLen {
		return "", cerberus_err.NewSecurityError(
			fmt.Sprintf("resolved path exceeds %d bytes", MaxPathLen),
			"Shorten the directory layout that leads to this file")
	}

	logger.Debug("🔎 Canonical path",
		zap.String("input", path),
		zap.String("canonical", canonical))
	return canonical, nil
}

// ResolveSame canonicalizes path and additionally requires the result to be
// the very string it was given. Trusted inputs arrive pre-canonicalized; a
// mismatch means a symlink or relative segment was smuggled in.
func ResolveSame(ctx context.Context, path string) (string, error) {
	canonical, err := Resolve(ctx, path)
	if err != nil {
		return "", err
	}
	if canonical != path {
		return "", cerberus_err.NewSecurityError(
			fmt.Sprintf("path %s resolves to %s instead of itself", path, canonical),
			"Replace the symlinked or non-normalized path with its canonical form")
	}
	return canonical, nil
}

// Contains reports whether sub is super itself or lies below it. The test is
// separator-aware: /home/alice2 is not inside /home/alice.
func Contains(sub, super string) bool {
	if super == "" {
		return false
	}
	if sub == super {
		return true
	}
	prefix := super
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(sub, prefix)
}
