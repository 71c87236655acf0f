// pkg/envsafe/envsafe.go

// Package envsafe rebuilds the process environment from nothing. The
// inherited environment of a CGI gateway is derived from request headers and
// is therefore attacker-influenced; only entries matching a known-safe allow
// pattern may cross into the handler, and PATH is always replaced outright.
package envsafe

import (
	"context"
	"fmt"
	"strings"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// DefaultAllow is the Apache suEXEC safe set. A pattern ending in "=" matches
// that exact variable name; a pattern without "=" matches a name prefix.
var DefaultAllow = []string{
	"HTTP_",
	"SSL_",
	"AUTH_TYPE=",
	"CONTENT_LENGTH=",
	"CONTENT_TYPE=",
	"CONTEXT_DOCUMENT_ROOT=",
	"CONTEXT_PREFIX=",
	"DATE_GMT=",
	"DATE_LOCAL=",
	"DOCUMENT_NAME=",
	"DOCUMENT_PATH_INFO=",
	"DOCUMENT_ROOT=",
	"DOCUMENT_URI=",
	"GATEWAY_INTERFACE=",
	"HTTPS=",
	"LAST_MODIFIED=",
	"PATH_INFO=",
	"PATH_TRANSLATED=",
	"QUERY_STRING=",
	"QUERY_STRING_UNESCAPED=",
	"REMOTE_ADDR=",
	"REMOTE_HOST=",
	"REMOTE_IDENT=",
	"REMOTE_PORT=",
	"REMOTE_USER=",
	"REDIRECT_ERROR_NOTES=",
	"REDIRECT_HANDLER=",
	"REDIRECT_QUERY_STRING=",
	"REDIRECT_REMOTE_USER=",
	"REDIRECT_SCRIPT_FILENAME=",
	"REDIRECT_STATUS=",
	"REDIRECT_URL=",
	"REQUEST_METHOD=",
	"REQUEST_URI=",
	"REQUEST_SCHEME=",
	"SCRIPT_FILENAME=",
	"SCRIPT_NAME=",
	"SCRIPT_URI=",
	"SCRIPT_URL=",
	"SERVER_ADMIN=",
	"SERVER_NAME=",
	"SERVER_ADDR=",
	"SERVER_PORT=",
	"SERVER_PROTOCOL=",
	"SERVER_SIGNATURE=",
	"SERVER_SOFTWARE=",
	"UNIQUE_ID=",
	"USER_NAME=",
	"TZ=",
}

// DefaultDeny blocks the httpoxy family: a request header named Proxy would
// otherwise surface as HTTP_PROXY and steer the handler's outbound traffic.
var DefaultDeny = []string{
	"HTTP_PROXY",
}

// Verdict is the sanitizer's decision for a single inherited entry.
type Verdict int

const (
	VerdictKept Verdict = iota
	VerdictMalformed
	VerdictNotAllowed
	VerdictDenied
	VerdictEmptyValue
)

func (v Verdict) String() string {
	switch v {
	case VerdictKept:
		return "kept"
	case VerdictMalformed:
		return "malformed"
	case VerdictNotAllowed:
		return "not allowed"
	case VerdictDenied:
		return "denied"
	case VerdictEmptyValue:
		return "empty value"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// matchPattern tests one raw NAME=value entry against one pattern. Patterns
// ending in "=" pin the full variable name; others are name prefixes.
func matchPattern(entry, pattern string) bool {
	return pattern != "" && strings.HasPrefix(entry, pattern)
}

func matchAny(entry string, patterns []string) bool {
	for _, p := range patterns {
		if matchPattern(entry, p) {
			return true
		}
	}
	return false
}

// Classify decides what would happen to a single raw entry under the given
// pattern lists. It is stateless; duplicate handling lives in Sanitize.
func Classify(entry string, allow, deny []string) Verdict {
	eq := strings.IndexByte(entry, '=')
	if eq <= 0 {
		return VerdictMalformed
	}
	if !matchAny(entry, allow) {
		return VerdictNotAllowed
	}
	if matchAny(entry, deny) {
		return VerdictDenied
	}
	if eq == len(entry)-1 {
		return VerdictEmptyValue
	}
	return VerdictKept
}

// Sanitize filters the inherited entries into a fresh Snapshot. A malformed
// entry (no separator, or an empty name) aborts the run: it is evidence of a
// corrupted or hostile environment, not something to skip over. Duplicate
// names keep their first occurrence. PATH never survives filtering; the
// snapshot always ends with PATH forced to securePath.
func Sanitize(ctx context.Context, environ, allow, deny []string, securePath string) (*Snapshot, error) {
	logger := otelzap.Ctx(ctx)

	snap := NewSnapshot()
	dropped := 0
	for _, entry := range environ {
		verdict := Classify(entry, allow, deny)
		switch verdict {
		case VerdictMalformed:
			return nil, cerberus_err.NewSecurityError(
				fmt.Sprintf("malformed environment entry %q", boundEntry(entry)),
				"The invoking server handed over a broken environment; refuse to guess at its meaning")
		case VerdictKept:
			eq := strings.IndexByte(entry, '=')
			if !snap.setIfAbsent(entry[:eq], entry[eq+1:]) {
				dropped++
			}
		default:
			logger.Debug("🚫 Environment entry dropped",
				zap.String("name", entryName(entry)),
				zap.String("verdict", verdict.String()))
			dropped++
		}
	}

	snap.Set("PATH", securePath)

	logger.Debug("🧹 Environment rebuilt",
		zap.Int("kept", snap.Len()),
		zap.Int("dropped", dropped),
		zap.Int("inherited", len(environ)))
	return snap, nil
}

// entryName returns only the variable name of an entry; values are never
// logged from here because header-derived values may carry credentials.
func entryName(entry string) string {
	if eq := strings.IndexByte(entry, '='); eq >= 0 {
		return entry[:eq]
	}
	return entry
}

// boundEntry caps how much of a hostile entry is echoed into diagnostics.
func boundEntry(entry string) string {
	const max = 64
	if len(entry) > max {
		return entry[:max] + "..."
	}
	return entry
}
