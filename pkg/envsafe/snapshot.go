// pkg/envsafe/snapshot.go

package envsafe

import (
	"context"
	"fmt"
	"os"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Snapshot is an ordered set of environment variables built by the
// sanitizer. Insertion order is preserved so the handler sees variables in
// the order they arrived.
type Snapshot struct {
	names  []string
	values map[string]string
}

func NewSnapshot() *Snapshot {
	return &Snapshot{values: make(map[string]string)}
}

// Get returns the value for name and whether it is present.
func (s *Snapshot) Get(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Set inserts or overwrites name. Used for the forced PATH entry.
func (s *Snapshot) Set(name, value string) {
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = value
}

// setIfAbsent inserts name only if unseen; reports whether it inserted.
func (s *Snapshot) setIfAbsent(name, value string) bool {
	if _, ok := s.values[name]; ok {
		return false
	}
	s.names = append(s.names, name)
	s.values[name] = value
	return true
}

// Len returns the number of variables held.
func (s *Snapshot) Len() int { return len(s.names) }

// Names returns the variable names in insertion order.
func (s *Snapshot) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Environ renders the snapshot as NAME=value strings in insertion order,
// ready for an exec call.
func (s *Snapshot) Environ() []string {
	out := make([]string, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, name+"="+s.values[name])
	}
	return out
}

// Apply replaces the live process environment with the snapshot's contents.
func (s *Snapshot) Apply(ctx context.Context) error {
	logger := otelzap.Ctx(ctx)

	os.Clearenv()
	for _, name := range s.names {
		if err := os.Setenv(name, s.values[name]); err != nil {
			return cerberus_err.NewOSError(
				fmt.Sprintf("failed to set environment variable %s", name), err)
		}
	}

	logger.Debug("✅ Process environment replaced", zap.Int("variables", s.Len()))
	return nil
}
