// pkg/xdg/types.go

package xdg

// Permission modes for state and log files. Owner-only is the default for
// anything the gate writes as root; FilePermStandard is reserved for files
// meant to be read back by unprivileged tooling.
const (
	FilePermOwnerRWX       = 0700
	FilePermStandard       = 0644
	FilePermOwnerReadWrite = 0600
)
