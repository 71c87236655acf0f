// pkg/privilege_drop/drop.go

// Package privilege_drop performs the irreversible descent from superuser to
// the script owner's identity. The sequence is fixed: supplementary groups
// first, then the group id, then the user id, then a proof that the old
// identity is unreachable. Transitions are one-way; a failure mid-sequence
// leaves the process partially dropped and it must exit.
package privilege_drop

import (
	"context"
	"fmt"
	"os"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// State tracks how far the descent has progressed.
type State int

const (
	// StateElevated is the initial state, before any identity change.
	StateElevated State = iota
	// StateGroupsCleared means supplementary group memberships are gone.
	StateGroupsCleared
	// StateGroupAssumed means the process runs under the target gid.
	StateGroupAssumed
	// StateUserAssumed means the process runs under the target uid.
	StateUserAssumed
	// StateVerified means regaining superuser identity has been proven
	// impossible. Terminal.
	StateVerified
)

func (s State) String() string {
	switch s {
	case StateElevated:
		return "elevated"
	case StateGroupsCleared:
		return "groups-cleared"
	case StateGroupAssumed:
		return "group-assumed"
	case StateUserAssumed:
		return "user-assumed"
	case StateVerified:
		return "verified"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// syscallTable isolates the raw identity syscalls so tests can observe the
// exact call sequence and force individual failures.
type syscallTable struct {
	setgroups func(gids []int) error
	setgid    func(gid int) error
	setuid    func(uid int) error
}

var syscalls = syscallTable{
	setgroups: unix.Setgroups,
	setgid:    unix.Setgid,
	setuid:    unix.Setuid,
}

// Transitioner walks the drop sequence exactly once.
type Transitioner struct {
	state State
}

func New() *Transitioner {
	return &Transitioner{state: StateElevated}
}

// State returns how far the descent has progressed.
func (t *Transitioner) State() State { return t.state }

// Drop descends to uid:gid and verifies the descent cannot be undone. The
// target ids must be nonzero; dropping "to" the superuser is a contradiction
// the orchestrator is required to have filtered out long before this point.
func (t *Transitioner) Drop(ctx context.Context, uid, gid uint32) error {
	logger := otelzap.Ctx(ctx)

	if t.state != StateElevated {
		return cerberus_err.NewBugError(
			fmt.Sprintf("privilege drop started twice, state is already %s", t.state), nil)
	}
	if uid == 0 || gid == 0 {
		return cerberus_err.NewBugError(
			fmt.Sprintf("privilege drop to uid %d gid %d refused", uid, gid), nil)
	}

	logger.Debug("🔻 Dropping privileges",
		zap.Uint32("target_uid", uid),
		zap.Uint32("target_gid", gid))

	if err := syscalls.setgroups([]int{}); err != nil {
		return cerberus_err.NewPrivilegeError(
			"failed to drop supplementary groups", err,
			"Residual group membership would carry into the handler; refusing to continue")
	}
	t.state = StateGroupsCleared

	if err := syscalls.setgid(int(gid)); err != nil {
		return cerberus_err.NewOSError(
			fmt.Sprintf("failed to assume gid %d", gid), err)
	}
	t.state = StateGroupAssumed

	if err := syscalls.setuid(int(uid)); err != nil {
		return cerberus_err.NewOSError(
			fmt.Sprintf("failed to assume uid %d", uid), err)
	}
	t.state = StateUserAssumed

	// The load-bearing check: if the superuser identity is still reachable,
	// everything before this line was theater.
	if err := syscalls.setuid(0); err == nil {
		return cerberus_err.NewSecurityError(
			"process could regain superuser privileges after dropping them",
			"The kernel accepted setuid(0) after the drop; inspect how this binary was invoked")
	}
	t.state = StateVerified

	logger.Debug("✅ Privilege drop verified",
		zap.Int("uid", os.Getuid()),
		zap.Int("gid", os.Getgid()),
		zap.String("state", t.state.String()))
	return nil
}
