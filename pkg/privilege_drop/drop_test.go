// pkg/privilege_drop/drop_test.go

package privilege_drop

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
)

// recorder is a fake syscall surface that logs every call and fails on
// request. setuid(0) fails by default, as it would for a genuinely dropped
// process.
type recorder struct {
	calls          []string
	failSetgroups  bool
	failSetgid     bool
	failSetuid     bool
	regainSucceeds bool
}

var errPerm = errors.New("operation not permitted")

func (r *recorder) table() syscallTable {
	return syscallTable{
		setgroups: func(gids []int) error {
			r.calls = append(r.calls, fmt.Sprintf("setgroups(%d)", len(gids)))
			if r.failSetgroups {
				return errPerm
			}
			return nil
		},
		setgid: func(gid int) error {
			r.calls = append(r.calls, fmt.Sprintf("setgid(%d)", gid))
			if r.failSetgid {
				return errPerm
			}
			return nil
		},
		setuid: func(uid int) error {
			r.calls = append(r.calls, fmt.Sprintf("setuid(%d)", uid))
			if uid == 0 {
				if r.regainSucceeds {
					return nil
				}
				return errPerm
			}
			if r.failSetuid {
				return errPerm
			}
			return nil
		},
	}
}

func swapSyscalls(t *testing.T, table syscallTable) {
	t.Helper()
	saved := syscalls
	syscalls = table
	t.Cleanup(func() { syscalls = saved })
}

func TestDrop(t *testing.T) {
	// not parallel: tests swap the package-level syscall table
	ctx := context.Background()

	t.Run("full_descent_in_order", func(t *testing.T) {
		rec := &recorder{}
		swapSyscalls(t, rec.table())

		tr := New()
		if tr.State() != StateElevated {
			t.Fatalf("initial state = %s, want %s", tr.State(), StateElevated)
		}
		if err := tr.Drop(ctx, 1000, 1000); err != nil {
			t.Fatalf("Drop failed: %v", err)
		}
		if tr.State() != StateVerified {
			t.Errorf("state = %s, want %s", tr.State(), StateVerified)
		}

		want := []string{"setgroups(0)", "setgid(1000)", "setuid(1000)", "setuid(0)"}
		if !reflect.DeepEqual(rec.calls, want) {
			t.Errorf("call sequence = %v, want %v", rec.calls, want)
		}
	})

	t.Run("setgroups_failure_is_security_violation", func(t *testing.T) {
		rec := &recorder{failSetgroups: true}
		swapSyscalls(t, rec.table())

		tr := New()
		err := tr.Drop(ctx, 1000, 1000)
		if err == nil {
			t.Fatal("expected error when setgroups fails")
		}
		if code := cerberus_err.GetExitCode(err); code != cerberus_err.ExSecurity {
			t.Errorf("exit code = %d, want %d", code, cerberus_err.ExSecurity)
		}
		if tr.State() != StateElevated {
			t.Errorf("state = %s, want %s", tr.State(), StateElevated)
		}
		if len(rec.calls) != 1 {
			t.Errorf("no further syscalls expected after the failure, got %v", rec.calls)
		}
		if !errors.Is(err, errPerm) {
			t.Error("underlying syscall error should stay in the chain")
		}
	})

	t.Run("setgid_failure_is_os_failure", func(t *testing.T) {
		rec := &recorder{failSetgid: true}
		swapSyscalls(t, rec.table())

		tr := New()
		err := tr.Drop(ctx, 1000, 1000)
		if err == nil {
			t.Fatal("expected error when setgid fails")
		}
		if code := cerberus_err.GetExitCode(err); code != cerberus_err.ExOSErr {
			t.Errorf("exit code = %d, want %d", code, cerberus_err.ExOSErr)
		}
		if tr.State() != StateGroupsCleared {
			t.Errorf("state = %s, want %s", tr.State(), StateGroupsCleared)
		}
	})

	t.Run("setuid_failure_is_os_failure", func(t *testing.T) {
		rec := &recorder{failSetuid: true}
		swapSyscalls(t, rec.table())

		tr := New()
		err := tr.Drop(ctx, 1000, 1000)
		if err == nil {
			t.Fatal("expected error when setuid fails")
		}
		if code := cerberus_err.GetExitCode(err); code != cerberus_err.ExOSErr {
			t.Errorf("exit code = %d, want %d", code, cerberus_err.ExOSErr)
		}
		if tr.State() != StateGroupAssumed {
			t.Errorf("state = %s, want %s", tr.State(), StateGroupAssumed)
		}
	})

	t.Run("regaining_root_is_security_violation", func(t *testing.T) {
		rec := &recorder{regainSucceeds: true}
		swapSyscalls(t, rec.table())

		tr := New()
		err := tr.Drop(ctx, 1000, 1000)
		if err == nil {
			t.Fatal("a successful setuid(0) after the drop must be fatal")
		}
		if code := cerberus_err.GetExitCode(err); code != cerberus_err.ExSecurity {
			t.Errorf("exit code = %d, want %d", code, cerberus_err.ExSecurity)
		}
		if !strings.Contains(err.Error(), "regain") {
			t.Errorf("error should say privileges could be regained, got %q", err.Error())
		}
		if tr.State() != StateUserAssumed {
			t.Errorf("state = %s, want %s (never verified)", tr.State(), StateUserAssumed)
		}
	})

	t.Run("second_drop_is_a_bug", func(t *testing.T) {
		rec := &recorder{}
		swapSyscalls(t, rec.table())

		tr := New()
		if err := tr.Drop(ctx, 1000, 1000); err != nil {
			t.Fatalf("first Drop failed: %v", err)
		}
		err := tr.Drop(ctx, 1000, 1000)
		if err == nil {
			t.Fatal("second Drop must be refused")
		}
		if code := cerberus_err.GetExitCode(err); code != cerberus_err.ExSoftware {
			t.Errorf("exit code = %d, want %d", code, cerberus_err.ExSoftware)
		}
	})

	t.Run("zero_target_is_a_bug", func(t *testing.T) {
		rec := &recorder{}
		swapSyscalls(t, rec.table())

		for _, target := range [][2]uint32{{0, 1000}, {1000, 0}, {0, 0}} {
			tr := New()
			err := tr.Drop(ctx, target[0], target[1])
			if err == nil {
				t.Fatalf("Drop(%d, %d) must be refused", target[0], target[1])
			}
			if code := cerberus_err.GetExitCode(err); code != cerberus_err.ExSoftware {
				t.Errorf("exit code = %d, want %d", code, cerberus_err.ExSoftware)
			}
		}
		if len(rec.calls) != 0 {
			t.Errorf("no syscalls expected for refused targets, got %v", rec.calls)
		}
	})
}

func TestStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  string
	}{
		{state: StateElevated, want: "elevated"},
		{state: StateGroupsCleared, want: "groups-cleared"},
		{state: StateGroupAssumed, want: "group-assumed"},
		{state: StateUserAssumed, want: "user-assumed"},
		{state: StateVerified, want: "verified"},
		{state: State(42), want: "state(42)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}
