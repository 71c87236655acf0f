// pkg/identity/script_test.go

package identity

import (
	"context"
	"strings"
	"testing"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
)

var wideRange = IDRange{Min: 1, Max: 1<<31 - 1}

// skipAsSuperuser skips derivation paths that need an unprivileged owner;
// uid 0 is refused before those paths are reached.
func skipAsSuperuser(t *testing.T, me Account) {
	t.Helper()
	if me.UID == 0 {
		t.Skip("requires an unprivileged test user")
	}
}

// alternateGroup finds an existing group other than the account's primary
// group, for exercising the primary-group equality check.
func alternateGroup(t *testing.T, ctx context.Context, me Account) Group {
	t.Helper()
	for _, gid := range []uint32{1, 2, 3, 4, 50, 100, 65534} {
		grp, err := LookupGID(ctx, gid)
		if err != nil {
			continue
		}
		if grp.GID == me.GID {
			continue
		}
		if err := CheckPortableName(grp.Name); err != nil {
			continue
		}
		return grp
	}
	t.Skip("no alternate group available on this system")
	return Group{}
}

func TestDeriveScriptIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	me := currentAccount(t)

	t.Run("derives_identity_for_current_user", func(t *testing.T) {
		skipAsSuperuser(t, me)
		ident, err := DeriveScriptIdentity(ctx, me.UID, me.GID, wideRange, wideRange)
		if err != nil {
			t.Fatalf("DeriveScriptIdentity failed: %v", err)
		}
		if ident.Username != me.Username {
			t.Errorf("Username = %q, want %q", ident.Username, me.Username)
		}
		if ident.UID != me.UID || ident.GID != me.GID {
			t.Errorf("ids = %d:%d, want %d:%d", ident.UID, ident.GID, me.UID, me.GID)
		}
		if ident.HomeDir == "" {
			t.Error("HomeDir should be populated")
		}
	})

	t.Run("superuser_owner_is_refused", func(t *testing.T) {
		_, err := DeriveScriptIdentity(ctx, 0, 1000, wideRange, wideRange)
		if err == nil {
			t.Fatal("uid 0 must be refused")
		}
		if code := cerberus_err.GetExitCode(err); code != cerberus_err.ExSecurity {
			t.Errorf("exit code = %d, want %d", code, cerberus_err.ExSecurity)
		}
	})

	t.Run("superuser_group_is_refused", func(t *testing.T) {
		skipAsSuperuser(t, me)
		_, err := DeriveScriptIdentity(ctx, me.UID, 0, wideRange, wideRange)
		if err == nil {
			t.Fatal("gid 0 must be refused")
		}
		if code := cerberus_err.GetExitCode(err); code != cerberus_err.ExSecurity {
			t.Errorf("exit code = %d, want %d", code, cerberus_err.ExSecurity)
		}
	})

	t.Run("uid_outside_range_is_refused", func(t *testing.T) {
		skipAsSuperuser(t, me)
		narrow := IDRange{Min: me.UID + 1, Max: me.UID + 1}
		_, err := DeriveScriptIdentity(ctx, me.UID, me.GID, narrow, wideRange)
		if err == nil {
			t.Fatal("out-of-range uid must be refused")
		}
		if code := cerberus_err.GetExitCode(err); code != cerberus_err.ExSecurity {
			t.Errorf("exit code = %d, want %d", code, cerberus_err.ExSecurity)
		}
		if !strings.Contains(err.Error(), "outside the served range") {
			t.Errorf("error should mention the range, got %q", err.Error())
		}
	})

	t.Run("gid_outside_range_is_refused", func(t *testing.T) {
		skipAsSuperuser(t, me)
		narrow := IDRange{Min: me.GID + 1, Max: me.GID + 1}
		_, err := DeriveScriptIdentity(ctx, me.UID, me.GID, wideRange, narrow)
		if err == nil {
			t.Fatal("out-of-range gid must be refused")
		}
		if code := cerberus_err.GetExitCode(err); code != cerberus_err.ExSecurity {
			t.Errorf("exit code = %d, want %d", code, cerberus_err.ExSecurity)
		}
	})

	t.Run("absent_owner_is_unknown_principal", func(t *testing.T) {
		// a range wide enough that the absent uid passes the bounds check
		// and reaches the account lookup
		unbounded := IDRange{Min: 1, Max: ^uint32(0)}
		_, err := DeriveScriptIdentity(ctx, absentID, 1000, unbounded, unbounded)
		if err == nil {
			t.Fatal("absent owner must be refused")
		}
		if code := cerberus_err.GetExitCode(err); code != cerberus_err.ExNoPrincipal {
			t.Errorf("exit code = %d, want %d", code, cerberus_err.ExNoPrincipal)
		}
	})

	t.Run("foreign_primary_group_is_refused", func(t *testing.T) {
		skipAsSuperuser(t, me)
		alt := alternateGroup(t, ctx, me)
		_, err := DeriveScriptIdentity(ctx, me.UID, alt.GID, wideRange, wideRange)
		if err == nil {
			t.Fatal("non-primary group must be refused")
		}
		if code := cerberus_err.GetExitCode(err); code != cerberus_err.ExSecurity {
			t.Errorf("exit code = %d, want %d", code, cerberus_err.ExSecurity)
		}
		if !strings.Contains(err.Error(), "primary group") {
			t.Errorf("error should mention the primary group, got %q", err.Error())
		}
	})
}
