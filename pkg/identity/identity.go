// pkg/identity/identity.go

// Package identity resolves numeric UIDs/GIDs and account names to system
// principals and derives the identity a script must be served as. All lookup
// results are value copies owned by the caller; a later lookup never
// invalidates an earlier one.
package identity

import (
	"context"
	"fmt"
	"os/user"
	"strconv"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Account is a system user account.
type Account struct {
	UID      uint32
	GID      uint32
	Username string
	HomeDir  string
}

// Group is a system group.
type Group struct {
	GID  uint32
	Name string
}

// IDRange is an inclusive numeric id interval.
type IDRange struct {
	Min uint32
	Max uint32
}

// Within reports whether id falls inside the range, bounds included.
func (r IDRange) Within(id uint32) bool { return id >= r.Min && id <= r.Max }

// LookupUID resolves a numeric UID to its account record.
func LookupUID(ctx context.Context, uid uint32) (Account, error) {
	logger := otelzap.Ctx(ctx)

	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		logger.Debug("❌ No account for uid", zap.Uint32("uid", uid), zap.Error(err))
		return Account{}, cerberus_err.NewPrincipalError(
			fmt.Sprintf("no account with uid %d", uid),
			"The file owner must be a real account known to the system")
	}
	return accountFromUser(u)
}

// LookupUsername resolves an account name to its account record.
func LookupUsername(ctx context.Context, name string) (Account, error) {
	logger := otelzap.Ctx(ctx)

	u, err := user.Lookup(name)
	if err != nil {
		logger.Debug("❌ No account for name", zap.String("user", name), zap.Error(err))
		return Account{}, cerberus_err.NewPrincipalError(
			fmt.Sprintf("no account named %s", name))
	}
	return accountFromUser(u)
}

// LookupGID resolves a numeric GID to its group record.
func LookupGID(ctx context.Context, gid uint32) (Group, error) {
	logger := otelzap.Ctx(ctx)

	g, err := user.LookupGroupId(strconv.FormatUint(uint64(gid), 10))
	if err != nil {
		logger.Debug("❌ No group for gid", zap.Uint32("gid", gid), zap.Error(err))
		return Group{}, cerberus_err.NewPrincipalError(
			fmt.Sprintf("no group with gid %d", gid),
			"The file group must be a real group known to the system")
	}
	return groupFromGroup(g)
}

// LookupGroupname resolves a group name to its group record.
func LookupGroupname(ctx context.Context, name string) (Group, error) {
	logger := otelzap.Ctx(ctx)

	g, err := user.LookupGroup(name)
	if err != nil {
		logger.Debug("❌ No group for name", zap.String("group", name), zap.Error(err))
		return Group{}, cerberus_err.NewPrincipalError(
			fmt.Sprintf("no group named %s", name))
	}
	return groupFromGroup(g)
}

func accountFromUser(u *user.User) (Account, error) {
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return Account{}, cerberus_err.NewBugError(
			fmt.Sprintf("account %s has non-numeric uid %q", u.Username, u.Uid), err)
	}
	gid, err := strconv.ParseUint(u.Gid, 10, 32)
	if err != nil {
		return Account{}, cerberus_err.NewBugError(
			fmt.Sprintf("account %s has non-numeric gid %q", u.Username, u.Gid), err)
	}
	return Account{
		UID:      uint32(uid),
		GID:      uint32(gid),
		Username: u.Username,
		HomeDir:  u.HomeDir,
	}, nil
}

func groupFromGroup(g *user.Group) (Group, error) {
	gid, err := strconv.ParseUint(g.Gid, 10, 32)
	if err != nil {
		return Group{}, cerberus_err.NewBugError(
			fmt.Sprintf("group %s has non-numeric gid %q", g.Name, g.Gid), err)
	}
	return Group{GID: uint32(gid), Name: g.Name}, nil
}
