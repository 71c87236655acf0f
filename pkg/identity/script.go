// pkg/identity/script.go

package identity

import (
	"context"
	"fmt"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ScriptIdentity is the fully resolved identity a script will be served as:
// the owning account, its primary group, and the home directory that anchors
// the ownership walk.
type ScriptIdentity struct {
	UID       uint32
	GID       uint32
	Username  string
	Groupname string
	HomeDir   string
}

// DeriveScriptIdentity turns a file's raw owning uid/gid into a vetted
// ScriptIdentity. The owner must sit inside the served uid range, the group
// inside the served gid range, both must resolve to real principals with
// portable names, and the file's group must be the owner's primary group.
// Superuser ownership is refused outright, whatever the configured ranges
// say.
func DeriveScriptIdentity(ctx context.Context, uid, gid uint32, uids, gids IDRange) (ScriptIdentity, error) {
	logger := otelzap.Ctx(ctx)

	if uid == 0 {
		return ScriptIdentity{}, cerberus_err.NewSecurityError(
			"scripts owned by the superuser are never served",
			"Assign the script to an unprivileged account")
	}
	if !uids.Within(uid) {
		return ScriptIdentity{}, cerberus_err.NewSecurityError(
			fmt.Sprintf("script owner uid %d is outside the served range [%d, %d]", uid, uids.Min, uids.Max))
	}

	acct, err := LookupUID(ctx, uid)
	if err != nil {
		return ScriptIdentity{}, err
	}
	if err := CheckPortableName(acct.Username); err != nil {
		return ScriptIdentity{}, err
	}

	if gid == 0 {
		return ScriptIdentity{}, cerberus_err.NewSecurityError(
			"scripts owned by the superuser group are never served",
			"Assign the script to an unprivileged group")
	}
	if !gids.Within(gid) {
		return ScriptIdentity{}, cerberus_err.NewSecurityError(
			fmt.Sprintf("script group gid %d is outside the served range [%d, %d]", gid, gids.Min, gids.Max))
	}

	grp, err := LookupGID(ctx, gid)
	if err != nil {
		return ScriptIdentity{}, err
	}
	if err := CheckPortableName(grp.Name); err != nil {
		return ScriptIdentity{}, err
	}

	if gid != acct.GID {
		return ScriptIdentity{}, cerberus_err.NewSecurityError(
			fmt.Sprintf("script group %s (gid %d) is not the primary group of owner %s (gid %d)",
				grp.Name, gid, acct.Username, acct.GID),
			"Serve scripts under the owner's primary group only")
	}

	ident := ScriptIdentity{
		UID:       uid,
		GID:       gid,
		Username:  acct.Username,
		Groupname: grp.Name,
		HomeDir:   acct.HomeDir,
	}
	logger.Debug("✅ Script identity derived",
		zap.String("user", ident.Username),
		zap.String("group", ident.Groupname),
		zap.Uint32("uid", ident.UID),
		zap.Uint32("gid", ident.GID),
		zap.String("home", ident.HomeDir))
	return ident, nil
}
