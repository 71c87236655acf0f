// pkg/pathcheck/record.go

package pathcheck

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// FileSecurityRecord captures the ownership and permission facts of a single
// filesystem object at the moment it was statted. It is a plain value; callers
// may hold as many records as they like without one invalidating another.
type FileSecurityRecord struct {
	Path string
	UID  uint32
	GID  uint32
	Mode os.FileMode
}

// StatRecord stats path (following symlinks) and returns its security record.
// A failed stat means the object is missing or unreadable to us.
func StatRecord(ctx context.Context, path string) (FileSecurityRecord, error) {
	logger := otelzap.Ctx(ctx)

	info, err := os.Stat(path)
	if err != nil {
		logger.Debug("❌ Stat failed", zap.String("path", path), zap.Error(err))
		return FileSecurityRecord{}, cerberus_err.NewNoInputError(
			fmt.Sprintf("cannot stat %s", path), err)
	}

	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return FileSecurityRecord{}, cerberus_err.NewBugError(
			fmt.Sprintf("no unix ownership metadata for %s", path), nil)
	}

	rec := FileSecurityRecord{
		Path: path,
		UID:  st.Uid,
		GID:  st.Gid,
		Mode: info.Mode(),
	}
	logger.Debug("🗂️ Stat record",
		zap.String("path", rec.Path),
		zap.Uint32("uid", rec.UID),
		zap.Uint32("gid", rec.GID),
		zap.String("mode", rec.Mode.String()))
	return rec, nil
}

// IsRegular reports whether the object is a regular file.
func (r FileSecurityRecord) IsRegular() bool { return r.Mode.IsRegular() }

// IsDir reports whether the object is a directory.
func (r FileSecurityRecord) IsDir() bool { return r.Mode.IsDir() }

// OwnedBy reports whether the object is owned by exactly uid and gid.
func (r FileSecurityRecord) OwnedBy(uid, gid uint32) bool {
	return r.UID == uid && r.GID == gid
}

// WorldWritable reports whether the "other" write bit is set.
func (r FileSecurityRecord) WorldWritable() bool { return r.Mode.Perm()&0o002 != 0 }

// WorldExecutable reports whether the "other" execute bit is set.
func (r FileSecurityRecord) WorldExecutable() bool { return r.Mode.Perm()&0o001 != 0 }

// Setuid reports whether the set-user-id bit is set.
func (r FileSecurityRecord) Setuid() bool { return r.Mode&os.ModeSetuid != 0 }

// Setgid reports whether the set-group-id bit is set.
func (r FileSecurityRecord) Setgid() bool { return r.Mode&os.ModeSetgid != 0 }
