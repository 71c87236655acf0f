// pkg/pathcheck/chain.go

package pathcheck

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// AncestorChain lists the directories from path's parent up to and including
// boundary. An empty boundary walks all the way to /. The boundary directory
// itself is part of the chain, so callers validating a chain also validate
// its endpoint.
func AncestorChain(path, boundary string) []string {
	var chain []string
	dir := filepath.Dir(path)
	for {
		chain = append(chain, dir)
		if dir == boundary || dir == "/" || dir == "." {
			break
		}
		dir = filepath.Dir(dir)
	}
	return chain
}

// ValidateChain walks every ancestor of path up to and including boundary and
// requires each one to be owned by exactly uid:gid and closed to world
// writes. A single writable or foreign-owned ancestor is enough to swap the
// leaf out from under us, so the first offender fails the whole chain.
func ValidateChain(ctx context.Context, path, boundary string, uid, gid uint32) error {
	logger := otelzap.Ctx(ctx)

	chain := AncestorChain(path, boundary)
	logger.Debug("🧭 Walking directory chain",
		zap.String("from", path),
		zap.String("to", chain[len(chain)-1]),
		zap.Int("depth", len(chain)),
		zap.Uint32("uid", uid),
		zap.Uint32("gid", gid))

	for _, dir := range chain {
		rec, err := StatRecord(ctx, dir)
		if err != nil {
			return err
		}
		if !rec.OwnedBy(uid, gid) {
			return cerberus_err.NewSecurityError(
				fmt.Sprintf("directory %s is owned by uid %d gid %d, expected uid %d gid %d",
					dir, rec.UID, rec.GID, uid, gid),
				"Every directory above the target must belong to the identity the target is served as",
				fmt.Sprintf("Fix with: chown %d:%d %s", uid, gid, dir))
		}
		if rec.WorldWritable() {
			return cerberus_err.NewSecurityError(
				fmt.Sprintf("directory %s is writable by others", dir),
				fmt.Sprintf("Fix with: chmod o-w %s", dir))
		}
	}

	logger.Debug("✅ Directory chain clean", zap.Int("checked", len(chain)))
	return nil
}
