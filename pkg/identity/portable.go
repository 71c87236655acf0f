// pkg/identity/portable.go

package identity

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
)

// CheckPortableName requires a name to be safe for downstream consumers that
// splice it into paths and logs: non-empty, starting with a letter or
// underscore, with the remainder limited to letters, digits, hyphen, period,
// underscore. Name databases can be fed by NSS modules we do not control, so
// resolved names are held to this charset before anything trusts them.
func CheckPortableName(name string) error {
	if name == "" {
		return cerberus_err.NewSecurityError("principal name is empty")
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
			continue
		case i > 0 && (c >= '0' && c <= '9' || c == '-' || c == '.'):
			continue
		}
		return cerberus_err.NewSecurityError(
			fmt.Sprintf("principal name %q contains forbidden character %q at position %d", name, c, i),
			"Rename the account or group to letters, digits, hyphen, period, underscore")
	}
	return nil
}
