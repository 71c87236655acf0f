// pkg/shared/env.go

package shared

// Request variables the gate itself reads. They are looked up in the
// sanitized snapshot, never in the raw inherited environment.
const (
	// EnvPathTranslated holds the absolute path of the target script.
	EnvPathTranslated = "PATH_TRANSLATED"

	// EnvDocumentRoot holds the serving tree the script must live under.
	EnvDocumentRoot = "DOCUMENT_ROOT"
)
