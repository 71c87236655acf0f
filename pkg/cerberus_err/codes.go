// pkg/cerberus_err/codes.go
//
// BSD sysexits(3) codes used for gate verdicts. Web servers built around
// suEXEC-style helpers key their log handling off these values, so the
// mapping is a wire contract and never changes between releases.

package cerberus_err

const (
	// ExOK means the request was admitted and the handler took over.
	ExOK = 0

	// ExUsage (EX_USAGE): a required request variable is missing or empty.
	ExUsage = 64

	// ExNoInput (EX_NOINPUT): a path that must exist could not be examined.
	ExNoInput = 66

	// ExNoPrincipal (EX_NOUSER): script owner, group, or invoking identity
	// is not known to the system.
	ExNoPrincipal = 67

	// ExSecurity (EX_UNAVAILABLE): an admission check refused the request.
	ExSecurity = 69

	// ExSoftware (EX_SOFTWARE): an internal invariant broke.
	ExSoftware = 70

	// ExOSErr (EX_OSERR): a privileged system call failed.
	ExOSErr = 71

	// ExNoPerm (EX_NOPERM): the invoking identity is not the trusted caller.
	ExNoPerm = 77

	// ExConfig (EX_CONFIG): the compiled-in configuration failed validation.
	ExConfig = 78
)
