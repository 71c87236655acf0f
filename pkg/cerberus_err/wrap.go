package cerberus_err

import (
	cerr "github.com/cockroachdb/errors"
)

// WrapValidationError adds context for validation failures
func WrapValidationError(err error) error {
	return cerr.WithHint(cerr.WithStack(err), "Check input parameters and try again")
}

// WrapOwnershipError adds context for ownership and mode violations
func WrapOwnershipError(err error) error {
	return cerr.WithHint(cerr.WithStack(err), "Review file ownership and permission bits")
}
