// pkg/cerberus_err/classification.go
//
// Error classification with sysexits exit codes
// Extends the UserError infrastructure with verdict categories

package cerberus_err

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory classifies errors for appropriate handling
type ErrorCategory int

const (
	// CategoryUsage - required request variable missing or empty (exit 64)
	CategoryUsage ErrorCategory = iota
	// CategoryNoInput - a required path could not be examined (exit 66)
	CategoryNoInput
	// CategoryPrincipal - user, group, or caller unknown to the system (exit 67)
	CategoryPrincipal
	// CategorySecurity - an admission check refused the request (exit 69)
	CategorySecurity
	// CategoryBug - internal invariant broken (exit 70)
	CategoryBug
	// CategoryOS - a privileged system call failed (exit 71)
	CategoryOS
	// CategoryCaller - invoking identity is not the trusted caller (exit 77)
	CategoryCaller
	// CategoryConfig - compiled-in configuration failed validation (exit 78)
	CategoryConfig
)

// ClassifiedError wraps an error with category and remediation info
type ClassifiedError struct {
	Category    ErrorCategory
	Message     string
	Cause       error
	Remediation []string
	DocsURL     string
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	var sb strings.Builder

	// Main error message
	sb.WriteString(e.Message)

	// Add cause if present and different from message
	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(fmt.Sprintf("\n\nCause: %v", e.Cause))
	}

	// Add remediation steps
	if len(e.Remediation) > 0 {
		sb.WriteString("\n\nHow to fix:")
		for i, step := range e.Remediation {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	// Add documentation link if available
	if e.DocsURL != "" {
		sb.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return sb.String()
}

// DiagnosticMessage returns the single-line form used for the stderr verdict
func (e *ClassifiedError) DiagnosticMessage() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the sysexits code for this error category
func (e *ClassifiedError) ExitCode() int {
	switch e.Category {
	case CategoryUsage:
		return ExUsage
	case CategoryNoInput:
		return ExNoInput
	case CategoryPrincipal:
		return ExNoPrincipal
	case CategorySecurity:
		return ExSecurity
	case CategoryOS:
		return ExOSErr
	case CategoryCaller:
		return ExNoPerm
	case CategoryConfig:
		return ExConfig
	default:
		return ExSoftware
	}
}

// GetExitCode extracts exit code from any error
// Returns 0 for nil, the category code for classified errors, 1 for others
func GetExitCode(err error) int {
	if err == nil {
		return ExOK
	}

	// Check if it's a classified error
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.ExitCode()
	}

	// Check if it's a user error (expected, user-fixable)
	if IsExpectedUserError(err) {
		return 0 // User errors don't fail the program
	}

	// Default to general error
	return 1
}

// NewUsageError creates an error for a missing or empty request variable
func NewUsageError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryUsage,
		Message:     message,
		Remediation: remediation,
	}
}

// NewNoInputError creates an error for a path that could not be examined
func NewNoInputError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryNoInput,
		Message:  message,
		Cause:    cause,
	}
}

// NewPrincipalError creates an error for an identity unknown to the system
func NewPrincipalError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryPrincipal,
		Message:     message,
		Remediation: remediation,
	}
}

// NewSecurityError creates an error for a refused admission check
func NewSecurityError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategorySecurity,
		Message:     message,
		Remediation: remediation,
	}
}

// NewPrivilegeError creates a security-category error for a failed or
// suspicious identity transition, keeping the syscall error as the cause
func NewPrivilegeError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategorySecurity,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewOSError creates an error for a failed privileged system call
func NewOSError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryOS,
		Message:  message,
		Cause:    cause,
	}
}

// NewCallerError creates an error for an untrusted invoking identity
func NewCallerError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryCaller,
		Message:     message,
		Remediation: remediation,
	}
}

// NewConfigError creates an error for invalid compiled-in configuration
func NewConfigError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryConfig,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewBugError creates an error for Cerberus bugs
// These should be reported to developers
func NewBugError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryBug,
		Message:  message,
		Cause:    cause,
		Remediation: []string{
			"This is likely a bug in Cerberus",
			"Please report at: https://github.com/CodeMonkeyCybersecurity/cerberus/issues",
			"Include this error message and the web server log line",
		},
	}
}

// ClassifyError guarantees err carries a verdict category
// Verdict paths classify at the failure site; anything that reaches the top
// level unclassified is a gap in those paths and reports as a bug
func ClassifyError(err error, context string) error {
	if err == nil {
		return nil
	}

	// Already classified
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return err
	}

	return NewBugError(fmt.Sprintf("%s failed without a verdict", context), err)
}
