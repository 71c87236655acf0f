package cerberus_err

import (
	"errors"
	"strings"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
)

// SanitizeErrorMessage removes sensitive information from error messages
func SanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	message := err.Error()

	// Use shared sanitization function
	return shared.SanitizeForLogging(message)
}

// SafeErrorSummary creates a safe error summary without sensitive information
func SafeErrorSummary(err error) string {
	if err == nil {
		return "success"
	}

	// Classified errors carry their category already
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		switch classified.Category {
		case CategoryUsage:
			return "usage_error"
		case CategoryNoInput:
			return "missing_input"
		case CategoryPrincipal:
			return "unknown_principal"
		case CategorySecurity:
			return "admission_refused"
		case CategoryOS:
			return "os_failure"
		case CategoryCaller:
			return "caller_refused"
		case CategoryConfig:
			return "bad_configuration"
		default:
			return "internal_bug"
		}
	}

	sanitized := SanitizeErrorMessage(err)

	// Categorize errors without exposing internals
	lowered := strings.ToLower(sanitized)

	switch {
	case strings.Contains(lowered, "permission") || strings.Contains(lowered, "unauthorized"):
		return "permission_refused"
	case strings.Contains(lowered, "not found") || strings.Contains(lowered, "no such file"):
		return "resource_missing"
	case strings.Contains(lowered, "validation") || strings.Contains(lowered, "invalid"):
		return "input_validation_error"
	default:
		return "general_error"
	}
}
