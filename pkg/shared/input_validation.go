package shared

import (
	"fmt"
	"regexp"
	"strings"
)

// Global input validation utilities for use across all Cerberus packages

var (
	// SafeStringPattern allows only alphanumeric, hyphens, underscores, and dots
	SafeStringPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

	// PrincipalNamePattern matches POSIX-portable user and group names
	PrincipalNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_-]*\$?$`)

	// EnvNamePattern matches well-formed environment variable names
	EnvNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// ValidateSafeString ensures input contains only safe characters
func ValidateSafeString(input string, maxLength int, fieldName string) error {
	if input == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	if len(input) > maxLength {
		return fmt.Errorf("%s too long: %d characters (max %d)", fieldName, len(input), maxLength)
	}

	if !SafeStringPattern.MatchString(input) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, dots, hyphens, underscores allowed)", fieldName)
	}

	if strings.Contains(input, "..") {
		return fmt.Errorf("%s cannot contain consecutive dots", fieldName)
	}

	return nil
}

// ValidatePrincipalName ensures a user or group name is POSIX-portable.
func ValidatePrincipalName(name string, fieldName string) error {
	if name == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	if len(name) > 32 {
		return fmt.Errorf("%s too long: %d characters (max 32)", fieldName, len(name))
	}

	if !PrincipalNamePattern.MatchString(name) {
		return fmt.Errorf("%s is not a portable user or group name", fieldName)
	}

	return nil
}

// SanitizeForLogging removes sensitive information from strings for safe logging.
// Request environments carry credentials in well-known variables; anything that
// might land in a log line goes through here first.
func SanitizeForLogging(input string) string {
	// Header values may contain spaces ("Basic dXNlcjpwYXNz"): redact to end of line.
	input = regexp.MustCompile(`(?i)(HTTP_AUTHORIZATION|HTTP_COOKIE|HTTP_X_API_KEY)=[^\n]*`).ReplaceAllString(input, "$1=[REDACTED]")
	input = regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._~+/-]+=*`).ReplaceAllString(input, "Bearer [REDACTED]")
	input = regexp.MustCompile(`password[=:]\s*\S+`).ReplaceAllStringFunc(input, func(match string) string {
		return regexp.MustCompile(`\S+$`).ReplaceAllString(match, "[REDACTED]")
	})
	input = regexp.MustCompile(`token[=:]\s*\S+`).ReplaceAllStringFunc(input, func(match string) string {
		return regexp.MustCompile(`\S+$`).ReplaceAllString(match, "[REDACTED]")
	})

	return input
}
