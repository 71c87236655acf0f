package cerberus_err

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

// Helper function to capture stderr output
func captureStderr(fn func()) string {
	// Save the original stderr
	originalStderr := os.Stderr

	// Create a pipe to capture stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	// Channel to capture the output
	outputCh := make(chan string)

	// Start a goroutine to read from the pipe
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outputCh <- buf.String()
	}()

	// Execute the function
	fn()

	// Close the writer and restore stderr
	_ = w.Close()
	os.Stderr = originalStderr

	// Get the captured output
	return <-outputCh
}

func TestSetDebugMode(t *testing.T) {
	// Save original state
	originalDebug := debugMode
	defer func() { debugMode = originalDebug }()

	// Test enabling debug mode
	SetDebugMode(true)
	if !DebugEnabled() {
		t.Error("Debug mode should be enabled")
	}

	// Test disabling debug mode
	SetDebugMode(false)
	if DebugEnabled() {
		t.Error("Debug mode should be disabled")
	}
}

func TestNewExpectedError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Test with nil error
	if err := NewExpectedError(ctx, nil); err != nil {
		t.Error("NewExpectedError(nil) should return nil")
	}

	// Test with actual error
	originalErr := errors.New("host fails the handler check")
	wrappedErr := NewExpectedError(ctx, originalErr)

	if wrappedErr == nil {
		t.Fatal("NewExpectedError should not return nil for non-nil error")
	}

	// Verify it's a UserError
	var userErr *UserError
	if !errors.As(wrappedErr, &userErr) {
		t.Error("NewExpectedError should return a UserError")
	}

	// Verify the cause is preserved
	if !errors.Is(wrappedErr, originalErr) {
		t.Error("Wrapped error should preserve the original error")
	}
}

func TestIsExpectedUserError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "regular error",
			err:  errors.New("system error"),
			want: false,
		},
		{
			name: "user error",
			err:  &UserError{cause: errors.New("operator mistake")},
			want: true,
		},
		{
			name: "wrapped user error",
			err:  NewExpectedError(context.Background(), errors.New("config error")),
			want: true,
		},
		{
			name: "classified error",
			err:  NewSecurityError("refused"),
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsExpectedUserError(tt.err); got != tt.want {
				t.Errorf("IsExpectedUserError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrintError(t *testing.T) {
	// Save original debug mode
	originalDebug := debugMode
	defer func() { debugMode = originalDebug }()

	tests := []struct {
		name         string
		debugMode    bool
		userMessage  string
		err          error
		expectOutput bool
		outputCheck  func(string) bool
	}{
		{
			name:         "nil_error_no_output",
			debugMode:    false,
			userMessage:  "operation completed",
			err:          nil,
			expectOutput: false,
			outputCheck:  func(output string) bool { return output == "" },
		},
		{
			name:         "regular_error_non_debug",
			debugMode:    false,
			userMessage:  "admission check failed",
			err:          errors.New("stat failed"),
			expectOutput: true,
			outputCheck: func(output string) bool {
				return strings.Contains(output, "Error: admission check failed") &&
					strings.Contains(output, "stat failed")
			},
		},
		{
			name:         "user_error_non_debug",
			debugMode:    false,
			userMessage:  "host not ready",
			err:          &UserError{cause: errors.New("handler missing")},
			expectOutput: true,
			outputCheck: func(output string) bool {
				return strings.Contains(output, "Notice: host not ready") &&
					strings.Contains(output, "handler missing")
			},
		},
		{
			name:         "expected_user_error_non_debug",
			debugMode:    false,
			userMessage:  "check found problems",
			err:          NewExpectedError(context.Background(), errors.New("base directory missing")),
			expectOutput: true,
			outputCheck: func(output string) bool {
				return strings.Contains(output, "Notice: check found problems") &&
					strings.Contains(output, "base directory missing")
			},
		},
		{
			name:         "debug_prints_full_chain",
			debugMode:    true,
			userMessage:  "policy rejected",
			err:          WrapValidationError(errors.New("Suffix fails min tag")),
			expectOutput: true,
			outputCheck: func(output string) bool {
				return strings.Contains(output, "Error: policy rejected") &&
					strings.Contains(output, "Suffix fails min tag") &&
					strings.Contains(output, "Check input parameters")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Set debug mode for this test
			debugMode = tt.debugMode

			ctx := context.Background()

			// Capture stderr output
			output := captureStderr(func() {
				PrintError(ctx, tt.userMessage, tt.err)
			})

			// Check if output matches expectations
			if tt.expectOutput {
				if output == "" {
					t.Error("expected output but got none")
				} else if !tt.outputCheck(output) {
					t.Errorf("output check failed. Got: %q", output)
				}
			} else {
				if output != "" {
					t.Errorf("expected no output but got: %q", output)
				}
			}
		})
	}
}
