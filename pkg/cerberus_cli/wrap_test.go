package cerberus_cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/spf13/cobra"
)

func TestWrap_RunsFunction(t *testing.T) {
	called := false
	wrapped := Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		called = true
		if rc == nil {
			t.Error("runtime context should be provided")
		}
		if len(args) != 1 || args[0] != "target" {
			t.Errorf("args = %v, want [target]", args)
		}
		return nil
	})

	cmd := &cobra.Command{Use: "check"}
	if err := wrapped(cmd, []string{"target"}); err != nil {
		t.Errorf("wrapped function returned error: %v", err)
	}
	if !called {
		t.Error("wrapped function was not invoked")
	}
}

func TestWrap_PropagatesError(t *testing.T) {
	sentinel := errors.New("check failed")
	wrapped := Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return sentinel
	})

	cmd := &cobra.Command{Use: "check"}
	err := wrapped(cmd, nil)
	if err == nil {
		t.Fatal("error should propagate")
	}
	if !errors.Is(err, sentinel) {
		t.Error("original error should be preserved under the stack wrap")
	}
}

func TestWrap_RecoversPanic(t *testing.T) {
	wrapped := Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		panic("boom")
	})

	cmd := &cobra.Command{Use: "gate"}
	err := wrapped(cmd, nil)
	if err == nil {
		t.Fatal("panic should surface as an error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should carry the panic value, got %q", err.Error())
	}
}

func TestWrap_PreservesVerdictExitCode(t *testing.T) {
	wrapped := Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return cerberus_err.NewSecurityError("script is writable by others")
	})

	cmd := &cobra.Command{Use: "gate"}
	err := wrapped(cmd, nil)
	if err == nil {
		t.Fatal("verdict should propagate")
	}
	if got := cerberus_err.GetExitCode(err); got != 69 {
		t.Errorf("exit code survived wrapping as %d, want 69", got)
	}
}

func TestRejectHostileArguments(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{
			name:    "empty",
			args:    nil,
			wantErr: false,
		},
		{
			name:    "plain_path",
			args:    []string{"/srv/www/u/index.php"},
			wantErr: false,
		},
		{
			name:    "nul_byte",
			args:    []string{"safe\x00hidden"},
			wantErr: true,
		},
		{
			name:    "newline",
			args:    []string{"line\ninjection"},
			wantErr: true,
		},
		{
			name:    "carriage_return",
			args:    []string{"line\rinjection"},
			wantErr: true,
		},
		{
			name:    "oversized",
			args:    []string{strings.Repeat("a", maxArgBytes+1)},
			wantErr: true,
		},
		{
			name:    "at_limit",
			args:    []string{strings.Repeat("a", maxArgBytes)},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := rejectHostileArguments(tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("rejectHostileArguments(%q) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestWrap_RejectsHostileArguments(t *testing.T) {
	wrapped := Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		t.Error("function should not run with hostile arguments")
		return nil
	})

	cmd := &cobra.Command{Use: "check"}
	err := wrapped(cmd, []string{"bad\x00arg"})
	if err == nil {
		t.Fatal("hostile arguments should be rejected")
	}
	if !cerberus_err.IsExpectedUserError(err) {
		t.Error("rejection should present as an expected user error")
	}
}
