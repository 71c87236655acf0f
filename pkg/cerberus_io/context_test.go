package cerberus_io

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
)

func TestNewContext(t *testing.T) {
	t.Parallel()

	rc := NewContext(context.Background(), "check")

	if rc.Ctx == nil {
		t.Error("Ctx should be set")
	}
	if rc.Log == nil {
		t.Error("Log should be set")
	}
	if rc.Span == nil {
		t.Error("Span should be set")
	}
	if rc.Command != "check" {
		t.Errorf("Command = %q, want %q", rc.Command, "check")
	}
	if rc.Attributes == nil {
		t.Error("Attributes map should be initialized")
	}
	if rc.Validate == nil {
		t.Error("Validate should be initialized")
	}
	if rc.Timestamp.IsZero() {
		t.Error("Timestamp should be captured")
	}
	if rc.InvocationID == "" {
		t.Error("InvocationID should be assigned")
	}
}

func TestNewContext_NilContext(t *testing.T) {
	t.Parallel()

	rc := NewContext(nil, "gate") //nolint:staticcheck

	if rc.Ctx == nil {
		t.Error("nil parent context should be replaced, not propagated")
	}
}

func TestHandlePanic(t *testing.T) {
	t.Parallel()

	t.Run("converts_panic_to_error", func(t *testing.T) {
		t.Parallel()
		rc := NewContext(context.Background(), "gate")

		var err error
		func() {
			defer rc.HandlePanic(&err)
			panic("invariant broken")
		}()

		if err == nil {
			t.Fatal("panic should surface as an error")
		}
		if !strings.Contains(err.Error(), "invariant broken") {
			t.Errorf("error should carry the panic value, got %q", err.Error())
		}
	})

	t.Run("no_panic_leaves_error_untouched", func(t *testing.T) {
		t.Parallel()
		rc := NewContext(context.Background(), "gate")

		sentinel := errors.New("pre-existing")
		err := sentinel
		func() {
			defer rc.HandlePanic(&err)
		}()

		if !errors.Is(err, sentinel) {
			t.Error("error should be untouched when nothing panics")
		}
	})
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	type handlerSpec struct {
		Path   string `validate:"required"`
		Suffix string `validate:"required,min=2"`
	}

	rc := NewContext(context.Background(), "check")

	t.Run("valid_struct_passes", func(t *testing.T) {
		t.Parallel()
		err := rc.ValidateStruct(handlerSpec{Path: "/usr/lib/cgi-bin/php", Suffix: ".php"})
		if err != nil {
			t.Errorf("valid struct should pass, got %v", err)
		}
	})

	t.Run("missing_field_fails", func(t *testing.T) {
		t.Parallel()
		err := rc.ValidateStruct(handlerSpec{Suffix: ".php"})
		if err == nil {
			t.Error("missing required field should fail validation")
		}
	})

	t.Run("nil_validator_is_noop", func(t *testing.T) {
		t.Parallel()
		bare := &RuntimeContext{}
		if err := bare.ValidateStruct(handlerSpec{}); err != nil {
			t.Errorf("nil validator should be a no-op, got %v", err)
		}
	})
}

func TestEnd_DoesNotPanic(t *testing.T) {
	t.Parallel()

	t.Run("success_path", func(t *testing.T) {
		t.Parallel()
		rc := NewContext(context.Background(), "check")
		var err error
		rc.End(&err)
	})

	t.Run("failure_path", func(t *testing.T) {
		t.Parallel()
		rc := NewContext(context.Background(), "check")
		err := cerberus_err.NewSecurityError("refused")
		rc.End(&err)
	})
}

func TestClassifyError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil",
			err:  nil,
			want: "",
		},
		{
			name: "expected_user_error",
			err:  cerberus_err.NewExpectedError(context.Background(), errors.New("host fails check")),
			want: "user",
		},
		{
			name: "security_verdict",
			err:  cerberus_err.NewSecurityError("refused"),
			want: "admission_refused",
		},
		{
			name: "plain_error",
			err:  errors.New("unexpected failure"),
			want: "general_error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := classifyError(tt.err); got != tt.want {
				t.Errorf("classifyError() = %q, want %q", got, tt.want)
			}
		})
	}
}
