// pkg/pathcheck/resolve_test.go

package pathcheck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
)

// canonicalTempDir returns a t.TempDir() with its own symlinks resolved, so
// expectations can compare against exact canonical strings.
func canonicalTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to canonicalize temp dir: %v", err)
	}
	return dir
}

func writeFile(t *testing.T, path string, perm os.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, []byte("<?php\n"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	if err := os.Chmod(path, perm); err != nil {
		t.Fatalf("failed to chmod %s: %v", path, err)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	base := canonicalTempDir(t)

	target := filepath.Join(base, "index.php")
	writeFile(t, target, 0o644)

	link := filepath.Join(base, "alias.php")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	t.Run("canonical_path_resolves_to_itself", func(t *testing.T) {
		got, err := Resolve(ctx, target)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if got != target {
			t.Errorf("Resolve = %q, want %q", got, target)
		}
	})

	t.Run("symlink_resolves_to_target", func(t *testing.T) {
		got, err := Resolve(ctx, link)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if got != target {
			t.Errorf("Resolve = %q, want %q", got, target)
		}
	})

	t.Run("missing_path_is_missing_input", func(t *testing.T) {
		_, err := Resolve(ctx, filepath.Join(base, "nope.php"))
		if err == nil {
			t.Fatal("expected error for missing path")
		}
		if code := cerberus_err.GetExitCode(err); code != cerberus_err.ExNoInput {
			t.Errorf("exit code = %d, want %d", code, cerberus_err.ExNoInput)
		}
	})

	t.Run("empty_path_is_missing_input", func(t *testing.T) {
		_, err := Resolve(ctx, "")
		if err == nil {
			t.Fatal("expected error for empty path")
		}
		if code := cerberus_err.GetExitCode(err); code != cerberus_err.ExNoInput {
			t.Errorf("exit code = %d, want %d", code, cerberus_err.ExNoInput)
		}
	})

	t.Run("resolution_is_idempotent", func(t *testing.T) {
		once, err := Resolve(ctx, link)
		if err != nil {
			t.Fatalf("first Resolve failed: %v", err)
		}
		twice, err := Resolve(ctx, once)
		if err != nil {
			t.Fatalf("second Resolve failed: %v", err)
		}
		if once != twice {
			t.Errorf("Resolve not idempotent: %q then %q", once, twice)
		}
	})
}

func TestResolveSame(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	base := canonicalTempDir(t)

	target := filepath.Join(base, "index.php")
	writeFile(t, target, 0o644)

	link := filepath.Join(base, "alias.php")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	t.Run("canonical_input_passes", func(t *testing.T) {
		got, err := ResolveSame(ctx, target)
		if err != nil {
			t.Fatalf("ResolveSame failed: %v", err)
		}
		if got != target {
			t.Errorf("ResolveSame = %q, want %q", got, target)
		}
	})

	t.Run("symlinked_input_is_refused", func(t *testing.T) {
		_, err := ResolveSame(ctx, link)
		if err == nil {
			t.Fatal("expected error for symlinked input")
		}
		if code := cerberus_err.GetExitCode(err); code != cerberus_err.ExSecurity {
			t.Errorf("exit code = %d, want %d", code, cerberus_err.ExSecurity)
		}
	})

	t.Run("missing_input_is_missing_input", func(t *testing.T) {
		_, err := ResolveSame(ctx, filepath.Join(base, "nope.php"))
		if err == nil {
			t.Fatal("expected error for missing path")
		}
		if code := cerberus_err.GetExitCode(err); code != cerberus_err.ExNoInput {
			t.Errorf("exit code = %d, want %d", code, cerberus_err.ExNoInput)
		}
	})
}

func TestContains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		sub   string
		super string
		want  bool
	}{
		{name: "path_contains_itself", sub: "/home/alice", super: "/home/alice", want: true},
		{name: "direct_child", sub: "/home/alice/public", super: "/home/alice", want: true},
		{name: "deep_descendant", sub: "/home/alice/public/app/index.php", super: "/home/alice", want: true},
		{name: "sibling_prefix_does_not_match", sub: "/home/alice2/index.php", super: "/home/alice", want: false},
		{name: "parent_is_not_contained", sub: "/home", super: "/home/alice", want: false},
		{name: "unrelated_tree", sub: "/var/www/index.php", super: "/home/alice", want: false},
		{name: "root_contains_everything", sub: "/home/alice", super: "/", want: true},
		{name: "root_contains_itself", sub: "/", super: "/", want: true},
		{name: "empty_super_contains_nothing", sub: "/home/alice", super: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Contains(tt.sub, tt.super); got != tt.want {
				t.Errorf("Contains(%q, %q) = %v, want %v", tt.sub, tt.super, got, tt.want)
			}
		})
	}
}
