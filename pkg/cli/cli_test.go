package cli

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "check", RunE: func(cmd *cobra.Command, args []string) error { return nil }}
	AddStringFlag(cmd, "script", "s", "", "script path to evaluate")
	AddStringFlag(cmd, "expect", "", "", "expected configuration snapshot")
	AddBoolFlag(cmd, "explain", "", false, "log every check")
	AddIntFlag(cmd, "top", "", 5, "frequency table size")
	AddStringSliceFlag(cmd, "keep", "", nil, "names expected to survive")
	return cmd
}

func TestGetStringOrEmpty(t *testing.T) {
	t.Parallel()
	cmd := newTestCommand()

	if got := GetStringOrEmpty(cmd, "script"); got != "" {
		t.Errorf("unset flag should read empty, got %q", got)
	}
	if got := GetStringOrEmpty(cmd, "no-such-flag"); got != "" {
		t.Errorf("unknown flag should read empty, got %q", got)
	}

	if err := cmd.Flags().Set("script", "/srv/www/u/index.php"); err != nil {
		t.Fatal(err)
	}
	if got := GetStringOrEmpty(cmd, "script"); got != "/srv/www/u/index.php" {
		t.Errorf("set flag should read back, got %q", got)
	}
}

func TestSliceFlagAccumulates(t *testing.T) {
	t.Parallel()
	cmd := newTestCommand()

	_ = cmd.Flags().Set("keep", "PATH_INFO")
	_ = cmd.Flags().Set("keep", "QUERY_STRING")

	got, err := cmd.Flags().GetStringSlice("keep")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "PATH_INFO" || got[1] != "QUERY_STRING" {
		t.Errorf("keep = %v, want [PATH_INFO QUERY_STRING]", got)
	}
}

func TestFlagDebugString(t *testing.T) {
	t.Parallel()
	cmd := newTestCommand()
	_ = cmd.Flags().Set("script", "/srv/www/u/index.php")
	_ = cmd.Flags().Set("explain", "true")

	got := FlagDebugString(cmd)
	for _, want := range []string{"--script=/srv/www/u/index.php", "--explain=true", "--top=5"} {
		if !strings.Contains(got, want) {
			t.Errorf("FlagDebugString() = %q, should contain %q", got, want)
		}
	}
}
