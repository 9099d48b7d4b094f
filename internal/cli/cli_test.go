package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lazypower/decay/internal/decay"
)

// runCLI executes a fresh command tree with an isolated config and database.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DECAY_CONFIG", "")
	if os.Getenv("DECAY_DB") == "" {
		t.Setenv("DECAY_DB", filepath.Join(t.TempDir(), "history.db"))
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootPrintsDecayedAmount(t *testing.T) {
	out, err := runCLI(t)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := "{ decayedAmount: " + decay.FormatNumber(decay.Compute(1000, 0.01, 10)) + " }\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
	if !strings.HasPrefix(out, "{ decayedAmount: 904.382") {
		t.Errorf("output = %q, want ≈ 904.382", out)
	}
}

func TestRootFlags(t *testing.T) {
	out, err := runCLI(t, "--initial", "500", "--rate", "0.05", "--time", "1", "--places", "6")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "{ decayedAmount: 475 }\n" {
		t.Errorf("output = %q", out)
	}

	out, err = runCLI(t, "--places", "3")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "{ decayedAmount: 904.382 }\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRootUnguardedDomain(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--rate", "1", "--time", "5"}, "{ decayedAmount: 0 }\n"},
		{[]string{"--rate", "1", "--time", "0"}, "{ decayedAmount: NaN }\n"},
		{[]string{"--rate", "2", "--places", "2"}, "{ decayedAmount: NaN }\n"},
	}
	for _, tt := range tests {
		out, err := runCLI(t, tt.args...)
		if err != nil {
			t.Fatalf("%v: %v", tt.args, err)
		}
		if out != tt.want {
			t.Errorf("%v: output = %q, want %q", tt.args, out, tt.want)
		}
	}
}

func TestRootStrict(t *testing.T) {
	out, err := runCLI(t, "--rate", "1", "--strict")
	if !errors.Is(err, decay.ErrDomain) {
		t.Fatalf("err = %v, want ErrDomain", err)
	}
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestRootRejectsArgs(t *testing.T) {
	if _, err := runCLI(t, "extra"); err == nil {
		t.Error("expected error for positional argument")
	}
	if _, err := runCLI(t, "--places", "-2"); err == nil {
		t.Error("expected error for --places -2")
	}
}

func TestRootConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decay.yaml")
	body := "decay:\n  initial_amount: 8\n  decay_rate: 0.5\n  elapsed_time: 3\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := runCLI(t, "--config", path)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "{ decayedAmount: 1 }\n" {
		t.Errorf("output = %q", out)
	}

	// Flags win over the file.
	out, err = runCLI(t, "--config", path, "--time", "0")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "{ decayedAmount: 8 }\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRecordAndHistory(t *testing.T) {
	t.Setenv("DECAY_DB", filepath.Join(t.TempDir(), "history.db"))

	out, err := runCLI(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No calculations recorded") {
		t.Errorf("empty history output = %q", out)
	}

	if _, err := runCLI(t, "--record", "--initial", "500", "--rate", "0.05", "--time", "1"); err != nil {
		t.Fatalf("record: %v", err)
	}

	out, err = runCLI(t, "history", "-n", "5")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "initial=500 rate=0.05 time=1") {
		t.Errorf("history output = %q", out)
	}
	if !strings.Contains(out, "decayedAmount: 475") {
		t.Errorf("history output = %q", out)
	}
}

func TestHalfLife(t *testing.T) {
	out, err := runCLI(t, "halflife", "--rate", "0.5")
	if err != nil {
		t.Fatalf("halflife: %v", err)
	}
	if out != "{ halfLife: 1 }\n" {
		t.Errorf("output = %q", out)
	}

	out, err = runCLI(t, "halflife", "--rate", "0")
	if err != nil {
		t.Fatalf("halflife: %v", err)
	}
	if out != "{ halfLife: Infinity }\n" {
		t.Errorf("output = %q", out)
	}

	out, err = runCLI(t, "halflife", "--places", "2")
	if err != nil {
		t.Fatalf("halflife: %v", err)
	}
	if out != "{ halfLife: 68.97 }\n" {
		t.Errorf("output = %q", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "decay dev") {
		t.Errorf("output = %q", out)
	}
}
