package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

// TestExecute_Version verifies --version prints a version string.
func TestExecute_Version(t *testing.T) {
	out, _, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "connstate ") {
		t.Errorf("version output = %q", out)
	}
}

// TestExecute_Help verifies --help prints usage without error.
func TestExecute_Help(t *testing.T) {
	_, errOut, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(errOut, "Usage:") || !strings.Contains(errOut, "--script") {
		t.Errorf("usage output missing sections:\n%s", errOut)
	}
}

// TestExecute_DefaultScript verifies no args replays the walkthrough.
func TestExecute_DefaultScript(t *testing.T) {
	out, _, err := execute(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 8 || lines[0] != "Connecting..." || lines[6] != "Sending data: Hola" {
		t.Errorf("unexpected walkthrough:\n%s", out)
	}
}

func TestExecute_CustomScript(t *testing.T) {
	out, _, err := execute(t, "-s", "send:hi", "-s", "connect", "-s", "send:hi", "-s", "establish", "-s", "send:hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Cannot send data. Not connected.\nConnecting...\nCannot send data while connecting.\nConnection established.\nSending data: hi\n"
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

// TestExecute_PayloadWithComma verifies a send step keeps its payload
// verbatim when each step has its own -s.
func TestExecute_PayloadWithComma(t *testing.T) {
	out, _, err := execute(t, "-s", "connect", "-s", "establish", "-s", "send:Hola, mundo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Connecting...\nConnection established.\nSending data: Hola, mundo\n"
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestExecute_Metrics(t *testing.T) {
	_, errOut, err := execute(t, "--metrics", "-s", "connect", "-s", "connect")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(errOut, `"rejections": 1`) {
		t.Errorf("metrics output = %s", errOut)
	}
}

func TestExecute_Table(t *testing.T) {
	out, _, err := execute(t, "--table")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(out, `"from"`) != 12 {
		t.Errorf("expected 12 rules, got:\n%s", out)
	}
}

// TestExecute_DryRun verifies --dry-run validates and exits cleanly.
func TestExecute_DryRun(t *testing.T) {
	out, _, err := execute(t, "--dry-run", "-N", "db", "127.0.0.1", "5432")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "link db → 127.0.0.1:5432\n" {
		t.Errorf("dry-run output = %q", out)
	}
}

func TestExecute_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.json")
	if err := os.WriteFile(path, []byte(`{"name":"filed","script":["connect"]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, "--dry-run", "-f", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "script filed: 1 steps\n" {
		t.Errorf("dry-run output = %q", out)
	}
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--nonexistent-flag"}},
		{"missing port", []string{"example.com"}},
		{"bad port", []string{"example.com", "http"}},
		{"too many args", []string{"a", "1", "2"}},
		{"bad step", []string{"-s", "reboot"}},
		{"script with host", []string{"-s", "connect", "example.com", "80"}},
		{"zero retries", []string{"-r", "0", "example.com", "80"}},
		{"tunnel without host", []string{"-T", "gw"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
