package lifecycle

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner_CapturesOutputAndExitCode(t *testing.T) {
	requireShell(t)
	r := NewExecRunner(testLogger())

	tests := []struct {
		name     string
		script   string
		wantCode int
		wantOut  string
	}{
		{"success", "echo installed", 0, "installed\n"},
		{"stderr captured", "echo oops >&2; exit 3", 3, "oops\n"},
		{"silent failure", "exit 1", 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Run(context.Background(), "sh", "-c", tt.script)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if res.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", res.ExitCode, tt.wantCode)
			}
			if res.Output != tt.wantOut {
				t.Errorf("Output = %q, want %q", res.Output, tt.wantOut)
			}
		})
	}
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := NewExecRunner(testLogger())

	res, err := r.Run(context.Background(), "definitely-not-a-real-binary-npd")
	if err == nil {
		t.Fatal("Run() error = nil, want error for missing binary")
	}
	if res.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", res.ExitCode)
	}
}

func TestExecRunner_TruncatesOutput(t *testing.T) {
	requireShell(t)
	r := &execRunner{maxOutput: 16, logger: testLogger()}

	res, err := r.Run(context.Background(), "sh", "-c", "printf '%064d' 0")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	marker := "\n...[48 bytes dropped]"
	if !strings.HasSuffix(res.Output, marker) {
		t.Errorf("Output = %q, want suffix %q", res.Output, marker)
	}
	if got := strings.TrimSuffix(res.Output, marker); len(got) != 16 {
		t.Errorf("captured %d bytes, want 16", len(got))
	}
}

func TestOutputCapture(t *testing.T) {
	tests := []struct {
		name   string
		writes []string
		want   string
	}{
		{"under limit", []string{"abc"}, "abc"},
		{"exactly at limit", []string{"abcd", "efgh"}, "abcdefgh"},
		{"split across writes", []string{"abcdef", "ghij", "k"}, "abcdefgh\n...[3 bytes dropped]"},
		{"nothing written", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &outputCapture{limit: 8}
			for _, w := range tt.writes {
				if n, err := c.Write([]byte(w)); n != len(w) || err != nil {
					t.Fatalf("Write(%q) = %d, %v", w, n, err)
				}
			}
			if got := c.Output(); got != tt.want {
				t.Errorf("Output() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewRootChecker_ImplementsInterface(t *testing.T) {
	var _ RootChecker = NewRootChecker()
}

func TestNewExecRunner_ImplementsInterface(t *testing.T) {
	var _ Runner = NewExecRunner(testLogger())
}
