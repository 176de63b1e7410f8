package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Azure/aks-node-extension/internal/handlerenv"
)

// writeHandlerEnv lays out an extension directory with HandlerEnvironment.json
// pointing at log, config and status folders inside it.
func writeHandlerEnv(t *testing.T) (extDir, envPath string) {
	t.Helper()
	extDir = t.TempDir()
	envPath = filepath.Join(extDir, handlerenv.DefaultEnvironmentFile)
	content := fmt.Sprintf(`[{"name":%q,"version":1.0,"handlerEnvironment":{"logFolder":%q,"configFolder":%q,"statusFolder":%q}}]`,
		handlerenv.DefaultName,
		filepath.Join(extDir, "log"),
		filepath.Join(extDir, "config"),
		filepath.Join(extDir, "status"),
	)
	if err := os.WriteFile(envPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%q) = %v", envPath, err)
	}
	return extDir, envPath
}

func TestExecute_NoVerbDoesNothing(t *testing.T) {
	if err := Execute([]string{"-reboot", "now"}); err != nil {
		t.Fatalf("Execute() = %v, want nil", err)
	}
}

func TestExecute_AlreadyAppliedSkipsVerb(t *testing.T) {
	extDir, envPath := writeHandlerEnv(t)
	if err := os.WriteFile(filepath.Join(extDir, "mrseq.enable"), []byte("5"), 0o600); err != nil {
		t.Fatalf("WriteFile(mrseq.enable) = %v", err)
	}
	t.Setenv(handlerenv.SequenceNumberEnv, "5")

	err := Execute([]string{"-enable", "--extension-dir", extDir, "--handler-env", envPath, "--log-level", "info"})
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}

	if _, err := os.Stat(filepath.Join(extDir, "status", "5.status")); !os.IsNotExist(err) {
		t.Errorf("status file written for an applied sequence (stat err = %v)", err)
	}

	logData, err := os.ReadFile(filepath.Join(extDir, "log", handlerenv.LogFileName))
	if err != nil {
		t.Fatalf("ReadFile(log) = %v", err)
	}
	if !strings.Contains(string(logData), "already applied") {
		t.Errorf("log = %s, want skip recorded", logData)
	}
}

func TestExecute_MissingHandlerEnvironmentOnlyLogs(t *testing.T) {
	extDir := t.TempDir()

	err := Execute([]string{"/install", "--extension-dir", extDir, "--handler-env", filepath.Join(extDir, "missing.json"), "--log-level", "error"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing HandlerEnvironment.json")
	}

	entries, readErr := os.ReadDir(extDir)
	if readErr != nil {
		t.Fatalf("ReadDir(%q) = %v", extDir, readErr)
	}
	if len(entries) != 0 {
		t.Errorf("found %d entries in %s, want nothing written", len(entries), extDir)
	}
}

func TestExecute_Version(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2026-10-18")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	if err := Execute([]string{"--version"}); err != nil {
		t.Fatalf("Execute(--version) = %v", err)
	}
	if !strings.Contains(out.String(), "aksnode version 1.2.3") || !strings.Contains(out.String(), "commit: abc123") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestResolveExtensionDir(t *testing.T) {
	dir := t.TempDir()
	got, err := resolveExtensionDir(dir)
	if err != nil || got != dir {
		t.Errorf("resolveExtensionDir(%q) = %q, %v", dir, got, err)
	}

	got, err = resolveExtensionDir("")
	if err != nil {
		t.Fatalf("resolveExtensionDir(\"\") = %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("resolveExtensionDir(\"\") = %q, want absolute path", got)
	}
}

func TestVerbCommandsRegistered(t *testing.T) {
	for _, name := range []string{"install", "enable", "disable", "update", "uninstall"} {
		c, _, err := rootCmd.Find([]string{name})
		if err != nil || c.Name() != name {
			t.Errorf("Find(%q) = %v, %v", name, c, err)
		}
	}
}
