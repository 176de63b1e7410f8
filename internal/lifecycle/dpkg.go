package lifecycle

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// packageManager wraps the dpkg command-line surface for one package.
type packageManager struct {
	runner Runner
	pkg    string
}

// Query runs dpkg-query for the package status triple ("want flag state").
func (p packageManager) Query(ctx context.Context) (StepResult, error) {
	return p.runner.Run(ctx, "dpkg-query", "-W", "-f=${Status}", p.pkg)
}

// Installed reports whether the package is fully installed.
func (p packageManager) Installed(ctx context.Context) (bool, error) {
	res, err := p.Query(ctx)
	if err != nil {
		return false, fmt.Errorf("lifecycle: dpkg-query %s: %w", p.pkg, err)
	}
	return isInstalled(res), nil
}

// InstallArtifacts installs local .deb files in place, upgrading an existing install.
func (p packageManager) InstallArtifacts(ctx context.Context, artifacts []string) (StepResult, error) {
	args := append([]string{"--force-confnew", "-i"}, artifacts...)
	return p.runner.Run(ctx, "dpkg", args...)
}

// Purge removes the package and its conffiles.
func (p packageManager) Purge(ctx context.Context) (StepResult, error) {
	return p.runner.Run(ctx, "dpkg", "--purge", p.pkg)
}

// isInstalled interprets a dpkg-query status result. The package counts as
// installed only when the query succeeded and the state word is "installed";
// states such as "config-files" or "half-installed" do not.
func isInstalled(res StepResult) bool {
	if res.ExitCode != 0 {
		return false
	}
	fields := strings.Fields(res.Output)
	if len(fields) != 3 {
		return false
	}
	return fields[2] == "installed"
}

func isNotInstalled(res StepResult) bool {
	return !isInstalled(res)
}

// resolveArtifacts expands the artifact glob. No match is an error.
func resolveArtifacts(glob string) ([]string, error) {
	matches, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: artifact glob %q: %w", glob, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("lifecycle: no package artifact matches %q", glob)
	}
	return matches, nil
}
