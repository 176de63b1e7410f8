package lifecycle

import (
	"context"
	"strings"
)

// fileOps wraps the coreutils calls used to lay out configuration.
type fileOps struct {
	runner Runner
}

// CopyTree copies the contents of src into dst, preserving modes and
// overwriting existing files.
func (f fileOps) CopyTree(ctx context.Context, src, dst string) (StepResult, error) {
	return f.runner.Run(ctx, "cp", "-a", strings.TrimRight(src, "/")+"/.", strings.TrimRight(dst, "/")+"/")
}

// MakeExecutable adds the executable bit to everything under dir.
func (f fileOps) MakeExecutable(ctx context.Context, dir string) (StepResult, error) {
	return f.runner.Run(ctx, "chmod", "-R", "+x", dir)
}

// RemoveTree deletes dir recursively. A missing dir is not an error.
func (f fileOps) RemoveTree(ctx context.Context, dir string) (StepResult, error) {
	return f.runner.Run(ctx, "rm", "-rf", "--", dir)
}
