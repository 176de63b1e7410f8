package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// waitDelayAfterKill is the grace period for a command to exit after context
// cancellation before it is forcibly killed.
const waitDelayAfterKill = 5 * time.Second

// DefaultMaxOutputBytes caps the captured output of a single command (1 MiB).
const DefaultMaxOutputBytes = 1 << 20

// droppedMarker ends output that went over the capture limit.
const droppedMarker = "\n...[%d bytes dropped]"

// execRunner implements Runner using os/exec.
type execRunner struct {
	maxOutput int
	logger    *slog.Logger
}

// NewExecRunner returns a Runner that executes real binaries found in PATH.
// Stdout and stderr are captured together.
func NewExecRunner(logger *slog.Logger) Runner {
	return &execRunner{
		maxOutput: DefaultMaxOutputBytes,
		logger:    logger.With("component", "runner"),
	}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (StepResult, error) {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	r.logger.Debug("run command", "cmd", line)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelayAfterKill
	out := &outputCapture{limit: r.maxOutput}
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	res := StepResult{Output: out.Output()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			r.logger.Debug("command exited", "cmd", line, "exit_code", res.ExitCode)
			return res, nil
		}
		res.ExitCode = -1
		return res, err
	}

	r.logger.Debug("command exited", "cmd", line, "exit_code", 0)
	return res, nil
}

// outputCapture keeps the first limit bytes a command writes and counts the
// rest. Writes never fail, so a chatty command is not blocked on its pipe.
type outputCapture struct {
	buf     bytes.Buffer
	limit   int
	dropped int
}

func (c *outputCapture) Write(p []byte) (int, error) {
	keep := min(len(p), max(c.limit-c.buf.Len(), 0))
	c.buf.Write(p[:keep])
	c.dropped += len(p) - keep
	return len(p), nil
}

// Output returns the kept bytes, followed by a marker when any were dropped.
func (c *outputCapture) Output() string {
	if c.dropped == 0 {
		return c.buf.String()
	}
	return c.buf.String() + fmt.Sprintf(droppedMarker, c.dropped)
}

// realRootChecker implements RootChecker using the effective UID.
type realRootChecker struct{}

// NewRootChecker returns a RootChecker that checks the real process credentials.
func NewRootChecker() RootChecker {
	return &realRootChecker{}
}

func (c *realRootChecker) IsRoot() bool {
	return unix.Geteuid() == 0
}
