package lifecycle

import "context"

// serviceManager wraps systemctl for one unit. Every call blocks until
// systemctl exits; the exit code is the only success signal.
type serviceManager struct {
	runner Runner
	unit   string
}

func (s serviceManager) DaemonReload(ctx context.Context) (StepResult, error) {
	return s.runner.Run(ctx, "systemctl", "daemon-reload")
}

func (s serviceManager) Enable(ctx context.Context) (StepResult, error) {
	return s.runner.Run(ctx, "systemctl", "enable", s.unit)
}

func (s serviceManager) Disable(ctx context.Context) (StepResult, error) {
	return s.runner.Run(ctx, "systemctl", "disable", s.unit)
}

func (s serviceManager) Start(ctx context.Context) (StepResult, error) {
	return s.runner.Run(ctx, "systemctl", "start", s.unit)
}

func (s serviceManager) Stop(ctx context.Context) (StepResult, error) {
	return s.runner.Run(ctx, "systemctl", "stop", s.unit)
}

func (s serviceManager) Restart(ctx context.Context) (StepResult, error) {
	return s.runner.Run(ctx, "systemctl", "restart", s.unit)
}

// IsEnabledQuery exits 0 when the unit is enabled.
func (s serviceManager) IsEnabledQuery(ctx context.Context) (StepResult, error) {
	return s.runner.Run(ctx, "systemctl", "is-enabled", "--quiet", s.unit)
}

// IsActiveQuery exits 0 when the unit is active.
func (s serviceManager) IsActiveQuery(ctx context.Context) (StepResult, error) {
	return s.runner.Run(ctx, "systemctl", "is-active", "--quiet", s.unit)
}

func exitedNonZero(res StepResult) bool {
	return res.ExitCode != 0
}
