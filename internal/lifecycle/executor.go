package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/multierr"
)

// Executor runs lifecycle verbs against one daemon. Every verb is a forward
// chain of steps that stops at the first failure; nothing is retried or
// rolled back.
type Executor struct {
	desc   Descriptor
	pkg    packageManager
	svc    serviceManager
	files  fileOps
	root   RootChecker
	logger *slog.Logger
}

// NewExecutor creates an Executor. The descriptor is copied and defaults applied.
func NewExecutor(desc Descriptor, runner Runner, root RootChecker, logger *slog.Logger) *Executor {
	desc.ApplyDefaults()
	return &Executor{
		desc:   desc,
		pkg:    packageManager{runner: runner, pkg: desc.Package},
		svc:    serviceManager{runner: runner, unit: desc.Unit},
		files:  fileOps{runner: runner},
		root:   root,
		logger: logger.With("component", "lifecycle", "package", desc.Package),
	}
}

// Handle runs verb on behalf of host. If host reports verb as already
// applied at the current configuration, Handle returns nil without running
// any command or writing a report. Otherwise a transitioning status is
// written, then replaced by exactly one final outcome. A successful run is
// marked as applied after its report; a failed mark is logged only, since
// the work it records is done.
func (e *Executor) Handle(ctx context.Context, host Host, verb Verb) (err error) {
	logger := e.logger.With("verb", string(verb))

	if host.AlreadyApplied(verb) {
		logger.Info("configuration already applied, nothing to do")
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in lifecycle verb", "panic", fmt.Sprintf("%v", r))
			err = fmt.Errorf("lifecycle: %s: panic: %v", verb, r)
			if reportErr := host.Report(FailureReport(verb, "Operation failed: "+err.Error())); reportErr != nil {
				err = multierr.Append(err, reportErr)
			}
		}
	}()

	if err := host.Report(Report{
		Operation: verb.Operation(),
		Status:    StatusTransitioning,
		SubStatus: "0",
		Message:   fmt.Sprintf("%s in progress", verb.Operation()),
	}); err != nil {
		logger.Warn("failed to report transitioning status", "error", err)
	}

	runErr := e.Execute(ctx, verb)
	if runErr != nil {
		logger.Error("verb failed", "error", runErr)
		if reportErr := host.Report(FailureReport(verb, runErr.Error())); reportErr != nil {
			logger.Error("failed to report failure", "error", reportErr)
			return multierr.Append(runErr, reportErr)
		}
		return runErr
	}

	msg := fmt.Sprintf("%s of %s succeeded", verb.Operation(), e.desc.Package)
	logger.Info("verb succeeded")
	if err := host.Report(SuccessReport(verb, msg)); err != nil {
		return err
	}
	if err := host.MarkApplied(verb); err != nil {
		logger.Warn("failed to mark sequence number applied, verb will rerun", "error", err)
	}
	return nil
}

// Execute dispatches verb to its step chain without consulting a host.
func (e *Executor) Execute(ctx context.Context, verb Verb) error {
	if !e.root.IsRoot() {
		return fmt.Errorf("lifecycle: %s: %w", verb, ErrNotRoot)
	}
	switch verb {
	case VerbInstall:
		return e.Install(ctx)
	case VerbEnable:
		return e.Enable(ctx)
	case VerbDisable:
		return e.Disable(ctx)
	case VerbUpdate:
		return e.Update(ctx)
	case VerbUninstall:
		return e.Uninstall(ctx)
	default:
		return fmt.Errorf("lifecycle: unknown verb %q", verb)
	}
}

// Install purges any existing installation, installs the bundled package,
// lays out configuration and verifies the package is installed.
func (e *Executor) Install(ctx context.Context) error {
	logger := e.logger.With("verb", string(VerbInstall))

	installed, err := e.pkg.Installed(ctx)
	if err != nil {
		return &StepError{Verb: VerbInstall, Step: "query installed package", Kind: StepExecutionFailure, ExitCode: -1, Err: err}
	}

	var steps []Step
	if installed {
		logger.Info("package already installed, purging before reinstall")
		steps = append(steps, Step{Name: "purge existing package", Run: e.pkg.Purge})
	}
	steps = append(steps, e.installArtifactStep())
	steps = append(steps, e.configureSteps()...)
	steps = append(steps, Step{
		Name:  "verify package installed",
		Kind:  VerificationFailure,
		Run:   e.pkg.Query,
		Check: isInstalled,
	})

	return runSteps(ctx, VerbInstall, logger, steps)
}

// Enable reloads systemd, enables and starts the unit. An enabled unit is
// left untouched.
func (e *Executor) Enable(ctx context.Context) error {
	logger := e.logger.With("verb", string(VerbEnable))

	if err := e.requireInstalled(ctx, VerbEnable); err != nil {
		return err
	}
	enabled, err := e.unitState(ctx, VerbEnable, "query unit enabled", e.svc.IsEnabledQuery)
	if err != nil {
		return err
	}
	if enabled {
		logger.Info("unit already enabled, nothing to do", "unit", e.desc.Unit)
		return nil
	}

	steps := []Step{
		{Name: "reload systemd units", Run: e.svc.DaemonReload},
	}
	steps = append(steps, e.enableSteps()...)
	steps = append(steps,
		Step{Name: "start unit", Run: e.svc.Start},
		e.verifyActiveStep(),
	)
	return runSteps(ctx, VerbEnable, logger, steps)
}

// Disable stops and disables the unit. A disabled, inactive unit is left
// untouched, as is a package that is not installed.
func (e *Executor) Disable(ctx context.Context) error {
	logger := e.logger.With("verb", string(VerbDisable))

	installed, err := e.pkg.Installed(ctx)
	if err != nil {
		return &StepError{Verb: VerbDisable, Step: "query installed package", Kind: StepExecutionFailure, ExitCode: -1, Err: err}
	}
	if !installed {
		logger.Info("package not installed, nothing to disable")
		return nil
	}
	enabled, err := e.unitState(ctx, VerbDisable, "query unit enabled", e.svc.IsEnabledQuery)
	if err != nil {
		return err
	}
	active, err := e.unitState(ctx, VerbDisable, "query unit active", e.svc.IsActiveQuery)
	if err != nil {
		return err
	}
	if !enabled && !active {
		logger.Info("unit already disabled and inactive, nothing to do", "unit", e.desc.Unit)
		return nil
	}

	steps := []Step{
		{Name: "stop unit", Run: e.svc.Stop},
		{Name: "verify unit inactive", Kind: VerificationFailure, Run: e.svc.IsActiveQuery, Check: exitedNonZero},
		{Name: "disable unit", Run: e.svc.Disable},
		{Name: "verify unit disabled", Kind: VerificationFailure, Run: e.svc.IsEnabledQuery, Check: exitedNonZero},
	}
	return runSteps(ctx, VerbDisable, logger, steps)
}

// Update upgrades the package in place, refreshes configuration and
// restarts the unit.
func (e *Executor) Update(ctx context.Context) error {
	logger := e.logger.With("verb", string(VerbUpdate))

	if err := e.requireInstalled(ctx, VerbUpdate); err != nil {
		return err
	}

	steps := []Step{e.installArtifactStep()}
	steps = append(steps, e.configureSteps()...)
	steps = append(steps, Step{Name: "reload systemd units", Run: e.svc.DaemonReload})
	steps = append(steps, e.enableSteps()...)
	steps = append(steps,
		Step{Name: "restart unit", Run: e.svc.Restart},
		e.verifyActiveStep(),
	)
	return runSteps(ctx, VerbUpdate, logger, steps)
}

// Uninstall removes the configuration directory and purges the package.
// A package that is not installed is left untouched.
func (e *Executor) Uninstall(ctx context.Context) error {
	logger := e.logger.With("verb", string(VerbUninstall))

	installed, err := e.pkg.Installed(ctx)
	if err != nil {
		return &StepError{Verb: VerbUninstall, Step: "query installed package", Kind: StepExecutionFailure, ExitCode: -1, Err: err}
	}
	if !installed {
		logger.Info("package not installed, nothing to uninstall")
		return nil
	}

	steps := []Step{
		{
			Name: "remove configuration directory",
			Run: func(ctx context.Context) (StepResult, error) {
				return e.files.RemoveTree(ctx, e.desc.ConfigDir)
			},
		},
		{Name: "purge package", Run: e.pkg.Purge},
		{Name: "verify package removed", Kind: VerificationFailure, Run: e.pkg.Query, Check: isNotInstalled},
	}
	return runSteps(ctx, VerbUninstall, logger, steps)
}

func (e *Executor) requireInstalled(ctx context.Context, verb Verb) error {
	res, err := e.pkg.Query(ctx)
	if err != nil {
		return &StepError{Verb: verb, Step: "query installed package", Kind: StepExecutionFailure, ExitCode: res.ExitCode, Output: res.Output, Err: err}
	}
	if !isInstalled(res) {
		return &StepError{Verb: verb, Step: "package " + e.desc.Package + " is not installed", Kind: PreconditionFailure, ExitCode: res.ExitCode}
	}
	return nil
}

// unitState runs a systemctl query once. Exit code zero means true; a
// query that could not run is a step execution failure rather than false.
func (e *Executor) unitState(ctx context.Context, verb Verb, name string, query func(context.Context) (StepResult, error)) (bool, error) {
	res, err := query(ctx)
	if err != nil {
		return false, &StepError{Verb: verb, Step: name, Kind: StepExecutionFailure, ExitCode: res.ExitCode, Output: res.Output, Err: err}
	}
	return exitedZero(res), nil
}

func (e *Executor) installArtifactStep() Step {
	return Step{
		Name: "install package artifact",
		Run: func(ctx context.Context) (StepResult, error) {
			artifacts, err := resolveArtifacts(e.desc.ArtifactGlob)
			if err != nil {
				return StepResult{ExitCode: -1}, err
			}
			return e.pkg.InstallArtifacts(ctx, artifacts)
		},
	}
}

func (e *Executor) configureSteps() []Step {
	return []Step{
		{
			Name: "copy configuration",
			Run: func(ctx context.Context) (StepResult, error) {
				return e.files.CopyTree(ctx, e.desc.ConfigSourceDir, e.desc.ConfigDir)
			},
		},
		{
			Name: "make plugins executable",
			Run: func(ctx context.Context) (StepResult, error) {
				return e.files.MakeExecutable(ctx, e.desc.PluginDir)
			},
		},
	}
}

func (e *Executor) enableSteps() []Step {
	return []Step{
		{Name: "enable unit", Run: e.svc.Enable},
		{Name: "verify unit enabled", Kind: VerificationFailure, Run: e.svc.IsEnabledQuery},
	}
}

func (e *Executor) verifyActiveStep() Step {
	return Step{Name: "verify unit active", Kind: VerificationFailure, Run: e.svc.IsActiveQuery}
}
