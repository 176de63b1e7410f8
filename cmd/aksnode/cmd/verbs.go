package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Azure/aks-node-extension/internal/handlerenv"
	"github.com/Azure/aks-node-extension/internal/lifecycle"
)

var verbShort = map[lifecycle.Verb]string{
	lifecycle.VerbInstall:   "Install node-problem-detector from the bundled package",
	lifecycle.VerbEnable:    "Enable and start the node-problem-detector unit",
	lifecycle.VerbDisable:   "Stop and disable the node-problem-detector unit",
	lifecycle.VerbUpdate:    "Upgrade node-problem-detector in place and restart it",
	lifecycle.VerbUninstall: "Remove node-problem-detector configuration and purge the package",
}

func init() {
	for _, verb := range lifecycle.Verbs {
		verb := verb
		rootCmd.AddCommand(&cobra.Command{
			Use:   string(verb),
			Short: verbShort[verb],
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runVerb(cmd, verb)
			},
		})
	}
}

// runVerb wires the handler context and the executor for one invocation.
// Failures before the handler context exists are only logged, since there
// is nowhere to report them.
func runVerb(cmd *cobra.Command, verb lifecycle.Verb) error {
	logger := setupLogger(logLevel, os.Stderr)

	extDir, err := resolveExtensionDir(extensionDir)
	if err != nil {
		logger.Error("failed to resolve extension directory", "error", err)
		return err
	}

	hcfg := handlerenv.Config{
		ExtensionDir:    extDir,
		EnvironmentPath: handlerEnvPath,
	}
	hcfg.ApplyDefaults()

	env, err := handlerenv.LoadEnvironment(hcfg.EnvironmentPath)
	if err != nil {
		logger.Error("failed to load handler environment", "path", hcfg.EnvironmentPath, "error", err)
		return err
	}

	logFile, err := handlerenv.OpenLogFile(env)
	if err != nil {
		logger.Warn("extension log file unavailable, logging to stderr only", "error", err)
	} else {
		defer logFile.Close()
		logger = setupLogger(logLevel, io.MultiWriter(os.Stderr, logFile))
	}
	logger.Info("started to handle", "extension", hcfg.Name, "verb", string(verb), "version", buildVersion)

	hctx, err := handlerenv.New(hcfg, env, os.Getenv, logger)
	if err != nil {
		logger.Error("failed to parse handler context", "error", err)
		return err
	}

	desc, err := lifecycle.DefaultDescriptor()
	if err != nil {
		logger.Error("invalid daemon descriptor", "error", err)
		if reportErr := hctx.Report(lifecycle.FailureReport(verb, "Operation failed: "+err.Error())); reportErr != nil {
			logger.Error("failed to report failure", "error", reportErr)
		}
		return err
	}
	desc.ResolveSource(extDir)

	executor := lifecycle.NewExecutor(desc, lifecycle.NewExecRunner(logger), lifecycle.NewRootChecker(), logger)
	if err := executor.Handle(cmd.Context(), hctx, verb); err != nil {
		return fmt.Errorf("aksnode %s: %w", verb, err)
	}
	return nil
}

// resolveExtensionDir returns dir, or the directory holding the running
// executable with symlinks resolved.
func resolveExtensionDir(dir string) (string, error) {
	if dir != "" {
		return filepath.Abs(dir)
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolve symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

func setupLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
