// Package cmd implements the AKSNode extension handler commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	handlerEnvPath string
	extensionDir   string
	logLevel       string
)

// Build info set from main.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersionInfo sets the version info from build-time ldflags.
func SetVersionInfo(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("aksnode version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

var rootCmd = &cobra.Command{
	Use:   "aksnode",
	Short: "aksnode is the Compute.AKS.Linux.AKSNode VM extension handler",
	Long: "aksnode is invoked by the Azure guest agent with one lifecycle verb\n" +
		"(install, enable, disable, update, uninstall). It manages the\n" +
		"node-problem-detector package and systemd unit and reports the outcome\n" +
		"through the agent's status files.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&handlerEnvPath, "handler-env", "", "path to HandlerEnvironment.json (default <extension-dir>/HandlerEnvironment.json)")
	rootCmd.PersistentFlags().StringVar(&extensionDir, "extension-dir", "", "extension directory (default directory of the executable)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("aksnode version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

// Execute runs the command selected by args. Agent-style verbs such as
// "-enable" or "/install" are accepted; arguments naming no verb are
// ignored and Execute returns nil without doing anything.
func Execute(args []string) error {
	normalized := NormalizeArgs(args)
	if len(normalized) == 0 {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer stop()

	rootCmd.SetArgs(normalized)
	return rootCmd.ExecuteContext(ctx)
}
