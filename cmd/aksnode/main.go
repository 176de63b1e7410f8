// Package main is the entry point for the AKSNode extension handler binary.
package main

import (
	"os"

	"github.com/Azure/aks-node-extension/cmd/aksnode/cmd"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)
	if err := cmd.Execute(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
