// Package handlerenv implements the agent-facing side of an Azure VM
// extension handler: it locates HandlerEnvironment.json, resolves the
// configuration sequence number, tracks the most recently applied sequence
// and writes status files the guest agent reads back.
package handlerenv

import (
	"errors"
	"path/filepath"
)

// DefaultName is the extension name written into status reports.
const DefaultName = "Compute.AKS.Linux.AKSNode"

// DefaultEnvironmentFile is the agent-provided environment file name.
const DefaultEnvironmentFile = "HandlerEnvironment.json"

// DefaultMostRecentSequenceFile is the base name of the per-verb marker
// files. mrseq.<verb> holds the sequence number at which verb last
// succeeded.
const DefaultMostRecentSequenceFile = "mrseq"

// SequenceNumberEnv is set by the agent to the current sequence number.
const SequenceNumberEnv = "ConfigSequenceNumber"

// Config holds the locations the handler context reads and writes.
type Config struct {
	// Name is the extension name used in status reports.
	// Default: Compute.AKS.Linux.AKSNode
	Name string

	// ExtensionDir is the directory the agent unpacked the extension into.
	// Required.
	ExtensionDir string

	// EnvironmentPath is the path of HandlerEnvironment.json.
	// Default: <ExtensionDir>/HandlerEnvironment.json
	EnvironmentPath string

	// MostRecentSequencePath is the base path of the per-verb marker files;
	// each verb appends ".<verb>".
	// Default: <ExtensionDir>/mrseq
	MostRecentSequencePath string
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.EnvironmentPath == "" && c.ExtensionDir != "" {
		c.EnvironmentPath = filepath.Join(c.ExtensionDir, DefaultEnvironmentFile)
	}
	if c.MostRecentSequencePath == "" && c.ExtensionDir != "" {
		c.MostRecentSequencePath = filepath.Join(c.ExtensionDir, DefaultMostRecentSequenceFile)
	}
}

// Validate checks that required fields are set.
func (c *Config) Validate() error {
	if c.ExtensionDir == "" {
		return errors.New("handlerenv: config: ExtensionDir is required")
	}
	if c.EnvironmentPath == "" {
		return errors.New("handlerenv: config: EnvironmentPath is required")
	}
	if c.MostRecentSequencePath == "" {
		return errors.New("handlerenv: config: MostRecentSequencePath is required")
	}
	return nil
}
