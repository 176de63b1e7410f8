// Package lifecycle installs, enables, disables, updates and uninstalls the
// node-problem-detector package and its systemd unit.
package lifecycle

import (
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed descriptor.yaml
var embeddedDescriptor []byte

// Descriptor holds the static facts about the managed daemon.
// A Descriptor is immutable once passed to NewExecutor.
type Descriptor struct {
	// Package is the dpkg package name.
	// Default: node-problem-detector
	Package string `yaml:"package"`

	// Unit is the systemd unit name.
	// Default: node-problem-detector
	Unit string `yaml:"unit"`

	// ArtifactGlob matches the bundled .deb file(s).
	// Default: /deb/node-problem-detector/*.deb
	ArtifactGlob string `yaml:"artifact_glob"`

	// ConfigSourceDir is the bundled configuration tree copied on install and update.
	// A relative path is resolved against the extension directory.
	// Default: config/node-problem-detector
	ConfigSourceDir string `yaml:"config_source_dir"`

	// ConfigDir is the daemon's system configuration directory.
	// Default: /etc/node-problem-detector.d
	ConfigDir string `yaml:"config_dir"`

	// PluginDir holds custom plugin scripts that must be executable.
	// Default: /etc/node-problem-detector.d/plugin
	PluginDir string `yaml:"plugin_dir"`
}

// DefaultPackage is the default dpkg package name.
const DefaultPackage = "node-problem-detector"

// DefaultUnit is the default systemd unit name.
const DefaultUnit = "node-problem-detector"

// DefaultArtifactGlob is the default location of the bundled package.
const DefaultArtifactGlob = "/deb/node-problem-detector/*.deb"

// DefaultConfigSourceDir is the default bundled configuration tree.
const DefaultConfigSourceDir = "config/node-problem-detector"

// DefaultConfigDir is the default daemon configuration directory.
const DefaultConfigDir = "/etc/node-problem-detector.d"

// DefaultPluginDir is the default plugin script directory.
const DefaultPluginDir = "/etc/node-problem-detector.d/plugin"

// ApplyDefaults sets default values for zero-valued fields.
func (d *Descriptor) ApplyDefaults() {
	if d.Package == "" {
		d.Package = DefaultPackage
	}
	if d.Unit == "" {
		d.Unit = DefaultUnit
	}
	if d.ArtifactGlob == "" {
		d.ArtifactGlob = DefaultArtifactGlob
	}
	if d.ConfigSourceDir == "" {
		d.ConfigSourceDir = DefaultConfigSourceDir
	}
	if d.ConfigDir == "" {
		d.ConfigDir = DefaultConfigDir
	}
	if d.PluginDir == "" {
		d.PluginDir = DefaultPluginDir
	}
}

// Validate checks that required fields are set and that the destination
// directories are absolute. ConfigDir is removed recursively on uninstall,
// so "/" is rejected.
func (d *Descriptor) Validate() error {
	if d.Package == "" {
		return errors.New("lifecycle: descriptor: Package is required")
	}
	if d.Unit == "" {
		return errors.New("lifecycle: descriptor: Unit is required")
	}
	if d.ArtifactGlob == "" {
		return errors.New("lifecycle: descriptor: ArtifactGlob is required")
	}
	if _, err := filepath.Match(d.ArtifactGlob, ""); err != nil {
		return fmt.Errorf("lifecycle: descriptor: ArtifactGlob %q: %w", d.ArtifactGlob, err)
	}
	if d.ConfigSourceDir == "" {
		return errors.New("lifecycle: descriptor: ConfigSourceDir is required")
	}
	if !filepath.IsAbs(d.ConfigDir) || filepath.Clean(d.ConfigDir) == "/" {
		return fmt.Errorf("lifecycle: descriptor: ConfigDir %q must be an absolute path below /", d.ConfigDir)
	}
	if !filepath.IsAbs(d.PluginDir) {
		return fmt.Errorf("lifecycle: descriptor: PluginDir %q must be absolute", d.PluginDir)
	}
	return nil
}

// ResolveSource makes ConfigSourceDir absolute relative to extDir.
func (d *Descriptor) ResolveSource(extDir string) {
	if !filepath.IsAbs(d.ConfigSourceDir) {
		d.ConfigSourceDir = filepath.Join(extDir, d.ConfigSourceDir)
	}
}

// ParseDescriptor decodes a YAML descriptor and applies defaults.
func ParseDescriptor(data []byte) (Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("lifecycle: parse descriptor: %w", err)
	}
	d.ApplyDefaults()
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// DefaultDescriptor returns the descriptor compiled into the binary.
func DefaultDescriptor() (Descriptor, error) {
	return ParseDescriptor(embeddedDescriptor)
}
