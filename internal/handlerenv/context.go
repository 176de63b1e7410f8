package handlerenv

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Azure/aks-node-extension/internal/lifecycle"
)

// LogFileName is the handler log written under the agent's log folder.
const LogFileName = "extension.log"

// Context is the per-invocation handler state. It implements lifecycle.Host.
type Context struct {
	cfg      Config
	env      Environment
	seq      int
	settings *Settings
	logger   *slog.Logger
	now      func() time.Time
}

var _ lifecycle.Host = (*Context)(nil)

// New resolves the sequence number for env and reads the matching settings
// file. env is normally loaded from cfg.EnvironmentPath by the caller, which
// needs its log folder before the context exists.
func New(cfg Config, env Environment, getenv func(string) string, logger *slog.Logger) (*Context, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seq, err := SequenceNumber(getenv, env.ConfigFolder)
	if err != nil {
		return nil, err
	}

	settings, err := LoadSettings(env.ConfigFolder, seq)
	if err != nil {
		return nil, err
	}

	c := &Context{
		cfg:      cfg,
		env:      env,
		seq:      seq,
		settings: settings,
		logger:   logger.With("component", "handlerenv"),
		now:      time.Now,
	}

	if settings != nil {
		c.logger.Info("settings loaded",
			"seq", seq,
			"public_keys", settings.PublicKeys(),
			"protected", settings.HasProtectedSettings(),
		)
	} else {
		c.logger.Info("no settings for sequence", "seq", seq)
	}
	return c, nil
}

// Environment returns the parsed handler environment.
func (c *Context) Environment() Environment {
	return c.env
}

// SequenceNumber returns the configuration sequence number being handled.
func (c *Context) SequenceNumber() int {
	return c.seq
}

// Settings returns the handler settings, or nil if the agent supplied none.
func (c *Context) Settings() *Settings {
	return c.settings
}

// AlreadyApplied reports whether verb last succeeded at a sequence number
// not older than the current one. An unreadable marker counts as never
// applied.
func (c *Context) AlreadyApplied(verb lifecycle.Verb) bool {
	last, ok, err := ReadMostRecentSequence(c.markerPath(verb))
	if err != nil {
		c.logger.Warn("ignoring unreadable most recent sequence", "verb", string(verb), "error", err)
		return false
	}
	if !ok {
		return false
	}
	if c.seq <= last {
		c.logger.Info("sequence number already applied", "verb", string(verb), "seq", c.seq, "most_recent", last)
		return true
	}
	return false
}

// MarkApplied records the current sequence number for verb and clears the
// markers of every other verb, so that a different verb arriving with the
// same sequence number still runs.
func (c *Context) MarkApplied(verb lifecycle.Verb) error {
	for _, other := range lifecycle.Verbs {
		if other == verb {
			continue
		}
		if err := RemoveMostRecentSequence(c.markerPath(other)); err != nil {
			return err
		}
	}
	return WriteMostRecentSequence(c.markerPath(verb), c.seq)
}

func (c *Context) markerPath(verb lifecycle.Verb) string {
	return c.cfg.MostRecentSequencePath + "." + string(verb)
}

// Report writes the status file for the current sequence number.
func (c *Context) Report(r lifecycle.Report) error {
	doc := NewStatusReport(c.cfg.Name, r, c.now())
	if err := WriteStatus(c.env.StatusFolder, c.seq, doc); err != nil {
		return err
	}
	c.logger.Info("status reported",
		"seq", c.seq,
		"operation", r.Operation,
		"status", r.Status,
		"code", r.SubStatus,
	)
	return nil
}

// OpenLogFile opens the handler log file in the agent's log folder for appending.
func OpenLogFile(env Environment) (io.WriteCloser, error) {
	if env.LogFolder == "" {
		return nil, fmt.Errorf("handlerenv: logFolder is empty")
	}
	if err := os.MkdirAll(env.LogFolder, 0o700); err != nil {
		return nil, fmt.Errorf("handlerenv: create log folder: %w", err)
	}
	path := filepath.Join(env.LogFolder, LogFileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("handlerenv: open log file: %w", err)
	}
	return f, nil
}
