package config

import (
	"fmt"

	"github.com/kilianp07/flexmodel/core/steplog"
)

// StepLogConfig defines settings for step log storage and rotation.
type StepLogConfig struct {
	// Backend selects the store type: "none", "jsonl", "rotating" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *StepLogConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = steplog.BackendNone
	}
	if c.Path == "" {
		switch c.Backend {
		case steplog.BackendSQLite:
			c.Path = "steps.db"
		case steplog.BackendJSONL, steplog.BackendRotating:
			c.Path = "steps.jsonl"
		}
	}
	if c.Backend == steplog.BackendRotating && c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks mandatory fields.
func (c StepLogConfig) Validate() error {
	switch c.Backend {
	case steplog.BackendNone:
		return nil
	case steplog.BackendJSONL, steplog.BackendRotating, steplog.BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("rotation limits must be >= 0")
	}
	return nil
}

// Options converts the config for steplog.Open.
func (c StepLogConfig) Options() steplog.Options {
	return steplog.Options{
		Backend:    c.Backend,
		Path:       c.Path,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
	}
}
