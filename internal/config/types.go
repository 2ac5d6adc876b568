package config

import (
	"time"
)

// Config is the top-level configuration structure for ofprobe. Every field
// has a flag counterpart; file values sit between defaults and flags.
type Config struct {
	// TestDir is the root directory test modules are discovered under.
	TestDir string `yaml:"testDir,omitempty"`
	// TestSpec is the test-spec mini-language string.
	TestSpec string `yaml:"testSpec,omitempty"`
	// Priority is the minimum effective priority a test must have to be
	// included. Negative values are legal and include skip-listed tests.
	Priority int `yaml:"priority,omitempty"`
	// Profile is the path to a skip-profile YAML file.
	Profile string `yaml:"profile,omitempty"`
	// Platform is the path to a platform YAML file. Empty selects the
	// built-in local platform.
	Platform string `yaml:"platform,omitempty"`
	// SwitchAddr is the device agent endpoint (host:port).
	SwitchAddr string `yaml:"switchAddr,omitempty"`
	// DefaultTimeout is the shared per-test timeout handed to collaborators.
	DefaultTimeout time.Duration `yaml:"defaultTimeout,omitempty"`
	// FailSkipped makes runtime skips fail the run.
	FailSkipped bool `yaml:"failSkipped,omitempty"`
	// LogLevel is the logging level string; an invalid value falls back to
	// "info" with a warning.
	LogLevel string `yaml:"logLevel,omitempty"`
	// ReportPath is a directory detailed JSON reports are saved into.
	ReportPath string `yaml:"reportPath,omitempty"`
	// AllowUnprivileged bypasses the platform privilege check.
	AllowUnprivileged bool `yaml:"allowUnprivileged,omitempty"`
}
