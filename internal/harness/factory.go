package harness

import (
	"fmt"
	"io"
	"time"
)

// Options configures a Framework. Every component receives its
// configuration explicitly; there is no ambient global state.
type Options struct {
	// TestDir is the discovery root.
	TestDir string
	// FailOnSkipped makes runtime skips fail the run.
	FailOnSkipped bool
	// Verbose enables detailed reporter output.
	Verbose bool
	// ReportPath, when non-empty, is a directory JSON reports are saved to.
	ReportPath string
	// Quiet and JSON select alternative reporters. JSON wins over Quiet.
	Quiet bool
	JSON  bool
	// Out is the reporter output stream.
	Out io.Writer
	// Env is the execution environment handed to every runnable.
	Env RunEnv
}

// Framework bundles the engine components for one run.
type Framework struct {
	Discovery *Discovery
	Reporter  Reporter
	Runner    *Runner
}

// NewFramework validates the options and wires up the engine components.
func NewFramework(opts Options) (*Framework, error) {
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}

	var reporter Reporter
	switch {
	case opts.JSON:
		reporter = NewJSONReporter(opts.Out)
	case opts.Quiet:
		reporter = NewQuietReporter(opts.Out)
	default:
		reporter = NewConsoleReporter(opts.Out, opts.Verbose, opts.ReportPath)
	}

	return &Framework{
		Discovery: NewDiscovery(opts.TestDir),
		Reporter:  reporter,
		Runner:    NewRunner(reporter, opts.Env, opts.FailOnSkipped),
	}, nil
}

// ValidateOptions checks a Framework configuration.
func ValidateOptions(opts Options) error {
	if opts.TestDir == "" {
		return fmt.Errorf("test directory must be set")
	}
	if opts.Out == nil {
		return fmt.Errorf("reporter output must be set")
	}
	if opts.Env.Timeout < 0 {
		return fmt.Errorf("default timeout must not be negative, got %v", opts.Env.Timeout)
	}
	return nil
}

// DefaultTimeout is the shared per-test timeout handed to collaborators
// when none is configured.
const DefaultTimeout = 60 * time.Second
