package harness

import (
	"context"
	"fmt"
	"strings"

	"ofprobe/pkg/logging"
)

// Step is one opaque action executed through the control channel. The
// engine only carries steps; their meaning belongs to the device agent.
type Step struct {
	Name     string                 `yaml:"name,omitempty"`
	Action   string                 `yaml:"action"`
	Params   map[string]interface{} `yaml:"params,omitempty"`
	Expect   Expectation            `yaml:"expect,omitempty"`
	Requires Requirements           `yaml:"requires,omitempty"`
}

// Expectation defines what a step's response must look like. Success
// defaults to true when omitted.
type Expectation struct {
	Success       *bool    `yaml:"success,omitempty"`
	Contains      []string `yaml:"contains,omitempty"`
	NotContains   []string `yaml:"not_contains,omitempty"`
	ErrorContains []string `yaml:"error_contains,omitempty"`
}

func (e Expectation) wantSuccess() bool {
	return e.Success == nil || *e.Success
}

// Requirements are runtime preconditions checked before a step executes.
// An unmet requirement makes the whole test a runtime skip.
type Requirements struct {
	MinPorts int `yaml:"min_ports,omitempty"`
}

// scenarioRunnable executes a compiled sequence of steps against the
// control channel. It is the runnable form discovery produces from a test
// module entry.
type scenarioRunnable struct {
	module string
	name   string
	steps  []Step
}

func (r *scenarioRunnable) Run(ctx context.Context, env RunEnv) error {
	logging.Debug("runnable", "running %s.%s (%d steps)", r.module, r.name, len(r.steps))
	for i, step := range r.steps {
		if err := r.checkRequirements(step, env); err != nil {
			return err
		}

		stepCtx := ctx
		if env.Timeout > 0 {
			var cancel context.CancelFunc
			stepCtx, cancel = context.WithTimeout(ctx, env.Timeout)
			defer cancel()
		}

		output, err := env.Exec.Execute(stepCtx, step.Action, step.Params)
		if err := checkExpectation(step.Expect, output, err); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, stepLabel(step), err)
		}
	}
	return nil
}

func (r *scenarioRunnable) checkRequirements(step Step, env RunEnv) error {
	if step.Requires.MinPorts > 0 && len(env.PortMap) < step.Requires.MinPorts {
		return fmt.Errorf("step %s needs %d dataplane ports, platform has %d: %w",
			stepLabel(step), step.Requires.MinPorts, len(env.PortMap), ErrSkipped)
	}
	return nil
}

// checkExpectation validates one step response. An unexpected call error is
// a test error; an expectation mismatch is an assertion failure.
func checkExpectation(expect Expectation, output string, err error) error {
	if err != nil {
		if expect.wantSuccess() {
			return err
		}
		for _, want := range expect.ErrorContains {
			if !containsFold(err.Error(), want) {
				return Failf("error %q does not contain %q", err.Error(), want)
			}
		}
		return nil
	}

	if !expect.wantSuccess() {
		return Failf("expected failure but action succeeded")
	}
	for _, want := range expect.Contains {
		if !containsFold(output, want) {
			return Failf("response does not contain %q", want)
		}
	}
	for _, unwanted := range expect.NotContains {
		if containsFold(output, unwanted) {
			return Failf("response contains unexpected %q", unwanted)
		}
	}
	return nil
}

func stepLabel(step Step) string {
	if step.Name != "" {
		return step.Name
	}
	return step.Action
}

// containsFold is a case-insensitive substring check.
func containsFold(text, substr string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(substr))
}
