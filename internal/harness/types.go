package harness

import (
	"context"
	"sort"
	"time"
)

// DefaultPriority is assigned to any test that does not declare its own.
const DefaultPriority = 100

// PrioritySkip is the sentinel priority assigned to skip-listed tests.
// With the default threshold of 0 such tests are never eligible.
const PrioritySkip = -1

// TestResult represents the result of a single test execution
type TestResult string

const (
	// ResultPassed indicates the test passed successfully
	ResultPassed TestResult = "PASSED"
	// ResultFailed indicates the test failed an assertion
	ResultFailed TestResult = "FAILED"
	// ResultSkipped indicates the test skipped itself at runtime
	ResultSkipped TestResult = "SKIPPED"
	// ResultError indicates an error occurred during test execution
	ResultError TestResult = "ERROR"
)

// StepExecutor carries a test step to the external control channel. The
// engine never interprets actions or parameters itself.
type StepExecutor interface {
	// Execute performs one action against the device under test and returns
	// its textual output.
	Execute(ctx context.Context, action string, params map[string]interface{}) (string, error)
}

// RunEnv is the execution environment handed to each runnable. It is
// assembled once before the run and shared read-only by all tests.
type RunEnv struct {
	// Exec is the control channel to the device under test.
	Exec StepExecutor
	// PortMap maps logical dataplane port numbers to interface names.
	PortMap map[int]string
	// Timeout is the shared default per-test timeout. Zero means none.
	Timeout time.Duration
}

// Runnable is the capability every test case implements. The engine treats
// it as opaque: a runtime skip is reported by returning (an error wrapping)
// ErrSkipped, an assertion failure by returning a *FailureError, and any
// other error counts as a test error.
type Runnable interface {
	Run(ctx context.Context, env RunEnv) error
}

// TestDescriptor is one discovered, runnable test.
type TestDescriptor struct {
	Module      string
	Name        string
	Runnable    Runnable
	Priority    int
	Description string
}

// QualifiedName returns the "module.test" form used in reports.
func (t *TestDescriptor) QualifiedName() string {
	return t.Module + "." + t.Name
}

// Module groups the tests contributed by one test module file.
type Module struct {
	Name  string
	Path  string
	Tests map[string]*TestDescriptor
}

// ModuleRegistry maps unique module names to their tests. It is built once
// by discovery and read-only afterwards.
type ModuleRegistry map[string]*Module

// ModuleNames returns the registry's module names in ascending order.
func (r ModuleRegistry) ModuleNames() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TestCount returns the total number of tests across all modules.
func (r ModuleRegistry) TestCount() int {
	n := 0
	for _, m := range r {
		n += len(m.Tests)
	}
	return n
}

// SpecElement is one element of a parsed test spec. An empty field is a
// wildcard; both fields empty matches every discovered test.
type SpecElement struct {
	Module string
	Test   string
}

// String renders the element the way the operator wrote it: "module.test",
// "module", "test", or "all".
func (e SpecElement) String() string {
	switch {
	case e.Module != "" && e.Test != "":
		return e.Module + "." + e.Test
	case e.Module != "":
		return e.Module
	case e.Test != "":
		return e.Test
	default:
		return "all"
	}
}

// Suite is a deterministic ordered sequence of tests selected for one run.
type Suite []*TestDescriptor

// ExecutionResult tallies one suite run. Skipped counts runtime
// self-skips, which are distinct from priority-based pruning.
type ExecutionResult struct {
	Ran      int `json:"ran"`
	Failures int `json:"failures"`
	Errors   int `json:"errors"`
	Skipped  int `json:"skipped"`
}

// Outcome classifies a finished run.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
)

func (o Outcome) String() string {
	if o == OutcomeFailure {
		return "FAILURE"
	}
	return "SUCCESS"
}

// ExitCode maps the outcome onto the process boundary's exit status.
func (o Outcome) ExitCode() int {
	if o == OutcomeFailure {
		return 1
	}
	return 0
}

// TestRecord is the per-test report entry passed to reporters.
type TestRecord struct {
	Module   string        `json:"module"`
	Name     string        `json:"name"`
	Result   TestResult    `json:"result"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// TestInfo is the introspection tuple returned by listings. No runnable is
// constructed or invoked to produce it.
type TestInfo struct {
	Module      string
	Name        string
	Priority    int
	Description string
}

// Reporter receives run progress and the final aggregate.
type Reporter interface {
	// ReportStart is called once before the first test executes.
	ReportStart(total int)
	// ReportTestStart is called before each test.
	ReportTestStart(t *TestDescriptor)
	// ReportTestResult is called after each test.
	ReportTestResult(rec TestRecord)
	// ReportSuiteResult is called once after the last test.
	ReportSuiteResult(result ExecutionResult, outcome Outcome, elapsed time.Duration)
}
