package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ofprobe/pkg/logging"
)

// Runner executes a suite strictly sequentially, one test at a time, in
// suite order. A test's failure or runtime error never prevents subsequent
// tests from running.
type Runner struct {
	reporter      Reporter
	env           RunEnv
	failOnSkipped bool
}

// NewRunner creates a runner bound to a reporter and execution environment.
// failOnSkipped makes runtime skips count against the final outcome.
func NewRunner(reporter Reporter, env RunEnv, failOnSkipped bool) *Runner {
	return &Runner{reporter: reporter, env: env, failOnSkipped: failOnSkipped}
}

// Run executes every test in the suite and returns the aggregate tally.
func (r *Runner) Run(ctx context.Context, suite Suite) ExecutionResult {
	start := time.Now()
	var result ExecutionResult

	r.reporter.ReportStart(len(suite))

	for _, test := range suite {
		r.reporter.ReportTestStart(test)

		testStart := time.Now()
		err := runIsolated(ctx, test, r.env)
		record := TestRecord{
			Module:   test.Module,
			Name:     test.Name,
			Duration: time.Since(testStart),
		}

		result.Ran++
		var failure *FailureError
		switch {
		case err == nil:
			record.Result = ResultPassed
		case errors.Is(err, ErrSkipped):
			result.Skipped++
			record.Result = ResultSkipped
			record.Error = err.Error()
		case errors.As(err, &failure):
			result.Failures++
			record.Result = ResultFailed
			record.Error = err.Error()
		default:
			result.Errors++
			record.Result = ResultError
			record.Error = err.Error()
		}

		r.reporter.ReportTestResult(record)
	}

	outcome := Classify(result, r.failOnSkipped)
	r.reporter.ReportSuiteResult(result, outcome, time.Since(start))
	return result
}

// Outcome classifies a tally with this runner's failOnSkipped setting.
func (r *Runner) Outcome(result ExecutionResult) Outcome {
	return Classify(result, r.failOnSkipped)
}

// runIsolated runs one test and converts a panic into a test error, so a
// misbehaving test body cannot take down the rest of the suite.
func runIsolated(ctx context.Context, test *TestDescriptor, env RunEnv) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in test %s: %v", test.QualifiedName(), p)
			logging.Error("runner", err, "recovered panic")
		}
	}()
	return test.Runnable.Run(ctx, env)
}

// Classify maps a finished tally and the failOnSkipped flag onto the run
// outcome. Any failure or error is a FAILURE; runtime skips only fail the
// run when failOnSkipped is set.
func Classify(result ExecutionResult, failOnSkipped bool) Outcome {
	if result.Failures > 0 || result.Errors > 0 {
		return OutcomeFailure
	}
	if result.Skipped > 0 && failOnSkipped {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
