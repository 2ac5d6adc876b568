package harness

import (
	"errors"
	"fmt"
)

// ErrSkipped is returned (possibly wrapped) by a runnable that determines at
// execution time that its preconditions are unmet.
var ErrSkipped = errors.New("test skipped at runtime")

// FailureError marks an assertion failure, as opposed to a runtime error.
type FailureError struct {
	Reason string
}

func (e *FailureError) Error() string { return e.Reason }

// Failf builds a FailureError from a format string.
func Failf(format string, args ...interface{}) *FailureError {
	return &FailureError{Reason: fmt.Sprintf(format, args...)}
}

// SpecSyntaxError indicates a malformed test-spec element. It aborts the run
// before any discovery or execution happens.
type SpecSyntaxError struct {
	Element string
	Reason  string
}

func (e *SpecSyntaxError) Error() string {
	return fmt.Sprintf("bad test spec element %q: %s", e.Element, e.Reason)
}

// UnmatchedSpecError indicates a spec element that matched no discovered
// test. Pruning is all-or-nothing, so one unmatched element fails the run.
type UnmatchedSpecError struct {
	Element SpecElement
}

func (e *UnmatchedSpecError) Error() string {
	return fmt.Sprintf("test spec element %q matched no discovered tests", e.Element.String())
}

// DiscoveryError indicates a test module that failed to load. One broken
// test file blocks the entire run so that coverage gaps are never silent.
type DiscoveryError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DiscoveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("test module %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("test module %s: %s", e.Path, e.Reason)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }
