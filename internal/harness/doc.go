// Package harness is the test selection and execution engine.
//
// Given a directory tree of declarative test modules, a test-spec string, a
// priority threshold, and a skip profile, it discovers candidate tests,
// prunes them by spec, builds a deterministic ordered suite, executes it
// strictly sequentially with per-test failure isolation, and classifies the
// overall outcome.
//
// The engine treats each test as an opaque runnable exposing a name, an
// optional priority, and a one-line description; the content of test steps
// belongs to the control-channel collaborator.
package harness
