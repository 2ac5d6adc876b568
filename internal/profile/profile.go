// Package profile loads skip profiles: externally supplied lists of test
// names that are excluded from a run regardless of their declared priority.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MatchMode selects how skip-list entries are compared against tests.
type MatchMode string

const (
	// MatchUnqualified matches on the bare test name only. Two modules with
	// same-named tests are both skipped if either name appears in the list.
	// This is the default, preserved as documented behavior.
	MatchUnqualified MatchMode = "unqualified"
	// MatchQualified matches on the "module.test" form.
	MatchQualified MatchMode = "qualified"
)

// LoadError indicates a profile file that is missing, unreadable, or does
// not satisfy the profile contract (a skip-list must be present).
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("profile %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("profile %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Profile is a read-only skip profile. The zero value of *Profile (nil) is
// a valid empty profile that matches nothing.
type Profile struct {
	names map[string]struct{}
	mode  MatchMode
}

// profileFile is the on-disk shape. Skip is a pointer so that a file which
// omits the key entirely can be told apart from an empty list.
type profileFile struct {
	Skip  *[]string `yaml:"skip"`
	Match string    `yaml:"match,omitempty"`
}

// New builds a profile from an explicit name list, mostly for tests and
// embedding callers.
func New(names []string, mode MatchMode) *Profile {
	p := &Profile{names: make(map[string]struct{}, len(names)), mode: mode}
	for _, n := range names {
		p.names[n] = struct{}{}
	}
	if p.mode == "" {
		p.mode = MatchUnqualified
	}
	return p
}

// Load reads a skip profile from a YAML file. The file must expose a `skip`
// sequence (it may be empty); its absence violates the profile contract and
// is a LoadError.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "cannot read profile", Err: err}
	}

	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, &LoadError{Path: path, Reason: "cannot parse profile", Err: err}
	}

	if pf.Skip == nil {
		return nil, &LoadError{Path: path, Reason: "profile does not expose a skip list"}
	}

	mode := MatchMode(pf.Match)
	switch mode {
	case "":
		mode = MatchUnqualified
	case MatchUnqualified, MatchQualified:
	default:
		return nil, &LoadError{Path: path, Reason: fmt.Sprintf("unknown match mode %q", pf.Match)}
	}

	return New(*pf.Skip, mode), nil
}

// Matches reports whether the given test is on the skip list.
func (p *Profile) Matches(module, test string) bool {
	if p == nil || len(p.names) == 0 {
		return false
	}
	key := test
	if p.mode == MatchQualified {
		key = module + "." + test
	}
	_, ok := p.names[key]
	return ok
}

// Mode returns the active match mode.
func (p *Profile) Mode() MatchMode {
	if p == nil || p.mode == "" {
		return MatchUnqualified
	}
	return p.mode
}

// Len returns the number of skip-list entries.
func (p *Profile) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}
