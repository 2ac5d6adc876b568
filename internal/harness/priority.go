package harness

import (
	"ofprobe/internal/profile"
	"ofprobe/pkg/logging"
)

// ResolvePriority computes a test's effective priority. Membership in the
// skip profile forces the skip sentinel unconditionally, regardless of any
// declared priority; otherwise the declared priority (already defaulted at
// discovery time) stands.
func ResolvePriority(t *TestDescriptor, prof *profile.Profile) int {
	if prof.Matches(t.Module, t.Name) {
		logging.Info("priority", "test %s is on the skip list, priority forced to %d",
			t.QualifiedName(), PrioritySkip)
		return PrioritySkip
	}
	return t.Priority
}

// Eligible reports whether a test clears the priority threshold. With the
// default threshold of 0 skip-listed tests are always excluded; a negative
// threshold is legal and force-includes them.
func Eligible(t *TestDescriptor, prof *profile.Profile, threshold int) bool {
	return ResolvePriority(t, prof) >= threshold
}
