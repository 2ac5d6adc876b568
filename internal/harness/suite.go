package harness

import (
	"sort"

	"ofprobe/internal/profile"
)

// Prune filters the registry down to the union of all spec element matches.
// Matching is exact-or-wildcard on both fields. Pruning is all-or-nothing:
// an element that matches nothing fails the whole operation with an
// UnmatchedSpecError naming the element. Pruning never invents tests and is
// idempotent.
func Prune(elements []SpecElement, registry ModuleRegistry) (ModuleRegistry, error) {
	filtered := make(ModuleRegistry)

	for _, element := range elements {
		matched := false
		for moduleName, module := range registry {
			if element.Module != "" && element.Module != moduleName {
				continue
			}
			for testName, test := range module.Tests {
				if element.Test != "" && element.Test != testName {
					continue
				}
				matched = true
				target, ok := filtered[moduleName]
				if !ok {
					target = &Module{Name: module.Name, Path: module.Path, Tests: make(map[string]*TestDescriptor)}
					filtered[moduleName] = target
				}
				target.Tests[testName] = test
			}
		}
		if !matched {
			return nil, &UnmatchedSpecError{Element: element}
		}
	}

	return filtered, nil
}

// BuildSuite selects the eligible tests from the registry and orders them
// canonically: module name then test name, both ascending. Two runs with
// identical inputs always execute tests in the same order.
func BuildSuite(registry ModuleRegistry, prof *profile.Profile, threshold int) Suite {
	suite := make(Suite, 0, registry.TestCount())
	for _, moduleName := range registry.ModuleNames() {
		module := registry[moduleName]
		testNames := make([]string, 0, len(module.Tests))
		for name := range module.Tests {
			testNames = append(testNames, name)
		}
		sort.Strings(testNames)
		for _, name := range testNames {
			if test := module.Tests[name]; Eligible(test, prof, threshold) {
				suite = append(suite, test)
			}
		}
	}
	return suite
}

// ListTests returns the (module, test, priority, description) tuples of the
// registry, thresholded the same way BuildSuite is, without constructing or
// invoking any test. Priorities are the effective ones after skip-profile
// resolution.
func ListTests(registry ModuleRegistry, prof *profile.Profile, threshold int) []TestInfo {
	infos := make([]TestInfo, 0, registry.TestCount())
	for _, moduleName := range registry.ModuleNames() {
		module := registry[moduleName]
		testNames := make([]string, 0, len(module.Tests))
		for name := range module.Tests {
			testNames = append(testNames, name)
		}
		sort.Strings(testNames)
		for _, name := range testNames {
			test := module.Tests[name]
			resolved := ResolvePriority(test, prof)
			if resolved < threshold {
				continue
			}
			infos = append(infos, TestInfo{
				Module:      test.Module,
				Name:        test.Name,
				Priority:    resolved,
				Description: test.Description,
			})
		}
	}
	return infos
}

// ListTestNames returns the qualified names of every test in the registry,
// unthresholded, in canonical order.
func ListTestNames(registry ModuleRegistry) []string {
	names := make([]string, 0, registry.TestCount())
	for _, info := range ListTests(registry, nil, PrioritySkip) {
		names = append(names, info.Module+"."+info.Name)
	}
	return names
}
