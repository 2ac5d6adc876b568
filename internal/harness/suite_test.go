package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ofprobe/internal/profile"
)

// testRegistry builds the registry used by the selection scenarios:
// {basic: {Echo(default), Bonus(default)}, flows: {Match(50)}}.
func testRegistry() ModuleRegistry {
	registry := make(ModuleRegistry)
	for _, t := range []*TestDescriptor{
		descriptor("basic", "Echo", DefaultPriority),
		descriptor("basic", "Bonus", DefaultPriority),
		descriptor("flows", "Match", 50),
	} {
		module, ok := registry[t.Module]
		if !ok {
			module = &Module{Name: t.Module, Tests: make(map[string]*TestDescriptor)}
			registry[t.Module] = module
		}
		module.Tests[t.Name] = t
	}
	return registry
}

func qualifiedNames(suite Suite) []string {
	names := make([]string, 0, len(suite))
	for _, t := range suite {
		names = append(names, t.QualifiedName())
	}
	return names
}

func TestPruneWildcardMatchesEverything(t *testing.T) {
	registry := testRegistry()

	filtered, err := Prune([]SpecElement{{}}, registry)
	require.NoError(t, err)
	assert.Equal(t, registry.TestCount(), filtered.TestCount())
}

func TestPruneByModuleTestAndPair(t *testing.T) {
	registry := testRegistry()

	tests := []struct {
		name     string
		elements []SpecElement
		want     []string
	}{
		{"module wildcard", []SpecElement{{Module: "basic"}}, []string{"basic.Bonus", "basic.Echo"}},
		{"test wildcard", []SpecElement{{Test: "Match"}}, []string{"flows.Match"}},
		{"exact pair", []SpecElement{{Module: "basic", Test: "Echo"}}, []string{"basic.Echo"}},
		{"union of elements", []SpecElement{{Module: "flows"}, {Test: "Echo"}}, []string{"basic.Echo", "flows.Match"}},
		{"overlapping elements widen, not duplicate", []SpecElement{{Module: "basic"}, {Test: "Echo"}}, []string{"basic.Bonus", "basic.Echo"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			filtered, err := Prune(tc.elements, registry)
			require.NoError(t, err)
			assert.Equal(t, tc.want, qualifiedNames(BuildSuite(filtered, nil, 0)))
		})
	}
}

func TestPruneUnmatchedElementFailsWholeOperation(t *testing.T) {
	registry := testRegistry()

	_, err := Prune([]SpecElement{{Module: "basic"}, {Test: "Missing"}}, registry)
	require.Error(t, err)
	var unmatched *UnmatchedSpecError
	require.ErrorAs(t, err, &unmatched)
	assert.Equal(t, "Missing", unmatched.Element.String())
}

func TestPruneIsIdempotent(t *testing.T) {
	registry := testRegistry()
	elements := []SpecElement{{Module: "basic"}}

	once, err := Prune(elements, registry)
	require.NoError(t, err)
	twice, err := Prune(elements, once)
	require.NoError(t, err)

	assert.Equal(t, once.ModuleNames(), twice.ModuleNames())
	assert.Equal(t, once.TestCount(), twice.TestCount())
}

func TestPruneNeverInventsTests(t *testing.T) {
	registry := testRegistry()
	filtered, err := Prune([]SpecElement{{}}, registry)
	require.NoError(t, err)
	for name, module := range filtered {
		for testName := range module.Tests {
			assert.Contains(t, registry[name].Tests, testName)
		}
	}
}

func TestBuildSuiteThresholds(t *testing.T) {
	registry := testRegistry()

	// Threshold 0, empty skip list: exactly the full discovered set.
	full := BuildSuite(registry, nil, 0)
	assert.Equal(t, []string{"basic.Bonus", "basic.Echo", "flows.Match"}, qualifiedNames(full))

	// Raising the threshold above 100 excludes all default-priority tests.
	assert.Empty(t, qualifiedNames(BuildSuite(registry, nil, 101)))

	// Threshold 60 keeps the defaults and drops the priority-50 test.
	assert.Equal(t, []string{"basic.Bonus", "basic.Echo"}, qualifiedNames(BuildSuite(registry, nil, 60)))
}

func TestBuildSuiteScenarioA(t *testing.T) {
	// Skip list {Bonus}, spec "all", threshold 0 -> only basic.Echo from
	// the basic module.
	registry := make(ModuleRegistry)
	registry["basic"] = &Module{Name: "basic", Tests: map[string]*TestDescriptor{
		"Echo":  descriptor("basic", "Echo", DefaultPriority),
		"Bonus": descriptor("basic", "Bonus", DefaultPriority),
	}}
	prof := profile.New([]string{"Bonus"}, profile.MatchUnqualified)

	filtered, err := Prune([]SpecElement{{}}, registry)
	require.NoError(t, err)
	suite := BuildSuite(filtered, prof, 0)
	assert.Equal(t, []string{"basic.Echo"}, qualifiedNames(suite))
}

func TestBuildSuiteScenarioB(t *testing.T) {
	// Spec "basic.Echo" selects the pair regardless of skip list contents.
	registry := testRegistry()
	prof := profile.New([]string{"Bonus"}, profile.MatchUnqualified)

	filtered, err := Prune([]SpecElement{{Module: "basic", Test: "Echo"}}, registry)
	require.NoError(t, err)
	suite := BuildSuite(filtered, prof, 0)
	assert.Equal(t, []string{"basic.Echo"}, qualifiedNames(suite))
}

func TestPruneScenarioC(t *testing.T) {
	// Spec "Missing" fails before any execution occurs.
	registry := testRegistry()
	elements, err := ParseSpec("Missing")
	require.NoError(t, err)

	_, err = Prune(elements, registry)
	var unmatched *UnmatchedSpecError
	require.ErrorAs(t, err, &unmatched)
}

func TestBuildSuiteNegativeThresholdIncludesSkipListed(t *testing.T) {
	registry := testRegistry()
	prof := profile.New([]string{"Bonus"}, profile.MatchUnqualified)

	assert.Equal(t, []string{"basic.Echo", "flows.Match"},
		qualifiedNames(BuildSuite(registry, prof, 0)))
	assert.Equal(t, []string{"basic.Bonus", "basic.Echo", "flows.Match"},
		qualifiedNames(BuildSuite(registry, prof, PrioritySkip)))
}

func TestBuildSuiteIsDeterministic(t *testing.T) {
	registry := testRegistry()
	first := qualifiedNames(BuildSuite(registry, nil, 0))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, qualifiedNames(BuildSuite(registry, nil, 0)))
	}
}

func TestListTests(t *testing.T) {
	registry := testRegistry()
	prof := profile.New([]string{"Bonus"}, profile.MatchUnqualified)

	infos := ListTests(registry, prof, 0)
	require.Len(t, infos, 2)
	assert.Equal(t, TestInfo{Module: "basic", Name: "Echo", Priority: DefaultPriority}, infos[0])
	assert.Equal(t, TestInfo{Module: "flows", Name: "Match", Priority: 50}, infos[1])

	// Listing with the skip sentinel threshold exposes skip-listed tests
	// with their resolved priority.
	all := ListTests(registry, prof, PrioritySkip)
	require.Len(t, all, 3)
	assert.Equal(t, PrioritySkip, all[0].Priority)
}

func TestListTestNames(t *testing.T) {
	names := ListTestNames(testRegistry())
	assert.Equal(t, []string{"basic.Bonus", "basic.Echo", "flows.Match"}, names)
}
