package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want []SpecElement
	}{
		{
			name: "all is a full wildcard",
			spec: "all",
			want: []SpecElement{{}},
		},
		{
			name: "exact module.test pair",
			spec: "basic.Echo",
			want: []SpecElement{{Module: "basic", Test: "Echo"}},
		},
		{
			name: "uppercase-leading token is a test wildcard",
			spec: "Echo",
			want: []SpecElement{{Test: "Echo"}},
		},
		{
			name: "lowercase-leading token is a module wildcard",
			spec: "basic",
			want: []SpecElement{{Module: "basic"}},
		},
		{
			name: "comma order is preserved and duplicates permitted",
			spec: "basic,Echo,basic,flows.Match",
			want: []SpecElement{
				{Module: "basic"},
				{Test: "Echo"},
				{Module: "basic"},
				{Module: "flows", Test: "Match"},
			},
		},
		{
			name: "surrounding whitespace is tolerated",
			spec: " basic , Echo ",
			want: []SpecElement{{Module: "basic"}, {Test: "Echo"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSpec(tc.spec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseSpecErrors(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{"more than one dot", "a.b.c"},
		{"empty spec", ""},
		{"empty element", "basic,,Echo"},
		{"dangling dot", "basic."},
		{"leading dot", ".Echo"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSpec(tc.spec)
			require.Error(t, err)
			var syntaxErr *SpecSyntaxError
			assert.ErrorAs(t, err, &syntaxErr)
		})
	}
}

func TestParseSpecIsPure(t *testing.T) {
	first, err := ParseSpec("basic.Echo,flows,All")
	require.NoError(t, err)
	second, err := ParseSpec("basic.Echo,flows,All")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSpecElementString(t *testing.T) {
	assert.Equal(t, "all", SpecElement{}.String())
	assert.Equal(t, "basic", SpecElement{Module: "basic"}.String())
	assert.Equal(t, "Echo", SpecElement{Test: "Echo"}.String())
	assert.Equal(t, "basic.Echo", SpecElement{Module: "basic", Test: "Echo"}.String())
}

// Property: for specs built from well-formed tokens, parsing never fails,
// yields one element per token in order, and every element round-trips
// through String back to its token.
func TestParseSpecProperties(t *testing.T) {
	lower := rapid.StringMatching(`[a-z][a-z0-9_]{0,10}`)
	upper := rapid.StringMatching(`[A-Z][A-Za-z0-9_]{0,10}`)
	pair := rapid.Custom(func(t *rapid.T) string {
		return lower.Draw(t, "mod") + "." + upper.Draw(t, "test")
	})

	rapid.Check(t, func(t *rapid.T) {
		tokens := rapid.SliceOfN(rapid.OneOf(lower, upper, pair, rapid.Just("all")), 1, 8).Draw(t, "tokens")
		spec := strings.Join(tokens, ",")

		elements, err := ParseSpec(spec)
		if err != nil {
			t.Fatalf("well-formed spec %q failed to parse: %v", spec, err)
		}
		if len(elements) != len(tokens) {
			t.Fatalf("spec %q: got %d elements, want %d", spec, len(elements), len(tokens))
		}
		for i, element := range elements {
			if element.String() != tokens[i] {
				t.Fatalf("element %d of %q renders as %q", i, spec, element.String())
			}
		}
	})
}

// Property: parsing arbitrary input never panics; it either fails with a
// SpecSyntaxError or returns at least one element.
func TestParseSpecNeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		spec := rapid.String().Draw(t, "spec")
		elements, err := ParseSpec(spec)
		if err == nil && len(elements) == 0 {
			t.Fatalf("spec %q: no error and no elements", spec)
		}
	})
}
