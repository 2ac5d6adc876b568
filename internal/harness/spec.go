package harness

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseSpec parses a test-spec string into its ordered elements.
//
// The mini-language is comma-separated; each element is one of:
//
//	all           every discovered test
//	module        all tests in the named module (lowercase-leading token)
//	Test          the named test in any module (uppercase-leading token)
//	module.test   one exact module/test pair
//
// Case of the first character is the sole disambiguator for single tokens.
// More than one dot per element is a syntax error. Parsing is pure and
// order-preserving; duplicate or overlapping elements are permitted and
// simply widen the match set.
func ParseSpec(spec string) ([]SpecElement, error) {
	tokens := strings.Split(spec, ",")
	elements := make([]SpecElement, 0, len(tokens))

	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, &SpecSyntaxError{Element: token, Reason: "empty element"}
		}

		parts := strings.Split(token, ".")
		switch len(parts) {
		case 1:
			elements = append(elements, parseSingleToken(token))
		case 2:
			if parts[0] == "" || parts[1] == "" {
				return nil, &SpecSyntaxError{Element: token, Reason: "empty module or test name"}
			}
			elements = append(elements, SpecElement{Module: parts[0], Test: parts[1]})
		default:
			return nil, &SpecSyntaxError{Element: token, Reason: "more than one '.'"}
		}
	}

	return elements, nil
}

func parseSingleToken(token string) SpecElement {
	if token == "all" {
		return SpecElement{}
	}
	first, _ := utf8.DecodeRuneInString(token)
	if unicode.IsUpper(first) {
		return SpecElement{Test: token}
	}
	return SpecElement{Module: token}
}
