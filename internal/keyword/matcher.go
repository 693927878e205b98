package keyword

import (
	"fmt"
	"regexp"
)

// Rule is one configured keyword entry before compilation.
type Rule struct {
	// Label is the canonical name reported by Match and recorded in state.
	Label string `yaml:"label"`
	// Pattern is literal text in the default mode; see RawRegex.
	Pattern string `yaml:"pattern"`
	// CaseSensitive disables the default case folding.
	CaseSensitive bool `yaml:"case_sensitive"`
	// DisplayAs overrides Label in rendered output only.
	DisplayAs string `yaml:"display_as"`
	// RawRegex uses Pattern verbatim, without escaping or the word
	// boundaries added in the default mode.
	RawRegex bool `yaml:"raw_regex"`
}

type predicate struct {
	label string
	re    *regexp.Regexp
}

// Matcher holds the compiled predicates in configuration order. Several
// rules may share one label; the label matches if any of its patterns do.
type Matcher struct {
	predicates []predicate
	display    map[string]string
}

// Compile validates and compiles the rule list. Any malformed entry,
// including an invalid raw_regex pattern, fails immediately so bad
// configuration is rejected before fetching or delivery starts.
func Compile(rules []Rule) (*Matcher, error) {
	m := &Matcher{display: make(map[string]string, len(rules))}

	for _, rule := range rules {
		if rule.Label == "" || rule.Pattern == "" {
			return nil, fmt.Errorf("keyword entry needs label and pattern: %+v", rule)
		}

		expr := rule.Pattern
		if !rule.RawRegex {
			expr = `\b` + regexp.QuoteMeta(rule.Pattern) + `\b`
		}
		if !rule.CaseSensitive {
			expr = `(?i)` + expr
		}

		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("keyword %q: invalid pattern %q: %w", rule.Label, rule.Pattern, err)
		}

		m.predicates = append(m.predicates, predicate{label: rule.Label, re: re})
		if rule.DisplayAs != "" {
			m.display[rule.Label] = rule.DisplayAs
		}
	}

	return m, nil
}

// Match scans the given text fields and returns the canonical labels that
// matched, in configuration order, without duplicates.
func (m *Matcher) Match(texts ...string) []string {
	var matched []string
	seen := map[string]struct{}{}

	for _, p := range m.predicates {
		if _, ok := seen[p.label]; ok {
			continue
		}
		for _, text := range texts {
			if p.re.MatchString(text) {
				matched = append(matched, p.label)
				seen[p.label] = struct{}{}
				break
			}
		}
	}

	return matched
}

// Display resolves the output name for a canonical label. Labels without
// a display_as override render as themselves.
func (m *Matcher) Display(label string) string {
	if name, ok := m.display[label]; ok {
		return name
	}
	return label
}
