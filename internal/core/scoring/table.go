// Package scoring assigns confidence scores to file changes. A score is a
// pure function of the diff content, the file extension, and the rule table,
// so re-scoring the same change always yields the same result.
package scoring

import (
	"fmt"
	"regexp"
)

// Rule is a single pattern rule. When the pattern matches any added line the
// rule's weight is subtracted from the score and its reason is recorded.
type Rule struct {
	Name    string  `yaml:"name"`
	Pattern string  `yaml:"pattern"`
	Weight  float64 `yaml:"weight"`
	Reason  string  `yaml:"reason"`

	re *regexp.Regexp
}

// Table is the full scoring configuration. Rules are applied in order; each
// rule fires at most once per change.
type Table struct {
	// DefaultBase is the starting score for extensions not listed in
	// BaseScores.
	DefaultBase float64 `yaml:"default_base"`

	// BaseScores maps file extensions (with leading dot) to starting scores.
	BaseScores map[string]float64 `yaml:"base_scores"`

	// Rules are pattern rules matched against added lines.
	Rules []Rule `yaml:"rules"`

	// MediumChangeLines and LargeChangeLines are thresholds on the total
	// number of changed lines; crossing one subtracts the matching penalty.
	// Only the largest crossed threshold applies.
	MediumChangeLines   int     `yaml:"medium_change_lines"`
	MediumChangePenalty float64 `yaml:"medium_change_penalty"`
	LargeChangeLines    int     `yaml:"large_change_lines"`
	LargeChangePenalty  float64 `yaml:"large_change_penalty"`
}

// DefaultTable returns the built-in rule table.
func DefaultTable() Table {
	return Table{
		DefaultBase: 0.8,
		BaseScores: map[string]float64{
			".rs":  0.9,
			".go":  0.9,
			".py":  0.9,
			".js":  0.9,
			".ts":  0.9,
			".c":   0.6,
			".cpp": 0.6,
			".s":   0.6,
			".asm": 0.6,
		},
		Rules: []Rule{
			{
				Name:    "work-marker",
				Pattern: `\b(TODO|FIXME|XXX|HACK)\b`,
				Weight:  0.2,
				Reason:  "contains unresolved work markers",
			},
			{
				Name:    "forced-unwrap",
				Pattern: `\.unwrap\(\)|\.expect\(|\bpanic\(`,
				Weight:  0.2,
				Reason:  "forces success instead of handling errors",
			},
			{
				Name:    "unsafe-code",
				Pattern: `\bunsafe\s*\{|\bunsafe\s+fn\b`,
				Weight:  0.4,
				Reason:  "introduces unsafe code",
			},
			{
				Name:    "discarded-error",
				Pattern: `,\s*_\s*(:?=)\s*\w|catch\s*\(\s*\)|except:\s*pass`,
				Weight:  0.2,
				Reason:  "discards an error value",
			},
			{
				Name:    "debug-output",
				Pattern: `console\.log|println!\(|dbg!\(|fmt\.Print|\bprint\(`,
				Weight:  0.1,
				Reason:  "leaves debug output in place",
			},
			{
				Name:    "lint-suppression",
				Pattern: `#\[allow\(|//nolint|eslint-disable|noqa|@SuppressWarnings`,
				Weight:  0.1,
				Reason:  "suppresses lint warnings",
			},
			{
				Name:    "disabled-verification",
				Pattern: `InsecureSkipVerify|verify\s*=\s*(false|False)|NOSONAR`,
				Weight:  0.3,
				Reason:  "disables a safety or verification check",
			},
		},
		MediumChangeLines:   50,
		MediumChangePenalty: 0.1,
		LargeChangeLines:    100,
		LargeChangePenalty:  0.2,
	}
}

// Compile validates the table and compiles its rule patterns. It must be
// called before the table is used for scoring.
func (t *Table) Compile() error {
	if t.DefaultBase < 0 || t.DefaultBase > 1 {
		return fmt.Errorf("default_base %v out of range [0,1]", t.DefaultBase)
	}
	for ext, base := range t.BaseScores {
		if base < 0 || base > 1 {
			return fmt.Errorf("base score for %q out of range [0,1]: %v", ext, base)
		}
	}
	for i := range t.Rules {
		r := &t.Rules[i]
		if r.Name == "" {
			return fmt.Errorf("rule %d has no name", i)
		}
		if r.Weight < 0 {
			return fmt.Errorf("rule %q has negative weight %v", r.Name, r.Weight)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("rule %q: %w", r.Name, err)
		}
		r.re = re
	}
	return nil
}
