// Package normalizer reduces free-text bank payee strings to a canonical form
// so that the same merchant seen on different statement lines compares equal.
package normalizer

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	punctuation   = strings.NewReplacer("*", "", ":", "", "/", "", ";", "")
	numericTokens = regexp.MustCompile(`\d{2,}\w*`)
	repeatedSpace = regexp.MustCompile(` {2,}`)
)

const taxIDMarker = "RFC"

// Normalizer applies the cleanup steps followed by an ordered alias table.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	rules []compiledRule
}

// New builds a Normalizer over the given alias rules. Rules are tried in
// order and the first match wins. Every replacement must already be in
// normal form, otherwise normalizing twice could differ from normalizing once.
func New(rules []AliasRule) (*Normalizer, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, rule := range rules {
		c, err := compileRule(rule)
		if err != nil {
			return nil, fmt.Errorf("alias rule #%d: %w", i+1, err)
		}
		compiled = append(compiled, c)
	}

	n := &Normalizer{rules: compiled}
	for _, c := range compiled {
		if got := n.Normalize(c.Replacement); got != c.Replacement {
			return nil, fmt.Errorf("alias replacement %q is not in normal form (normalizes to %q)", c.Replacement, got)
		}
	}
	return n, nil
}

// Default returns a Normalizer using DefaultAliases.
func Default() *Normalizer {
	n, err := New(DefaultAliases())
	if err != nil {
		panic(fmt.Sprintf("default alias table is invalid: %v", err))
	}
	return n
}

// Rules returns a copy of the alias table in evaluation order.
func (n *Normalizer) Rules() []AliasRule {
	rules := make([]AliasRule, len(n.rules))
	for i, c := range n.rules {
		rules[i] = c.AliasRule
	}
	return rules
}

// Normalize returns the canonical form of raw.
func (n *Normalizer) Normalize(raw string) string {
	s := Clean(raw)
	for _, rule := range n.rules {
		if rule.matches(s) {
			return rule.Replacement
		}
	}
	return s
}

// Clean runs the cleanup steps without the alias table: strip punctuation,
// drop the tax-id marker, drop reference numbers, squeeze spaces and trim.
func Clean(raw string) string {
	s := punctuation.Replace(raw)
	for strings.Contains(s, taxIDMarker) {
		s = strings.ReplaceAll(s, taxIDMarker, "")
	}
	s = numericTokens.ReplaceAllString(s, "")
	s = repeatedSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
