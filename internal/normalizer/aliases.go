package normalizer

import (
	"fmt"
	"regexp"
	"strings"
)

// RuleKind selects how an AliasRule tests a cleaned name.
type RuleKind string

const (
	KindPrefix   RuleKind = "prefix"
	KindContains RuleKind = "contains"
	KindPattern  RuleKind = "pattern"
)

// AliasRule replaces a whole cleaned name with Replacement when Match applies.
// Matching is case-insensitive for every kind.
type AliasRule struct {
	Kind        RuleKind `yaml:"kind"`
	Match       string   `yaml:"match"`
	Replacement string   `yaml:"replacement"`
}

// DefaultAliases is the alias table used when no aliases file is configured.
func DefaultAliases() []AliasRule {
	return []AliasRule{
		{Kind: KindPattern, Match: `^PASE\b`, Replacement: "PASE"},
		{Kind: KindContains, Match: "RAPPI", Replacement: "Rappi"},
		{Kind: KindContains, Match: "SPEI", Replacement: "SPEI Transfer"},
		{Kind: KindPrefix, Match: "BBVA", Replacement: "BBVA Bancomer"},
		{Kind: KindContains, Match: "PAGO TARJETA", Replacement: "Credit Card Payment"},
	}
}

type compiledRule struct {
	AliasRule
	upper   string
	pattern *regexp.Regexp
}

func compileRule(rule AliasRule) (compiledRule, error) {
	if rule.Match == "" {
		return compiledRule{}, fmt.Errorf("empty match")
	}
	if strings.TrimSpace(rule.Replacement) == "" {
		return compiledRule{}, fmt.Errorf("empty replacement for %q", rule.Match)
	}

	c := compiledRule{AliasRule: rule, upper: strings.ToUpper(rule.Match)}
	switch rule.Kind {
	case KindPrefix, KindContains:
	case KindPattern:
		re, err := regexp.Compile("(?i)" + rule.Match)
		if err != nil {
			return compiledRule{}, fmt.Errorf("invalid pattern %q: %w", rule.Match, err)
		}
		c.pattern = re
	default:
		return compiledRule{}, fmt.Errorf("unknown rule kind %q", rule.Kind)
	}
	return c, nil
}

func (c compiledRule) matches(s string) bool {
	switch c.Kind {
	case KindPrefix:
		return strings.HasPrefix(strings.ToUpper(s), c.upper)
	case KindContains:
		return strings.Contains(strings.ToUpper(s), c.upper)
	case KindPattern:
		return c.pattern.MatchString(s)
	}
	return false
}
