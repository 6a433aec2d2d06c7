// Package matcher scores normalized payee names against the known payee
// names of a budget and picks the most similar one.
package matcher

import (
	"sort"
)

const (
	// DefaultFloor is the lowest score accepted as a match.
	DefaultFloor = 69
	// MaxScore is the score of identical token sequences.
	MaxScore = 100
)

// Scorer returns the similarity of two strings in the range 0..100.
type Scorer func(a, b string) int

// Candidate is a known payee name together with its similarity score.
type Candidate struct {
	Name  string
	Score int
}

// Matcher finds the best known name for a query.
type Matcher struct {
	floor  int
	scorer Scorer
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithFloor sets the minimum score for BestMatch.
func WithFloor(floor int) Option {
	return func(m *Matcher) {
		m.floor = floor
	}
}

// WithScorer replaces the default similarity function.
func WithScorer(scorer Scorer) Option {
	return func(m *Matcher) {
		if scorer != nil {
			m.scorer = scorer
		}
	}
}

// New creates a Matcher with DefaultFloor and the Similarity scorer.
func New(opts ...Option) *Matcher {
	m := &Matcher{floor: DefaultFloor, scorer: Similarity}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Floor returns the minimum accepted score.
func (m *Matcher) Floor() int {
	return m.floor
}

// Score returns the similarity between query and candidate.
func (m *Matcher) Score(query, candidate string) int {
	return m.scorer(query, candidate)
}

// BestMatch returns the highest-scoring candidate whose score reaches the
// floor. On equal scores the candidate listed first wins. The boolean is
// false when candidates is empty or nothing reaches the floor.
func (m *Matcher) BestMatch(query string, candidates []string) (Candidate, bool) {
	best := Candidate{Score: -1}
	for _, name := range candidates {
		score := m.scorer(query, name)
		if score > best.Score {
			best = Candidate{Name: name, Score: score}
		}
	}
	if best.Score < m.floor || best.Score < 0 {
		return Candidate{}, false
	}
	return best, true
}

// Rank returns up to limit candidates scoring at least cutoff, best first.
// Candidates with equal scores keep their input order. A limit <= 0 means no limit.
func (m *Matcher) Rank(query string, candidates []string, cutoff, limit int) []Candidate {
	ranked := make([]Candidate, 0, len(candidates))
	for _, name := range candidates {
		if score := m.scorer(query, name); score >= cutoff {
			ranked = append(ranked, Candidate{Name: name, Score: score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
