// Package importid assigns the deterministic import identities the budgeting
// platform uses to recognise a transaction that was already imported.
package importid

import (
	"fmt"
	"time"

	"pepedou/budget-nanny/internal/models"
)

// Prefix starts every import identity.
const Prefix = "YNAB"

type key struct {
	account    string
	date       string
	milliunits int64
}

// Generator numbers transactions sharing account, date and amount in
// processing order. One Generator covers one run; counts are not persisted,
// so feeding the same records in the same order reproduces the same ids.
type Generator struct {
	counts map[key]int
}

// NewGenerator returns a Generator with an empty counter.
func NewGenerator() *Generator {
	return &Generator{counts: make(map[key]int)}
}

// Assign returns YNAB:{milliunits}:{YYYY-MM-DD}:{occurrence} and advances
// the occurrence for the (account, date, amount) key.
func (g *Generator) Assign(accountID string, date time.Time, milliunits int64) string {
	k := key{account: accountID, date: date.Format(models.ISODateLayout), milliunits: milliunits}
	g.counts[k]++
	return Format(milliunits, date, g.counts[k])
}

// Occurrences returns how many ids were assigned for the key so far.
func (g *Generator) Occurrences(accountID string, date time.Time, milliunits int64) int {
	return g.counts[key{account: accountID, date: date.Format(models.ISODateLayout), milliunits: milliunits}]
}

// Reset forgets every count.
func (g *Generator) Reset() {
	g.counts = make(map[key]int)
}

// Format renders an import identity.
func Format(milliunits int64, date time.Time, occurrence int) string {
	return fmt.Sprintf("%s:%d:%s:%d", Prefix, milliunits, date.Format(models.ISODateLayout), occurrence)
}
