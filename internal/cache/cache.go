// Package cache holds the normalized-name -> payee decisions taken by the
// resolver. Decisions are authoritative: once a name is cached it is never
// matched or prompted for again until it is evicted.
package cache

import (
	"errors"
	"sort"
	"sync"

	"pepedou/budget-nanny/internal/logging"
	"pepedou/budget-nanny/internal/models"
	"pepedou/budget-nanny/internal/reconerror"
)

// Store persists decisions between runs.
type Store interface {
	Load() (map[string]*models.Payee, error)
	Save(map[string]*models.Payee) error
	Path() string
}

// Entry is one cached decision.
type Entry struct {
	Name  string
	Payee *models.Payee
}

// DecisionCache is the in-memory decision map with a dirty flag.
type DecisionCache struct {
	mu        sync.RWMutex
	store     Store
	logger    logging.Logger
	decisions map[string]*models.Payee
	dirty     bool
}

// Open loads the persisted decisions. Any load failure leaves the cache
// empty and is logged as a warning; reconciliation can proceed without history.
func Open(store Store, logger logging.Logger) *DecisionCache {
	if logger == nil {
		logger = logging.GetLogger()
	}
	c := &DecisionCache{
		store:     store,
		logger:    logger,
		decisions: make(map[string]*models.Payee),
	}

	loaded, err := store.Load()
	if err != nil {
		logger.WithError(err).Warn("Could not load payee decisions, starting with an empty cache",
			logging.F(logging.FieldFile, store.Path()))
		return c
	}
	for name, payee := range loaded {
		if payee != nil {
			c.decisions[name] = payee
		}
	}
	logger.Debug("Opened decision cache",
		logging.F(logging.FieldCount, len(c.decisions)),
		logging.F(logging.FieldFile, store.Path()))
	return c
}

// Lookup returns the payee decided for a normalized name.
func (c *DecisionCache) Lookup(name string) (*models.Payee, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.decisions[name]
	return p, ok
}

// Record stores a decision. Recording the payee already cached under the
// same name changes nothing and does not mark the cache dirty.
func (c *DecisionCache) Record(name string, payee *models.Payee) {
	if payee == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.decisions[name]; ok && current == payee {
		return
	}
	c.decisions[name] = payee
	c.dirty = true
}

// Evict removes a decision and reports whether it existed.
func (c *DecisionCache) Evict(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.decisions[name]; !ok {
		return false
	}
	delete(c.decisions, name)
	c.dirty = true
	return true
}

// Entries returns all decisions sorted by normalized name.
func (c *DecisionCache) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries := make([]Entry, 0, len(c.decisions))
	for name, payee := range c.decisions {
		entries = append(entries, Entry{Name: name, Payee: payee})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Len returns the number of cached decisions.
func (c *DecisionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.decisions)
}

// Relink replaces every cached payee with link(payee). Entries that shared a
// payee before keep sharing the result. Replacing a payee with a different
// pointer marks the cache dirty only when its persisted form changes.
func (c *DecisionCache) Relink(link func(*models.Payee) *models.Payee) {
	c.mu.Lock()
	defer c.mu.Unlock()
	linked := make(map[*models.Payee]*models.Payee)
	for name, payee := range c.decisions {
		target, ok := linked[payee]
		if !ok {
			target = link(payee)
			if target == nil {
				target = payee
			}
			linked[payee] = target
		}
		if target != payee && *target != *payee {
			c.dirty = true
		}
		c.decisions[name] = target
	}
}

// Dirty reports whether there are decisions not yet flushed.
func (c *DecisionCache) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// Flush persists the decisions if anything changed since the last flush.
func (c *DecisionCache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}

	snapshot := make(map[string]*models.Payee, len(c.decisions))
	for name, payee := range c.decisions {
		snapshot[name] = payee
	}
	if err := c.store.Save(snapshot); err != nil {
		var perr *reconerror.PersistenceError
		if !errors.As(err, &perr) {
			err = &reconerror.PersistenceError{Path: c.store.Path(), Op: "write", Err: err}
		}
		return err
	}

	c.dirty = false
	c.logger.Info("Saved payee decisions",
		logging.F(logging.FieldCount, len(snapshot)),
		logging.F(logging.FieldFile, c.store.Path()))
	return nil
}
