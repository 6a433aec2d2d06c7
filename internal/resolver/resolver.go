// Package resolver maps normalized payee names to canonical payees, consulting
// the decision cache first, then the similarity matcher, then a human.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"pepedou/budget-nanny/internal/logging"
	"pepedou/budget-nanny/internal/matcher"
	"pepedou/budget-nanny/internal/models"
	"pepedou/budget-nanny/internal/reconerror"
)

// DefaultAutoAccept is the lowest matcher score accepted without asking.
const DefaultAutoAccept = 90

// State is a step of the resolution state machine.
type State string

const (
	StateCacheHit     State = "CACHE_HIT"
	StateAutoMatch    State = "AUTO_MATCH"
	StateHumanConfirm State = "HUMAN_CONFIRM"
	StateNewPayee     State = "NEW_PAYEE"
	StateResolved     State = "RESOLVED"
)

// Prompter is the human-decision collaborator.
type Prompter interface {
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, question string) (bool, error)
	// Choose offers options to pick from; selected is false when the human
	// declined to pick one.
	Choose(ctx context.Context, prompt string, options []string) (choice string, selected bool, err error)
	// Ask reads a free-text answer.
	Ask(ctx context.Context, prompt string) (string, error)
}

// Cache is the decision cache used by the resolver.
type Cache interface {
	Lookup(name string) (*models.Payee, bool)
	Record(name string, payee *models.Payee)
	Relink(link func(*models.Payee) *models.Payee)
}

// Resolution is the outcome of resolving one normalized name.
type Resolution struct {
	Normalized string
	Payee      *models.Payee
	// State is the state that decided the payee.
	State State
	// Trace lists every state visited, ending with StateResolved.
	Trace []State
	// Candidate is the matcher's best candidate, zero when none reached the floor.
	Candidate matcher.Candidate
}

// Resolver owns the working set of known payees for one run.
type Resolver struct {
	cache      Cache
	matcher    *matcher.Matcher
	prompter   Prompter
	logger     logging.Logger
	autoAccept int

	payees  []*models.Payee
	names   []string
	byName  map[string]*models.Payee
	byLower map[string]*models.Payee
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAutoAccept sets the score at and above which matches are accepted
// without confirmation.
func WithAutoAccept(score int) Option {
	return func(r *Resolver) {
		r.autoAccept = score
	}
}

// New builds a Resolver over a directory snapshot. Cached payees are relinked
// to the directory so a payee is represented by one pointer for the whole run.
func New(directory []models.Payee, c Cache, m *matcher.Matcher, p Prompter, logger logging.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if m == nil {
		m = matcher.New()
	}
	r := &Resolver{
		cache:      c,
		matcher:    m,
		prompter:   p,
		logger:     logger,
		autoAccept: DefaultAutoAccept,
		byName:     make(map[string]*models.Payee),
		byLower:    make(map[string]*models.Payee),
	}
	for _, opt := range opts {
		opt(r)
	}

	byID := make(map[string]*models.Payee, len(directory))
	for i := range directory {
		payee := &models.Payee{ID: directory[i].ID, Name: directory[i].Name}
		r.add(payee)
		if payee.HasID() {
			byID[payee.ID] = payee
		}
	}

	c.Relink(func(cached *models.Payee) *models.Payee {
		if cached.HasID() {
			if known, ok := byID[cached.ID]; ok {
				return known
			}
		} else if known, ok := r.byLower[strings.ToLower(strings.TrimSpace(cached.Name))]; ok {
			return known
		}
		r.add(cached)
		if cached.HasID() {
			byID[cached.ID] = cached
		}
		return cached
	})

	return r
}

func (r *Resolver) add(payee *models.Payee) {
	r.payees = append(r.payees, payee)
	r.names = append(r.names, payee.Name)
	if _, ok := r.byName[payee.Name]; !ok {
		r.byName[payee.Name] = payee
	}
	lower := strings.ToLower(strings.TrimSpace(payee.Name))
	if _, ok := r.byLower[lower]; !ok {
		r.byLower[lower] = payee
	}
}

// Payees returns the working set: the directory plus payees created this run.
func (r *Resolver) Payees() []*models.Payee {
	out := make([]*models.Payee, len(r.payees))
	copy(out, r.payees)
	return out
}

// NewPayees returns the payees in the working set that do not exist in the budget yet.
func (r *Resolver) NewPayees() []*models.Payee {
	var out []*models.Payee
	for _, p := range r.payees {
		if !p.HasID() {
			out = append(out, p)
		}
	}
	return out
}

// Resolve returns the canonical payee for a normalized name and records the
// decision in the cache.
func (r *Resolver) Resolve(ctx context.Context, normalized string) (Resolution, error) {
	log := r.logger.WithField(logging.FieldNormalized, normalized)

	if payee, ok := r.cache.Lookup(normalized); ok {
		log.Debug("Payee resolved from cache", logging.F(logging.FieldPayee, payee.Name))
		return Resolution{
			Normalized: normalized,
			Payee:      payee,
			State:      StateCacheHit,
			Trace:      []State{StateCacheHit, StateResolved},
		}, nil
	}

	res := Resolution{Normalized: normalized}
	candidate, found := r.matcher.BestMatch(normalized, r.names)
	if found {
		res.Candidate = candidate
		log = log.WithFields(
			logging.F(logging.FieldCandidate, candidate.Name),
			logging.F(logging.FieldScore, candidate.Score))

		if candidate.Score >= r.autoAccept {
			res.State = StateAutoMatch
			res.Payee = r.byName[candidate.Name]
		} else {
			res.Trace = append(res.Trace, StateHumanConfirm)
			question := fmt.Sprintf("Is %q the same payee as %q (score %d)?", normalized, candidate.Name, candidate.Score)
			yes, err := r.prompter.Confirm(ctx, question)
			if err != nil {
				return Resolution{}, &reconerror.ResolutionError{Name: normalized, Stage: string(StateHumanConfirm), Err: err}
			}
			if yes {
				res.State = StateHumanConfirm
				res.Payee = r.byName[candidate.Name]
			}
		}
	}

	if res.Payee == nil {
		payee, err := r.newPayee(ctx, normalized)
		if err != nil {
			return Resolution{}, &reconerror.ResolutionError{Name: normalized, Stage: string(StateNewPayee), Err: err}
		}
		res.State = StateNewPayee
		res.Payee = payee
	}
	if res.State != StateHumanConfirm {
		res.Trace = append(res.Trace, res.State)
	}
	res.Trace = append(res.Trace, StateResolved)

	r.cache.Record(normalized, res.Payee)
	log.Info("Payee resolved",
		logging.F(logging.FieldState, string(res.State)),
		logging.F(logging.FieldPayee, res.Payee.Name),
		logging.F(logging.FieldPayeeID, res.Payee.ID))
	return res, nil
}

// newPayee lets the human pick a known payee or type a name. A typed name
// equal to a known payee, ignoring case, reuses that payee.
func (r *Resolver) newPayee(ctx context.Context, normalized string) (*models.Payee, error) {
	if len(r.names) > 0 {
		choice, selected, err := r.prompter.Choose(ctx, fmt.Sprintf("Select the payee for %q", normalized), r.names)
		if err != nil {
			return nil, err
		}
		if selected {
			if payee, ok := r.byName[choice]; ok {
				return payee, nil
			}
			return r.namedPayee(choice), nil
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		answer, err := r.prompter.Ask(ctx, fmt.Sprintf("Payee name for %q", normalized))
		if err != nil {
			return nil, err
		}
		if name := strings.TrimSpace(answer); name != "" {
			return r.namedPayee(name), nil
		}
	}
}

func (r *Resolver) namedPayee(name string) *models.Payee {
	if payee, ok := r.byLower[strings.ToLower(strings.TrimSpace(name))]; ok {
		return payee
	}
	payee := &models.Payee{Name: strings.TrimSpace(name)}
	r.add(payee)
	r.logger.Info("Created new payee", logging.F(logging.FieldPayee, payee.Name))
	return payee
}
