// Package pipeline drives a reconciliation run: it reads bank transactions,
// resolves their payees, assigns import identities and submits the result.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pepedou/budget-nanny/internal/cache"
	"pepedou/budget-nanny/internal/importid"
	"pepedou/budget-nanny/internal/logging"
	"pepedou/budget-nanny/internal/matcher"
	"pepedou/budget-nanny/internal/models"
	"pepedou/budget-nanny/internal/normalizer"
	"pepedou/budget-nanny/internal/reconerror"
	"pepedou/budget-nanny/internal/resolver"

	"github.com/google/uuid"
)

// DefaultMemo is attached to every submitted transaction.
const DefaultMemo = "Imported by Budget Nanny"

// InvalidPolicy decides what happens to transactions that fail validation.
type InvalidPolicy string

const (
	// OnInvalidSkip logs the transaction, records it in Result.Skipped and continues.
	OnInvalidSkip InvalidPolicy = "skip"
	// OnInvalidAbort stops the run with the validation error.
	OnInvalidAbort InvalidPolicy = "abort"
)

// ParseInvalidPolicy validates a policy name.
func ParseInvalidPolicy(s string) (InvalidPolicy, error) {
	switch p := InvalidPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case OnInvalidSkip, OnInvalidAbort:
		return p, nil
	case "":
		return OnInvalidSkip, nil
	}
	return "", fmt.Errorf("unknown invalid-transaction policy %q (want %q or %q)", s, OnInvalidSkip, OnInvalidAbort)
}

// Options tunes a Pipeline. Start from DefaultOptions; a zero AutoAccept
// accepts every match that reaches the matcher floor.
type Options struct {
	Memo       string
	OnInvalid  InvalidPolicy
	AutoAccept int
	// Accounts maps bank account names to budget account ids. Unmapped
	// accounts are used as-is.
	Accounts map[string]string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Memo:       DefaultMemo,
		OnInvalid:  OnInvalidSkip,
		AutoAccept: resolver.DefaultAutoAccept,
	}
}

// Result summarises a run.
type Result struct {
	RunID     string
	Resolved  []models.ResolvedTransaction
	Skipped   []*reconerror.InvalidTransactionError
	States    map[resolver.State]int
	NewPayees []*models.Payee
	// FlushErr is set when the decisions could not be persisted. It does not
	// fail the run.
	FlushErr error
	Elapsed  time.Duration
}

func newResult(runID string) *Result {
	return &Result{RunID: runID, States: make(map[resolver.State]int)}
}

// Pipeline holds the collaborators shared by every run.
type Pipeline struct {
	normalizer *normalizer.Normalizer
	matcher    *matcher.Matcher
	store      cache.Store
	prompter   resolver.Prompter
	logger     logging.Logger
	opts       Options
}

// New creates a Pipeline.
func New(n *normalizer.Normalizer, m *matcher.Matcher, store cache.Store, prompter resolver.Prompter, logger logging.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if n == nil {
		n = normalizer.Default()
	}
	if m == nil {
		m = matcher.New()
	}
	if opts.OnInvalid == "" {
		opts.OnInvalid = OnInvalidSkip
	}
	return &Pipeline{
		normalizer: n,
		matcher:    m,
		store:      store,
		prompter:   prompter,
		logger:     logger,
		opts:       opts,
	}
}

// Options returns the options the pipeline runs with.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Run reconciles every transaction from source and submits the resolved
// records to sink. The decision cache is opened for the run and flushed on
// every exit path, so decisions taken before a failure or cancellation are kept.
func (p *Pipeline) Run(ctx context.Context, source TransactionSource, directory PayeeDirectory, sink Sink) (result *Result, err error) {
	start := time.Now()
	runID := uuid.NewString()
	log := p.logger.WithField(logging.FieldRunID, runID)
	result = newResult(runID)

	txs, err := source.Transactions(ctx)
	if err != nil {
		return result, fmt.Errorf("reading bank transactions: %w", err)
	}
	payees, err := directory.Payees(ctx)
	if err != nil {
		return result, fmt.Errorf("reading payee directory: %w", err)
	}
	log.Info("Starting reconciliation",
		logging.F(logging.FieldCount, len(txs)),
		logging.F("payees", len(payees)))

	decisions := cache.Open(p.store, log)
	defer func() {
		saved := decisions.Dirty()
		if ferr := decisions.Flush(); ferr != nil {
			saved = false
			result.FlushErr = ferr
			log.WithError(ferr).Error("Failed to persist payee decisions")
		}
		result.Elapsed = time.Since(start)
		log.Info("Reconciliation finished",
			logging.F("resolved", len(result.Resolved)),
			logging.F("skipped", len(result.Skipped)),
			logging.F("decisions_saved", saved),
			logging.F(logging.FieldDuration, result.Elapsed.String()))
	}()

	r := resolver.New(payees, decisions, p.matcher, p.prompter, log, resolver.WithAutoAccept(p.opts.AutoAccept))
	processed, err := p.process(ctx, log, r, importid.NewGenerator(), txs)
	result.Resolved = processed.Resolved
	result.Skipped = processed.Skipped
	result.States = processed.States
	result.NewPayees = r.NewPayees()
	if err != nil {
		return result, err
	}

	if err := sink.Submit(ctx, result.Resolved); err != nil {
		return result, fmt.Errorf("submitting transactions: %w", err)
	}
	return result, nil
}

// Process resolves txs in input order. On error the returned Result holds
// the transactions processed before the failure.
func (p *Pipeline) Process(ctx context.Context, r Resolver, gen *importid.Generator, txs []models.RawTransaction) (*Result, error) {
	return p.process(ctx, p.logger, r, gen, txs)
}

func (p *Pipeline) process(ctx context.Context, log logging.Logger, r Resolver, gen *importid.Generator, txs []models.RawTransaction) (*Result, error) {
	result := newResult("")
	for i, tx := range txs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		index := i + 1
		txLog := log.WithFields(
			logging.F(logging.FieldIndex, index),
			logging.F(logging.FieldAccount, tx.Account),
			logging.F(logging.FieldDate, tx.ISODate()),
			logging.F(logging.FieldRawPayee, tx.Payee))

		normalized, verr := p.validate(tx)
		if verr != nil {
			invalid := &reconerror.InvalidTransactionError{
				Index:   index,
				Account: tx.Account,
				Date:    tx.ISODate(),
				Payee:   tx.Payee,
				Reason:  verr.Error(),
			}
			if p.opts.OnInvalid == OnInvalidAbort {
				return result, invalid
			}
			txLog.WithError(invalid).Warn("Skipping invalid transaction")
			result.Skipped = append(result.Skipped, invalid)
			continue
		}

		resolution, err := r.Resolve(ctx, normalized)
		if err != nil {
			return result, err
		}

		amount := models.ToMilliunits(tx.SignedAmount())
		accountID := p.accountID(tx.Account)
		resolvedTx := models.ResolvedTransaction{
			Raw:              tx,
			AccountID:        accountID,
			NormalizedPayee:  normalized,
			Payee:            resolution.Payee,
			ResolvedBy:       string(resolution.State),
			AmountMilliunits: amount,
			ImportID:         gen.Assign(accountID, tx.Date, amount),
			Memo:             p.opts.Memo,
		}
		result.Resolved = append(result.Resolved, resolvedTx)
		result.States[resolution.State]++

		txLog.Debug("Transaction resolved",
			logging.F(logging.FieldNormalized, normalized),
			logging.F(logging.FieldPayee, resolution.Payee.Name),
			logging.F(logging.FieldState, string(resolution.State)),
			logging.F(logging.FieldAmount, amount),
			logging.F(logging.FieldImportID, resolvedTx.ImportID))
	}
	return result, nil
}

// validate checks the amount precondition and returns the normalized payee.
// A payee that normalizes to nothing, e.g. a bare reference number, is
// resolved under its trimmed raw text instead.
func (p *Pipeline) validate(tx models.RawTransaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	normalized := p.normalizer.Normalize(tx.Payee)
	if normalized == "" {
		normalized = strings.TrimSpace(tx.Payee)
	}
	if normalized == "" {
		return "", fmt.Errorf("payee is empty")
	}
	return normalized, nil
}

func (p *Pipeline) accountID(account string) string {
	if id, ok := p.opts.Accounts[account]; ok && id != "" {
		return id
	}
	return account
}
