package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"pepedou/budget-nanny/internal/importid"
	"pepedou/budget-nanny/internal/logging"
	"pepedou/budget-nanny/internal/models"
	"pepedou/budget-nanny/internal/normalizer"
	"pepedou/budget-nanny/internal/prompt"
	"pepedou/budget-nanny/internal/reconerror"
	"pepedou/budget-nanny/internal/resolver"
	"pepedou/budget-nanny/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	txs []models.RawTransaction
	err error
}

func (s staticSource) Transactions(context.Context) ([]models.RawTransaction, error) {
	return s.txs, s.err
}

type staticDirectory []models.Payee

func (d staticDirectory) Payees(context.Context) ([]models.Payee, error) {
	return d, nil
}

type recordingSink struct {
	submitted []models.ResolvedTransaction
	err       error
}

func (s *recordingSink) Submit(_ context.Context, txs []models.ResolvedTransaction) error {
	s.submitted = txs
	return s.err
}

var day = time.Date(2015, 12, 30, 0, 0, 0, 0, time.UTC)

func outflow(account, payee, amount string) models.RawTransaction {
	return models.RawTransaction{Account: account, Date: day, Payee: payee, Outflow: decimal.RequireFromString(amount)}
}

func inflow(account, payee, amount string) models.RawTransaction {
	return models.RawTransaction{Account: account, Date: day, Payee: payee, Inflow: decimal.RequireFromString(amount)}
}

func newPipeline(s *store.MockDecisionStore, p resolver.Prompter, opts Options) (*Pipeline, *logging.MockLogger) {
	logger := logging.NewMockLogger()
	return New(normalizer.Default(), nil, s, p, logger, opts), logger
}

func TestRun_EndToEnd(t *testing.T) {
	s := &store.MockDecisionStore{}
	p := &prompt.MockPrompter{}
	opts := DefaultOptions()
	opts.Accounts = map[string]string{"Checking": "acc-1"}
	pl, logger := newPipeline(s, p, opts)
	sink := &recordingSink{}

	result, err := pl.Run(context.Background(),
		staticSource{txs: []models.RawTransaction{outflow("Checking", "ACME STORE 998877", "294.23")}},
		staticDirectory{{ID: "p1", Name: "Acme Store"}},
		sink)
	require.NoError(t, err)

	require.Len(t, sink.submitted, 1)
	tx := sink.submitted[0]
	assert.Equal(t, "ACME STORE", tx.NormalizedPayee)
	assert.Equal(t, "p1", tx.Payee.ID)
	assert.Equal(t, string(resolver.StateAutoMatch), tx.ResolvedBy)
	assert.Equal(t, int64(-294230), tx.AmountMilliunits)
	assert.Equal(t, "acc-1", tx.AccountID)
	assert.Equal(t, "YNAB:-294230:2015-12-30:1", tx.ImportID)
	assert.Equal(t, DefaultMemo, tx.Memo)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.States[resolver.StateAutoMatch])
	assert.Empty(t, p.Calls)
	assert.NoError(t, result.FlushErr)

	// the decision is persisted for the next run
	require.Contains(t, s.Decisions, "ACME STORE")
	assert.Equal(t, "p1", s.Decisions["ACME STORE"].ID)

	for _, entry := range logger.GetEntries() {
		runID, ok := entry.FieldValue(logging.FieldRunID)
		assert.True(t, ok, "entry %q carries the run id", entry.Message)
		assert.Equal(t, result.RunID, runID)
	}
}

// finishedField returns a field of the end-of-run log entry.
func finishedField(t *testing.T, logger *logging.MockLogger, key string) interface{} {
	t.Helper()
	for _, entry := range logger.GetEntriesByLevel("INFO") {
		if entry.Message == "Reconciliation finished" {
			value, ok := entry.FieldValue(key)
			require.True(t, ok, "missing field %s", key)
			return value
		}
	}
	t.Fatal("no end-of-run entry")
	return nil
}

func TestRun_NextRunHitsCache(t *testing.T) {
	s := &store.MockDecisionStore{}
	src := staticSource{txs: []models.RawTransaction{outflow("Checking", "FRESH MKT 0042", "10")}}

	first := &prompt.MockPrompter{Answers: []string{"Fresh Market"}}
	pl, logger := newPipeline(s, first, DefaultOptions())
	_, err := pl.Run(context.Background(), src, staticDirectory{}, &recordingSink{})
	require.NoError(t, err)
	assert.Equal(t, true, finishedField(t, logger, "decisions_saved"))
	assert.Equal(t, 1, s.SaveCalls)

	second := &prompt.MockPrompter{}
	pl, logger = newPipeline(s, second, DefaultOptions())
	sink := &recordingSink{}
	result, err := pl.Run(context.Background(), src, staticDirectory{}, sink)
	require.NoError(t, err)
	assert.Equal(t, false, finishedField(t, logger, "decisions_saved"), "nothing new to save")
	assert.Equal(t, 1, s.SaveCalls)

	assert.Empty(t, second.Calls)
	assert.Equal(t, 1, result.States[resolver.StateCacheHit])
	assert.Equal(t, "Fresh Market", sink.submitted[0].Payee.Name)
	assert.Equal(t, "YNAB:-10000:2015-12-30:1", sink.submitted[0].ImportID, "counter restarts each run")
}

func TestProcess_OccurrencesAndSharedPayee(t *testing.T) {
	p := &prompt.MockPrompter{Answers: []string{"Fresh Market"}}
	pl, _ := newPipeline(&store.MockDecisionStore{}, p, DefaultOptions())
	sink := &recordingSink{}

	_, err := pl.Run(context.Background(), staticSource{txs: []models.RawTransaction{
		outflow("Checking", "FRESH MKT 0042", "10"),
		outflow("Checking", "FRESH MKT 0043", "10"),
		inflow("Checking", "FRESH MKT", "10"),
		outflow("Savings", "FRESH MKT", "10"),
	}}, staticDirectory{}, sink)
	require.NoError(t, err)

	require.Len(t, sink.submitted, 4)
	assert.Equal(t, "YNAB:-10000:2015-12-30:1", sink.submitted[0].ImportID)
	assert.Equal(t, "YNAB:-10000:2015-12-30:2", sink.submitted[1].ImportID)
	assert.Equal(t, "YNAB:10000:2015-12-30:1", sink.submitted[2].ImportID)
	assert.Equal(t, "YNAB:-10000:2015-12-30:1", sink.submitted[3].ImportID)

	for _, tx := range sink.submitted[1:] {
		assert.Same(t, sink.submitted[0].Payee, tx.Payee)
	}
	assert.False(t, sink.submitted[0].Payee.HasID())
	assert.Equal(t, 1, p.CallCount("Ask"))
}

func TestRun_InvalidTransactions(t *testing.T) {
	txs := []models.RawTransaction{
		{Account: "Checking", Date: day, Payee: "BOTH", Outflow: decimal.NewFromInt(1), Inflow: decimal.NewFromInt(1)},
		outflow("Checking", "ACME STORE", "5"),
		{Account: "Checking", Date: day, Payee: "NONE"},
	}

	t.Run("skip", func(t *testing.T) {
		pl, logger := newPipeline(&store.MockDecisionStore{}, &prompt.MockPrompter{}, DefaultOptions())
		sink := &recordingSink{}
		result, err := pl.Run(context.Background(), staticSource{txs: txs}, staticDirectory{{ID: "p1", Name: "Acme Store"}}, sink)
		require.NoError(t, err)

		assert.Len(t, sink.submitted, 1)
		require.Len(t, result.Skipped, 2)
		assert.Equal(t, 1, result.Skipped[0].Index)
		assert.Equal(t, 3, result.Skipped[1].Index)
		assert.Len(t, logger.GetEntriesByLevel("WARN"), 2)
	})

	t.Run("abort", func(t *testing.T) {
		opts := DefaultOptions()
		opts.OnInvalid = OnInvalidAbort
		pl, _ := newPipeline(&store.MockDecisionStore{}, &prompt.MockPrompter{}, opts)
		sink := &recordingSink{}
		_, err := pl.Run(context.Background(), staticSource{txs: txs}, staticDirectory{}, sink)

		var invalid *reconerror.InvalidTransactionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, 1, invalid.Index)
		assert.Nil(t, sink.submitted)
	})
}

func TestRun_FlushesOnResolutionFailure(t *testing.T) {
	s := &store.MockDecisionStore{}
	p := &prompt.MockPrompter{Answers: []string{"Fresh Market"}}
	pl, _ := newPipeline(s, p, DefaultOptions())
	sink := &recordingSink{}

	result, err := pl.Run(context.Background(), staticSource{txs: []models.RawTransaction{
		outflow("Checking", "FRESH MKT", "1"),
		outflow("Checking", "UNKNOWN PLACE", "2"),
	}}, staticDirectory{}, sink)

	var rerr *reconerror.ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.ErrorIs(t, err, prompt.ErrScriptExhausted)
	assert.Nil(t, sink.submitted)
	assert.Len(t, result.Resolved, 1)
	assert.Contains(t, s.Decisions, "FRESH MKT", "decision taken before the failure is saved")
}

func TestRun_FlushFailureDoesNotFailRun(t *testing.T) {
	s := &store.MockDecisionStore{SaveError: errors.New("read-only")}
	pl, logger := newPipeline(s, &prompt.MockPrompter{}, DefaultOptions())

	result, err := pl.Run(context.Background(),
		staticSource{txs: []models.RawTransaction{outflow("Checking", "ACME STORE", "1")}},
		staticDirectory{{ID: "p1", Name: "Acme Store"}},
		&recordingSink{})
	require.NoError(t, err)

	var perr *reconerror.PersistenceError
	assert.ErrorAs(t, result.FlushErr, &perr)
	assert.True(t, logger.HasEntry("ERROR", "Failed to persist payee decisions"))
	assert.Equal(t, false, finishedField(t, logger, "decisions_saved"))
}

func TestRun_SourceAndSinkErrors(t *testing.T) {
	boom := errors.New("boom")
	pl, _ := newPipeline(&store.MockDecisionStore{}, &prompt.MockPrompter{}, DefaultOptions())

	_, err := pl.Run(context.Background(), staticSource{err: boom}, staticDirectory{}, &recordingSink{})
	assert.ErrorIs(t, err, boom)

	_, err = pl.Run(context.Background(),
		staticSource{txs: []models.RawTransaction{outflow("Checking", "ACME STORE", "1")}},
		staticDirectory{{ID: "p1", Name: "Acme Store"}},
		&recordingSink{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pl, _ := newPipeline(&store.MockDecisionStore{}, &prompt.MockPrompter{}, DefaultOptions())

	_, err := pl.Run(ctx,
		staticSource{txs: []models.RawTransaction{outflow("Checking", "ACME STORE", "1")}},
		staticDirectory{},
		&recordingSink{})
	assert.ErrorIs(t, err, context.Canceled)
}

type stubResolver struct {
	payee *models.Payee
	seen  []string
}

func (s *stubResolver) Resolve(_ context.Context, normalized string) (resolver.Resolution, error) {
	s.seen = append(s.seen, normalized)
	return resolver.Resolution{Normalized: normalized, Payee: s.payee, State: resolver.StateAutoMatch}, nil
}

func TestProcess_NormalizesBeforeResolving(t *testing.T) {
	pl, _ := newPipeline(&store.MockDecisionStore{}, nil, DefaultOptions())
	r := &stubResolver{payee: &models.Payee{ID: "p9", Name: "Rappi"}}

	result, err := pl.Process(context.Background(), r, importid.NewGenerator(), []models.RawTransaction{
		outflow("Checking", "RAPPI*RESTAURANTE 4411", "120.50"),
		outflow("Checking", "00123456", "3"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Rappi", "00123456"}, r.seen)
	assert.Equal(t, int64(-120500), result.Resolved[0].AmountMilliunits)
	assert.Equal(t, "Checking", result.Resolved[0].AccountID, "unmapped accounts pass through")
}

func TestParseInvalidPolicy(t *testing.T) {
	p, err := ParseInvalidPolicy("ABORT")
	require.NoError(t, err)
	assert.Equal(t, OnInvalidAbort, p)

	p, err = ParseInvalidPolicy("")
	require.NoError(t, err)
	assert.Equal(t, OnInvalidSkip, p)

	_, err = ParseInvalidPolicy("retry")
	assert.Error(t, err)
}
