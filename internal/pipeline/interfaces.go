package pipeline

import (
	"context"

	"pepedou/budget-nanny/internal/models"
	"pepedou/budget-nanny/internal/resolver"
)

// TransactionSource supplies raw bank transactions in processing order.
type TransactionSource interface {
	Transactions(ctx context.Context) ([]models.RawTransaction, error)
}

// PayeeDirectory supplies the budget's known payees.
type PayeeDirectory interface {
	Payees(ctx context.Context) ([]models.Payee, error)
}

// Sink receives the resolved transactions of a run.
type Sink interface {
	Submit(ctx context.Context, txs []models.ResolvedTransaction) error
}

// Resolver maps a normalized payee name to a canonical payee.
type Resolver interface {
	Resolve(ctx context.Context, normalized string) (resolver.Resolution, error)
}
