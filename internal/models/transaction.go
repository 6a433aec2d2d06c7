// Package models provides the data structures shared by the reconciliation components.
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ISODateLayout is the date layout used in import identities and CSV output
const ISODateLayout = "2006-01-02"

// Amount precondition violations reported by RawTransaction.Validate
var (
	ErrBothAmounts    = errors.New("both outflow and inflow are non-zero")
	ErrNoAmount       = errors.New("neither outflow nor inflow is set")
	ErrNegativeAmount = errors.New("outflow and inflow must not be negative")
)

// RawTransaction is one bank statement line as handed over by the bank-data source.
// Exactly one of Outflow and Inflow is non-zero.
type RawTransaction struct {
	Account string
	Date    time.Time
	Payee   string
	Outflow decimal.Decimal
	Inflow  decimal.Decimal
}

// ISODate returns the transaction date as YYYY-MM-DD
func (t RawTransaction) ISODate() string {
	return t.Date.Format(ISODateLayout)
}

// Validate checks the outflow/inflow precondition
func (t RawTransaction) Validate() error {
	if t.Outflow.IsNegative() || t.Inflow.IsNegative() {
		return ErrNegativeAmount
	}
	hasOutflow := !t.Outflow.IsZero()
	hasInflow := !t.Inflow.IsZero()
	switch {
	case hasOutflow && hasInflow:
		return ErrBothAmounts
	case !hasOutflow && !hasInflow:
		return ErrNoAmount
	}
	return nil
}

// SignedAmount returns the inflow, or the negated outflow.
// Callers must Validate first.
func (t RawTransaction) SignedAmount() decimal.Decimal {
	if !t.Outflow.IsZero() {
		return t.Outflow.Neg()
	}
	return t.Inflow
}

// ResolvedTransaction is a RawTransaction with its canonical payee, signed
// milliunit amount and import identity attached. It is what the submission
// sink receives.
type ResolvedTransaction struct {
	Raw              RawTransaction
	AccountID        string
	NormalizedPayee  string
	Payee            *Payee
	ResolvedBy       string
	AmountMilliunits int64
	ImportID         string
	Memo             string
}

func (t ResolvedTransaction) String() string {
	return fmt.Sprintf("%s %q $%s", t.ImportID, t.Payee.String(), FormatMilliunits(t.AmountMilliunits))
}
