// Package reconerror defines the typed errors raised while reconciling bank
// transactions against the payee directory.
package reconerror

import (
	"errors"
	"fmt"
)

// ErrEmptyAnswer is returned by prompters when the human gave no answer
// where one is required.
var ErrEmptyAnswer = errors.New("empty answer")

// ParseError represents a bank-data field that could not be parsed
type ParseError struct {
	Source string
	Line   int
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: failed to parse %s='%s': %v",
			e.Source, e.Line, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Source, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidTransactionError reports a raw transaction whose amounts break the
// outflow/inflow precondition. The record is never partially processed.
type InvalidTransactionError struct {
	Index   int
	Account string
	Date    string
	Payee   string
	Reason  string
}

func (e *InvalidTransactionError) Error() string {
	return fmt.Sprintf("invalid transaction #%d (%s, %s, %q): %s",
		e.Index, e.Account, e.Date, e.Payee, e.Reason)
}

// PersistenceError represents a failure to read or write the decision store
type PersistenceError struct {
	Path string
	Op   string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("decision store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ResolutionError represents a payee that could not be resolved, usually
// because the human-decision collaborator failed or the run was cancelled.
type ResolutionError struct {
	Name  string
	Stage string
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving payee %q during %s: %v", e.Name, e.Stage, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// ValidationError represents an invalid input file or configuration value
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}
