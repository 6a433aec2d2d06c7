// Package bankdata reads already-tabulated bank transactions.
package bankdata

import (
	"context"
	"strings"

	"pepedou/budget-nanny/internal/common"
	"pepedou/budget-nanny/internal/currencyutils"
	"pepedou/budget-nanny/internal/dateutils"
	"pepedou/budget-nanny/internal/logging"
	"pepedou/budget-nanny/internal/models"
	"pepedou/budget-nanny/internal/reconerror"
)

// Row is one line of the bank transactions CSV.
type Row struct {
	Account string `csv:"account"`
	Date    string `csv:"date"`
	Payee   string `csv:"payee"`
	Outflow string `csv:"outflow"`
	Inflow  string `csv:"inflow"`
}

// CSVSource reads transactions from a CSV file with the columns
// account, date, payee, outflow, inflow.
type CSVSource struct {
	path   string
	logger logging.Logger
}

// NewCSVSource creates a source for the CSV file at path.
func NewCSVSource(path string, logger logging.Logger) *CSVSource {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &CSVSource{path: path, logger: logger}
}

// Transactions returns the file's rows in order. Blank rows are skipped.
// Amount precondition checks are left to the pipeline.
func (s *CSVSource) Transactions(ctx context.Context) ([]models.RawTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := common.ReadCSVFile[Row](s.path, s.logger)
	if err != nil {
		return nil, err
	}

	txs := make([]models.RawTransaction, 0, len(rows))
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		// header is line 1
		tx, err := ParseRow(row, s.path, i+2)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	s.logger.Info("Read bank transactions",
		logging.F(logging.FieldFile, s.path),
		logging.F(logging.FieldCount, len(txs)))
	return txs, nil
}

// ParseRow converts a CSV row into a RawTransaction.
func ParseRow(row Row, source string, line int) (models.RawTransaction, error) {
	date, _, err := dateutils.ParseDate(row.Date)
	if err != nil {
		return models.RawTransaction{}, &reconerror.ParseError{Source: source, Line: line, Field: "date", Value: row.Date, Err: err}
	}
	outflow, err := currencyutils.ParseUnsignedAmount(row.Outflow)
	if err != nil {
		return models.RawTransaction{}, &reconerror.ParseError{Source: source, Line: line, Field: "outflow", Value: row.Outflow, Err: err}
	}
	inflow, err := currencyutils.ParseUnsignedAmount(row.Inflow)
	if err != nil {
		return models.RawTransaction{}, &reconerror.ParseError{Source: source, Line: line, Field: "inflow", Value: row.Inflow, Err: err}
	}

	return models.RawTransaction{
		Account: strings.TrimSpace(row.Account),
		Date:    date,
		Payee:   strings.TrimSpace(row.Payee),
		Outflow: outflow,
		Inflow:  inflow,
	}, nil
}

func isBlank(row Row) bool {
	return strings.TrimSpace(row.Account+row.Date+row.Payee+row.Outflow+row.Inflow) == ""
}
