// Package submission hands resolved transactions to the budgeting platform.
// The CSV sink writes the payload that would be posted, one row per transaction.
package submission

import (
	"context"
	"io"

	"pepedou/budget-nanny/internal/common"
	"pepedou/budget-nanny/internal/logging"
	"pepedou/budget-nanny/internal/models"
)

// DefaultPayeeNameLimit is the longest payee name the platform accepts.
const DefaultPayeeNameLimit = 50

// Record is the submission payload of one transaction.
type Record struct {
	AccountID string `csv:"account_id"`
	Date      string `csv:"date"`
	Amount    int64  `csv:"amount"`
	PayeeID   string `csv:"payee_id"`
	PayeeName string `csv:"payee_name"`
	Memo      string `csv:"memo"`
	Cleared   string `csv:"cleared"`
	Approved  bool   `csv:"approved"`
	ImportID  string `csv:"import_id"`
}

// NewRecord builds the payload for tx. An existing payee is referenced by
// id; a new one by name, truncated to nameLimit runes.
func NewRecord(tx models.ResolvedTransaction, nameLimit int) Record {
	rec := Record{
		AccountID: tx.AccountID,
		Date:      tx.Raw.ISODate(),
		Amount:    tx.AmountMilliunits,
		Memo:      tx.Memo,
		Cleared:   "cleared",
		Approved:  false,
		ImportID:  tx.ImportID,
	}
	if tx.Payee.HasID() {
		rec.PayeeID = tx.Payee.ID
	}
	rec.PayeeName = Truncate(tx.Payee.String(), nameLimit)
	return rec
}

// Truncate cuts s to at most limit runes. A limit <= 0 disables truncation.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// CSVSink writes submission records as CSV to a file, or to a writer.
type CSVSink struct {
	path      string
	out       io.Writer
	nameLimit int
	logger    logging.Logger
}

// NewCSVSink creates a sink writing to path.
func NewCSVSink(path string, nameLimit int, logger logging.Logger) *CSVSink {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &CSVSink{path: path, nameLimit: nameLimit, logger: logger}
}

// NewWriterSink creates a sink writing to out.
func NewWriterSink(out io.Writer, nameLimit int, logger logging.Logger) *CSVSink {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &CSVSink{out: out, nameLimit: nameLimit, logger: logger}
}

// Submit writes every transaction in order.
func (s *CSVSink) Submit(ctx context.Context, txs []models.ResolvedTransaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records := make([]Record, 0, len(txs))
	for _, tx := range txs {
		records = append(records, NewRecord(tx, s.nameLimit))
	}

	if s.out != nil {
		if err := common.WriteCSV(records, s.out); err != nil {
			return err
		}
	} else if err := common.WriteCSVFile(records, s.path, s.logger); err != nil {
		return err
	}

	s.logger.Info("Submitted resolved transactions",
		logging.F(logging.FieldOutputFile, s.path),
		logging.F(logging.FieldCount, len(records)))
	return nil
}
