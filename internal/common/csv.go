// Package common provides the CSV plumbing shared by the bank-data source and
// the submission sink.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"pepedou/budget-nanny/internal/fileutils"
	"pepedou/budget-nanny/internal/logging"

	"github.com/gocarina/gocsv"
)

// Delimiter is the field separator used for CSV input and output
var Delimiter rune = ','

// SetDelimiter sets the field separator for CSV input and output
func SetDelimiter(delim rune) {
	Delimiter = delim
}

// ReadCSV decodes CSV rows with a header line into a slice of TCSVRow.
// TCSVRow fields are mapped with `csv:"column"` tags.
func ReadCSV[TCSVRow any](r io.Reader) ([]TCSVRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = Delimiter
	reader.TrimLeadingSpace = true

	var rows []TCSVRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadCSVFile reads CSV data into a slice of structs using gocsv
func ReadCSVFile[TCSVRow any](filePath string, logger logging.Logger) ([]TCSVRow, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	log := logger.WithField(logging.FieldFile, filePath)
	log.Debug("Reading CSV file")

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	rows, err := ReadCSV[TCSVRow](file)
	if err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	log.Debug("Successfully read CSV data", logging.F(logging.FieldCount, len(rows)))
	return rows, nil
}

// WriteCSV encodes rows with a header line.
func WriteCSV[TCSVRow any](rows []TCSVRow, w io.Writer) error {
	writer := csv.NewWriter(w)
	writer.Comma = Delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes rows to filePath, creating the parent directory if needed.
func WriteCSVFile[TCSVRow any](rows []TCSVRow, filePath string, logger logging.Logger) error {
	if logger == nil {
		logger = logging.GetLogger()
	}
	log := logger.WithFields(
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(rows)),
		logging.F(logging.FieldDelimiter, string(Delimiter)))

	file, err := fileutils.CreateFile(filePath)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := WriteCSV(rows, file); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	log.Debug("Successfully wrote CSV file")
	return nil
}
