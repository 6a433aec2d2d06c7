package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"pepedou/budget-nanny/internal/logging"
	"pepedou/budget-nanny/internal/models"
	"pepedou/budget-nanny/internal/reconerror"

	"gopkg.in/yaml.v3"
)

// PayeeDirectory is a YAML snapshot of the budget's payees, a list of {id, name}.
type PayeeDirectory struct {
	path   string
	logger logging.Logger
}

// NewPayeeDirectory creates a directory reader for path.
func NewPayeeDirectory(path string, logger logging.Logger) *PayeeDirectory {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &PayeeDirectory{path: path, logger: logger}
}

// Payees returns the payees in file order. A missing file is an empty
// directory: every name then resolves through the new-payee flow.
func (d *PayeeDirectory) Payees(ctx context.Context) ([]models.Payee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			d.logger.Warn("Payee directory not found, no known payees",
				logging.F(logging.FieldFile, d.path))
			return []models.Payee{}, nil
		}
		return nil, fmt.Errorf("error reading payee directory: %w", err)
	}

	var payees []models.Payee
	if err := yaml.Unmarshal(data, &payees); err != nil {
		return nil, fmt.Errorf("error parsing payee directory %s: %w", d.path, err)
	}

	seen := make(map[string]bool, len(payees))
	for i, p := range payees {
		if strings.TrimSpace(p.Name) == "" {
			return nil, &reconerror.ValidationError{
				FilePath: d.path,
				Reason:   fmt.Sprintf("payee #%d has no name", i+1),
			}
		}
		if p.ID == "" {
			continue
		}
		if seen[p.ID] {
			return nil, &reconerror.ValidationError{
				FilePath: d.path,
				Reason:   fmt.Sprintf("duplicate payee id %q", p.ID),
			}
		}
		seen[p.ID] = true
	}

	d.logger.Debug("Loaded payee directory",
		logging.F(logging.FieldCount, len(payees)),
		logging.F(logging.FieldFile, d.path))
	return payees, nil
}
