// Package store provides the YAML-backed persistence used across runs:
// the payee decision file, the alias table and the payee directory snapshot.
package store

import (
	"bytes"
	"errors"
	"os"
	"strings"

	"pepedou/budget-nanny/internal/fileutils"
	"pepedou/budget-nanny/internal/logging"
	"pepedou/budget-nanny/internal/models"
	"pepedou/budget-nanny/internal/reconerror"

	"gopkg.in/yaml.v3"
)

// decisionRecord is the on-disk form of one cached decision. A nil ID means
// the payee had not been created in the budget when the decision was taken.
type decisionRecord struct {
	ID   *string `yaml:"id"`
	Name string  `yaml:"name"`
}

// DecisionStore reads and writes the normalized-name -> payee decisions file.
type DecisionStore struct {
	path   string
	logger logging.Logger
}

// NewDecisionStore creates a store for the decisions file at path.
func NewDecisionStore(path string, logger logging.Logger) *DecisionStore {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &DecisionStore{path: path, logger: logger}
}

// Path returns the decisions file location.
func (s *DecisionStore) Path() string {
	return s.path
}

// Load reads the decisions file. A missing or empty file yields an empty map.
// Entries naming the same payee share one *models.Payee.
func (s *DecisionStore) Load() (map[string]*models.Payee, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Decision file not found, starting with an empty cache",
				logging.F(logging.FieldFile, s.path))
			return map[string]*models.Payee{}, nil
		}
		return nil, &reconerror.PersistenceError{Path: s.path, Op: "read", Err: err}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		s.logger.Warn("Decision file is empty, starting with an empty cache",
			logging.F(logging.FieldFile, s.path))
		return map[string]*models.Payee{}, nil
	}

	var records map[string]decisionRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, &reconerror.PersistenceError{Path: s.path, Op: "parse", Err: err}
	}

	decisions := make(map[string]*models.Payee, len(records))
	shared := make(map[string]*models.Payee)
	for name, rec := range records {
		if strings.TrimSpace(rec.Name) == "" {
			s.logger.Warn("Skipping decision without payee name",
				logging.F(logging.FieldNormalized, name),
				logging.F(logging.FieldFile, s.path))
			continue
		}
		key := "name:" + strings.ToLower(rec.Name)
		id := ""
		if rec.ID != nil && *rec.ID != "" {
			id = *rec.ID
			key = "id:" + id
		}
		payee, ok := shared[key]
		if !ok {
			payee = &models.Payee{ID: id, Name: rec.Name}
			shared[key] = payee
		}
		decisions[name] = payee
	}

	s.logger.Debug("Loaded payee decisions",
		logging.F(logging.FieldCount, len(decisions)),
		logging.F(logging.FieldFile, s.path))
	return decisions, nil
}

// Save writes the full decisions map, creating the parent directory if needed.
func (s *DecisionStore) Save(decisions map[string]*models.Payee) error {
	records := make(map[string]decisionRecord, len(decisions))
	for name, payee := range decisions {
		if payee == nil {
			continue
		}
		rec := decisionRecord{Name: payee.Name}
		if payee.HasID() {
			id := payee.ID
			rec.ID = &id
		}
		records[name] = rec
	}

	data, err := yaml.Marshal(records)
	if err != nil {
		return &reconerror.PersistenceError{Path: s.path, Op: "encode", Err: err}
	}

	if err := fileutils.WriteFileAtomic(s.path, data, 0644); err != nil {
		return &reconerror.PersistenceError{Path: s.path, Op: "write", Err: err}
	}

	s.logger.Debug("Saved payee decisions",
		logging.F(logging.FieldCount, len(records)),
		logging.F(logging.FieldFile, s.path))
	return nil
}
