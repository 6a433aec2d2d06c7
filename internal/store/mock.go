package store

import (
	"pepedou/budget-nanny/internal/models"
)

// MockDecisionStore is an in-memory decision store for testing.
type MockDecisionStore struct {
	Decisions map[string]*models.Payee

	// Error flags for testing error conditions
	LoadError error
	SaveError error

	// SaveCalls counts Save invocations, including failed ones.
	SaveCalls int
}

// Path returns a fixed dummy location.
func (m *MockDecisionStore) Path() string {
	return "/mock/payee_cache.yaml"
}

// Load returns a copy of the mock decisions.
func (m *MockDecisionStore) Load() (map[string]*models.Payee, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	result := make(map[string]*models.Payee, len(m.Decisions))
	for k, v := range m.Decisions {
		result[k] = v
	}
	return result, nil
}

// Save replaces the mock decisions.
func (m *MockDecisionStore) Save(decisions map[string]*models.Payee) error {
	m.SaveCalls++
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Decisions = make(map[string]*models.Payee, len(decisions))
	for k, v := range decisions {
		m.Decisions[k] = v
	}
	return nil
}
