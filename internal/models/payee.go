package models

// Payee is a canonical transaction counterparty in the budget.
// An empty ID marks a payee that does not exist in the budget yet; the
// budgeting platform creates it when the first transaction naming it is submitted.
type Payee struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// HasID reports whether the payee already exists in the budget
func (p *Payee) HasID() bool {
	return p != nil && p.ID != ""
}

func (p *Payee) String() string {
	if p == nil {
		return ""
	}
	return p.Name
}
