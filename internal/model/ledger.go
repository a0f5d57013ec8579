// Package model defines the ledger records and derived report types for fintrack.
package model

import "time"

// InstallmentPlan is one credit-card EMI plan. Rate, paid count and amount
// are pointers because the data-entry surface may leave them blank.
// Duration and EMI are derived and owned by the finance engine.
type InstallmentPlan struct {
	ID                string
	Source            string
	CardName          string
	InstallmentAmount *float64
	AnnualRatePercent *float64
	StartDate         time.Time
	EndDate           time.Time
	InstallmentsPaid  *int

	Duration *int
	EMI      *EMIBreakdown
}

// EMIBreakdown holds the derived financial fields of a plan. It is either
// fully populated or absent; there is no partial state.
type EMIBreakdown struct {
	PrincipalComponent float64 `json:"principal_component"`
	InterestComponent  float64 `json:"interest_component"`
	ForeclosureCharge  float64 `json:"foreclosure_charge"`
	ForeclosurePayoff  float64 `json:"foreclosure_payoff"`
	Active             bool    `json:"active"`
}

// IsActive reports whether the plan has a computed breakdown and is still running.
func (p InstallmentPlan) IsActive() bool {
	return p.EMI != nil && p.EMI.Active
}

// IncomeEntry is one income stream.
type IncomeEntry struct {
	ID        string
	Source    string
	Type      string
	Recurring bool
	Amount    float64
}

// FixedExpense is charged in full every month.
type FixedExpense struct {
	ID            string
	Source        string
	Category      string
	MonthlyAmount float64
}

// VariableExpense is a dated one-off expense.
type VariableExpense struct {
	ID          string
	Source      string
	Category    string
	PaymentType string
	Amount      float64
	Date        time.Time
}

// Loan is a term loan. Only EMIAmount feeds the projection.
type Loan struct {
	ID             string
	Source         string
	Type           string
	TotalAmount    float64
	RatePercent    float64
	DurationMonths int
	EMIAmount      float64
	EMIDate        time.Time
}

// CreditCard holds billing-cycle dates for a card.
type CreditCard struct {
	ID          string
	Source      string
	Name        string
	BillingDate time.Time
	PeriodStart time.Time
	PeriodEnd   time.Time
	DueDate     time.Time
}

// SavingsGoal tracks a monthly savings target against what was actually saved.
type SavingsGoal struct {
	ID     string
	Source string
	Month  string
	Target float64
	Actual float64
	Notes  string
}

// Ledger is a full snapshot of every table the user maintains.
type Ledger struct {
	Income           []IncomeEntry
	FixedExpenses    []FixedExpense
	Plans            []InstallmentPlan
	VariableExpenses []VariableExpense
	Loans            []Loan
	CreditCards      []CreditCard
	Savings          []SavingsGoal
}

// Merge appends every table of other onto a copy of l.
func (l Ledger) Merge(other Ledger) Ledger {
	return Ledger{
		Income:           append(append([]IncomeEntry(nil), l.Income...), other.Income...),
		FixedExpenses:    append(append([]FixedExpense(nil), l.FixedExpenses...), other.FixedExpenses...),
		Plans:            append(append([]InstallmentPlan(nil), l.Plans...), other.Plans...),
		VariableExpenses: append(append([]VariableExpense(nil), l.VariableExpenses...), other.VariableExpenses...),
		Loans:            append(append([]Loan(nil), l.Loans...), other.Loans...),
		CreditCards:      append(append([]CreditCard(nil), l.CreditCards...), other.CreditCards...),
		Savings:          append(append([]SavingsGoal(nil), l.Savings...), other.Savings...),
	}
}

// Len returns the total number of records across all tables.
func (l Ledger) Len() int {
	return len(l.Income) + len(l.FixedExpenses) + len(l.Plans) +
		len(l.VariableExpenses) + len(l.Loans) + len(l.CreditCards) + len(l.Savings)
}
