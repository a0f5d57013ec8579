package model

import "time"

// MonthlyProjectionRow is one month of the annual projection table.
type MonthlyProjectionRow struct {
	Month    time.Month `json:"month"`
	Label    string     `json:"label"`
	Income   float64    `json:"income"`
	EMI      float64    `json:"emi"`
	Expenses float64    `json:"expenses"`
	LoanEMI  float64    `json:"loan_emi"`
	Fixed    float64    `json:"fixed"`
	Leftover float64    `json:"leftover"`
}

// Overview holds the home-screen monthly metrics. Its leftover ignores
// loans and variable expenses.
type Overview struct {
	MonthlyIncome   float64 `json:"monthly_income"`
	ActiveEMI       float64 `json:"active_emi"`
	FixedExpenses   float64 `json:"fixed_expenses"`
	Leftover        float64 `json:"leftover"`
	ActivePlans     int     `json:"active_plans"`
	ClosedPlans     int     `json:"closed_plans"`
	IncompletePlans int     `json:"incomplete_plans"`
}

// BreakdownSlice is one slice of the expense breakdown chart.
type BreakdownSlice struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// ScheduleEntry is one installment of a plan's amortization schedule.
type ScheduleEntry struct {
	Installment int     `json:"installment"`
	Principal   float64 `json:"principal"`
	Interest    float64 `json:"interest"`
	Paid        bool    `json:"paid"`
}

// Report is the full recomputation result for one ledger snapshot.
type Report struct {
	Plans     []InstallmentPlan      `json:"-"`
	Overview  Overview               `json:"overview"`
	Breakdown []BreakdownSlice       `json:"breakdown"`
	Annual    []MonthlyProjectionRow `json:"annual"`
}
