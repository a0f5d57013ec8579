// Package pipeline turns ledger snapshots into EMI-annotated plans, the
// monthly projection table, and the dashboard summaries.
package pipeline

import (
	"time"

	"github.com/theirongolddev/fintrack/internal/finance"
	"github.com/theirongolddev/fintrack/internal/model"
)

// DefaultReferenceYear anchors the month window when none is configured.
const DefaultReferenceYear = 2025

// DefaultTrendMonths is the length of the trailing leftover trend.
const DefaultTrendMonths = 6

// MonthWindow returns the first day of each month of year, January first.
// Only the month of each entry is used for matching.
func MonthWindow(year int) []time.Time {
	window := make([]time.Time, 12)
	for i := range window {
		window[i] = time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
	}
	return window
}

// Aggregate builds one projection row per window month, in window order.
// plans must already be amortized; only active plans count toward EMI.
func Aggregate(
	income []model.IncomeEntry,
	fixed []model.FixedExpense,
	plans []model.InstallmentPlan,
	variable []model.VariableExpense,
	loans []model.Loan,
	window []time.Time,
) []model.MonthlyProjectionRow {
	incomeSum := RecurringIncome(income)
	emiSum := ActiveEMI(plans)
	fixedSum := FixedTotal(fixed)
	loanSum := LoanEMITotal(loans)

	rows := make([]model.MonthlyProjectionRow, 0, len(window))
	for _, m := range window {
		expenses := VariableForMonth(variable, m.Month())
		rows = append(rows, model.MonthlyProjectionRow{
			Month:    m.Month(),
			Label:    m.Format("Jan"),
			Income:   incomeSum,
			EMI:      emiSum,
			Expenses: expenses,
			LoanEMI:  loanSum,
			Fixed:    fixedSum,
			Leftover: incomeSum - emiSum - expenses - loanSum - fixedSum,
		})
	}
	return rows
}

// RecurringIncome sums income entries marked recurring.
func RecurringIncome(income []model.IncomeEntry) float64 {
	var sum float64
	for _, e := range income {
		if e.Recurring {
			sum += e.Amount
		}
	}
	return sum
}

// ActiveEMI sums the installment amount of every active plan. Incomplete
// plans contribute nothing.
func ActiveEMI(plans []model.InstallmentPlan) float64 {
	var sum float64
	for _, p := range plans {
		if p.IsActive() && p.InstallmentAmount != nil {
			sum += *p.InstallmentAmount
		}
	}
	return sum
}

// FixedTotal sums all fixed monthly expenses.
func FixedTotal(fixed []model.FixedExpense) float64 {
	var sum float64
	for _, e := range fixed {
		sum += e.MonthlyAmount
	}
	return sum
}

// LoanEMITotal sums the EMI of every loan.
func LoanEMITotal(loans []model.Loan) float64 {
	var sum float64
	for _, l := range loans {
		sum += l.EMIAmount
	}
	return sum
}

// VariableForMonth sums variable expenses dated in month, in any year.
func VariableForMonth(variable []model.VariableExpense, month time.Month) float64 {
	var sum float64
	for _, e := range variable {
		if e.Date.IsZero() || e.Date.Month() != month {
			continue
		}
		sum += e.Amount
	}
	return sum
}

// Trailing returns the last n rows, or all rows when there are fewer.
func Trailing(rows []model.MonthlyProjectionRow, n int) []model.MonthlyProjectionRow {
	if n <= 0 {
		return nil
	}
	if n >= len(rows) {
		return rows
	}
	return rows[len(rows)-n:]
}

// AggregateOverview computes the home-screen metrics from amortized plans.
func AggregateOverview(l model.Ledger, plans []model.InstallmentPlan) model.Overview {
	ov := model.Overview{
		MonthlyIncome: RecurringIncome(l.Income),
		ActiveEMI:     ActiveEMI(plans),
		FixedExpenses: FixedTotal(l.FixedExpenses),
	}
	ov.Leftover = ov.MonthlyIncome - ov.ActiveEMI - ov.FixedExpenses

	for _, p := range plans {
		switch {
		case p.EMI == nil:
			ov.IncompletePlans++
		case p.EMI.Active:
			ov.ActivePlans++
		default:
			ov.ClosedPlans++
		}
	}
	return ov
}

// Breakdown splits monthly income into EMI, fixed and leftover slices for
// charting. A negative leftover is shown as zero.
func Breakdown(ov model.Overview) []model.BreakdownSlice {
	left := ov.Leftover
	if left < 0 {
		left = 0
	}
	return []model.BreakdownSlice{
		{Category: "EMI", Amount: ov.ActiveEMI},
		{Category: "Fixed", Amount: ov.FixedExpenses},
		{Category: "Leftover", Amount: left},
	}
}

// Compute runs the full recomputation for a snapshot: normalize and
// amortize plans, then build the overview and the annual table.
func Compute(l model.Ledger, year int) model.Report {
	if year <= 0 {
		year = DefaultReferenceYear
	}
	plans := finance.Process(l.Plans)
	ov := AggregateOverview(l, plans)

	return model.Report{
		Plans:     plans,
		Overview:  ov,
		Breakdown: Breakdown(ov),
		Annual:    Aggregate(l.Income, l.FixedExpenses, plans, l.VariableExpenses, l.Loans, MonthWindow(year)),
	}
}
