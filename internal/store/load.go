package store

import (
	"database/sql"
	"time"

	"github.com/theirongolddev/fintrack/internal/model"
)

// LoadLedger reads every table. Rows come back grouped by source in
// insertion order, manual rows first.
func (s *Ledger) LoadLedger() (model.Ledger, error) {
	var l model.Ledger
	var err error

	if l.Income, err = s.loadIncome(); err != nil {
		return l, err
	}
	if l.FixedExpenses, err = s.loadFixed(); err != nil {
		return l, err
	}
	if l.Plans, err = s.loadPlans(); err != nil {
		return l, err
	}
	if l.VariableExpenses, err = s.loadExpenses(); err != nil {
		return l, err
	}
	if l.Loans, err = s.loadLoans(); err != nil {
		return l, err
	}
	if l.CreditCards, err = s.loadCards(); err != nil {
		return l, err
	}
	if l.Savings, err = s.loadSavings(); err != nil {
		return l, err
	}
	return l, nil
}

func (s *Ledger) loadIncome() ([]model.IncomeEntry, error) {
	rows, err := s.db.Query(`SELECT id, source, type, recurring, amount
		FROM income ORDER BY source, rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.IncomeEntry
	for rows.Next() {
		var r model.IncomeEntry
		var recurring int
		if err := rows.Scan(&r.ID, &r.Source, &r.Type, &recurring, &r.Amount); err != nil {
			return nil, err
		}
		r.Recurring = recurring != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Ledger) loadFixed() ([]model.FixedExpense, error) {
	rows, err := s.db.Query(`SELECT id, source, category, monthly_amount
		FROM fixed_expenses ORDER BY source, rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.FixedExpense
	for rows.Next() {
		var r model.FixedExpense
		if err := rows.Scan(&r.ID, &r.Source, &r.Category, &r.MonthlyAmount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Ledger) loadPlans() ([]model.InstallmentPlan, error) {
	rows, err := s.db.Query(`SELECT id, source, card_name, emi_amount, interest_percent,
		start_date, end_date, paid
		FROM installment_plans ORDER BY source, rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.InstallmentPlan
	for rows.Next() {
		var r model.InstallmentPlan
		var amount, rate sql.NullFloat64
		var start, end sql.NullString
		var paid sql.NullInt64
		if err := rows.Scan(&r.ID, &r.Source, &r.CardName, &amount, &rate, &start, &end, &paid); err != nil {
			return nil, err
		}
		r.InstallmentAmount = floatPtr(amount)
		r.AnnualRatePercent = floatPtr(rate)
		r.StartDate = parseDate(start)
		r.EndDate = parseDate(end)
		if paid.Valid {
			n := int(paid.Int64)
			r.InstallmentsPaid = &n
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Ledger) loadExpenses() ([]model.VariableExpense, error) {
	rows, err := s.db.Query(`SELECT id, source, category, payment_type, amount, date
		FROM variable_expenses ORDER BY source, rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.VariableExpense
	for rows.Next() {
		var r model.VariableExpense
		var paymentType, date sql.NullString
		if err := rows.Scan(&r.ID, &r.Source, &r.Category, &paymentType, &r.Amount, &date); err != nil {
			return nil, err
		}
		r.PaymentType = paymentType.String
		r.Date = parseDate(date)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Ledger) loadLoans() ([]model.Loan, error) {
	rows, err := s.db.Query(`SELECT id, source, type, total_amount, interest_percent,
		duration_months, emi_amount, emi_date
		FROM loans ORDER BY source, rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Loan
	for rows.Next() {
		var r model.Loan
		var emiDate sql.NullString
		if err := rows.Scan(&r.ID, &r.Source, &r.Type, &r.TotalAmount, &r.RatePercent,
			&r.DurationMonths, &r.EMIAmount, &emiDate); err != nil {
			return nil, err
		}
		r.EMIDate = parseDate(emiDate)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Ledger) loadCards() ([]model.CreditCard, error) {
	rows, err := s.db.Query(`SELECT id, source, name, billing_date, period_start, period_end, due_date
		FROM credit_cards ORDER BY source, rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.CreditCard
	for rows.Next() {
		var r model.CreditCard
		var billing, start, end, due sql.NullString
		if err := rows.Scan(&r.ID, &r.Source, &r.Name, &billing, &start, &end, &due); err != nil {
			return nil, err
		}
		r.BillingDate = parseDate(billing)
		r.PeriodStart = parseDate(start)
		r.PeriodEnd = parseDate(end)
		r.DueDate = parseDate(due)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Ledger) loadSavings() ([]model.SavingsGoal, error) {
	rows, err := s.db.Query(`SELECT id, source, month, target, actual, notes
		FROM savings ORDER BY source, rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.SavingsGoal
	for rows.Next() {
		var r model.SavingsGoal
		var notes sql.NullString
		if err := rows.Scan(&r.ID, &r.Source, &r.Month, &r.Target, &r.Actual, &notes); err != nil {
			return nil, err
		}
		r.Notes = notes.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func parseDate(v sql.NullString) time.Time {
	if !v.Valid || v.String == "" {
		return time.Time{}
	}
	t, _ := time.Parse(dateLayout, v.String)
	return t
}
