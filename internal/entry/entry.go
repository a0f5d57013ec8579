// Package entry validates records typed in by the user and turns them into
// ledger rows.
package entry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/theirongolddev/fintrack/internal/model"
)

// DateLayout is the accepted date format.
const DateLayout = "2006-01-02"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Record is one validated manual entry.
type Record interface {
	Ledger() model.Ledger
}

// Income is a manually entered income stream.
type Income struct {
	Type      string  `validate:"required"`
	Amount    float64 `validate:"gte=0"`
	Recurring bool
}

// Fixed is a manually entered monthly fixed expense.
type Fixed struct {
	Category string  `validate:"required"`
	Amount   float64 `validate:"gte=0"`
}

// Plan is a manually entered installment plan. Any input but the card may
// be left blank; the plan is then kept but not computed.
type Plan struct {
	Card   string   `validate:"required"`
	Amount *float64 `validate:"omitempty,gte=0"`
	Rate   *float64 `validate:"omitempty,gte=0"`
	Start  time.Time
	End    time.Time
	Paid   *int `validate:"omitempty,gte=0"`
}

// Expense is a manually entered dated expense.
type Expense struct {
	Category    string  `validate:"required"`
	PaymentType string  `validate:"omitempty"`
	Amount      float64 `validate:"gte=0"`
	Date        time.Time
}

// Loan is a manually entered term loan.
type Loan struct {
	Type     string  `validate:"required"`
	Total    float64 `validate:"gte=0"`
	Rate     float64 `validate:"gte=0"`
	Duration int     `validate:"gte=0"`
	EMI      float64 `validate:"gte=0"`
	EMIDate  time.Time
}

// Card is a manually entered credit card billing cycle.
type Card struct {
	Name        string `validate:"required"`
	BillingDate time.Time
	PeriodStart time.Time
	PeriodEnd   time.Time
	DueDate     time.Time
}

// Savings is a manually entered monthly savings goal.
type Savings struct {
	Month  string  `validate:"required"`
	Target float64 `validate:"gte=0"`
	Actual float64 `validate:"gte=0"`
	Notes  string
}

func (r Income) Ledger() model.Ledger {
	return model.Ledger{Income: []model.IncomeEntry{{Type: r.Type, Recurring: r.Recurring, Amount: r.Amount}}}
}

func (r Fixed) Ledger() model.Ledger {
	return model.Ledger{FixedExpenses: []model.FixedExpense{{Category: r.Category, MonthlyAmount: r.Amount}}}
}

func (r Plan) Ledger() model.Ledger {
	return model.Ledger{Plans: []model.InstallmentPlan{{
		CardName:          r.Card,
		InstallmentAmount: r.Amount,
		AnnualRatePercent: r.Rate,
		StartDate:         r.Start,
		EndDate:           r.End,
		InstallmentsPaid:  r.Paid,
	}}}
}

func (r Expense) Ledger() model.Ledger {
	return model.Ledger{VariableExpenses: []model.VariableExpense{{
		Category: r.Category, PaymentType: r.PaymentType, Amount: r.Amount, Date: r.Date,
	}}}
}

func (r Loan) Ledger() model.Ledger {
	return model.Ledger{Loans: []model.Loan{{
		Type: r.Type, TotalAmount: r.Total, RatePercent: r.Rate,
		DurationMonths: r.Duration, EMIAmount: r.EMI, EMIDate: r.EMIDate,
	}}}
}

func (r Card) Ledger() model.Ledger {
	return model.Ledger{CreditCards: []model.CreditCard{{
		Name: r.Name, BillingDate: r.BillingDate, PeriodStart: r.PeriodStart,
		PeriodEnd: r.PeriodEnd, DueDate: r.DueDate,
	}}}
}

func (r Savings) Ledger() model.Ledger {
	return model.Ledger{Savings: []model.SavingsGoal{{
		Month: r.Month, Target: r.Target, Actual: r.Actual, Notes: r.Notes,
	}}}
}

// Validate checks r's field rules and returns a readable error listing
// every failed field.
func Validate(r Record) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}

// ParseAmount parses an optional decimal amount. Blank input is nil.
func ParseAmount(s string) (*float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return &v, nil
}

// ParseCount parses an optional whole number. Blank input is nil.
func ParseCount(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return &v, nil
}

// ParseDate parses an optional YYYY-MM-DD date. Blank input is the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// ParseYesNo parses the ledger's Yes/No flag. Blank input is false.
func ParseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true":
		return true, nil
	case "no", "n", "false", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid yes/no value %q", s)
}
