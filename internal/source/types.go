package source

import (
	"fmt"
	"strings"
	"time"
)

// Workbook is the on-disk layout of one TOML ledger file. Each array of
// tables maps to one ledger table.
type Workbook struct {
	Income        []RawIncome       `toml:"income"`
	FixedExpenses []RawFixedExpense `toml:"fixed_expense"`
	Plans         []RawPlan         `toml:"emi"`
	Expenses      []RawExpense      `toml:"expense"`
	Loans         []RawLoan         `toml:"loan"`
	CreditCards   []RawCreditCard   `toml:"credit_card"`
	Savings       []RawSavings      `toml:"savings"`
}

// RawIncome is an [[income]] entry.
type RawIncome struct {
	Type      string  `toml:"type"`
	Recurring YesNo   `toml:"recurring"`
	Amount    float64 `toml:"amount"`
}

// RawFixedExpense is a [[fixed_expense]] entry.
type RawFixedExpense struct {
	Category      string  `toml:"category"`
	MonthlyAmount float64 `toml:"monthly_amount"`
}

// RawPlan is an [[emi]] entry. Blank numeric fields stay nil.
type RawPlan struct {
	CardName          string   `toml:"card_name"`
	InstallmentAmount *float64 `toml:"emi_amount"`
	InterestPercent   *float64 `toml:"interest_percent"`
	StartDate         Date     `toml:"start_date"`
	EndDate           Date     `toml:"end_date"`
	Paid              *int     `toml:"paid"`
}

// RawExpense is an [[expense]] entry (a dated variable expense).
type RawExpense struct {
	Category    string  `toml:"category"`
	PaymentType string  `toml:"payment_type"`
	Amount      float64 `toml:"amount"`
	Date        Date    `toml:"date"`
}

// RawLoan is a [[loan]] entry.
type RawLoan struct {
	Type            string  `toml:"type"`
	Total           float64 `toml:"total"`
	InterestPercent float64 `toml:"interest_percent"`
	DurationMonths  int     `toml:"duration"`
	EMI             float64 `toml:"emi"`
	EMIDate         Date    `toml:"emi_date"`
}

// RawCreditCard is a [[credit_card]] entry.
type RawCreditCard struct {
	Name        string `toml:"name"`
	BillingDate Date   `toml:"billing_date"`
	PeriodStart Date   `toml:"period_start"`
	PeriodEnd   Date   `toml:"period_end"`
	DueDate     Date   `toml:"due_date"`
}

// RawSavings is a [[savings]] entry.
type RawSavings struct {
	Month  string  `toml:"month"`
	Target float64 `toml:"target"`
	Actual float64 `toml:"actual"`
	Notes  string  `toml:"notes"`
}

// DiscoveredFile is a workbook found during directory scanning.
type DiscoveredFile struct {
	Path string
	Name string // file name without extension
}

// DateLayout is the accepted string form for dates.
const DateLayout = "2006-01-02"

// Date accepts either a native TOML date or a "YYYY-MM-DD" string. A value
// that cannot be read is kept as Invalid rather than failing the whole file.
type Date struct {
	Time    time.Time
	Invalid bool
}

// UnmarshalTOML implements toml.Unmarshaler.
func (d *Date) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case time.Time:
		y, m, day := val.Date()
		d.Time = time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			d.Invalid = true
			return nil
		}
		d.Time = t
	default:
		d.Invalid = true
	}
	return nil
}

// YesNo accepts a boolean or the strings "Yes"/"No" (any case).
type YesNo bool

// UnmarshalTOML implements toml.Unmarshaler.
func (y *YesNo) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case bool:
		*y = YesNo(val)
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "yes", "y", "true":
			*y = true
		case "no", "n", "false", "":
			*y = false
		default:
			return fmt.Errorf("recurring: want yes/no, got %q", val)
		}
	default:
		return fmt.Errorf("recurring: want yes/no, got %T", v)
	}
	return nil
}
