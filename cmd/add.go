package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/fintrack/internal/entry"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/store"
)

// addField is one input of an add subcommand, bound to a flag and to a
// form field.
type addField struct {
	flag     string
	title    string
	help     string
	required bool
}

// addForm describes one add subcommand. build turns the raw inputs into a
// record; entry.Validate checks it afterwards.
type addForm struct {
	kind   store.Kind
	short  string
	fields []addField
	build  func(v addValues) (entry.Record, error)
}

// addValues holds raw inputs by flag name.
type addValues map[string]*string

func (v addValues) get(flag string) string {
	if p, ok := v[flag]; ok && p != nil {
		return strings.TrimSpace(*p)
	}
	return ""
}

// amount parses an optional amount; blank reads as zero.
func (v addValues) amount(flag string) (float64, error) {
	p, err := entry.ParseAmount(v.get(flag))
	if err != nil || p == nil {
		return 0, wrapField(flag, err)
	}
	return *p, nil
}

func (v addValues) date(flag string) (time.Time, error) {
	t, err := entry.ParseDate(v.get(flag))
	return t, wrapField(flag, err)
}

func wrapField(flag string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("--%s: %w", flag, err)
}

var addForms = []addForm{
	{
		kind:  store.KindIncome,
		short: "Add an income stream",
		fields: []addField{
			{flag: "type", title: "Type", help: "e.g. Salary, Rent, Dividend", required: true},
			{flag: "amount", title: "Amount", required: true},
			{flag: "recurring", title: "Recurring (yes/no)", help: "only recurring income counts toward the monthly figure"},
		},
		build: func(v addValues) (entry.Record, error) {
			amount, err := v.amount("amount")
			if err != nil {
				return nil, err
			}
			recurring, err := entry.ParseYesNo(v.get("recurring"))
			if err != nil {
				return nil, wrapField("recurring", err)
			}
			return entry.Income{Type: v.get("type"), Amount: amount, Recurring: recurring}, nil
		},
	},
	{
		kind:  store.KindFixed,
		short: "Add a monthly fixed expense",
		fields: []addField{
			{flag: "category", title: "Category", help: "e.g. Rent, Utilities, Insurance", required: true},
			{flag: "amount", title: "Monthly amount", required: true},
		},
		build: func(v addValues) (entry.Record, error) {
			amount, err := v.amount("amount")
			if err != nil {
				return nil, err
			}
			return entry.Fixed{Category: v.get("category"), Amount: amount}, nil
		},
	},
	{
		kind:  store.KindEMI,
		short: "Add a credit-card installment plan",
		fields: []addField{
			{flag: "card", title: "Card name", required: true},
			{flag: "amount", title: "EMI amount", help: "leave blank if unknown"},
			{flag: "rate", title: "Annual interest %", help: "leave blank if unknown"},
			{flag: "start", title: "Start date", help: "YYYY-MM-DD"},
			{flag: "end", title: "End date", help: "YYYY-MM-DD"},
			{flag: "paid", title: "Installments paid", help: "leave blank if unknown"},
		},
		build: func(v addValues) (entry.Record, error) {
			var p entry.Plan
			var err error
			p.Card = v.get("card")
			if p.Amount, err = entry.ParseAmount(v.get("amount")); err != nil {
				return nil, wrapField("amount", err)
			}
			if p.Rate, err = entry.ParseAmount(v.get("rate")); err != nil {
				return nil, wrapField("rate", err)
			}
			if p.Paid, err = entry.ParseCount(v.get("paid")); err != nil {
				return nil, wrapField("paid", err)
			}
			start, err := v.date("start")
			if err != nil {
				return nil, err
			}
			end, err := v.date("end")
			if err != nil {
				return nil, err
			}
			p.Start, p.End = start, end
			return p, nil
		},
	},
	{
		kind:  store.KindExpense,
		short: "Add a dated variable expense",
		fields: []addField{
			{flag: "category", title: "Category", required: true},
			{flag: "amount", title: "Amount", required: true},
			{flag: "date", title: "Date", help: "YYYY-MM-DD", required: true},
			{flag: "payment-type", title: "Payment type", help: "e.g. Card, UPI, Cash"},
		},
		build: func(v addValues) (entry.Record, error) {
			amount, err := v.amount("amount")
			if err != nil {
				return nil, err
			}
			d, err := v.date("date")
			if err != nil {
				return nil, err
			}
			return entry.Expense{Category: v.get("category"), PaymentType: v.get("payment-type"), Amount: amount, Date: d}, nil
		},
	},
	{
		kind:  store.KindLoan,
		short: "Add a term loan",
		fields: []addField{
			{flag: "type", title: "Loan type", help: "e.g. Home, Car, Personal", required: true},
			{flag: "total", title: "Total amount"},
			{flag: "rate", title: "Annual interest %"},
			{flag: "duration", title: "Duration (months)"},
			{flag: "emi", title: "Monthly EMI", required: true},
			{flag: "emi-date", title: "EMI date", help: "YYYY-MM-DD"},
		},
		build: func(v addValues) (entry.Record, error) {
			var l entry.Loan
			var err error
			l.Type = v.get("type")
			if l.Total, err = v.amount("total"); err != nil {
				return nil, err
			}
			if l.Rate, err = v.amount("rate"); err != nil {
				return nil, err
			}
			if l.EMI, err = v.amount("emi"); err != nil {
				return nil, err
			}
			months, err := entry.ParseCount(v.get("duration"))
			if err != nil {
				return nil, wrapField("duration", err)
			}
			if months != nil {
				l.Duration = *months
			}
			d, err := v.date("emi-date")
			if err != nil {
				return nil, err
			}
			l.EMIDate = d
			return l, nil
		},
	},
	{
		kind:  store.KindCard,
		short: "Add a credit card billing cycle",
		fields: []addField{
			{flag: "name", title: "Card name", required: true},
			{flag: "billing-date", title: "Billing date", help: "YYYY-MM-DD"},
			{flag: "period-start", title: "Statement period start", help: "YYYY-MM-DD"},
			{flag: "period-end", title: "Statement period end", help: "YYYY-MM-DD"},
			{flag: "due-date", title: "Due date", help: "YYYY-MM-DD"},
		},
		build: func(v addValues) (entry.Record, error) {
			c := entry.Card{Name: v.get("name")}
			for flag, dst := range map[string]*time.Time{
				"billing-date": &c.BillingDate,
				"period-start": &c.PeriodStart,
				"period-end":   &c.PeriodEnd,
				"due-date":     &c.DueDate,
			} {
				d, err := v.date(flag)
				if err != nil {
					return nil, err
				}
				*dst = d
			}
			return c, nil
		},
	},
	{
		kind:  store.KindSavings,
		short: "Add a monthly savings goal",
		fields: []addField{
			{flag: "month", title: "Month", help: "e.g. Jan", required: true},
			{flag: "target", title: "Target"},
			{flag: "actual", title: "Actual"},
			{flag: "notes", title: "Notes"},
		},
		build: func(v addValues) (entry.Record, error) {
			target, err := v.amount("target")
			if err != nil {
				return nil, err
			}
			actual, err := v.amount("actual")
			if err != nil {
				return nil, err
			}
			return entry.Savings{Month: v.get("month"), Target: target, Actual: actual, Notes: v.get("notes")}, nil
		},
	},
}

var addCmd = &cobra.Command{
	Use:   "add KIND",
	Short: "Add a record to the SQLite ledger",
}

func init() {
	for _, af := range addForms {
		addCmd.AddCommand(newAddCmd(af))
	}
	rootCmd.AddCommand(addCmd)
}

func newAddCmd(af addForm) *cobra.Command {
	values := make(addValues, len(af.fields))
	var interactive bool

	c := &cobra.Command{
		Use:   string(af.kind),
		Short: af.short,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if interactive {
				if err := runAddForm(af, values); err != nil {
					return err
				}
			}
			return runAdd(af, values)
		},
	}
	for _, f := range af.fields {
		values[f.flag] = c.Flags().String(f.flag, "", f.title)
	}
	c.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill the record in a form")
	return c
}

// buildRecord parses and validates raw inputs.
func buildRecord(af addForm, values addValues) (entry.Record, error) {
	for _, f := range af.fields {
		if f.required && values.get(f.flag) == "" {
			return nil, fmt.Errorf("--%s is required", f.flag)
		}
	}
	rec, err := af.build(values)
	if err != nil {
		return nil, err
	}
	if err := entry.Validate(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func runAdd(af addForm, values addValues) error {
	rec, err := buildRecord(af, values)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	stored, err := db.Insert(rec.Ledger())
	if err != nil {
		return fmt.Errorf("saving %s: %w", af.kind, err)
	}

	id := firstID(af.kind, stored)
	logger.Debug("record added", zap.String("kind", string(af.kind)), zap.String("id", id))
	fmt.Printf("  Added %s %s\n", af.kind, shortID(id))
	return nil
}

// runAddForm prompts for every field, prefilled from flags.
func runAddForm(af addForm, values addValues) error {
	inputs := make([]huh.Field, 0, len(af.fields))
	for _, f := range af.fields {
		f := f
		in := huh.NewInput().Title(f.title).Description(f.help).Value(values[f.flag])
		if f.required {
			in = in.Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New(f.title + " is required")
				}
				return nil
			})
		}
		inputs = append(inputs, in)
	}

	form := huh.NewForm(huh.NewGroup(inputs...).Title("New " + string(af.kind)))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("aborted")
		}
		return err
	}
	return nil
}

// firstID returns the ID of the single row Insert stored for kind.
func firstID(kind store.Kind, l model.Ledger) string {
	switch kind {
	case store.KindIncome:
		return l.Income[0].ID
	case store.KindFixed:
		return l.FixedExpenses[0].ID
	case store.KindEMI:
		return l.Plans[0].ID
	case store.KindExpense:
		return l.VariableExpenses[0].ID
	case store.KindLoan:
		return l.Loans[0].ID
	case store.KindCard:
		return l.CreditCards[0].ID
	case store.KindSavings:
		return l.Savings[0].ID
	}
	return ""
}
