// Package source discovers and parses TOML ledger workbooks.
package source

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/theirongolddev/fintrack/internal/model"
)

// ErrUnsupportedFile is returned for files that are not TOML workbooks.
var ErrUnsupportedFile = errors.New("unsupported workbook file")

// ParseResult holds the output of parsing a single workbook.
type ParseResult struct {
	Ledger      model.Ledger
	ParseErrors int // unreadable field values; the row is kept with the field blank
	Undecoded   []string
	Err         error
}

// ParseFile reads a workbook and converts it into ledger records. Every
// record gets a stable ID derived from the file path and its position, so
// re-importing an unchanged file yields the same IDs.
func ParseFile(df DiscoveredFile) ParseResult {
	data, err := os.ReadFile(df.Path) //nolint:gosec // path comes from ScanDir
	if err != nil {
		return ParseResult{Err: err}
	}
	return Parse(df.Path, data)
}

// Parse converts workbook bytes into ledger records tagged with src.
func Parse(src string, data []byte) ParseResult {
	var wb Workbook
	md, err := toml.Decode(string(data), &wb)
	if err != nil {
		return ParseResult{Err: fmt.Errorf("%w: %s: %w", ErrUnsupportedFile, src, err)}
	}

	var result ParseResult
	for _, k := range md.Undecoded() {
		result.Undecoded = append(result.Undecoded, k.String())
	}

	ids := idGen{src: src}
	date := func(d Date) time.Time {
		if d.Invalid {
			result.ParseErrors++
		}
		return d.Time
	}

	l := &result.Ledger
	for _, r := range wb.Income {
		l.Income = append(l.Income, model.IncomeEntry{
			ID: ids.next("income"), Source: src,
			Type: r.Type, Recurring: bool(r.Recurring), Amount: r.Amount,
		})
	}
	for _, r := range wb.FixedExpenses {
		l.FixedExpenses = append(l.FixedExpenses, model.FixedExpense{
			ID: ids.next("fixed"), Source: src,
			Category: r.Category, MonthlyAmount: r.MonthlyAmount,
		})
	}
	for _, r := range wb.Plans {
		l.Plans = append(l.Plans, model.InstallmentPlan{
			ID: ids.next("emi"), Source: src,
			CardName:          r.CardName,
			InstallmentAmount: r.InstallmentAmount,
			AnnualRatePercent: r.InterestPercent,
			StartDate:         date(r.StartDate),
			EndDate:           date(r.EndDate),
			InstallmentsPaid:  r.Paid,
		})
	}
	for _, r := range wb.Expenses {
		l.VariableExpenses = append(l.VariableExpenses, model.VariableExpense{
			ID: ids.next("expense"), Source: src,
			Category: r.Category, PaymentType: r.PaymentType,
			Amount: r.Amount, Date: date(r.Date),
		})
	}
	for _, r := range wb.Loans {
		l.Loans = append(l.Loans, model.Loan{
			ID: ids.next("loan"), Source: src,
			Type: r.Type, TotalAmount: r.Total, RatePercent: r.InterestPercent,
			DurationMonths: r.DurationMonths, EMIAmount: r.EMI, EMIDate: date(r.EMIDate),
		})
	}
	for _, r := range wb.CreditCards {
		l.CreditCards = append(l.CreditCards, model.CreditCard{
			ID: ids.next("card"), Source: src, Name: r.Name,
			BillingDate: date(r.BillingDate),
			PeriodStart: date(r.PeriodStart),
			PeriodEnd:   date(r.PeriodEnd),
			DueDate:     date(r.DueDate),
		})
	}
	for _, r := range wb.Savings {
		l.Savings = append(l.Savings, model.SavingsGoal{
			ID: ids.next("savings"), Source: src,
			Month: r.Month, Target: r.Target, Actual: r.Actual, Notes: r.Notes,
		})
	}

	return result
}

type idGen struct {
	src string
	seq map[string]int
}

func (g *idGen) next(kind string) string {
	if g.seq == nil {
		g.seq = make(map[string]int)
	}
	n := g.seq[kind]
	g.seq[kind] = n + 1
	name := g.src + "#" + kind + "/" + strconv.Itoa(n)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
