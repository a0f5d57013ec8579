package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeWorkbook creates a temp TOML file and returns a DiscoveredFile for it.
func writeWorkbook(t *testing.T, body string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return DiscoveredFile{Path: path, Name: "ledger"}
}

func TestParseFile_AllTables(t *testing.T) {
	df := writeWorkbook(t, `
[[income]]
type = "Salary"
recurring = "Yes"
amount = 85000

[[income]]
type = "Bonus"
recurring = false
amount = 20000

[[fixed_expense]]
category = "Rent"
monthly_amount = 22000

[[emi]]
card_name = "HDFC Regalia"
emi_amount = 5000
interest_percent = 16
start_date = 2025-01-01
end_date = "2025-12-31"
paid = 3

[[expense]]
category = "Travel"
payment_type = "Card"
amount = 4200.5
date = "2025-03-14"

[[loan]]
type = "Car"
total = 600000
interest_percent = 9.5
duration = 60
emi = 12600
emi_date = 2025-02-05

[[credit_card]]
name = "HDFC Regalia"
billing_date = 2025-01-18
period_start = 2024-12-19
period_end = 2025-01-18
due_date = 2025-02-07

[[savings]]
month = "Jan"
target = 10000
actual = 8000
notes = "short"
`)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	l := result.Ledger

	if len(l.Income) != 2 || !l.Income[0].Recurring || l.Income[1].Recurring {
		t.Fatalf("Income = %+v, want salary recurring and bonus not", l.Income)
	}
	if len(l.FixedExpenses) != 1 || l.FixedExpenses[0].MonthlyAmount != 22000 {
		t.Errorf("FixedExpenses = %+v", l.FixedExpenses)
	}
	if len(l.Plans) != 1 {
		t.Fatalf("Plans = %d, want 1", len(l.Plans))
	}
	p := l.Plans[0]
	if p.InstallmentAmount == nil || *p.InstallmentAmount != 5000 {
		t.Errorf("InstallmentAmount = %v, want 5000", p.InstallmentAmount)
	}
	if p.AnnualRatePercent == nil || *p.AnnualRatePercent != 16 {
		t.Errorf("AnnualRatePercent = %v, want 16", p.AnnualRatePercent)
	}
	if p.InstallmentsPaid == nil || *p.InstallmentsPaid != 3 {
		t.Errorf("InstallmentsPaid = %v, want 3", p.InstallmentsPaid)
	}
	if got := p.StartDate.Format(DateLayout); got != "2025-01-01" {
		t.Errorf("StartDate = %s, want 2025-01-01", got)
	}
	if got := p.EndDate.Format(DateLayout); got != "2025-12-31" {
		t.Errorf("EndDate = %s, want 2025-12-31", got)
	}
	if p.Duration != nil || p.EMI != nil {
		t.Error("parser must not fill derived fields")
	}
	if len(l.VariableExpenses) != 1 || l.VariableExpenses[0].Date.Format(DateLayout) != "2025-03-14" {
		t.Errorf("VariableExpenses = %+v", l.VariableExpenses)
	}
	if len(l.Loans) != 1 || l.Loans[0].EMIAmount != 12600 || l.Loans[0].DurationMonths != 60 {
		t.Errorf("Loans = %+v", l.Loans)
	}
	if len(l.CreditCards) != 1 || l.CreditCards[0].DueDate.Format(DateLayout) != "2025-02-07" {
		t.Errorf("CreditCards = %+v", l.CreditCards)
	}
	if len(l.Savings) != 1 || l.Savings[0].Actual != 8000 {
		t.Errorf("Savings = %+v", l.Savings)
	}
	if result.ParseErrors != 0 {
		t.Errorf("ParseErrors = %d, want 0", result.ParseErrors)
	}
	for _, r := range l.Income {
		if r.Source != df.Path {
			t.Errorf("Source = %q, want %q", r.Source, df.Path)
		}
	}
}

func TestParseFile_BlankPlanFieldsStayNil(t *testing.T) {
	df := writeWorkbook(t, `
[[emi]]
card_name = "Axis"
emi_amount = 1200
`)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	p := result.Ledger.Plans[0]
	if p.AnnualRatePercent != nil || p.InstallmentsPaid != nil {
		t.Errorf("blank fields should be nil, got rate=%v paid=%v", p.AnnualRatePercent, p.InstallmentsPaid)
	}
	if !p.StartDate.IsZero() || !p.EndDate.IsZero() {
		t.Error("blank dates should be zero")
	}
}

func TestParseFile_InvalidDateCounted(t *testing.T) {
	df := writeWorkbook(t, `
[[emi]]
card_name = "Axis"
start_date = "31/01/2025"
end_date = "2025-13-01"

[[expense]]
category = "Food"
amount = 300
date = "yesterday"
`)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.ParseErrors != 3 {
		t.Errorf("ParseErrors = %d, want 3", result.ParseErrors)
	}
	if len(result.Ledger.Plans) != 1 || len(result.Ledger.VariableExpenses) != 1 {
		t.Error("rows with bad dates should be kept")
	}
	if !result.Ledger.Plans[0].StartDate.IsZero() {
		t.Error("bad date should leave the field blank")
	}
}

func TestParseFile_Malformed(t *testing.T) {
	df := writeWorkbook(t, "[[emi]\ncard_name = ")

	result := ParseFile(df)
	if !errors.Is(result.Err, ErrUnsupportedFile) {
		t.Fatalf("Err = %v, want ErrUnsupportedFile", result.Err)
	}
}

func TestParseFile_BadRecurring(t *testing.T) {
	df := writeWorkbook(t, "[[income]]\ntype = \"Salary\"\nrecurring = \"sometimes\"\namount = 1\n")

	result := ParseFile(df)
	if result.Err == nil {
		t.Fatal("expected error for unreadable recurring flag")
	}
}

func TestParseFile_StableIDs(t *testing.T) {
	body := "[[emi]]\ncard_name = \"A\"\n\n[[emi]]\ncard_name = \"B\"\n"
	df := writeWorkbook(t, body)

	a := ParseFile(df)
	b := ParseFile(df)
	if a.Err != nil || b.Err != nil {
		t.Fatalf("unexpected errors: %v %v", a.Err, b.Err)
	}
	if a.Ledger.Plans[0].ID != b.Ledger.Plans[0].ID {
		t.Error("IDs should be stable across parses")
	}
	if a.Ledger.Plans[0].ID == a.Ledger.Plans[1].ID {
		t.Error("IDs should differ between rows")
	}
}

func TestParseFile_UndecodedKeys(t *testing.T) {
	df := writeWorkbook(t, "[[emi]]\ncard_name = \"A\"\ncolour = \"red\"\n")

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Undecoded) != 1 {
		t.Errorf("Undecoded = %v, want one key", result.Undecoded)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.toml", "a.toml", "notes.txt", ".hidden/c.toml", "sub/d.toml"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	want := []string{"a", "b", "d"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestScanDir_Missing(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil || files != nil {
		t.Errorf("ScanDir(missing) = %v, %v; want nil, nil", files, err)
	}
}
