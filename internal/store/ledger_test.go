package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/fintrack/internal/model"
)

func openTemp(t *testing.T) *Ledger {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func day(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func TestInsertAndLoad_RoundTripsNulls(t *testing.T) {
	s := openTemp(t)

	in := model.Ledger{
		Plans: []model.InstallmentPlan{
			{CardName: "Full", InstallmentAmount: fp(5000), AnnualRatePercent: fp(16),
				StartDate: day("2025-01-01"), EndDate: day("2025-12-31"), InstallmentsPaid: ip(6)},
			{CardName: "Blank"},
		},
		Income: []model.IncomeEntry{{Type: "Salary", Recurring: true, Amount: 90000}},
	}
	saved, err := s.Insert(in)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if saved.Plans[0].ID == "" || saved.Income[0].ID == "" {
		t.Fatal("Insert should assign IDs")
	}
	if in.Plans[0].ID != "" {
		t.Error("Insert must not mutate its input")
	}

	got, err := s.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if len(got.Plans) != 2 {
		t.Fatalf("Plans = %d, want 2", len(got.Plans))
	}
	full, blank := got.Plans[0], got.Plans[1]
	if full.CardName != "Full" {
		full, blank = blank, full
	}
	if full.InstallmentAmount == nil || *full.InstallmentAmount != 5000 {
		t.Errorf("InstallmentAmount = %v", full.InstallmentAmount)
	}
	if full.InstallmentsPaid == nil || *full.InstallmentsPaid != 6 {
		t.Errorf("InstallmentsPaid = %v", full.InstallmentsPaid)
	}
	if !full.EndDate.Equal(day("2025-12-31")) {
		t.Errorf("EndDate = %v", full.EndDate)
	}
	if blank.InstallmentAmount != nil || blank.AnnualRatePercent != nil || blank.InstallmentsPaid != nil {
		t.Error("blank plan fields should load as nil")
	}
	if !blank.StartDate.IsZero() {
		t.Error("blank date should load as zero")
	}
	if len(got.Income) != 1 || !got.Income[0].Recurring {
		t.Errorf("Income = %+v", got.Income)
	}
}

func TestReplaceSource(t *testing.T) {
	s := openTemp(t)
	const src = "/data/ledger.toml"

	first := model.Ledger{
		FixedExpenses: []model.FixedExpense{{ID: "f1", Category: "Rent", MonthlyAmount: 20000}},
		Loans:         []model.Loan{{ID: "l1", Type: "Car", EMIAmount: 12000}},
	}
	if err := s.ReplaceSource(src, first, 100, 10); err != nil {
		t.Fatalf("ReplaceSource: %v", err)
	}

	second := model.Ledger{
		FixedExpenses: []model.FixedExpense{{ID: "f2", Category: "Rent", MonthlyAmount: 22000}},
	}
	if err := s.ReplaceSource(src, second, 200, 20); err != nil {
		t.Fatalf("ReplaceSource: %v", err)
	}

	got, err := s.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if len(got.FixedExpenses) != 1 || got.FixedExpenses[0].MonthlyAmount != 22000 {
		t.Errorf("FixedExpenses = %+v, want only the replacement", got.FixedExpenses)
	}
	if len(got.Loans) != 0 {
		t.Errorf("Loans = %+v, want none after replace", got.Loans)
	}
	if got.FixedExpenses[0].Source != src {
		t.Errorf("Source = %q, want %q", got.FixedExpenses[0].Source, src)
	}

	tracked, err := s.GetTrackedFiles()
	if err != nil {
		t.Fatalf("GetTrackedFiles: %v", err)
	}
	if fi := tracked[src]; fi.MtimeNs != 200 || fi.SizeBytes != 20 {
		t.Errorf("tracked = %+v, want mtime 200 size 20", fi)
	}

	if err := s.DeleteSource(src); err != nil {
		t.Fatalf("DeleteSource: %v", err)
	}
	counts, err := s.Counts()
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts[KindFixed] != 0 {
		t.Errorf("fixed rows = %d after DeleteSource, want 0", counts[KindFixed])
	}
	tracked, _ = s.GetTrackedFiles()
	if len(tracked) != 0 {
		t.Errorf("tracked = %v, want empty", tracked)
	}
}

func TestIncrementPaid(t *testing.T) {
	s := openTemp(t)
	saved, err := s.Insert(model.Ledger{Plans: []model.InstallmentPlan{
		{CardName: "A", InstallmentsPaid: ip(2)},
		{CardName: "B"},
	}})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	n, err := s.IncrementPaid(saved.Plans[0].ID)
	if err != nil || n != 3 {
		t.Errorf("IncrementPaid = %d, %v; want 3, nil", n, err)
	}
	if _, err := s.IncrementPaid(saved.Plans[1].ID); !errors.Is(err, ErrIncomplete) {
		t.Errorf("IncrementPaid(blank) err = %v, want ErrIncomplete", err)
	}
	got, err := s.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	for _, p := range got.Plans {
		if p.ID == saved.Plans[1].ID && p.InstallmentsPaid != nil {
			t.Errorf("blank paid count was written: %d", *p.InstallmentsPaid)
		}
	}

	if _, err := s.IncrementPaid("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestWorkbookRowsAreReadOnly(t *testing.T) {
	s := openTemp(t)
	l := model.Ledger{Plans: []model.InstallmentPlan{{ID: "p1", CardName: "A", InstallmentsPaid: ip(1)}}}
	if err := s.ReplaceSource("/data/x.toml", l, 1, 1); err != nil {
		t.Fatalf("ReplaceSource: %v", err)
	}

	if _, err := s.IncrementPaid("p1"); !errors.Is(err, ErrManaged) {
		t.Errorf("IncrementPaid err = %v, want ErrManaged", err)
	}
	if err := s.Delete(KindEMI, "p1"); !errors.Is(err, ErrManaged) {
		t.Errorf("Delete err = %v, want ErrManaged", err)
	}
}

func TestDelete(t *testing.T) {
	s := openTemp(t)
	saved, err := s.Insert(model.Ledger{Savings: []model.SavingsGoal{{Month: "Jan", Target: 100}}})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := s.Delete(KindSavings, saved.Savings[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(KindSavings, saved.Savings[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"emi", KindEMI, true},
		{"Plans", KindEMI, true},
		{"expenses", KindExpense, true},
		{"credit-cards", KindCard, true},
		{"budget", "", false},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseKind(%q) = %q, %v; want %q ok=%v", tt.in, got, err, tt.want, tt.ok)
		}
	}
}

func TestResolveID(t *testing.T) {
	s := openTemp(t)

	out, err := s.Insert(model.Ledger{Plans: []model.InstallmentPlan{{CardName: "A"}, {CardName: "B"}}})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	full := out.Plans[0].ID

	got, err := s.ResolveID(KindEMI, full[:8])
	if err != nil {
		t.Fatalf("ResolveID: %v", err)
	}
	if got != full {
		t.Errorf("ResolveID = %s, want %s", got, full)
	}

	if _, err := s.ResolveID(KindEMI, "zzzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown prefix: err = %v, want ErrNotFound", err)
	}
	if _, err := s.ResolveID(KindIncome, full[:8]); !errors.Is(err, ErrNotFound) {
		t.Errorf("wrong table: err = %v, want ErrNotFound", err)
	}
	if _, err := s.ResolveID(KindEMI, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty prefix: err = %v, want ErrNotFound", err)
	}
}

func TestResolveID_Ambiguous(t *testing.T) {
	s := openTemp(t)

	// 64 IDs over 16 hex digits must repeat a first character.
	var l model.Ledger
	for i := 0; i < 64; i++ {
		l.Income = append(l.Income, model.IncomeEntry{Type: "x"})
	}
	out, err := s.Insert(l)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	seen := map[byte]bool{}
	var prefix string
	for _, in := range out.Income {
		if seen[in.ID[0]] {
			prefix = in.ID[:1]
			break
		}
		seen[in.ID[0]] = true
	}
	if prefix == "" {
		t.Fatal("64 UUIDs over 16 hex digits must share a first character")
	}
	if _, err := s.ResolveID(KindIncome, prefix); !errors.Is(err, ErrAmbiguous) {
		t.Errorf("err = %v, want ErrAmbiguous", err)
	}
}
