// Package store provides the SQLite-backed ledger.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/fintrack/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrNotFound is returned when a row ID does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrManaged is returned when editing a row that belongs to a workbook file.
	ErrManaged = errors.New("record is managed by a workbook file")
	// ErrAmbiguous is returned when an ID prefix matches several rows.
	ErrAmbiguous = errors.New("id prefix matches more than one record")
	// ErrIncomplete is returned when paying a plan whose paid count is blank.
	ErrIncomplete = errors.New("plan has no paid count")
)

const dateLayout = "2006-01-02"

// Ledger is the SQLite ledger database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database at the given path.
func Open(dbPath string) (*Ledger, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close closes the ledger database.
func (s *Ledger) Close() error {
	return s.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (s *Ledger) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := s.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// ReplaceSource swaps every row imported from path for the rows in l and
// records the file's mtime and size.
func (s *Ledger) ReplaceSource(path string, l model.Ledger, mtimeNs, sizeBytes int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteSource(tx, path); err != nil {
		return err
	}
	if err := insertLedger(tx, path, l); err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes)
		VALUES (?, ?, ?)`, path, mtimeNs, sizeBytes)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteSource removes every row imported from path and its tracker entry.
func (s *Ledger) DeleteSource(path string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteSource(tx, path); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM file_tracker WHERE file_path = ?", path); err != nil {
		return err
	}
	return tx.Commit()
}

// Insert stores manually entered records. Records without an ID get a fresh
// UUID. The returned ledger carries the assigned IDs.
func (s *Ledger) Insert(l model.Ledger) (model.Ledger, error) {
	l = l.Merge(model.Ledger{})
	assignIDs(&l)

	tx, err := s.db.Begin()
	if err != nil {
		return model.Ledger{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertLedger(tx, "", l); err != nil {
		return model.Ledger{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Ledger{}, err
	}
	return l, nil
}

// IncrementPaid records one more paid installment on a manually entered
// plan and returns the new count. A blank count is not guessed at; it
// fails with ErrIncomplete.
func (s *Ledger) IncrementPaid(id string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var src string
	var paid sql.NullInt64
	err = tx.QueryRow("SELECT source, paid FROM installment_plans WHERE id = ?", id).Scan(&src, &paid)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("plan %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	if src != "" {
		return 0, fmt.Errorf("plan %s (%s): %w", id, src, ErrManaged)
	}

	if !paid.Valid {
		return 0, fmt.Errorf("plan %s: %w", id, ErrIncomplete)
	}

	next := int(paid.Int64) + 1
	if _, err := tx.Exec("UPDATE installment_plans SET paid = ? WHERE id = ?", next, id); err != nil {
		return 0, err
	}
	return next, tx.Commit()
}

// Delete removes one manually entered row.
func (s *Ledger) Delete(kind Kind, id string) error {
	table := kind.table()
	if table == "" {
		return fmt.Errorf("unknown table %q", kind)
	}

	var src string
	err := s.db.QueryRow("SELECT source FROM "+table+" WHERE id = ?", id).Scan(&src) //nolint:gosec // table is from a fixed map
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if src != "" {
		return fmt.Errorf("%s %s (%s): %w", kind, id, src, ErrManaged)
	}

	_, err = s.db.Exec("DELETE FROM "+table+" WHERE id = ?", id) //nolint:gosec // table is from a fixed map
	return err
}

// ResolveID expands an ID prefix to the single full ID it matches in the
// kind's table.
func (s *Ledger) ResolveID(kind Kind, prefix string) (string, error) {
	table := kind.table()
	if table == "" {
		return "", fmt.Errorf("unknown table %q", kind)
	}
	if prefix == "" {
		return "", fmt.Errorf("%s: empty id: %w", kind, ErrNotFound)
	}

	//nolint:gosec // table is from a fixed map
	rows, err := s.db.Query("SELECT id FROM "+table+" WHERE substr(id, 1, ?) = ? LIMIT 2", len(prefix), prefix)
	if err != nil {
		return "", err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%s %s: %w", kind, prefix, ErrNotFound)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%s %s: %w", kind, prefix, ErrAmbiguous)
	}
}

// Counts returns the number of rows in every table.
func (s *Ledger) Counts() (map[Kind]int, error) {
	counts := make(map[Kind]int, len(Kinds))
	for _, k := range Kinds {
		var n int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + k.table()).Scan(&n); err != nil { //nolint:gosec // table is from a fixed map
			return nil, err
		}
		counts[k] = n
	}
	return counts, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func deleteSource(tx execer, path string) error {
	for _, k := range Kinds {
		if _, err := tx.Exec("DELETE FROM "+k.table()+" WHERE source = ?", path); err != nil { //nolint:gosec // table is from a fixed map
			return fmt.Errorf("clearing %s: %w", k, err)
		}
	}
	return nil
}

func insertLedger(tx execer, src string, l model.Ledger) error {
	for _, r := range l.Income {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO income (id, source, type, recurring, amount)
			VALUES (?, ?, ?, ?, ?)`, r.ID, src, r.Type, boolInt(r.Recurring), r.Amount); err != nil {
			return fmt.Errorf("inserting income: %w", err)
		}
	}
	for _, r := range l.FixedExpenses {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO fixed_expenses (id, source, category, monthly_amount)
			VALUES (?, ?, ?, ?)`, r.ID, src, r.Category, r.MonthlyAmount); err != nil {
			return fmt.Errorf("inserting fixed expense: %w", err)
		}
	}
	for _, r := range l.Plans {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO installment_plans
			(id, source, card_name, emi_amount, interest_percent, start_date, end_date, paid)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, src, r.CardName, nullFloat(r.InstallmentAmount), nullFloat(r.AnnualRatePercent),
			nullDate(r.StartDate), nullDate(r.EndDate), nullInt(r.InstallmentsPaid)); err != nil {
			return fmt.Errorf("inserting plan: %w", err)
		}
	}
	for _, r := range l.VariableExpenses {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO variable_expenses
			(id, source, category, payment_type, amount, date)
			VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, src, r.Category, r.PaymentType, r.Amount, nullDate(r.Date)); err != nil {
			return fmt.Errorf("inserting expense: %w", err)
		}
	}
	for _, r := range l.Loans {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO loans
			(id, source, type, total_amount, interest_percent, duration_months, emi_amount, emi_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, src, r.Type, r.TotalAmount, r.RatePercent, r.DurationMonths, r.EMIAmount,
			nullDate(r.EMIDate)); err != nil {
			return fmt.Errorf("inserting loan: %w", err)
		}
	}
	for _, r := range l.CreditCards {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO credit_cards
			(id, source, name, billing_date, period_start, period_end, due_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, src, r.Name, nullDate(r.BillingDate), nullDate(r.PeriodStart),
			nullDate(r.PeriodEnd), nullDate(r.DueDate)); err != nil {
			return fmt.Errorf("inserting credit card: %w", err)
		}
	}
	for _, r := range l.Savings {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO savings (id, source, month, target, actual, notes)
			VALUES (?, ?, ?, ?, ?, ?)`, r.ID, src, r.Month, r.Target, r.Actual, r.Notes); err != nil {
			return fmt.Errorf("inserting savings: %w", err)
		}
	}
	return nil
}

func assignIDs(l *model.Ledger) {
	newID := func(id *string) {
		if *id == "" {
			*id = uuid.NewString()
		}
	}
	for i := range l.Income {
		newID(&l.Income[i].ID)
	}
	for i := range l.FixedExpenses {
		newID(&l.FixedExpenses[i].ID)
	}
	for i := range l.Plans {
		newID(&l.Plans[i].ID)
	}
	for i := range l.VariableExpenses {
		newID(&l.VariableExpenses[i].ID)
	}
	for i := range l.Loans {
		newID(&l.Loans[i].ID)
	}
	for i := range l.CreditCards {
		newID(&l.CreditCards[i].ID)
	}
	for i := range l.Savings {
		newID(&l.Savings[i].ID)
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}
