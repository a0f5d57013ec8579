package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/fintrack/internal/model"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func testLedger() model.Ledger {
	return model.Ledger{
		Income:        []model.IncomeEntry{{ID: "i1", Recurring: true, Amount: 30000}},
		FixedExpenses: []model.FixedExpense{{ID: "f1", MonthlyAmount: 15000}},
		Plans: []model.InstallmentPlan{
			{
				ID:                "p1",
				CardName:          "HDFC",
				InstallmentAmount: f64(20000),
				AnnualRatePercent: f64(12),
				StartDate:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				EndDate:           time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
				InstallmentsPaid:  intp(2),
			},
			{ID: "p2", CardName: "blank"},
		},
	}
}

// stubService returns a service whose loader serves *ledger and err.
func stubService(ledger *model.Ledger, err *error) *Service {
	return New(Config{
		DataDir:      ".",
		Interval:     10 * time.Second,
		EventsBuffer: 10,
		Load: func(context.Context) (model.Ledger, error) {
			if err != nil && *err != nil {
				return model.Ledger{}, *err
			}
			return *ledger, nil
		},
	})
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		MonthlyIncome: 30000,
		ActiveEMI:     20000,
		Leftover:      -5000,
		ActivePlans:   1,
		Records:       4,
	}
	curr := Snapshot{
		MonthlyIncome: 32500.5,
		ActiveEMI:     15000,
		Leftover:      2500.5,
		ActivePlans:   0,
		ClosedPlans:   1,
		Records:       5,
	}

	delta := diffSnapshots(prev, curr)
	if math.Abs(delta.MonthlyIncome-2500.5) > 1e-9 {
		t.Fatalf("MonthlyIncome delta = %.2f, want 2500.50", delta.MonthlyIncome)
	}
	if delta.ActiveEMI != -5000 {
		t.Fatalf("ActiveEMI delta = %.2f, want -5000", delta.ActiveEMI)
	}
	if math.Abs(delta.Leftover-7500.5) > 1e-9 {
		t.Fatalf("Leftover delta = %.2f, want 7500.50", delta.Leftover)
	}
	if delta.ActivePlans != -1 || delta.ClosedPlans != 1 {
		t.Fatalf("plan deltas = %d/%d, want -1/1", delta.ActivePlans, delta.ClosedPlans)
	}
	if delta.Records != 1 {
		t.Fatalf("Records delta = %d, want 1", delta.Records)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should give a zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		DataDir:      ".",
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOnce_EmitsSnapshotThenDelta(t *testing.T) {
	ledger := testLedger()
	s := stubService(&ledger, nil)
	ctx := context.Background()

	s.pollOnce(ctx)
	s.pollOnce(ctx) // unchanged: no event

	ledger.Income = append(ledger.Income, model.IncomeEntry{ID: "i2", Recurring: true, Amount: 10000})
	s.pollOnce(ctx)

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	polls := s.pollCount
	s.mu.RUnlock()

	if polls != 3 {
		t.Errorf("pollCount = %d, want 3", polls)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Type != "snapshot" || events[1].Type != "ledger_delta" {
		t.Errorf("event types = %s, %s", events[0].Type, events[1].Type)
	}
	if events[0].Snapshot.Leftover != -5000 {
		t.Errorf("first leftover = %.2f, want -5000", events[0].Snapshot.Leftover)
	}
	if events[1].Delta.MonthlyIncome != 10000 || events[1].Delta.Records != 1 {
		t.Errorf("delta = %+v", events[1].Delta)
	}
}

func TestPollOnce_ErrorKeepsLastSnapshot(t *testing.T) {
	ledger := testLedger()
	var loadErr error
	s := stubService(&ledger, &loadErr)
	ctx := context.Background()

	s.pollOnce(ctx)
	loadErr = errors.New("disk gone")
	s.pollOnce(ctx)

	st := s.snapshotStatus()
	if st.LastError != "disk gone" {
		t.Errorf("LastError = %q", st.LastError)
	}
	if st.Summary.MonthlyIncome != 30000 {
		t.Errorf("Summary should keep the last good snapshot, got %+v", st.Summary)
	}
}

func getJSON(t *testing.T, h http.Handler, path string, want int, v any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != want {
		t.Fatalf("GET %s = %d, want %d: %s", path, rec.Code, want, rec.Body.String())
	}
	if v != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
			t.Fatalf("GET %s: decode: %v", path, err)
		}
	}
}

func TestHandler_Endpoints(t *testing.T) {
	ledger := testLedger()
	s := stubService(&ledger, nil)
	s.pollOnce(context.Background())
	h := s.Handler()

	var st Status
	getJSON(t, h, "/v1/status", http.StatusOK, &st)
	if st.PollCount != 1 || st.Summary.ActivePlans != 1 || st.Summary.IncompletePlans != 1 {
		t.Errorf("status = %+v", st)
	}

	var plans []PlanView
	getJSON(t, h, "/v1/plans", http.StatusOK, &plans)
	if len(plans) != 2 {
		t.Fatalf("plans = %d, want 2", len(plans))
	}
	if plans[0].Duration == nil || *plans[0].Duration != 12 || plans[0].EMI == nil {
		t.Errorf("plan p1 = %+v", plans[0])
	}
	if plans[1].EMI != nil {
		t.Error("incomplete plan should have no emi block")
	}

	var annual []model.MonthlyProjectionRow
	getJSON(t, h, "/v1/annual", http.StatusOK, &annual)
	if len(annual) != 12 || annual[0].Label != "Jan" {
		t.Errorf("annual = %+v", annual)
	}

	var ov struct {
		Overview  model.Overview         `json:"overview"`
		Breakdown []model.BreakdownSlice `json:"breakdown"`
	}
	getJSON(t, h, "/v1/overview", http.StatusOK, &ov)
	if ov.Overview.Leftover != -5000 || len(ov.Breakdown) != 3 || ov.Breakdown[2].Amount != 0 {
		t.Errorf("overview = %+v", ov)
	}

	var sched []model.ScheduleEntry
	getJSON(t, h, "/v1/plans/p1/schedule", http.StatusOK, &sched)
	if len(sched) != 12 || !sched[1].Paid || sched[2].Paid {
		t.Errorf("schedule = %+v", sched)
	}
	getJSON(t, h, "/v1/plans/p2/schedule", http.StatusUnprocessableEntity, nil)
	getJSON(t, h, "/v1/plans/nope/schedule", http.StatusNotFound, nil)

	var events []Event
	getJSON(t, h, "/v1/events", http.StatusOK, &events)
	if len(events) != 1 {
		t.Errorf("events = %d, want 1", len(events))
	}
}

func TestHandler_HealthAndMetrics(t *testing.T) {
	ledger := testLedger()
	s := stubService(&ledger, nil)
	s.pollOnce(context.Background())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(body), "fintrack_leftover -5000") {
		t.Errorf("metrics missing leftover gauge:\n%s", body)
	}
}
