// Package daemon provides the long-running background recompute service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/observability"
	"github.com/theirongolddev/fintrack/internal/pipeline"
	"github.com/theirongolddev/fintrack/internal/store"
)

// LedgerLoader returns the current ledger snapshot.
type LedgerLoader func(ctx context.Context) (model.Ledger, error)

// Config controls the daemon runtime behavior.
type Config struct {
	DataDir       string
	ReferenceYear int
	Interval      time.Duration
	Addr          string
	EventsBuffer  int

	// Load defaults to WorkbookLoader(DataDir, "").
	Load    LedgerLoader
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// Snapshot is a compact ledger state for status/event payloads.
type Snapshot struct {
	At              time.Time `json:"at"`
	MonthlyIncome   float64   `json:"monthly_income"`
	ActiveEMI       float64   `json:"active_emi"`
	FixedExpenses   float64   `json:"fixed_expenses"`
	Leftover        float64   `json:"leftover"`
	ActivePlans     int       `json:"active_plans"`
	ClosedPlans     int       `json:"closed_plans"`
	IncompletePlans int       `json:"incomplete_plans"`
	Records         int       `json:"records"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	MonthlyIncome   float64 `json:"monthly_income"`
	ActiveEMI       float64 `json:"active_emi"`
	FixedExpenses   float64 `json:"fixed_expenses"`
	Leftover        float64 `json:"leftover"`
	ActivePlans     int     `json:"active_plans"`
	ClosedPlans     int     `json:"closed_plans"`
	IncompletePlans int     `json:"incomplete_plans"`
	Records         int     `json:"records"`
}

func (d Delta) isZero() bool {
	return d.MonthlyIncome == 0 &&
		d.ActiveEMI == 0 &&
		d.FixedExpenses == 0 &&
		d.Leftover == 0 &&
		d.ActivePlans == 0 &&
		d.ClosedPlans == 0 &&
		d.IncompletePlans == 0 &&
		d.Records == 0
}

// Event is emitted whenever the ledger snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DataDir         string    `json:"data_dir"`
	ReferenceYear   int       `json:"reference_year"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	log     *zap.Logger
	metrics *observability.Metrics

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	report      model.Report
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 15 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.ReferenceYear <= 0 {
		cfg.ReferenceYear = pipeline.DefaultReferenceYear
	}
	if cfg.Load == nil {
		cfg.Load = WorkbookLoader(cfg.DataDir, "")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics()
	}

	return &Service{
		cfg:       cfg,
		log:       logger,
		metrics:   metrics,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// WorkbookLoader reads workbooks from dataDir. With a non-empty storePath
// the workbooks are synced into the SQLite ledger first, so manually
// entered rows are included.
func WorkbookLoader(dataDir, storePath string) LedgerLoader {
	return func(context.Context) (model.Ledger, error) {
		if storePath != "" {
			db, err := store.Open(storePath)
			if err != nil {
				return model.Ledger{}, err
			}
			defer func() { _ = db.Close() }()

			sr, err := pipeline.LoadWithStore(dataDir, db, nil)
			if err != nil {
				return model.Ledger{}, err
			}
			return sr.Ledger, nil
		}

		result, err := pipeline.Load(dataDir, nil)
		if err != nil {
			return model.Ledger{}, err
		}
		return result.Ledger, nil
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	start := time.Now()
	ledger, err := s.cfg.Load(ctx)
	s.metrics.ObserveRecompute(time.Since(start), err)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		s.log.Error("poll failed", zap.Error(err))
		return
	}

	now := time.Now()
	report := pipeline.Compute(ledger, s.cfg.ReferenceYear)
	snap := snapshotFromOverview(report.Overview, ledger.Len(), now)
	s.metrics.SetOverview(report.Overview, ledger.Len())

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.report = report
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "ledger_delta",
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	s.log.Debug("poll complete",
		zap.Duration("took", time.Since(start)),
		zap.Int("records", snap.Records),
		zap.Bool("changed", publish))

	if publish {
		s.publishEvent(ev)
	}
}

func snapshotFromOverview(ov model.Overview, records int, at time.Time) Snapshot {
	return Snapshot{
		At:              at,
		MonthlyIncome:   ov.MonthlyIncome,
		ActiveEMI:       ov.ActiveEMI,
		FixedExpenses:   ov.FixedExpenses,
		Leftover:        ov.Leftover,
		ActivePlans:     ov.ActivePlans,
		ClosedPlans:     ov.ClosedPlans,
		IncompletePlans: ov.IncompletePlans,
		Records:         records,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		MonthlyIncome:   curr.MonthlyIncome - prev.MonthlyIncome,
		ActiveEMI:       curr.ActiveEMI - prev.ActiveEMI,
		FixedExpenses:   curr.FixedExpenses - prev.FixedExpenses,
		Leftover:        curr.Leftover - prev.Leftover,
		ActivePlans:     curr.ActivePlans - prev.ActivePlans,
		ClosedPlans:     curr.ClosedPlans - prev.ClosedPlans,
		IncompletePlans: curr.IncompletePlans - prev.IncompletePlans,
		Records:         curr.Records - prev.Records,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DataDir:         s.cfg.DataDir,
		ReferenceYear:   s.cfg.ReferenceYear,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) currentReport() model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
