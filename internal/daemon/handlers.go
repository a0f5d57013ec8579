package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theirongolddev/fintrack/internal/finance"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/observability"
)

// PlanView is the JSON shape of one amortized plan.
type PlanView struct {
	ID                string              `json:"id"`
	Source            string              `json:"source,omitempty"`
	CardName          string              `json:"card_name"`
	InstallmentAmount *float64            `json:"emi_amount"`
	AnnualRatePercent *float64            `json:"interest_percent"`
	StartDate         string              `json:"start_date,omitempty"`
	EndDate           string              `json:"end_date,omitempty"`
	InstallmentsPaid  *int                `json:"paid"`
	Duration          *int                `json:"duration"`
	EMI               *model.EMIBreakdown `json:"emi"`
}

func planView(p model.InstallmentPlan) PlanView {
	v := PlanView{
		ID:                p.ID,
		Source:            p.Source,
		CardName:          p.CardName,
		InstallmentAmount: p.InstallmentAmount,
		AnnualRatePercent: p.AnnualRatePercent,
		InstallmentsPaid:  p.InstallmentsPaid,
		Duration:          p.Duration,
		EMI:               p.EMI,
	}
	if !p.StartDate.IsZero() {
		v.StartDate = p.StartDate.Format("2006-01-02")
	}
	if !p.EndDate.IsZero() {
		v.EndDate = p.EndDate.Format("2006-01-02")
	}
	return v
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observability.ZapLoggerMiddleware(s.log))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/overview", s.handleOverview)
		r.Get("/plans", s.handlePlans)
		r.Get("/plans/{id}/schedule", s.handleSchedule)
		r.Get("/annual", s.handleAnnual)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleOverview(w http.ResponseWriter, _ *http.Request) {
	rep := s.currentReport()
	writeJSON(w, http.StatusOK, struct {
		Overview  model.Overview         `json:"overview"`
		Breakdown []model.BreakdownSlice `json:"breakdown"`
	}{rep.Overview, rep.Breakdown})
}

func (s *Service) handlePlans(w http.ResponseWriter, _ *http.Request) {
	rep := s.currentReport()
	views := make([]PlanView, 0, len(rep.Plans))
	for _, p := range rep.Plans {
		views = append(views, planView(p))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Service) handleSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	for _, p := range s.currentReport().Plans {
		if p.ID != id {
			continue
		}
		sched := finance.Schedule(p)
		if sched == nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "plan is incomplete"})
			return
		}
		writeJSON(w, http.StatusOK, sched)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
}

func (s *Service) handleAnnual(w http.ResponseWriter, _ *http.Request) {
	rows := s.currentReport().Annual
	if rows == nil {
		rows = []model.MonthlyProjectionRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
