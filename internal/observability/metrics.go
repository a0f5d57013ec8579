package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/theirongolddev/fintrack/internal/model"
)

// Metrics holds the daemon's Prometheus metrics.
type Metrics struct {
	// Registry owns these metrics; the /metrics endpoint serves it.
	Registry *prometheus.Registry

	recomputeDuration prometheus.Histogram
	recomputes        *prometheus.CounterVec
	monthlyIncome     prometheus.Gauge
	activeEMI         prometheus.Gauge
	fixedExpenses     prometheus.Gauge
	leftover          prometheus.Gauge
	plans             *prometheus.GaugeVec
	records           prometheus.Gauge
}

// NewMetrics creates a dedicated registry so repeated construction in tests
// never collides on the default one.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		recomputeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fintrack_recompute_duration_seconds",
			Help:    "Duration of a full load and recompute.",
			Buckets: prometheus.DefBuckets,
		}),
		recomputes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_recomputes_total",
				Help: "Total recompute attempts by outcome.",
			},
			[]string{"status"},
		),
		monthlyIncome: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fintrack_monthly_income",
			Help: "Recurring monthly income.",
		}),
		activeEMI: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fintrack_active_emi",
			Help: "Sum of installment amounts of active plans.",
		}),
		fixedExpenses: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fintrack_fixed_expenses",
			Help: "Sum of fixed monthly expenses.",
		}),
		leftover: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fintrack_leftover",
			Help: "Income minus active EMI and fixed expenses.",
		}),
		plans: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fintrack_plans",
				Help: "Installment plans by state.",
			},
			[]string{"state"},
		),
		records: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fintrack_ledger_records",
			Help: "Total records across all ledger tables.",
		}),
	}
}

// ObserveRecompute records one recompute attempt.
func (m *Metrics) ObserveRecompute(d time.Duration, err error) {
	m.recomputeDuration.Observe(d.Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	m.recomputes.WithLabelValues(status).Inc()
}

// SetOverview publishes the latest overview figures.
func (m *Metrics) SetOverview(ov model.Overview, records int) {
	m.monthlyIncome.Set(ov.MonthlyIncome)
	m.activeEMI.Set(ov.ActiveEMI)
	m.fixedExpenses.Set(ov.FixedExpenses)
	m.leftover.Set(ov.Leftover)
	m.plans.WithLabelValues("active").Set(float64(ov.ActivePlans))
	m.plans.WithLabelValues("closed").Set(float64(ov.ClosedPlans))
	m.plans.WithLabelValues("incomplete").Set(float64(ov.IncompletePlans))
	m.records.Set(float64(records))
}
