package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zapcore"

	"github.com/theirongolddev/fintrack/internal/model"
)

func TestMetrics_SetOverview(t *testing.T) {
	m := NewMetrics()
	m.SetOverview(model.Overview{
		MonthlyIncome: 30000, ActiveEMI: 20000, FixedExpenses: 15000, Leftover: -5000,
		ActivePlans: 2, ClosedPlans: 1,
	}, 9)

	if got := testutil.ToFloat64(m.leftover); got != -5000 {
		t.Errorf("leftover = %v, want -5000", got)
	}
	if got := testutil.ToFloat64(m.plans.WithLabelValues("active")); got != 2 {
		t.Errorf("active plans = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.records); got != 9 {
		t.Errorf("records = %v, want 9", got)
	}
}

func TestMetrics_ObserveRecompute(t *testing.T) {
	m := NewMetrics()
	m.ObserveRecompute(time.Millisecond, nil)
	m.ObserveRecompute(time.Millisecond, errors.New("boom"))
	m.ObserveRecompute(time.Millisecond, nil)

	if got := testutil.ToFloat64(m.recomputes.WithLabelValues("success")); got != 2 {
		t.Errorf("success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.recomputes.WithLabelValues("error")); got != 1 {
		t.Errorf("error = %v, want 1", got)
	}
}

func TestNewMetrics_Independent(t *testing.T) {
	// Two instances must not panic on duplicate registration.
	_ = NewMetrics()
	_ = NewMetrics()
}

func TestNewLogger_Levels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error", "nonsense"} {
		if NewLogger(lvl) == nil {
			t.Errorf("NewLogger(%q) = nil", lvl)
		}
	}
	if !NewLogger("warn").Core().Enabled(zapcore.ErrorLevel) {
		t.Error("warn logger should enable error")
	}
	if NewLogger("warn").Core().Enabled(zapcore.InfoLevel) {
		t.Error("warn logger should not enable info")
	}
}
