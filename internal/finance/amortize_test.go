package finance

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fintrack/internal/model"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func plan(amount, rate float64, duration, paid int) model.InstallmentPlan {
	return model.InstallmentPlan{
		CardName:          "card",
		InstallmentAmount: f64(amount),
		AnnualRatePercent: f64(rate),
		Duration:          intp(duration),
		InstallmentsPaid:  intp(paid),
	}
}

func TestAmortize_CompletenessGate(t *testing.T) {
	full := plan(5000, 18, 12, 3)

	missingRate := full
	missingRate.AnnualRatePercent = nil
	missingDuration := full
	missingDuration.Duration = nil
	missingPaid := full
	missingPaid.InstallmentsPaid = nil
	missingAmount := full
	missingAmount.InstallmentAmount = nil

	tests := []struct {
		name string
		plan model.InstallmentPlan
	}{
		{"missing rate", missingRate},
		{"missing duration", missingDuration},
		{"missing paid count", missingPaid},
		{"missing amount", missingAmount},
		{"zero duration", plan(5000, 18, 0, 0)},
		{"negative duration", plan(5000, 18, -2, 0)},
		{"negative paid count", plan(5000, 18, 12, -1)},
		{"negative rate", plan(5000, -1, 12, 0)},
		{"NaN amount", plan(math.NaN(), 18, 12, 0)},
		{"infinite rate", plan(5000, math.Inf(1), 12, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.plan
			in.EMI = &model.EMIBreakdown{PrincipalComponent: 1, Active: true}

			got := Amortize(in)
			assert.Nil(t, got.EMI, "derived block must be unset")
			assert.False(t, got.IsActive())
		})
	}
}

func TestAmortize_ZeroRate(t *testing.T) {
	for _, paid := range []int{0, 1, 5, 12, 15} {
		got := Amortize(plan(2500, 0, 12, paid))
		require.NotNil(t, got.EMI)
		assert.Equal(t, 2500.0, got.EMI.PrincipalComponent)
		assert.Equal(t, 0.0, got.EMI.InterestComponent)
		assert.InDelta(t, 2500*float64(paid)*1.02, got.EMI.ForeclosurePayoff, 1e-9)
		assert.InDelta(t, 2500*float64(paid)*0.02, got.EMI.ForeclosureCharge, 1e-9)
	}
}

func TestAmortize_PaymentSplitIdentity(t *testing.T) {
	for _, rate := range []float64{0.5, 12, 18, 36} {
		for _, duration := range []int{1, 6, 24} {
			for paid := 0; paid <= duration+2; paid++ {
				got := Amortize(plan(3333.33, rate, duration, paid))
				require.NotNil(t, got.EMI)
				assert.InDelta(t, 3333.33, got.EMI.PrincipalComponent+got.EMI.InterestComponent, 1e-6,
					"rate=%v duration=%d paid=%d", rate, duration, paid)
			}
		}
	}
}

func TestAmortize_KnownValues(t *testing.T) {
	// 5000/month at 18% over 12 months implies a principal of ~54537.53,
	// so the first installment carries 1.5% of that as interest.
	first := Amortize(plan(5000, 18, 12, 0))
	require.NotNil(t, first.EMI)
	assert.InDelta(t, 818.0629, first.EMI.InterestComponent, 1e-4)
	assert.InDelta(t, 4181.9371, first.EMI.PrincipalComponent, 1e-4)
	assert.Equal(t, 0.0, first.EMI.ForeclosureCharge)
	assert.Equal(t, 0.0, first.EMI.ForeclosurePayoff)

	mid := Amortize(plan(5000, 18, 12, 6))
	require.NotNil(t, mid.EMI)
	assert.InDelta(t, 427.2890, mid.EMI.InterestComponent, 1e-4)
	assert.InDelta(t, 0.02*31147.7546, mid.EMI.ForeclosureCharge, 1e-3)
	assert.InDelta(t, 1.02*31147.7546, mid.EMI.ForeclosurePayoff, 1e-3)
}

func TestAmortize_ActiveBoundary(t *testing.T) {
	tests := []struct {
		paid int
		want bool
	}{
		{0, true},
		{11, true},
		{12, false},
		{13, false},
	}
	for _, tt := range tests {
		got := Amortize(plan(5000, 18, 12, tt.paid))
		require.NotNil(t, got.EMI)
		assert.Equal(t, tt.want, got.EMI.Active, "paid=%d", tt.paid)
	}
}

func TestAmortize_ForeclosureMonotonic(t *testing.T) {
	for _, rate := range []float64{0, 9.5, 18} {
		prev := -1.0
		for paid := 0; paid <= 24; paid++ {
			got := Amortize(plan(5000, rate, 12, paid))
			require.NotNil(t, got.EMI)
			if paid == 0 {
				assert.Equal(t, 0.0, got.EMI.ForeclosurePayoff)
			}
			assert.GreaterOrEqual(t, got.EMI.ForeclosurePayoff, prev, "rate=%v paid=%d", rate, paid)
			prev = got.EMI.ForeclosurePayoff
		}
	}
}

func TestAmortize_EndToEndScenario(t *testing.T) {
	running := Amortize(plan(5000, 18, 12, 6))
	require.NotNil(t, running.EMI)
	assert.True(t, running.EMI.Active)

	done := Amortize(plan(5000, 18, 12, 12))
	require.NotNil(t, done.EMI)
	assert.False(t, done.EMI.Active)
	// Twelve accumulated payments, not reset to zero once the plan closes.
	assert.InDelta(t, 1.02*65206.0572, done.EMI.ForeclosurePayoff, 1e-3)
	assert.Greater(t, done.EMI.ForeclosurePayoff, running.EMI.ForeclosurePayoff)
}

func TestAmortizeAll_DoesNotMutateInput(t *testing.T) {
	in := []model.InstallmentPlan{plan(1000, 12, 6, 2), {CardName: "blank"}}
	out := AmortizeAll(in)

	require.Len(t, out, 2)
	assert.Nil(t, in[0].EMI)
	assert.NotNil(t, out[0].EMI)
	assert.Nil(t, out[1].EMI)
	assert.Nil(t, in[1].EMI)
}

func TestProcess_FromDates(t *testing.T) {
	p := model.InstallmentPlan{
		CardName:          "HDFC",
		InstallmentAmount: f64(5000),
		AnnualRatePercent: f64(18),
		StartDate:         date(t, "2025-01-01"),
		EndDate:           date(t, "2025-12-31"),
		InstallmentsPaid:  intp(6),
	}
	reversed := p
	reversed.StartDate, reversed.EndDate = p.EndDate, p.StartDate
	undated := p
	undated.EndDate = time.Time{}

	out := Process([]model.InstallmentPlan{p, reversed, undated})
	require.Len(t, out, 3)

	require.NotNil(t, out[0].Duration)
	assert.Equal(t, 12, *out[0].Duration)
	require.NotNil(t, out[0].EMI)
	assert.True(t, out[0].EMI.Active)

	require.NotNil(t, out[1].Duration)
	assert.Negative(t, *out[1].Duration)
	assert.Nil(t, out[1].EMI)

	assert.Nil(t, out[2].Duration)
	assert.Nil(t, out[2].EMI)
}
