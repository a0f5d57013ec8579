package finance

import (
	"math"

	"github.com/theirongolddev/fintrack/internal/model"
)

// ForeclosureChargeRate is the penalty applied to the accumulated balance
// when a plan is paid off early.
const ForeclosureChargeRate = 0.02

// inputs is a plan's numeric fields after the completeness gate.
type inputs struct {
	amount   float64
	rate     float64 // periodic (monthly) rate
	duration int
	paid     int
}

// gate extracts the engine inputs, reporting false when any required field
// is missing or structurally invalid.
func gate(plan model.InstallmentPlan) (inputs, bool) {
	if plan.AnnualRatePercent == nil || plan.Duration == nil ||
		plan.InstallmentsPaid == nil || plan.InstallmentAmount == nil {
		return inputs{}, false
	}
	ratePct := *plan.AnnualRatePercent
	amount := *plan.InstallmentAmount
	if !finite(ratePct) || !finite(amount) || ratePct < 0 {
		return inputs{}, false
	}
	if *plan.Duration <= 0 || *plan.InstallmentsPaid < 0 {
		return inputs{}, false
	}
	return inputs{
		amount:   amount,
		rate:     PeriodicRate(ratePct),
		duration: *plan.Duration,
		paid:     *plan.InstallmentsPaid,
	}, true
}

// Amortize returns a copy of plan with its EMI breakdown computed, or
// cleared when the plan is incomplete. It never fails.
func Amortize(plan model.InstallmentPlan) model.InstallmentPlan {
	out := plan
	in, ok := gate(plan)
	if !ok {
		out.EMI = nil
		return out
	}

	k := in.paid + 1
	interest := InterestComponent(in.rate, k, in.duration, in.amount)
	accumulated := math.Abs(FutureValue(in.rate, in.paid, in.amount))
	charge := ForeclosureChargeRate * accumulated

	out.EMI = &model.EMIBreakdown{
		PrincipalComponent: in.amount - interest,
		InterestComponent:  interest,
		ForeclosureCharge:  charge,
		ForeclosurePayoff:  accumulated + charge,
		Active:             in.paid < in.duration,
	}
	return out
}

// AmortizeAll amortizes every plan into a new slice.
func AmortizeAll(plans []model.InstallmentPlan) []model.InstallmentPlan {
	out := make([]model.InstallmentPlan, len(plans))
	for i, p := range plans {
		out[i] = Amortize(p)
	}
	return out
}

// Process runs Normalize then Amortize over every plan.
func Process(plans []model.InstallmentPlan) []model.InstallmentPlan {
	return AmortizeAll(NormalizeAll(plans))
}

// PeriodicRate converts an annual percentage rate to a monthly fraction.
func PeriodicRate(annualPercent float64) float64 {
	return annualPercent / 1200
}

// InterestComponent returns the interest portion of installment k of an
// n-period annuity paying amount per period at periodic rate r.
//
// The balance before installment k is amount*(1-(1+r)^-m)/r with
// m = n-k+1 installments left, so its interest is amount*(1-(1+r)^-m).
func InterestComponent(r float64, k, n int, amount float64) float64 {
	if r == 0 {
		return 0
	}
	m := n - k + 1
	return amount * (1 - math.Pow(1+r, float64(-m)))
}

// PrincipalComponent returns the principal portion of installment k.
func PrincipalComponent(r float64, k, n int, amount float64) float64 {
	if r == 0 {
		return amount
	}
	return amount - InterestComponent(r, k, n, amount)
}

// FutureValue returns the value after periods payments of amount at rate r,
// starting from zero, using the payer-negative sign convention.
func FutureValue(r float64, periods int, amount float64) float64 {
	if r == 0 {
		return -amount * float64(periods)
	}
	return -amount * (math.Pow(1+r, float64(periods)) - 1) / r
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
