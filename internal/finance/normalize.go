// Package finance computes the derived fields of credit-card installment
// plans: duration, the principal/interest split of the next installment,
// foreclosure cost, and whether the plan is still running.
package finance

import (
	"time"

	"github.com/theirongolddev/fintrack/internal/model"
)

// DaysPerMonth is the fixed month length used for plan durations.
const DaysPerMonth = 30

// Normalize returns a copy of plan with Duration set from its dates, or
// cleared when either date is missing. Reversed ranges are not an error;
// they produce a zero or negative duration.
func Normalize(plan model.InstallmentPlan) model.InstallmentPlan {
	out := plan
	if plan.StartDate.IsZero() || plan.EndDate.IsZero() {
		out.Duration = nil
		return out
	}
	d := floorDiv(daysBetween(plan.StartDate, plan.EndDate), DaysPerMonth)
	out.Duration = &d
	return out
}

// NormalizeAll normalizes every plan into a new slice.
func NormalizeAll(plans []model.InstallmentPlan) []model.InstallmentPlan {
	out := make([]model.InstallmentPlan, len(plans))
	for i, p := range plans {
		out[i] = Normalize(p)
	}
	return out
}

// daysBetween counts whole calendar days from start to end, ignoring time
// of day and zone offsets. Unix seconds keep ranges beyond time.Duration's
// ~292 year limit exact.
func daysBetween(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int((e.Unix() - s.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
