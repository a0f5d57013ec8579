package finance

import "github.com/theirongolddev/fintrack/internal/model"

// Schedule lists the principal/interest split of every installment of a
// plan. It returns nil for plans the engine would treat as incomplete.
// plan must already be normalized.
func Schedule(plan model.InstallmentPlan) []model.ScheduleEntry {
	in, ok := gate(plan)
	if !ok {
		return nil
	}

	entries := make([]model.ScheduleEntry, 0, in.duration)
	for k := 1; k <= in.duration; k++ {
		interest := InterestComponent(in.rate, k, in.duration, in.amount)
		entries = append(entries, model.ScheduleEntry{
			Installment: k,
			Principal:   in.amount - interest,
			Interest:    interest,
			Paid:        k <= in.paid,
		})
	}
	return entries
}
