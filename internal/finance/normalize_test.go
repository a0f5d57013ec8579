package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fintrack/internal/model"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestNormalize_ThirtyDayMonths(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"full year", "2025-01-01", "2025-12-31", 12},
		{"exactly thirty days", "2025-01-01", "2025-01-31", 1},
		{"twenty nine days", "2025-01-01", "2025-01-30", 0},
		{"same day", "2025-03-10", "2025-03-10", 0},
		{"reversed by one day", "2025-03-10", "2025-03-09", -1},
		{"reversed by sixty days", "2025-03-01", "2024-12-31", -2},
		{"leap year february", "2024-02-01", "2024-03-02", 1},
		{"four centuries", "1800-01-01", "2200-01-01", 4869},
		{"four centuries reversed", "2200-01-01", "1800-01-01", -4870},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(model.InstallmentPlan{
				StartDate: date(t, tt.start),
				EndDate:   date(t, tt.end),
			})
			require.NotNil(t, got.Duration)
			assert.Equal(t, tt.want, *got.Duration)
		})
	}
}

func TestNormalize_MissingDateClearsDuration(t *testing.T) {
	stale := 7
	plans := []model.InstallmentPlan{
		{StartDate: date(t, "2025-01-01"), Duration: &stale},
		{EndDate: date(t, "2025-01-01"), Duration: &stale},
		{Duration: &stale},
	}
	for i, p := range plans {
		got := Normalize(p)
		assert.Nil(t, got.Duration, "plan %d", i)
	}
}

func TestNormalize_IgnoresTimeOfDayAndZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	got := Normalize(model.InstallmentPlan{
		StartDate: time.Date(2025, 1, 1, 23, 59, 0, 0, ist),
		EndDate:   time.Date(2025, 1, 31, 0, 1, 0, 0, time.UTC),
	})
	require.NotNil(t, got.Duration)
	assert.Equal(t, 1, *got.Duration)
}

func TestNormalizeAll_DoesNotMutateInput(t *testing.T) {
	in := []model.InstallmentPlan{
		{CardName: "a", StartDate: date(t, "2025-01-01"), EndDate: date(t, "2025-12-31")},
		{CardName: "b"},
	}
	out := NormalizeAll(in)

	require.Len(t, out, 2)
	assert.Nil(t, in[0].Duration)
	require.NotNil(t, out[0].Duration)
	assert.Equal(t, 12, *out[0].Duration)
	assert.Nil(t, out[1].Duration)
	assert.Equal(t, "b", out[1].CardName)
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, 12, floorDiv(364, 30))
	assert.Equal(t, 0, floorDiv(0, 30))
	assert.Equal(t, -1, floorDiv(-1, 30))
	assert.Equal(t, -1, floorDiv(-30, 30))
	assert.Equal(t, -2, floorDiv(-31, 30))
}
