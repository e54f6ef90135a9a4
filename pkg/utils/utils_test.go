package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestWeekStart_ThursdayAnchor(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"thursday maps to itself", date(2026, time.August, 27), date(2026, time.August, 27)},
		{"friday", date(2026, time.August, 28), date(2026, time.August, 27)},
		{"monday", date(2026, time.August, 31), date(2026, time.August, 27)},
		{"wednesday is the last day", date(2026, time.September, 2), date(2026, time.August, 27)},
		{"next thursday starts a new week", date(2026, time.September, 3), date(2026, time.September, 3)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, WeekStart(tc.in, time.Thursday))
		})
	}
}

func TestWeekStart_MondayAnchor(t *testing.T) {
	assert.Equal(t, date(2026, time.August, 31), WeekStart(date(2026, time.September, 6), time.Monday))
}

func TestWithinRange(t *testing.T) {
	start := date(2026, time.August, 27)
	end := date(2026, time.September, 2)

	assert.True(t, WithinRange(start, start, end))
	assert.True(t, WithinRange(end, start, end))
	assert.True(t, WithinRange(date(2026, time.August, 30), start, end))
	assert.False(t, WithinRange(date(2026, time.August, 26), start, end))
	assert.False(t, WithinRange(date(2026, time.September, 3), start, end))
}

func TestSplitAmounts_SumsExactly(t *testing.T) {
	wholeUnit := decimal.NewFromInt(1)
	subUnit := decimal.RequireFromString("0.01")

	cases := []struct {
		name        string
		total       string
		n           int
		granularity decimal.Decimal
		want        []string
	}{
		{"100 by 3 whole units", "100", 3, wholeUnit, []string{"33", "33", "34"}},
		{"50 by 3 cents", "50", 3, subUnit, []string{"16.66", "16.66", "16.68"}},
		{"even split", "90", 3, wholeUnit, []string{"30", "30", "30"}},
		{"single installment", "77.77", 1, subUnit, []string{"77.77"}},
		{"cent remainder", "0.05", 2, subUnit, []string{"0.02", "0.03"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			total := decimal.RequireFromString(tc.total)
			parts := SplitAmounts(total, tc.n, tc.granularity)

			require.Len(t, parts, tc.n)
			sum := decimal.Zero
			for i, part := range parts {
				assert.True(t, part.Equal(decimal.RequireFromString(tc.want[i])),
					"part %d: got %s want %s", i, part, tc.want[i])
				sum = sum.Add(part)
			}
			assert.True(t, sum.Equal(total))
		})
	}
}

func TestNonNegative(t *testing.T) {
	assert.True(t, NonNegative(decimal.RequireFromString("-3")).IsZero())
	assert.True(t, NonNegative(decimal.RequireFromString("3")).Equal(decimal.RequireFromString("3")))
	assert.True(t, NonNegative(decimal.Zero).IsZero())
}
