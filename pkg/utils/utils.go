package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateOnly truncates a timestamp to its civil date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the nearest anchor weekday on or before d.
// With a Thursday anchor, any date from Thursday through Wednesday maps to
// that Thursday.
func WeekStart(d time.Time, anchor time.Weekday) time.Time {
	day := DateOnly(d)
	offset := (int(day.Weekday()) - int(anchor) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// WithinRange reports whether civil date d falls in [start, end].
func WithinRange(d, start, end time.Time) bool {
	day := DateOnly(d)
	return !day.Before(DateOnly(start)) && !day.After(DateOnly(end))
}

// SplitAmounts splits total into n parts at the given granularity (1 for
// whole units, 0.01 for cents). The first n-1 parts are the floored base and
// the last part absorbs the remainder, so the parts always sum to total
// exactly.
func SplitAmounts(total decimal.Decimal, n int, granularity decimal.Decimal) []decimal.Decimal {
	if n <= 1 {
		return []decimal.Decimal{total}
	}

	base := total.Div(decimal.NewFromInt(int64(n))).Div(granularity).Floor().Mul(granularity)
	last := total.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))

	parts := make([]decimal.Decimal, n)
	for i := 0; i < n-1; i++ {
		parts[i] = base
	}
	parts[n-1] = last
	return parts
}

// NonNegative clamps negative amounts to zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
