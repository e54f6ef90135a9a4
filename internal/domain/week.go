package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/courierpay/payroll-engine/pkg/utils"
)

// Week lifecycle is strictly forward: OPEN -> CLOSED -> PAID.
const (
	WeekStatusOpen   = "OPEN"
	WeekStatusClosed = "CLOSED"
	WeekStatusPaid   = "PAID"
)

// Week is a payroll period. Date ranges never overlap across weeks and
// closing_seq strictly increases with creation order.
type Week struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ClosingSeq int       `json:"closing_seq" db:"closing_seq"`
	StartDate  time.Time `json:"start_date" db:"start_date"`
	EndDate    time.Time `json:"end_date" db:"end_date"`
	Status     string    `json:"status" db:"status"`
	Note       *string   `json:"note,omitempty" db:"note"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Contains reports whether the civil date d falls within [StartDate, EndDate].
func (w *Week) Contains(d time.Time) bool {
	return utils.WithinRange(d, w.StartDate, w.EndDate)
}

// IsOpen reports whether the week still accepts mutations.
func (w *Week) IsOpen() bool {
	return w.Status == WeekStatusOpen
}

type CloseWeekResult struct {
	WeekID      uuid.UUID `json:"week_id"`
	Status      string    `json:"status"`
	PayoutCount int       `json:"payout_count"`
}

type PayWeekResult struct {
	WeekID uuid.UUID `json:"week_id"`
	Status string    `json:"status"`
	PaidAt time.Time `json:"paid_at"`
}
