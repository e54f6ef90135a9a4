package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DeliveryStatusOK                = "OK"
	DeliveryStatusPendingAssignment = "PENDING_ASSIGNMENT"
	DeliveryStatusPendingReview     = "PENDING_REVIEW"
	DeliveryStatusPendingMatch      = "PENDING_MATCH"
	DeliveryStatusDiscarded         = "DISCARDED"
)

// DeliveryRecord is produced by the external ingestion/matching pipeline and
// consumed read-only by the payout engine, except for manual assignment.
// A non-nil PaidInWeekID redirects the record into that week's aggregation
// instead of its home week.
type DeliveryRecord struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	CourierID    *uuid.UUID      `json:"courier_id" db:"courier_id"`
	PayableFee   decimal.Decimal `json:"payable_fee" db:"payable_fee"`
	Status       string          `json:"status" db:"status"`
	IsCancelled  bool            `json:"is_cancelled" db:"is_cancelled"`
	OrderDate    time.Time       `json:"order_date" db:"order_date"`
	WeekID       uuid.UUID       `json:"week_id" db:"week_id"`
	PaidInWeekID *uuid.UUID      `json:"paid_in_week_id" db:"paid_in_week_id"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// IsPendingStatus reports whether a delivery status is one of the PENDING_*
// variants that block week closing.
func IsPendingStatus(status string) bool {
	switch status {
	case DeliveryStatusPendingAssignment, DeliveryStatusPendingReview, DeliveryStatusPendingMatch:
		return true
	}
	return false
}

// DeliveryEvent kinds. The event table is the typed replacement for the
// free-form JSON annotations the legacy system attached to records.
const (
	DeliveryEventLateAssignment       = "LATE_ASSIGNMENT"
	DeliveryEventRedirectedClosedWeek = "REDIRECTED_CLOSED_WEEK"
)

// DeliveryEvent is an append-only side-effect log entry keyed by record id.
type DeliveryEvent struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	RecordID  uuid.UUID  `json:"record_id" db:"record_id"`
	Kind      string     `json:"kind" db:"kind"`
	WeekID    *uuid.UUID `json:"week_id,omitempty" db:"week_id"`
	Note      *string    `json:"note,omitempty" db:"note"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type AssignDeliveryRequest struct {
	CourierID        uuid.UUID `json:"courier_id" validate:"required"`
	PayInCurrentWeek bool      `json:"pay_in_current_week"`
}

type AssignDeliveryResult struct {
	RecordID     uuid.UUID  `json:"record_id"`
	CourierID    uuid.UUID  `json:"courier_id"`
	PaidInWeekID *uuid.UUID `json:"paid_in_week_id,omitempty"`
}
