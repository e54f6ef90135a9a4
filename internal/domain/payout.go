package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WeekPayout is the frozen per-courier snapshot written when a week closes.
// Rows are fully replaced by a closing and only paid_at is stamped afterwards.
type WeekPayout struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	WeekID             uuid.UUID       `json:"week_id" db:"week_id"`
	CourierID          *uuid.UUID      `json:"courier_id" db:"courier_id"`
	RidesCount         int             `json:"rides_count" db:"rides_count"`
	RidesAmount        decimal.Decimal `json:"rides_amount" db:"rides_amount"`
	ExtrasAmount       decimal.Decimal `json:"extras_amount" db:"extras_amount"`
	ValesAmount        decimal.Decimal `json:"vales_amount" db:"vales_amount"`
	InstallmentsAmount decimal.Decimal `json:"installments_amount" db:"installments_amount"`
	NetAmount          decimal.Decimal `json:"net_amount" db:"net_amount"`
	PendingCount       int             `json:"pending_count" db:"pending_count"`
	IsFlagRed          bool            `json:"is_flag_red" db:"is_flag_red"`
	ComputedAt         time.Time       `json:"computed_at" db:"computed_at"`
	PaidAt             *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
}

// PayoutRow is one line of the per-courier payout preview. CourierID is nil
// for the unassigned bucket. net = rides + extras - vales - installments.
type PayoutRow struct {
	CourierID          *uuid.UUID      `json:"courier_id"`
	CourierName        string          `json:"courier_name"`
	RidesCount         int             `json:"rides_count"`
	RidesAmount        decimal.Decimal `json:"rides_amount"`
	ExtrasAmount       decimal.Decimal `json:"extras_amount"`
	ValesAmount        decimal.Decimal `json:"vales_amount"`
	InstallmentsAmount decimal.Decimal `json:"installments_amount"`
	NetAmount          decimal.Decimal `json:"net_amount"`
	PendingCount       int             `json:"pending_count"`
	IsFlagRed          bool            `json:"is_flag_red"`
}

// SnapshotRow is a WeekPayout joined with the courier display name.
type SnapshotRow struct {
	WeekPayout
	CourierName *string `json:"courier_name" db:"courier_name"`
}

// Query projections used by the preview aggregation.

// DeliveryTotals groups in-scope, non-cancelled delivery records by courier.
type DeliveryTotals struct {
	CourierID    *uuid.UUID      `db:"courier_id"`
	RidesCount   int             `db:"rides_count"`
	RidesAmount  decimal.Decimal `db:"rides_amount"`
	PendingCount int             `db:"pending_count"`
}

// LedgerTotals groups ledger entries by courier for one week.
type LedgerTotals struct {
	CourierID    uuid.UUID       `db:"courier_id"`
	ExtrasAmount decimal.Decimal `db:"extras_amount"`
	ValesAmount  decimal.Decimal `db:"vales_amount"`
}
