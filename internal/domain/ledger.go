package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LedgerTypeExtra = "EXTRA"
	LedgerTypeVale  = "VALE"
)

// LedgerEntry is a one-off credit (EXTRA) or cash advance (VALE) against a
// courier's weekly pay. Amount is always positive; the type decides the sign
// in the payout formula. Entries are deletable only while the week is OPEN.
type LedgerEntry struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	CourierID       uuid.UUID       `json:"courier_id" db:"courier_id"`
	WeekID          uuid.UUID       `json:"week_id" db:"week_id"`
	EffectiveDate   time.Time       `json:"effective_date" db:"effective_date"`
	Type            string          `json:"type" db:"type"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	RelatedRecordID *uuid.UUID      `json:"related_record_id,omitempty" db:"related_record_id"`
	Note            *string         `json:"note,omitempty" db:"note"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

type CreateLedgerEntryRequest struct {
	CourierID       uuid.UUID       `json:"courier_id" validate:"required"`
	WeekID          uuid.UUID       `json:"week_id" validate:"required"`
	EffectiveDate   string          `json:"effective_date" validate:"required,datetime=2006-01-02"`
	Type            string          `json:"type" validate:"required,oneof=EXTRA VALE"`
	Amount          decimal.Decimal `json:"amount" validate:"required,decimal_gt=0"`
	RelatedRecordID *uuid.UUID      `json:"related_record_id"`
	Note            *string         `json:"note"`
}

// CreateLedgerEntryResult reports what a ledger write actually did. A VALE
// request may be split: ValeAmount is what the same-day cap allowed, the
// remainder is financed as a loan plan.
type CreateLedgerEntryResult struct {
	Entry      *LedgerEntry    `json:"entry,omitempty"`
	ValeAmount decimal.Decimal `json:"vale_amount"`
	LoanAmount decimal.Decimal `json:"loan_amount"`
	LoanPlanID *uuid.UUID      `json:"loan_plan_id,omitempty"`
}
