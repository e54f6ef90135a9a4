package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PlanStatusActive = "ACTIVE"
	PlanStatusDone   = "DONE"
)

const (
	RoundingWholeUnit = "WHOLE_UNIT"
	RoundingSubUnit   = "SUB_UNIT"
)

const (
	InstallmentStatusDue       = "DUE"
	InstallmentStatusPartial   = "PARTIAL"
	InstallmentStatusRolled    = "ROLLED"
	InstallmentStatusPaid      = "PAID"
	InstallmentStatusCancelled = "CANCELLED"
)

// LoanPlan splits a debt into fixed installments due at consecutive week
// closings starting at StartClosingSeq. Created automatically when a cash
// advance exceeds the same-day cap, or manually.
type LoanPlan struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	CourierID       uuid.UUID       `json:"courier_id" db:"courier_id"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	NInstallments   int             `json:"n_installments" db:"n_installments"`
	RoundingMode    string          `json:"rounding_mode" db:"rounding_mode"`
	Status          string          `json:"status" db:"status"`
	StartClosingSeq int             `json:"start_closing_seq" db:"start_closing_seq"`
	Note            *string         `json:"note,omitempty" db:"note"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// LoanInstallment amounts are fixed at creation; paid_amount only increases.
// An unpaid installment has its due seq pushed forward at every closing that
// could not settle it.
type LoanInstallment struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	PlanID        uuid.UUID       `json:"plan_id" db:"plan_id"`
	InstallmentNo int             `json:"installment_no" db:"installment_no"`
	DueClosingSeq int             `json:"due_closing_seq" db:"due_closing_seq"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	Status        string          `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// Remaining returns the unpaid portion of the installment.
func (i *LoanInstallment) Remaining() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// IsOpen reports whether the installment can still receive applications.
func (i *LoanInstallment) IsOpen() bool {
	switch i.Status {
	case InstallmentStatusDue, InstallmentStatusPartial, InstallmentStatusRolled:
		return true
	}
	return false
}

// InstallmentApplication is the append-only audit record of how an
// installment was paid down: one row per partial or full application during
// a week closing. Never mutated or deleted.
type InstallmentApplication struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	InstallmentID uuid.UUID       `json:"installment_id" db:"installment_id"`
	WeekID        uuid.UUID       `json:"week_id" db:"week_id"`
	AppliedAmount decimal.Decimal `json:"applied_amount" db:"applied_amount"`
	AppliedAt     time.Time       `json:"applied_at" db:"applied_at"`
	Note          *string         `json:"note,omitempty" db:"note"`
}

type CreateLoanPlanRequest struct {
	CourierID       uuid.UUID       `json:"courier_id" validate:"required"`
	TotalAmount     decimal.Decimal `json:"total_amount" validate:"required,decimal_gt=0"`
	NInstallments   int             `json:"n_installments" validate:"required,gte=1"`
	RoundingMode    string          `json:"rounding_mode" validate:"required,oneof=WHOLE_UNIT SUB_UNIT"`
	StartClosingSeq int             `json:"start_closing_seq" validate:"required,gte=1"`
	Note            *string         `json:"note"`
}

type CreateLoanPlanResponse struct {
	Plan         *LoanPlan          `json:"plan"`
	Installments []*LoanInstallment `json:"installments"`
}
