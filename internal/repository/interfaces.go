package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/courierpay/payroll-engine/internal/domain"
)

// WeekRepository defines the interface for week data operations
type WeekRepository interface {
	// Create inserts a new week
	Create(ctx context.Context, week *domain.Week) error

	// GetByID retrieves a week by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Week, error)

	// GetByIDForUpdate retrieves a week with a row lock; valid inside a
	// transaction only
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Week, error)

	// FindByDate returns the week whose range contains d, or nil
	FindByDate(ctx context.Context, d time.Time) (*domain.Week, error)

	// FindOverlapping returns any week whose range intersects [start, end],
	// optionally excluding one week id, or nil
	FindOverlapping(ctx context.Context, start, end time.Time, excludeID *uuid.UUID) (*domain.Week, error)

	// MaxClosingSeq returns the highest closing_seq, 0 when no weeks exist
	MaxClosingSeq(ctx context.Context) (int, error)

	// List returns all weeks ordered by start date descending
	List(ctx context.Context) ([]*domain.Week, error)

	// UpdateStatus sets the lifecycle status of a week
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// CourierRepository defines the interface for courier data operations
type CourierRepository interface {
	Create(ctx context.Context, courier *domain.Courier) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Courier, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Courier, error)
}

// DeliveryRepository defines the interface for delivery record operations.
// Records are produced externally; the engine only aggregates them and
// applies manual assignments.
type DeliveryRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DeliveryRecord, error)

	// TotalsByCourier aggregates in-scope, non-cancelled records for a week:
	// OK ride counts and fee sums plus pending counts, grouped by courier
	// (nil courier included)
	TotalsByCourier(ctx context.Context, weekID uuid.UUID) ([]*domain.DeliveryTotals, error)

	// DayGain sums payable fees of a courier's in-scope OK non-cancelled
	// records for one order date
	DayGain(ctx context.Context, courierID, weekID uuid.UUID, day time.Time) (decimal.Decimal, error)

	// UpdateAssignment sets courier, status and optional pay-in-week redirect
	UpdateAssignment(ctx context.Context, id, courierID uuid.UUID, status string, paidInWeekID *uuid.UUID) error
}

// DeliveryEventRepository appends typed side-effect events for records
type DeliveryEventRepository interface {
	Create(ctx context.Context, event *domain.DeliveryEvent) error
	ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*domain.DeliveryEvent, error)
}

// LedgerRepository defines the interface for ledger entry operations
type LedgerRepository interface {
	Create(ctx context.Context, entry *domain.LedgerEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByWeek returns a week's entries, optionally for one courier
	ListByWeek(ctx context.Context, weekID uuid.UUID, courierID *uuid.UUID) ([]*domain.LedgerEntry, error)

	// TotalsByCourier sums EXTRA and VALE amounts per courier for a week
	TotalsByCourier(ctx context.Context, weekID uuid.UUID) ([]*domain.LedgerTotals, error)

	// SumValesForDay sums a courier's VALE entries for one week and date
	SumValesForDay(ctx context.Context, courierID, weekID uuid.UUID, day time.Time) (decimal.Decimal, error)
}

// LoanRepository defines the interface for loan plan and installment
// operations
type LoanRepository interface {
	CreatePlan(ctx context.Context, plan *domain.LoanPlan) error
	GetPlan(ctx context.Context, id uuid.UUID) (*domain.LoanPlan, error)
	UpdatePlanStatus(ctx context.Context, id uuid.UUID, status string) error

	CreateInstallments(ctx context.Context, installments []*domain.LoanInstallment) error

	// DueInstallments returns open installments of a courier's ACTIVE plans
	// with due_closing_seq <= maxSeq, ordered by due_closing_seq, then plan
	// creation order, then installment_no
	DueInstallments(ctx context.Context, courierID uuid.UUID, maxSeq int) ([]*domain.LoanInstallment, error)

	// UpdateInstallment persists paid_amount, status and due_closing_seq
	UpdateInstallment(ctx context.Context, installment *domain.LoanInstallment) error

	// OpenInstallmentCount counts a plan's installments still in
	// DUE/PARTIAL/ROLLED
	OpenInstallmentCount(ctx context.Context, planID uuid.UUID) (int, error)

	CreateApplication(ctx context.Context, application *domain.InstallmentApplication) error
}

// PayoutRepository defines the interface for payout snapshot operations
type PayoutRepository interface {
	// DeleteForWeek removes all snapshot rows of a week
	DeleteForWeek(ctx context.Context, weekID uuid.UUID) error

	// Insert writes snapshot rows
	Insert(ctx context.Context, payouts []*domain.WeekPayout) error

	// ListForWeek returns snapshot rows with courier names, name-ordered,
	// unassigned bucket last
	ListForWeek(ctx context.Context, weekID uuid.UUID) ([]*domain.SnapshotRow, error)

	// StampPaid sets paid_at on all snapshot rows of a week
	StampPaid(ctx context.Context, weekID uuid.UUID, paidAt time.Time) (int64, error)
}
