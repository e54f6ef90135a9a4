package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/courierpay/payroll-engine/internal/domain"
	"github.com/courierpay/payroll-engine/internal/repository"
	customError "github.com/courierpay/payroll-engine/pkg/errors"
	"github.com/courierpay/payroll-engine/pkg/utils"
)

// paidEpsilon absorbs sub-cent residue when deciding an installment is
// settled. Amounts are 2-dp decimals, so anything at or below half a cent is
// treated as paid.
var paidEpsilon = decimal.RequireFromString("0.005")

// LoanService creates amortization plans and applies due installments
// against courier pay during week closing.
type LoanService struct {
	store  repository.Store
	logger zerolog.Logger
}

func NewLoanService(store repository.Store, logger zerolog.Logger) *LoanService {
	return &LoanService{
		store:  store,
		logger: logger,
	}
}

func granularityFor(roundingMode string) decimal.Decimal {
	if roundingMode == domain.RoundingWholeUnit {
		return decimal.NewFromInt(1)
	}
	return decimal.RequireFromString("0.01")
}

// buildPlan constructs a plan and its installments without persisting them.
// Installments carry the floored base amount except the last, which absorbs
// the remainder so the plan total splits with zero drift. Due seqs run from
// startSeq upward, one per subsequent closing.
func buildPlan(courierID uuid.UUID, total decimal.Decimal, n int, roundingMode string, startSeq int, note *string) (*domain.LoanPlan, []*domain.LoanInstallment) {
	now := time.Now()

	plan := &domain.LoanPlan{
		ID:              uuid.New(),
		CourierID:       courierID,
		TotalAmount:     total,
		NInstallments:   n,
		RoundingMode:    roundingMode,
		Status:          domain.PlanStatusActive,
		StartClosingSeq: startSeq,
		Note:            note,
		CreatedAt:       now,
	}

	amounts := utils.SplitAmounts(total, n, granularityFor(roundingMode))
	installments := make([]*domain.LoanInstallment, 0, n)
	for i, amount := range amounts {
		installments = append(installments, &domain.LoanInstallment{
			ID:            uuid.New(),
			PlanID:        plan.ID,
			InstallmentNo: i + 1,
			DueClosingSeq: startSeq + i,
			Amount:        amount,
			PaidAmount:    decimal.Zero,
			Status:        domain.InstallmentStatusDue,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	return plan, installments
}

// CreatePlan creates a manual loan plan with its installment schedule.
func (s *LoanService) CreatePlan(ctx context.Context, request *domain.CreateLoanPlanRequest) (*domain.CreateLoanPlanResponse, error) {
	if !request.TotalAmount.IsPositive() {
		return nil, customError.WrapInvalidPlan("total_amount must be positive")
	}
	if request.NInstallments < 1 {
		return nil, customError.WrapInvalidPlan("n_installments must be at least 1")
	}
	if request.RoundingMode != domain.RoundingWholeUnit && request.RoundingMode != domain.RoundingSubUnit {
		return nil, customError.WrapInvalidPlan("rounding_mode must be WHOLE_UNIT or SUB_UNIT")
	}

	var response *domain.CreateLoanPlanResponse
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		if _, err := st.Couriers().GetByID(ctx, request.CourierID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapCourierNotFound(request.CourierID.String())
			}
			return customError.WrapDatabaseError(err)
		}

		plan, installments := buildPlan(
			request.CourierID,
			request.TotalAmount,
			request.NInstallments,
			request.RoundingMode,
			request.StartClosingSeq,
			request.Note,
		)

		if err := st.Loans().CreatePlan(ctx, plan); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := st.Loans().CreateInstallments(ctx, installments); err != nil {
			return customError.WrapDatabaseError(err)
		}

		response = &domain.CreateLoanPlanResponse{Plan: plan, Installments: installments}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("plan_id", response.Plan.ID.String()).
		Str("courier_id", request.CourierID.String()).
		Str("total_amount", request.TotalAmount.String()).
		Int("n_installments", request.NInstallments).
		Msg("loan plan created")

	return response, nil
}

// applyDueInstallments settles a courier's due installments against the given
// budget during a closing at seq. Runs inside the closing transaction via st.
//
// Every installment with due_closing_seq <= seq gets at most the remaining
// budget applied, in due-seq order with older plans settled first. Fully
// settled installments become PAID; the rest become PARTIAL or ROLLED and
// have their due seq pushed to the next closing. Returns the budget actually
// consumed and whether unpaid due amount remains (the red flag).
func (s *LoanService) applyDueInstallments(ctx context.Context, st repository.Store, courierID, weekID uuid.UUID, seq int, budget decimal.Decimal) (decimal.Decimal, bool, error) {
	installments, err := st.Loans().DueInstallments(ctx, courierID, seq)
	if err != nil {
		return decimal.Zero, false, customError.WrapDatabaseError(err)
	}
	if len(installments) == 0 {
		return decimal.Zero, false, nil
	}

	budget = utils.NonNegative(budget)
	consumed := decimal.Zero
	stillDue := decimal.Zero
	now := time.Now()
	touchedPlans := make(map[uuid.UUID]bool)

	for _, installment := range installments {
		applied := decimal.Min(budget.Sub(consumed), installment.Remaining())
		applied = utils.NonNegative(applied)

		if applied.IsPositive() {
			application := &domain.InstallmentApplication{
				ID:            uuid.New(),
				InstallmentID: installment.ID,
				WeekID:        weekID,
				AppliedAmount: applied,
				AppliedAt:     now,
			}
			if err := st.Loans().CreateApplication(ctx, application); err != nil {
				return decimal.Zero, false, customError.WrapDatabaseError(err)
			}

			installment.PaidAmount = installment.PaidAmount.Add(applied)
			consumed = consumed.Add(applied)
		}

		remaining := installment.Remaining()
		if remaining.LessThanOrEqual(paidEpsilon) {
			installment.Status = domain.InstallmentStatusPaid
		} else {
			if applied.IsPositive() {
				installment.Status = domain.InstallmentStatusPartial
			} else {
				installment.Status = domain.InstallmentStatusRolled
			}
			// Reconsider at the next closing.
			installment.DueClosingSeq++
			stillDue = stillDue.Add(remaining)
		}

		if err := st.Loans().UpdateInstallment(ctx, installment); err != nil {
			return decimal.Zero, false, customError.WrapDatabaseError(err)
		}
		touchedPlans[installment.PlanID] = true
	}

	for planID := range touchedPlans {
		open, err := st.Loans().OpenInstallmentCount(ctx, planID)
		if err != nil {
			return decimal.Zero, false, customError.WrapDatabaseError(err)
		}
		if open == 0 {
			if err := st.Loans().UpdatePlanStatus(ctx, planID, domain.PlanStatusDone); err != nil {
				return decimal.Zero, false, customError.WrapDatabaseError(err)
			}
			s.logger.Info().
				Str("plan_id", planID.String()).
				Str("courier_id", courierID.String()).
				Msg("loan plan done")
		}
	}

	return consumed, stillDue.IsPositive(), nil
}
