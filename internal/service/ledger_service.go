package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/courierpay/payroll-engine/internal/config"
	"github.com/courierpay/payroll-engine/internal/domain"
	"github.com/courierpay/payroll-engine/internal/repository"
	customError "github.com/courierpay/payroll-engine/pkg/errors"
	"github.com/courierpay/payroll-engine/pkg/utils"
)

// LedgerService records EXTRA credits and VALE advances. VALE requests run
// through the advance guard: the cash handed out on a day may never exceed
// what the courier earned that day, and the excess is financed as a loan.
type LedgerService struct {
	store  repository.Store
	config *config.Config
	cache  *previewCache
	logger zerolog.Logger
}

func NewLedgerService(store repository.Store, rdb *redis.Client, cfg *config.Config, logger zerolog.Logger) *LedgerService {
	return &LedgerService{
		store:  store,
		config: cfg,
		cache:  newPreviewCache(rdb, cfg.Business.PreviewCacheTTL),
		logger: logger,
	}
}

// CreateEntry writes a ledger entry into an OPEN week. EXTRA entries are
// stored as-is. VALE entries are capped at the courier's remaining same-day
// earnings; any overflow becomes an auto loan plan amortized starting at the
// closing after this week's.
func (s *LedgerService) CreateEntry(ctx context.Context, request *domain.CreateLedgerEntryRequest) (*domain.CreateLedgerEntryResult, error) {
	if !request.Amount.IsPositive() {
		return nil, customError.WrapInvalidLedgerAmount(request.Amount.String())
	}
	if request.Type != domain.LedgerTypeExtra && request.Type != domain.LedgerTypeVale {
		return nil, customError.WrapInvalidLedgerType(request.Type)
	}

	day, err := time.Parse(dateLayout, request.EffectiveDate)
	if err != nil {
		return nil, fmt.Errorf("parse effective_date: %w", err)
	}

	var result *domain.CreateLedgerEntryResult
	err = s.store.ExecTx(ctx, func(st repository.Store) error {
		week, err := st.Weeks().GetByIDForUpdate(ctx, request.WeekID)
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapWeekNotFound(request.WeekID.String())
		}
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if week.Status != domain.WeekStatusOpen {
			return customError.WrapWeekNotOpen(week.ID.String(), week.Status)
		}
		if !week.Contains(day) {
			return customError.WrapDateOutsideWeek(week.ID.String(), fmtDate(day))
		}

		if _, err := st.Couriers().GetByID(ctx, request.CourierID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapCourierNotFound(request.CourierID.String())
			}
			return customError.WrapDatabaseError(err)
		}

		if request.Type == domain.LedgerTypeExtra {
			entry, err := s.insertEntry(ctx, st, request, day, request.Amount)
			if err != nil {
				return err
			}
			result = &domain.CreateLedgerEntryResult{
				Entry:      entry,
				ValeAmount: decimal.Zero,
				LoanAmount: decimal.Zero,
			}
			return nil
		}

		result, err = s.applyAdvanceGuard(ctx, st, request, week, day)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, request.WeekID)
	event := s.logger.Info().
		Str("courier_id", request.CourierID.String()).
		Str("week_id", request.WeekID.String()).
		Str("type", request.Type).
		Str("requested", request.Amount.String())
	if request.Type == domain.LedgerTypeVale {
		event = event.
			Str("vale_amount", result.ValeAmount.String()).
			Str("loan_amount", result.LoanAmount.String())
	}
	event.Msg("ledger entry created")

	return result, nil
}

// applyAdvanceGuard splits a VALE request into the cash the same-day cap
// allows and the overflow, which becomes an auto loan plan starting at the
// current week's closing.
func (s *LedgerService) applyAdvanceGuard(ctx context.Context, st repository.Store, request *domain.CreateLedgerEntryRequest, week *domain.Week, day time.Time) (*domain.CreateLedgerEntryResult, error) {
	dayGain, err := st.Deliveries().DayGain(ctx, request.CourierID, week.ID, day)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	valesSoFar, err := st.Ledger().SumValesForDay(ctx, request.CourierID, week.ID, day)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	available := utils.NonNegative(dayGain.Sub(valesSoFar))
	valeAmount := decimal.Min(request.Amount, available)
	loanAmount := request.Amount.Sub(valeAmount)

	result := &domain.CreateLedgerEntryResult{
		ValeAmount: valeAmount,
		LoanAmount: loanAmount,
	}

	if valeAmount.IsPositive() {
		entry, err := s.insertEntry(ctx, st, request, day, valeAmount)
		if err != nil {
			return nil, err
		}
		result.Entry = entry
	}

	if loanAmount.IsPositive() {
		note := fmt.Sprintf("auto-financed VALE overflow on %s", fmtDate(day))
		plan, installments := buildPlan(
			request.CourierID,
			loanAmount,
			s.config.Business.DefaultLoanInstallments,
			domain.RoundingSubUnit,
			week.ClosingSeq+1,
			&note,
		)

		if err := st.Loans().CreatePlan(ctx, plan); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		if err := st.Loans().CreateInstallments(ctx, installments); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		result.LoanPlanID = &plan.ID
	}

	return result, nil
}

func (s *LedgerService) insertEntry(ctx context.Context, st repository.Store, request *domain.CreateLedgerEntryRequest, day time.Time, amount decimal.Decimal) (*domain.LedgerEntry, error) {
	entry := &domain.LedgerEntry{
		ID:              uuid.New(),
		CourierID:       request.CourierID,
		WeekID:          request.WeekID,
		EffectiveDate:   day,
		Type:            request.Type,
		Amount:          amount,
		RelatedRecordID: request.RelatedRecordID,
		Note:            request.Note,
		CreatedAt:       time.Now(),
	}
	if err := st.Ledger().Create(ctx, entry); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return entry, nil
}

// DeleteEntry removes a ledger entry. Entries belonging to closed or paid
// weeks are frozen and cannot be deleted.
func (s *LedgerService) DeleteEntry(ctx context.Context, entryID uuid.UUID) error {
	var weekID uuid.UUID

	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		entry, err := st.Ledger().GetByID(ctx, entryID)
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapLedgerNotFound(entryID.String())
		}
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		weekID = entry.WeekID

		week, err := st.Weeks().GetByIDForUpdate(ctx, entry.WeekID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if week.Status != domain.WeekStatusOpen {
			return customError.WrapWeekNotOpen(week.ID.String(), week.Status)
		}

		if err := st.Ledger().Delete(ctx, entryID); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, weekID)
	s.logger.Info().
		Str("entry_id", entryID.String()).
		Str("week_id", weekID.String()).
		Msg("ledger entry deleted")

	return nil
}

// ListWeekLedger returns a week's ledger entries, optionally filtered to a
// single courier.
func (s *LedgerService) ListWeekLedger(ctx context.Context, weekID uuid.UUID, courierID *uuid.UUID) ([]*domain.LedgerEntry, error) {
	if _, err := s.store.Weeks().GetByID(ctx, weekID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapWeekNotFound(weekID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	entries, err := s.store.Ledger().ListByWeek(ctx, weekID, courierID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return entries, nil
}
