package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
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

// unassignedSortKey sorts the nil-courier bucket after every named courier.
const unassignedSortKey = "\uffff"

// PayoutService computes per-courier payout previews and drives the week
// closing and payment transitions.
type PayoutService struct {
	store  repository.Store
	weeks  *WeekService
	loans  *LoanService
	cache  *previewCache
	logger zerolog.Logger
}

func NewPayoutService(
	store repository.Store,
	weeks *WeekService,
	loans *LoanService,
	rdb *redis.Client,
	cfg *config.Config,
	logger zerolog.Logger,
) *PayoutService {
	return &PayoutService{
		store:  store,
		weeks:  weeks,
		loans:  loans,
		cache:  newPreviewCache(rdb, cfg.Business.PreviewCacheTTL),
		logger: logger,
	}
}

// ComputePreview returns the unsaved per-courier payout rows for a week.
// installments_amount is always zero here; the amortizer only runs at
// closing time. Preview results may be served from a short-lived cache.
func (s *PayoutService) ComputePreview(ctx context.Context, weekID uuid.UUID) ([]*domain.PayoutRow, error) {
	week, err := s.weeks.GetWeek(ctx, weekID)
	if err != nil {
		return nil, err
	}

	if rows, ok := s.cache.Get(ctx, week.ID); ok {
		return rows, nil
	}

	rows, err := s.buildRows(ctx, s.store, week)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, week.ID, rows)
	return rows, nil
}

// buildRows merges delivery and ledger aggregates into one row per courier
// plus the unassigned bucket, name-ordered.
func (s *PayoutService) buildRows(ctx context.Context, st repository.Store, week *domain.Week) ([]*domain.PayoutRow, error) {
	deliveryTotals, err := st.Deliveries().TotalsByCourier(ctx, week.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	ledgerTotals, err := st.Ledger().TotalsByCourier(ctx, week.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	couriers, err := st.Couriers().List(ctx, false)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	names := make(map[uuid.UUID]string, len(couriers))
	for _, courier := range couriers {
		names[courier.ID] = courier.DisplayName
	}

	rows := make(map[uuid.UUID]*domain.PayoutRow)
	rowFor := func(courierID *uuid.UUID) *domain.PayoutRow {
		key := uuid.Nil
		if courierID != nil {
			key = *courierID
		}
		if row, ok := rows[key]; ok {
			return row
		}
		row := &domain.PayoutRow{
			CourierID:          courierID,
			CourierName:        domain.UnassignedLabel,
			RidesAmount:        decimal.Zero,
			ExtrasAmount:       decimal.Zero,
			ValesAmount:        decimal.Zero,
			InstallmentsAmount: decimal.Zero,
			NetAmount:          decimal.Zero,
		}
		if courierID != nil {
			row.CourierName = names[*courierID]
		}
		rows[key] = row
		return row
	}

	for _, totals := range deliveryTotals {
		row := rowFor(totals.CourierID)
		row.RidesCount = totals.RidesCount
		row.RidesAmount = totals.RidesAmount
		row.PendingCount = totals.PendingCount
	}

	for _, totals := range ledgerTotals {
		courierID := totals.CourierID
		row := rowFor(&courierID)
		row.ExtrasAmount = totals.ExtrasAmount
		row.ValesAmount = totals.ValesAmount
	}

	out := make([]*domain.PayoutRow, 0, len(rows))
	for _, row := range rows {
		row.NetAmount = row.RidesAmount.Add(row.ExtrasAmount).Sub(row.ValesAmount).Sub(row.InstallmentsAmount)
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		return rowSortKey(out[i]) < rowSortKey(out[j])
	})

	return out, nil
}

func rowSortKey(row *domain.PayoutRow) string {
	if row.CourierID == nil {
		return unassignedSortKey
	}
	return strings.ToLower(row.CourierName)
}

// CloseWeek freezes a week: recomputes the payout inside one transaction,
// runs the amortizer per courier, replaces the snapshot rows and flips the
// week to CLOSED. Any failure rolls the whole transition back.
func (s *PayoutService) CloseWeek(ctx context.Context, weekID uuid.UUID) (*domain.CloseWeekResult, error) {
	var result *domain.CloseWeekResult

	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		week, err := st.Weeks().GetByIDForUpdate(ctx, weekID)
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapWeekNotFound(weekID.String())
		}
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		if week.Status != domain.WeekStatusOpen {
			return customError.WrapWeekNotOpen(week.ID.String(), week.Status)
		}

		if err := s.weeks.validateNoOverlap(ctx, st, week); err != nil {
			return err
		}

		rows, err := s.buildRows(ctx, st, week)
		if err != nil {
			return err
		}

		pendingTotal := 0
		unassignedRides := 0
		for _, row := range rows {
			pendingTotal += row.PendingCount
			if row.CourierID == nil {
				unassignedRides += row.RidesCount
			}
		}
		if pendingTotal > 0 || unassignedRides > 0 {
			return customError.WrapWeekHasPendings(week.ID.String(), pendingTotal, unassignedRides)
		}

		now := time.Now()
		payouts := make([]*domain.WeekPayout, 0, len(rows))
		for _, row := range rows {
			if row.CourierID != nil {
				budget := utils.NonNegative(row.NetAmount)
				applied, flagRed, err := s.loans.applyDueInstallments(ctx, st, *row.CourierID, week.ID, week.ClosingSeq, budget)
				if err != nil {
					return err
				}
				row.InstallmentsAmount = applied
				row.IsFlagRed = flagRed
				row.NetAmount = row.NetAmount.Sub(applied)
			}

			payouts = append(payouts, &domain.WeekPayout{
				ID:                 uuid.New(),
				WeekID:             week.ID,
				CourierID:          row.CourierID,
				RidesCount:         row.RidesCount,
				RidesAmount:        row.RidesAmount,
				ExtrasAmount:       row.ExtrasAmount,
				ValesAmount:        row.ValesAmount,
				InstallmentsAmount: row.InstallmentsAmount,
				NetAmount:          row.NetAmount,
				PendingCount:       row.PendingCount,
				IsFlagRed:          row.IsFlagRed,
				ComputedAt:         now,
			})
		}

		if err := st.Payouts().DeleteForWeek(ctx, week.ID); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := st.Payouts().Insert(ctx, payouts); err != nil {
			return customError.WrapDatabaseError(err)
		}

		if err := st.Weeks().UpdateStatus(ctx, week.ID, domain.WeekStatusClosed); err != nil {
			return customError.WrapDatabaseError(err)
		}

		result = &domain.CloseWeekResult{
			WeekID:      week.ID,
			Status:      domain.WeekStatusClosed,
			PayoutCount: len(payouts),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, weekID)
	s.logger.Info().
		Str("week_id", weekID.String()).
		Int("payout_count", result.PayoutCount).
		Msg("week closed")

	return result, nil
}

// PayWeek marks a CLOSED week's snapshot as paid. The snapshot itself is
// never recomputed; PAID is a pure stamping of frozen rows.
func (s *PayoutService) PayWeek(ctx context.Context, weekID uuid.UUID) (*domain.PayWeekResult, error) {
	var result *domain.PayWeekResult

	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		week, err := st.Weeks().GetByIDForUpdate(ctx, weekID)
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapWeekNotFound(weekID.String())
		}
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		if week.Status != domain.WeekStatusClosed {
			return customError.WrapWeekNotClosed(week.ID.String(), week.Status)
		}

		now := time.Now()
		if err := st.Weeks().UpdateStatus(ctx, week.ID, domain.WeekStatusPaid); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if _, err := st.Payouts().StampPaid(ctx, week.ID, now); err != nil {
			return customError.WrapDatabaseError(err)
		}

		result = &domain.PayWeekResult{
			WeekID: week.ID,
			Status: domain.WeekStatusPaid,
			PaidAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, weekID)
	s.logger.Info().
		Str("week_id", weekID.String()).
		Time("paid_at", result.PaidAt).
		Msg("week paid")

	return result, nil
}

// GetSnapshot returns the frozen payout rows of a closed or paid week.
func (s *PayoutService) GetSnapshot(ctx context.Context, weekID uuid.UUID) ([]*domain.SnapshotRow, error) {
	if _, err := s.weeks.GetWeek(ctx, weekID); err != nil {
		return nil, err
	}

	rows, err := s.store.Payouts().ListForWeek(ctx, weekID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return rows, nil
}
