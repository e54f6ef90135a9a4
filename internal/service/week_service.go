package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/courierpay/payroll-engine/internal/config"
	"github.com/courierpay/payroll-engine/internal/domain"
	"github.com/courierpay/payroll-engine/internal/repository"
	customError "github.com/courierpay/payroll-engine/pkg/errors"
	"github.com/courierpay/payroll-engine/pkg/utils"
)

const dateLayout = "2006-01-02"

func fmtDate(t time.Time) string {
	return t.Format(dateLayout)
}

// WeekService owns the week lifecycle: lazy creation anchored to the
// configured weekday, overlap validation and the monotonic closing_seq.
type WeekService struct {
	store  repository.Store
	config *config.Config
	logger zerolog.Logger
}

func NewWeekService(store repository.Store, cfg *config.Config, logger zerolog.Logger) *WeekService {
	return &WeekService{
		store:  store,
		config: cfg,
		logger: logger,
	}
}

// ResolveWeekForDate returns the week containing d, creating it when no week
// covers the date yet.
func (s *WeekService) ResolveWeekForDate(ctx context.Context, d time.Time) (*domain.Week, error) {
	return s.resolveWeekForDate(ctx, s.store, d)
}

func (s *WeekService) resolveWeekForDate(ctx context.Context, st repository.Store, d time.Time) (*domain.Week, error) {
	day := utils.DateOnly(d)

	week, err := st.Weeks().FindByDate(ctx, day)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if week != nil {
		return week, nil
	}

	start := utils.WeekStart(day, s.config.WeekStartWeekday())
	end := start.AddDate(0, 0, 6)

	conflict, err := st.Weeks().FindOverlapping(ctx, start, end, nil)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if conflict != nil {
		return nil, customError.WrapWeekOverlap(
			fmtDate(start), fmtDate(end),
			conflict.ID.String(), fmtDate(conflict.StartDate), fmtDate(conflict.EndDate),
		)
	}

	maxSeq, err := st.Weeks().MaxClosingSeq(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	week = &domain.Week{
		ID:         uuid.New(),
		ClosingSeq: maxSeq + 1,
		StartDate:  start,
		EndDate:    end,
		Status:     domain.WeekStatusOpen,
		CreatedAt:  time.Now(),
	}

	if err := st.Weeks().Create(ctx, week); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info().
		Str("week_id", week.ID.String()).
		Int("closing_seq", week.ClosingSeq).
		Str("start_date", fmtDate(start)).
		Str("end_date", fmtDate(end)).
		Msg("week created")

	return week, nil
}

// OpenWeekOnOrAfter walks forward week by week from the week containing d
// until an OPEN one is found. The walk is bounded; when it exhausts, the last
// examined week is returned so the caller can decide what to do with it.
func (s *WeekService) OpenWeekOnOrAfter(ctx context.Context, d time.Time) (*domain.Week, error) {
	return s.openWeekOnOrAfter(ctx, s.store, d)
}

func (s *WeekService) openWeekOnOrAfter(ctx context.Context, st repository.Store, d time.Time) (*domain.Week, error) {
	week, err := s.resolveWeekForDate(ctx, st, d)
	if err != nil {
		return nil, err
	}

	for i := 0; i < s.config.Business.OpenWeekScanLimit; i++ {
		if week.IsOpen() {
			return week, nil
		}
		cursor := week.EndDate.AddDate(0, 0, 1)
		week, err = s.resolveWeekForDate(ctx, st, cursor)
		if err != nil {
			return nil, err
		}
	}

	if !week.IsOpen() {
		s.logger.Warn().
			Str("week_id", week.ID.String()).
			Int("scan_limit", s.config.Business.OpenWeekScanLimit).
			Msg("no open week found within scan limit")
	}

	return week, nil
}

// GetWeek retrieves a week by id.
func (s *WeekService) GetWeek(ctx context.Context, weekID uuid.UUID) (*domain.Week, error) {
	week, err := s.store.Weeks().GetByID(ctx, weekID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapWeekNotFound(weekID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return week, nil
}

// ListWeeks returns all weeks, newest first.
func (s *WeekService) ListWeeks(ctx context.Context) ([]*domain.Week, error) {
	weeks, err := s.store.Weeks().List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return weeks, nil
}

// validateNoOverlap re-checks the non-overlap invariant for an existing week,
// defending against out-of-band edits before a closing freezes the range.
func (s *WeekService) validateNoOverlap(ctx context.Context, st repository.Store, week *domain.Week) error {
	conflict, err := st.Weeks().FindOverlapping(ctx, week.StartDate, week.EndDate, &week.ID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if conflict != nil {
		return customError.WrapWeekOverlap(
			fmtDate(week.StartDate), fmtDate(week.EndDate),
			conflict.ID.String(), fmtDate(conflict.StartDate), fmtDate(conflict.EndDate),
		)
	}
	return nil
}
