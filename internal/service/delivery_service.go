package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/courierpay/payroll-engine/internal/config"
	"github.com/courierpay/payroll-engine/internal/domain"
	"github.com/courierpay/payroll-engine/internal/repository"
	customError "github.com/courierpay/payroll-engine/pkg/errors"
)

// DeliveryService handles the one mutation the engine performs on delivery
// records: assigning a courier after ingestion left the record pending. When
// the record's home week is no longer open, the fee can be redirected into
// the next open week instead of retro-editing a frozen payout.
type DeliveryService struct {
	store  repository.Store
	weeks  *WeekService
	cache  *previewCache
	logger zerolog.Logger
}

func NewDeliveryService(store repository.Store, weeks *WeekService, rdb *redis.Client, cfg *config.Config, logger zerolog.Logger) *DeliveryService {
	return &DeliveryService{
		store:  store,
		weeks:  weeks,
		cache:  newPreviewCache(rdb, cfg.Business.PreviewCacheTTL),
		logger: logger,
	}
}

// AssignDelivery assigns a courier to a record and marks it OK. For records
// whose home week has already closed, pay_in_current_week routes the fee into
// the next open week; every late assignment leaves an event trail.
func (s *DeliveryService) AssignDelivery(ctx context.Context, recordID uuid.UUID, request *domain.AssignDeliveryRequest) (*domain.AssignDeliveryResult, error) {
	var result *domain.AssignDeliveryResult
	touchedWeeks := make([]uuid.UUID, 0, 2)

	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		record, err := st.Deliveries().GetByID(ctx, recordID)
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapDeliveryNotFound(recordID.String())
		}
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		if _, err := st.Couriers().GetByID(ctx, request.CourierID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapCourierNotFound(request.CourierID.String())
			}
			return customError.WrapDatabaseError(err)
		}

		homeWeek, err := st.Weeks().GetByID(ctx, record.WeekID)
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapWeekNotFound(record.WeekID.String())
		}
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		touchedWeeks = append(touchedWeeks, homeWeek.ID)

		var paidInWeekID *uuid.UUID
		if !homeWeek.IsOpen() && request.PayInCurrentWeek {
			target, err := s.weeks.openWeekOnOrAfter(ctx, st, time.Now())
			if err != nil {
				return err
			}
			paidInWeekID = &target.ID
			touchedWeeks = append(touchedWeeks, target.ID)
		}

		if err := st.Deliveries().UpdateAssignment(ctx, record.ID, request.CourierID, domain.DeliveryStatusOK, paidInWeekID); err != nil {
			return customError.WrapDatabaseError(err)
		}

		// Ordinary assignments into a still-open home week leave no trail;
		// events mark assignments that happened after the week froze.
		if !homeWeek.IsOpen() {
			now := time.Now()
			events := []*domain.DeliveryEvent{{
				ID:        uuid.New(),
				RecordID:  record.ID,
				Kind:      domain.DeliveryEventLateAssignment,
				WeekID:    &homeWeek.ID,
				CreatedAt: now,
			}}
			if paidInWeekID != nil {
				events = append(events, &domain.DeliveryEvent{
					ID:        uuid.New(),
					RecordID:  record.ID,
					Kind:      domain.DeliveryEventRedirectedClosedWeek,
					WeekID:    paidInWeekID,
					CreatedAt: now,
				})
			}
			for _, event := range events {
				if err := st.DeliveryEvents().Create(ctx, event); err != nil {
					return customError.WrapDatabaseError(err)
				}
			}
		}

		result = &domain.AssignDeliveryResult{
			RecordID:     record.ID,
			CourierID:    request.CourierID,
			PaidInWeekID: paidInWeekID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, touchedWeeks...)
	event := s.logger.Info().
		Str("record_id", recordID.String()).
		Str("courier_id", request.CourierID.String())
	if result.PaidInWeekID != nil {
		event = event.Str("paid_in_week_id", result.PaidInWeekID.String())
	}
	event.Msg("delivery assigned")

	return result, nil
}

// ListRecordEvents returns the side-effect trail of a record.
func (s *DeliveryService) ListRecordEvents(ctx context.Context, recordID uuid.UUID) ([]*domain.DeliveryEvent, error) {
	if _, err := s.store.Deliveries().GetByID(ctx, recordID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapDeliveryNotFound(recordID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	events, err := s.store.DeliveryEvents().ListByRecord(ctx, recordID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return events, nil
}
