package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/courierpay/payroll-engine/internal/domain"
	"github.com/courierpay/payroll-engine/internal/repository"
	customError "github.com/courierpay/payroll-engine/pkg/errors"
)

type CourierService struct {
	store  repository.Store
	logger zerolog.Logger
}

func NewCourierService(store repository.Store, logger zerolog.Logger) *CourierService {
	return &CourierService{
		store:  store,
		logger: logger,
	}
}

func (s *CourierService) Create(ctx context.Context, request *domain.CreateCourierRequest) (*domain.Courier, error) {
	courier := &domain.Courier{
		ID:          uuid.New(),
		DisplayName: request.DisplayName,
		FullName:    request.FullName,
		Category:    request.Category,
		Active:      request.Active,
		CreatedAt:   time.Now(),
	}

	if err := s.store.Couriers().Create(ctx, courier); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info().
		Str("courier_id", courier.ID.String()).
		Str("display_name", courier.DisplayName).
		Msg("courier created")

	return courier, nil
}

func (s *CourierService) GetByID(ctx context.Context, courierID uuid.UUID) (*domain.Courier, error) {
	courier, err := s.store.Couriers().GetByID(ctx, courierID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapCourierNotFound(courierID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return courier, nil
}

func (s *CourierService) List(ctx context.Context, activeOnly bool) ([]*domain.Courier, error) {
	couriers, err := s.store.Couriers().List(ctx, activeOnly)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return couriers, nil
}
