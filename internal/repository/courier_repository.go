package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/courierpay/payroll-engine/internal/domain"
)

type courierRepository struct {
	db sqlx.ExtContext
}

const courierColumns = `id, display_name, full_name, category, active, created_at`

func (r *courierRepository) Create(ctx context.Context, courier *domain.Courier) error {
	query := `
		INSERT INTO couriers (id, display_name, full_name, category, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		courier.ID,
		courier.DisplayName,
		courier.FullName,
		courier.Category,
		courier.Active,
		courier.CreatedAt,
	)

	return err
}

func (r *courierRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Courier, error) {
	query := `SELECT ` + courierColumns + ` FROM couriers WHERE id = $1`

	var courier domain.Courier
	if err := sqlx.GetContext(ctx, r.db, &courier, query, id); err != nil {
		return nil, err
	}

	return &courier, nil
}

func (r *courierRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Courier, error) {
	query := `
		SELECT ` + courierColumns + `
		FROM couriers
		WHERE ($1 = FALSE OR active = TRUE)
		ORDER BY LOWER(display_name)
	`

	var couriers []*domain.Courier
	if err := sqlx.SelectContext(ctx, r.db, &couriers, query, activeOnly); err != nil {
		return nil, err
	}

	return couriers, nil
}
