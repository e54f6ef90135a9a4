package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/courierpay/payroll-engine/internal/domain"
)

type deliveryRepository struct {
	db sqlx.ExtContext
}

// inScopeClause selects records that count for a week: home records without a
// redirect, plus records redirected into the week from elsewhere.
const inScopeClause = `((week_id = $1 AND paid_in_week_id IS NULL) OR paid_in_week_id = $1)`

func (r *deliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DeliveryRecord, error) {
	query := `
		SELECT id, courier_id, payable_fee, status, is_cancelled, order_date, week_id, paid_in_week_id, created_at
		FROM delivery_records
		WHERE id = $1
	`

	var record domain.DeliveryRecord
	if err := sqlx.GetContext(ctx, r.db, &record, query, id); err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *deliveryRepository) TotalsByCourier(ctx context.Context, weekID uuid.UUID) ([]*domain.DeliveryTotals, error) {
	query := `
		SELECT
			courier_id,
			COUNT(*) FILTER (WHERE status = 'OK')                              AS rides_count,
			COALESCE(SUM(payable_fee) FILTER (WHERE status = 'OK'), 0)         AS rides_amount,
			COUNT(*) FILTER (WHERE status IN ('PENDING_ASSIGNMENT', 'PENDING_REVIEW', 'PENDING_MATCH')) AS pending_count
		FROM delivery_records
		WHERE ` + inScopeClause + `
		  AND is_cancelled = FALSE
		  AND status <> 'DISCARDED'
		GROUP BY courier_id
	`

	var totals []*domain.DeliveryTotals
	if err := sqlx.SelectContext(ctx, r.db, &totals, query, weekID); err != nil {
		return nil, err
	}

	return totals, nil
}

func (r *deliveryRepository) DayGain(ctx context.Context, courierID, weekID uuid.UUID, day time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(payable_fee), 0)
		FROM delivery_records
		WHERE ` + inScopeClause + `
		  AND courier_id = $2
		  AND order_date = $3
		  AND status = 'OK'
		  AND is_cancelled = FALSE
	`

	var gain decimal.Decimal
	if err := sqlx.GetContext(ctx, r.db, &gain, query, weekID, courierID, day); err != nil {
		return decimal.Zero, err
	}

	return gain, nil
}

func (r *deliveryRepository) UpdateAssignment(ctx context.Context, id, courierID uuid.UUID, status string, paidInWeekID *uuid.UUID) error {
	query := `
		UPDATE delivery_records
		SET courier_id = $2, status = $3, paid_in_week_id = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, courierID, status, paidInWeekID)
	return err
}

type deliveryEventRepository struct {
	db sqlx.ExtContext
}

func (r *deliveryEventRepository) Create(ctx context.Context, event *domain.DeliveryEvent) error {
	query := `
		INSERT INTO delivery_events (id, record_id, kind, week_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.RecordID,
		event.Kind,
		event.WeekID,
		event.Note,
		event.CreatedAt,
	)

	return err
}

func (r *deliveryEventRepository) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*domain.DeliveryEvent, error) {
	query := `
		SELECT id, record_id, kind, week_id, note, created_at
		FROM delivery_events
		WHERE record_id = $1
		ORDER BY created_at
	`

	var events []*domain.DeliveryEvent
	if err := sqlx.SelectContext(ctx, r.db, &events, query, recordID); err != nil {
		return nil, err
	}

	return events, nil
}
