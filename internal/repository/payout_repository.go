package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/courierpay/payroll-engine/internal/domain"
)

type payoutRepository struct {
	db sqlx.ExtContext
}

func (r *payoutRepository) DeleteForWeek(ctx context.Context, weekID uuid.UUID) error {
	query := `DELETE FROM week_payouts WHERE week_id = $1`

	_, err := r.db.ExecContext(ctx, query, weekID)
	return err
}

func (r *payoutRepository) Insert(ctx context.Context, payouts []*domain.WeekPayout) error {
	query := `
		INSERT INTO week_payouts (id, week_id, courier_id, rides_count, rides_amount, extras_amount, vales_amount,
			installments_amount, net_amount, pending_count, is_flag_red, computed_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	for _, payout := range payouts {
		_, err := r.db.ExecContext(ctx, query,
			payout.ID,
			payout.WeekID,
			payout.CourierID,
			payout.RidesCount,
			payout.RidesAmount,
			payout.ExtrasAmount,
			payout.ValesAmount,
			payout.InstallmentsAmount,
			payout.NetAmount,
			payout.PendingCount,
			payout.IsFlagRed,
			payout.ComputedAt,
			payout.PaidAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *payoutRepository) ListForWeek(ctx context.Context, weekID uuid.UUID) ([]*domain.SnapshotRow, error) {
	query := `
		SELECT wp.id, wp.week_id, wp.courier_id, wp.rides_count, wp.rides_amount, wp.extras_amount, wp.vales_amount,
			wp.installments_amount, wp.net_amount, wp.pending_count, wp.is_flag_red, wp.computed_at, wp.paid_at,
			c.display_name AS courier_name
		FROM week_payouts wp
		LEFT JOIN couriers c ON c.id = wp.courier_id
		WHERE wp.week_id = $1
		ORDER BY (wp.courier_id IS NULL), LOWER(c.display_name)
	`

	var rows []*domain.SnapshotRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, weekID); err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *payoutRepository) StampPaid(ctx context.Context, weekID uuid.UUID, paidAt time.Time) (int64, error) {
	query := `UPDATE week_payouts SET paid_at = $2 WHERE week_id = $1`

	result, err := r.db.ExecContext(ctx, query, weekID, paidAt)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
