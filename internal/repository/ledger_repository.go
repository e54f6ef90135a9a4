package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/courierpay/payroll-engine/internal/domain"
)

type ledgerRepository struct {
	db sqlx.ExtContext
}

const ledgerColumns = `id, courier_id, week_id, effective_date, type, amount, related_record_id, note, created_at`

func (r *ledgerRepository) Create(ctx context.Context, entry *domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, courier_id, week_id, effective_date, type, amount, related_record_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.CourierID,
		entry.WeekID,
		entry.EffectiveDate,
		entry.Type,
		entry.Amount,
		entry.RelatedRecordID,
		entry.Note,
		entry.CreatedAt,
	)

	return err
}

func (r *ledgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE id = $1`

	var entry domain.LedgerEntry
	if err := sqlx.GetContext(ctx, r.db, &entry, query, id); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *ledgerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM ledger_entries WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *ledgerRepository) ListByWeek(ctx context.Context, weekID uuid.UUID, courierID *uuid.UUID) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE week_id = $1
		  AND ($2::uuid IS NULL OR courier_id = $2)
		ORDER BY effective_date, created_at
	`

	var entries []*domain.LedgerEntry
	if err := sqlx.SelectContext(ctx, r.db, &entries, query, weekID, courierID); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *ledgerRepository) TotalsByCourier(ctx context.Context, weekID uuid.UUID) ([]*domain.LedgerTotals, error) {
	query := `
		SELECT
			courier_id,
			COALESCE(SUM(amount) FILTER (WHERE type = 'EXTRA'), 0) AS extras_amount,
			COALESCE(SUM(amount) FILTER (WHERE type = 'VALE'), 0)  AS vales_amount
		FROM ledger_entries
		WHERE week_id = $1
		GROUP BY courier_id
	`

	var totals []*domain.LedgerTotals
	if err := sqlx.SelectContext(ctx, r.db, &totals, query, weekID); err != nil {
		return nil, err
	}

	return totals, nil
}

func (r *ledgerRepository) SumValesForDay(ctx context.Context, courierID, weekID uuid.UUID, day time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE courier_id = $1 AND week_id = $2 AND effective_date = $3 AND type = 'VALE'
	`

	var total decimal.Decimal
	if err := sqlx.GetContext(ctx, r.db, &total, query, courierID, weekID, day); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
