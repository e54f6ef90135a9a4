package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/courierpay/payroll-engine/internal/domain"
)

type weekRepository struct {
	db sqlx.ExtContext
}

const weekColumns = `id, closing_seq, start_date, end_date, status, note, created_at`

func (r *weekRepository) Create(ctx context.Context, week *domain.Week) error {
	query := `
		INSERT INTO weeks (id, closing_seq, start_date, end_date, status, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		week.ID,
		week.ClosingSeq,
		week.StartDate,
		week.EndDate,
		week.Status,
		week.Note,
		week.CreatedAt,
	)

	return err
}

func (r *weekRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Week, error) {
	query := `SELECT ` + weekColumns + ` FROM weeks WHERE id = $1`

	var week domain.Week
	if err := sqlx.GetContext(ctx, r.db, &week, query, id); err != nil {
		return nil, err
	}

	return &week, nil
}

func (r *weekRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Week, error) {
	query := `SELECT ` + weekColumns + ` FROM weeks WHERE id = $1 FOR UPDATE`

	var week domain.Week
	if err := sqlx.GetContext(ctx, r.db, &week, query, id); err != nil {
		return nil, err
	}

	return &week, nil
}

func (r *weekRepository) FindByDate(ctx context.Context, d time.Time) (*domain.Week, error) {
	query := `
		SELECT ` + weekColumns + `
		FROM weeks
		WHERE start_date <= $1 AND end_date >= $1
		LIMIT 1
	`

	var week domain.Week
	err := sqlx.GetContext(ctx, r.db, &week, query, d)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &week, nil
}

func (r *weekRepository) FindOverlapping(ctx context.Context, start, end time.Time, excludeID *uuid.UUID) (*domain.Week, error) {
	query := `
		SELECT ` + weekColumns + `
		FROM weeks
		WHERE start_date <= $2 AND end_date >= $1
		  AND ($3::uuid IS NULL OR id <> $3)
		LIMIT 1
	`

	var week domain.Week
	err := sqlx.GetContext(ctx, r.db, &week, query, start, end, excludeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &week, nil
}

func (r *weekRepository) MaxClosingSeq(ctx context.Context) (int, error) {
	query := `SELECT COALESCE(MAX(closing_seq), 0) FROM weeks`

	var seq int
	if err := sqlx.GetContext(ctx, r.db, &seq, query); err != nil {
		return 0, err
	}

	return seq, nil
}

func (r *weekRepository) List(ctx context.Context) ([]*domain.Week, error) {
	query := `SELECT ` + weekColumns + ` FROM weeks ORDER BY start_date DESC`

	var weeks []*domain.Week
	if err := sqlx.SelectContext(ctx, r.db, &weeks, query); err != nil {
		return nil, err
	}

	return weeks, nil
}

func (r *weekRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE weeks SET status = $2 WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}
