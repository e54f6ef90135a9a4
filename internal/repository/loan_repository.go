package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/courierpay/payroll-engine/internal/domain"
)

type loanRepository struct {
	db sqlx.ExtContext
}

func (r *loanRepository) CreatePlan(ctx context.Context, plan *domain.LoanPlan) error {
	query := `
		INSERT INTO loan_plans (id, courier_id, total_amount, n_installments, rounding_mode, status, start_closing_seq, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		plan.ID,
		plan.CourierID,
		plan.TotalAmount,
		plan.NInstallments,
		plan.RoundingMode,
		plan.Status,
		plan.StartClosingSeq,
		plan.Note,
		plan.CreatedAt,
	)

	return err
}

func (r *loanRepository) GetPlan(ctx context.Context, id uuid.UUID) (*domain.LoanPlan, error) {
	query := `
		SELECT id, courier_id, total_amount, n_installments, rounding_mode, status, start_closing_seq, note, created_at
		FROM loan_plans
		WHERE id = $1
	`

	var plan domain.LoanPlan
	if err := sqlx.GetContext(ctx, r.db, &plan, query, id); err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *loanRepository) UpdatePlanStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE loan_plans SET status = $2 WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}

func (r *loanRepository) CreateInstallments(ctx context.Context, installments []*domain.LoanInstallment) error {
	query := `
		INSERT INTO loan_installments (id, plan_id, installment_no, due_closing_seq, amount, paid_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, installment := range installments {
		_, err := r.db.ExecContext(ctx, query,
			installment.ID,
			installment.PlanID,
			installment.InstallmentNo,
			installment.DueClosingSeq,
			installment.Amount,
			installment.PaidAmount,
			installment.Status,
			installment.CreatedAt,
			installment.UpdatedAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *loanRepository) DueInstallments(ctx context.Context, courierID uuid.UUID, maxSeq int) ([]*domain.LoanInstallment, error) {
	query := `
		SELECT i.id, i.plan_id, i.installment_no, i.due_closing_seq, i.amount, i.paid_amount, i.status, i.created_at, i.updated_at
		FROM loan_installments i
		JOIN loan_plans p ON p.id = i.plan_id
		WHERE p.courier_id = $1
		  AND p.status = 'ACTIVE'
		  AND i.status IN ('DUE', 'PARTIAL', 'ROLLED')
		  AND i.due_closing_seq <= $2
		ORDER BY i.due_closing_seq, p.created_at, p.id, i.installment_no
	`

	var installments []*domain.LoanInstallment
	if err := sqlx.SelectContext(ctx, r.db, &installments, query, courierID, maxSeq); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *loanRepository) UpdateInstallment(ctx context.Context, installment *domain.LoanInstallment) error {
	query := `
		UPDATE loan_installments
		SET paid_amount = $2, status = $3, due_closing_seq = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		installment.ID,
		installment.PaidAmount,
		installment.Status,
		installment.DueClosingSeq,
		time.Now(),
	)

	return err
}

func (r *loanRepository) OpenInstallmentCount(ctx context.Context, planID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM loan_installments
		WHERE plan_id = $1 AND status IN ('DUE', 'PARTIAL', 'ROLLED')
	`

	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, planID); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *loanRepository) CreateApplication(ctx context.Context, application *domain.InstallmentApplication) error {
	query := `
		INSERT INTO installment_applications (id, installment_id, week_id, applied_amount, applied_at, note)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		application.ID,
		application.InstallmentID,
		application.WeekID,
		application.AppliedAmount,
		application.AppliedAt,
		application.Note,
	)

	return err
}
