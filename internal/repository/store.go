package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store aggregates the repositories behind one handle. ExecTx runs a closure
// against transaction-bound repositories so multi-step operations (week
// closing in particular) commit or roll back as a unit.
type Store interface {
	Weeks() WeekRepository
	Couriers() CourierRepository
	Deliveries() DeliveryRepository
	DeliveryEvents() DeliveryEventRepository
	Ledger() LedgerRepository
	Loans() LoanRepository
	Payouts() PayoutRepository

	ExecTx(ctx context.Context, fn func(Store) error) error
}

type sqlStore struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

// NewStore creates a Postgres-backed store.
func NewStore(db *sqlx.DB) Store {
	return &sqlStore{db: db, ext: db}
}

func (s *sqlStore) Weeks() WeekRepository                   { return &weekRepository{db: s.ext} }
func (s *sqlStore) Couriers() CourierRepository             { return &courierRepository{db: s.ext} }
func (s *sqlStore) Deliveries() DeliveryRepository          { return &deliveryRepository{db: s.ext} }
func (s *sqlStore) DeliveryEvents() DeliveryEventRepository { return &deliveryEventRepository{db: s.ext} }
func (s *sqlStore) Ledger() LedgerRepository                { return &ledgerRepository{db: s.ext} }
func (s *sqlStore) Loans() LoanRepository                   { return &loanRepository{db: s.ext} }
func (s *sqlStore) Payouts() PayoutRepository               { return &payoutRepository{db: s.ext} }

// ExecTx starts a transaction and runs fn against a store bound to it. When
// the receiver is already transaction-bound, fn runs in the same transaction.
func (s *sqlStore) ExecTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := s.ext.(*sqlx.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlStore{db: s.db, ext: tx}); err != nil {
		return err
	}

	return tx.Commit()
}
