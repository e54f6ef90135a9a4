package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/courierpay/payroll-engine/internal/domain"
	"github.com/courierpay/payroll-engine/internal/repository"
)

// memStore is an in-memory repository.Store used by the service tests. It
// mirrors the SQL repositories' scoping and ordering rules so the services
// run unchanged against it.
type memStore struct {
	weeks        map[uuid.UUID]*domain.Week
	couriers     map[uuid.UUID]*domain.Courier
	records      map[uuid.UUID]*domain.DeliveryRecord
	events       []*domain.DeliveryEvent
	entries      map[uuid.UUID]*domain.LedgerEntry
	plans        map[uuid.UUID]*domain.LoanPlan
	installments map[uuid.UUID]*domain.LoanInstallment
	applications []*domain.InstallmentApplication
	payouts      map[uuid.UUID]*domain.WeekPayout

	// createApplicationErr, when set, is returned by CreateApplication once
	// createApplicationOKCalls successful inserts have gone through. Lets a
	// test fail a closing partway and check the transaction rolls back.
	createApplicationErr     error
	createApplicationOKCalls int
}

func newMemStore() *memStore {
	return &memStore{
		weeks:        make(map[uuid.UUID]*domain.Week),
		couriers:     make(map[uuid.UUID]*domain.Courier),
		records:      make(map[uuid.UUID]*domain.DeliveryRecord),
		entries:      make(map[uuid.UUID]*domain.LedgerEntry),
		plans:        make(map[uuid.UUID]*domain.LoanPlan),
		installments: make(map[uuid.UUID]*domain.LoanInstallment),
		payouts:      make(map[uuid.UUID]*domain.WeekPayout),
	}
}

func (m *memStore) Weeks() repository.WeekRepository                   { return (*memWeeks)(m) }
func (m *memStore) Couriers() repository.CourierRepository             { return (*memCouriers)(m) }
func (m *memStore) Deliveries() repository.DeliveryRepository          { return (*memDeliveries)(m) }
func (m *memStore) DeliveryEvents() repository.DeliveryEventRepository { return (*memEvents)(m) }
func (m *memStore) Ledger() repository.LedgerRepository                { return (*memLedger)(m) }
func (m *memStore) Loans() repository.LoanRepository                   { return (*memLoans)(m) }
func (m *memStore) Payouts() repository.PayoutRepository               { return (*memPayouts)(m) }

// ExecTx mirrors the SQL transaction semantics: when fn fails, every mutation
// it made is rolled back.
func (m *memStore) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	snapshot := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *memStore) snapshot() *memStore {
	s := newMemStore()
	for id, week := range m.weeks {
		copied := *week
		s.weeks[id] = &copied
	}
	for id, courier := range m.couriers {
		copied := *courier
		s.couriers[id] = &copied
	}
	for id, record := range m.records {
		copied := *record
		s.records[id] = &copied
	}
	for id, entry := range m.entries {
		copied := *entry
		s.entries[id] = &copied
	}
	for id, plan := range m.plans {
		copied := *plan
		s.plans[id] = &copied
	}
	for id, installment := range m.installments {
		copied := *installment
		s.installments[id] = &copied
	}
	for id, payout := range m.payouts {
		copied := *payout
		s.payouts[id] = &copied
	}
	// Events and applications are append-only and never mutated in place, so
	// copying the slice headers is enough.
	s.events = append([]*domain.DeliveryEvent(nil), m.events...)
	s.applications = append([]*domain.InstallmentApplication(nil), m.applications...)
	return s
}

func (m *memStore) restore(s *memStore) {
	m.weeks = s.weeks
	m.couriers = s.couriers
	m.records = s.records
	m.events = s.events
	m.entries = s.entries
	m.plans = s.plans
	m.installments = s.installments
	m.applications = s.applications
	m.payouts = s.payouts
}

// inScope mirrors the SQL scoping rule for delivery records.
func (m *memStore) inScope(record *domain.DeliveryRecord, weekID uuid.UUID) bool {
	if record.PaidInWeekID != nil {
		return *record.PaidInWeekID == weekID
	}
	return record.WeekID == weekID
}

type memWeeks memStore

func (m *memWeeks) Create(ctx context.Context, week *domain.Week) error {
	copied := *week
	m.weeks[week.ID] = &copied
	return nil
}

func (m *memWeeks) GetByID(ctx context.Context, id uuid.UUID) (*domain.Week, error) {
	week, ok := m.weeks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *week
	return &copied, nil
}

func (m *memWeeks) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Week, error) {
	return m.GetByID(ctx, id)
}

func (m *memWeeks) FindByDate(ctx context.Context, d time.Time) (*domain.Week, error) {
	for _, week := range m.weeks {
		if week.Contains(d) {
			copied := *week
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memWeeks) FindOverlapping(ctx context.Context, start, end time.Time, excludeID *uuid.UUID) (*domain.Week, error) {
	for _, week := range m.weeks {
		if excludeID != nil && week.ID == *excludeID {
			continue
		}
		if !week.StartDate.After(end) && !week.EndDate.Before(start) {
			copied := *week
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memWeeks) MaxClosingSeq(ctx context.Context) (int, error) {
	max := 0
	for _, week := range m.weeks {
		if week.ClosingSeq > max {
			max = week.ClosingSeq
		}
	}
	return max, nil
}

func (m *memWeeks) List(ctx context.Context) ([]*domain.Week, error) {
	out := make([]*domain.Week, 0, len(m.weeks))
	for _, week := range m.weeks {
		copied := *week
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (m *memWeeks) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	week, ok := m.weeks[id]
	if !ok {
		return sql.ErrNoRows
	}
	week.Status = status
	return nil
}

type memCouriers memStore

func (m *memCouriers) Create(ctx context.Context, courier *domain.Courier) error {
	copied := *courier
	m.couriers[courier.ID] = &copied
	return nil
}

func (m *memCouriers) GetByID(ctx context.Context, id uuid.UUID) (*domain.Courier, error) {
	courier, ok := m.couriers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *courier
	return &copied, nil
}

func (m *memCouriers) List(ctx context.Context, activeOnly bool) ([]*domain.Courier, error) {
	out := make([]*domain.Courier, 0, len(m.couriers))
	for _, courier := range m.couriers {
		if activeOnly && !courier.Active {
			continue
		}
		copied := *courier
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].DisplayName) < strings.ToLower(out[j].DisplayName)
	})
	return out, nil
}

type memDeliveries memStore

func (m *memDeliveries) GetByID(ctx context.Context, id uuid.UUID) (*domain.DeliveryRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *record
	return &copied, nil
}

func (m *memDeliveries) TotalsByCourier(ctx context.Context, weekID uuid.UUID) ([]*domain.DeliveryTotals, error) {
	byCourier := make(map[uuid.UUID]*domain.DeliveryTotals)
	order := make([]uuid.UUID, 0)

	for _, record := range m.records {
		if !(*memStore)(m).inScope(record, weekID) || record.IsCancelled ||
			record.Status == domain.DeliveryStatusDiscarded {
			continue
		}

		key := uuid.Nil
		if record.CourierID != nil {
			key = *record.CourierID
		}
		totals, ok := byCourier[key]
		if !ok {
			totals = &domain.DeliveryTotals{
				CourierID:   record.CourierID,
				RidesAmount: decimal.Zero,
			}
			byCourier[key] = totals
			order = append(order, key)
		}

		switch {
		case record.Status == domain.DeliveryStatusOK:
			totals.RidesCount++
			totals.RidesAmount = totals.RidesAmount.Add(record.PayableFee)
		case domain.IsPendingStatus(record.Status):
			totals.PendingCount++
		}
	}

	out := make([]*domain.DeliveryTotals, 0, len(order))
	for _, key := range order {
		out = append(out, byCourier[key])
	}
	return out, nil
}

func (m *memDeliveries) DayGain(ctx context.Context, courierID, weekID uuid.UUID, day time.Time) (decimal.Decimal, error) {
	gain := decimal.Zero
	for _, record := range m.records {
		if !(*memStore)(m).inScope(record, weekID) || record.IsCancelled {
			continue
		}
		if record.CourierID == nil || *record.CourierID != courierID {
			continue
		}
		if record.Status != domain.DeliveryStatusOK || !record.OrderDate.Equal(day) {
			continue
		}
		gain = gain.Add(record.PayableFee)
	}
	return gain, nil
}

func (m *memDeliveries) UpdateAssignment(ctx context.Context, id, courierID uuid.UUID, status string, paidInWeekID *uuid.UUID) error {
	record, ok := m.records[id]
	if !ok {
		return sql.ErrNoRows
	}
	record.CourierID = &courierID
	record.Status = status
	record.PaidInWeekID = paidInWeekID
	return nil
}

type memEvents memStore

func (m *memEvents) Create(ctx context.Context, event *domain.DeliveryEvent) error {
	copied := *event
	m.events = append(m.events, &copied)
	return nil
}

func (m *memEvents) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*domain.DeliveryEvent, error) {
	var out []*domain.DeliveryEvent
	for _, event := range m.events {
		if event.RecordID == recordID {
			copied := *event
			out = append(out, &copied)
		}
	}
	return out, nil
}

type memLedger memStore

func (m *memLedger) Create(ctx context.Context, entry *domain.LedgerEntry) error {
	copied := *entry
	m.entries[entry.ID] = &copied
	return nil
}

func (m *memLedger) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *entry
	return &copied, nil
}

func (m *memLedger) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.entries, id)
	return nil
}

func (m *memLedger) ListByWeek(ctx context.Context, weekID uuid.UUID, courierID *uuid.UUID) ([]*domain.LedgerEntry, error) {
	var out []*domain.LedgerEntry
	for _, entry := range m.entries {
		if entry.WeekID != weekID {
			continue
		}
		if courierID != nil && entry.CourierID != *courierID {
			continue
		}
		copied := *entry
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EffectiveDate.Equal(out[j].EffectiveDate) {
			return out[i].EffectiveDate.Before(out[j].EffectiveDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memLedger) TotalsByCourier(ctx context.Context, weekID uuid.UUID) ([]*domain.LedgerTotals, error) {
	byCourier := make(map[uuid.UUID]*domain.LedgerTotals)
	order := make([]uuid.UUID, 0)

	for _, entry := range m.entries {
		if entry.WeekID != weekID {
			continue
		}
		totals, ok := byCourier[entry.CourierID]
		if !ok {
			totals = &domain.LedgerTotals{
				CourierID:    entry.CourierID,
				ExtrasAmount: decimal.Zero,
				ValesAmount:  decimal.Zero,
			}
			byCourier[entry.CourierID] = totals
			order = append(order, entry.CourierID)
		}
		switch entry.Type {
		case domain.LedgerTypeExtra:
			totals.ExtrasAmount = totals.ExtrasAmount.Add(entry.Amount)
		case domain.LedgerTypeVale:
			totals.ValesAmount = totals.ValesAmount.Add(entry.Amount)
		}
	}

	out := make([]*domain.LedgerTotals, 0, len(order))
	for _, key := range order {
		out = append(out, byCourier[key])
	}
	return out, nil
}

func (m *memLedger) SumValesForDay(ctx context.Context, courierID, weekID uuid.UUID, day time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, entry := range m.entries {
		if entry.CourierID == courierID && entry.WeekID == weekID &&
			entry.Type == domain.LedgerTypeVale && entry.EffectiveDate.Equal(day) {
			total = total.Add(entry.Amount)
		}
	}
	return total, nil
}

type memLoans memStore

func (m *memLoans) CreatePlan(ctx context.Context, plan *domain.LoanPlan) error {
	copied := *plan
	m.plans[plan.ID] = &copied
	return nil
}

func (m *memLoans) GetPlan(ctx context.Context, id uuid.UUID) (*domain.LoanPlan, error) {
	plan, ok := m.plans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *plan
	return &copied, nil
}

func (m *memLoans) UpdatePlanStatus(ctx context.Context, id uuid.UUID, status string) error {
	plan, ok := m.plans[id]
	if !ok {
		return sql.ErrNoRows
	}
	plan.Status = status
	return nil
}

func (m *memLoans) CreateInstallments(ctx context.Context, installments []*domain.LoanInstallment) error {
	for _, installment := range installments {
		copied := *installment
		m.installments[installment.ID] = &copied
	}
	return nil
}

func (m *memLoans) DueInstallments(ctx context.Context, courierID uuid.UUID, maxSeq int) ([]*domain.LoanInstallment, error) {
	var out []*domain.LoanInstallment
	for _, installment := range m.installments {
		plan, ok := m.plans[installment.PlanID]
		if !ok || plan.CourierID != courierID || plan.Status != domain.PlanStatusActive {
			continue
		}
		if !installment.IsOpen() || installment.DueClosingSeq > maxSeq {
			continue
		}
		copied := *installment
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DueClosingSeq != out[j].DueClosingSeq {
			return out[i].DueClosingSeq < out[j].DueClosingSeq
		}
		planI, planJ := m.plans[out[i].PlanID], m.plans[out[j].PlanID]
		if !planI.CreatedAt.Equal(planJ.CreatedAt) {
			return planI.CreatedAt.Before(planJ.CreatedAt)
		}
		if out[i].PlanID != out[j].PlanID {
			return out[i].PlanID.String() < out[j].PlanID.String()
		}
		return out[i].InstallmentNo < out[j].InstallmentNo
	})
	return out, nil
}

func (m *memLoans) UpdateInstallment(ctx context.Context, installment *domain.LoanInstallment) error {
	if _, ok := m.installments[installment.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *installment
	m.installments[installment.ID] = &copied
	return nil
}

func (m *memLoans) OpenInstallmentCount(ctx context.Context, planID uuid.UUID) (int, error) {
	count := 0
	for _, installment := range m.installments {
		if installment.PlanID == planID && installment.IsOpen() {
			count++
		}
	}
	return count, nil
}

func (m *memLoans) CreateApplication(ctx context.Context, application *domain.InstallmentApplication) error {
	if m.createApplicationErr != nil {
		if m.createApplicationOKCalls == 0 {
			return m.createApplicationErr
		}
		m.createApplicationOKCalls--
	}
	copied := *application
	m.applications = append(m.applications, &copied)
	return nil
}

type memPayouts memStore

func (m *memPayouts) DeleteForWeek(ctx context.Context, weekID uuid.UUID) error {
	for id, payout := range m.payouts {
		if payout.WeekID == weekID {
			delete(m.payouts, id)
		}
	}
	return nil
}

func (m *memPayouts) Insert(ctx context.Context, payouts []*domain.WeekPayout) error {
	for _, payout := range payouts {
		copied := *payout
		m.payouts[payout.ID] = &copied
	}
	return nil
}

func (m *memPayouts) ListForWeek(ctx context.Context, weekID uuid.UUID) ([]*domain.SnapshotRow, error) {
	var out []*domain.SnapshotRow
	for _, payout := range m.payouts {
		if payout.WeekID != weekID {
			continue
		}
		row := &domain.SnapshotRow{WeekPayout: *payout}
		if payout.CourierID != nil {
			if courier, ok := m.couriers[*payout.CourierID]; ok {
				name := courier.DisplayName
				row.CourierName = &name
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		iNil, jNil := out[i].CourierID == nil, out[j].CourierID == nil
		if iNil != jNil {
			return jNil
		}
		if iNil {
			return false
		}
		return strings.ToLower(*out[i].CourierName) < strings.ToLower(*out[j].CourierName)
	})
	return out, nil
}

func (m *memPayouts) StampPaid(ctx context.Context, weekID uuid.UUID, paidAt time.Time) (int64, error) {
	var affected int64
	for _, payout := range m.payouts {
		if payout.WeekID == weekID {
			stamped := paidAt
			payout.PaidAt = &stamped
			affected++
		}
	}
	return affected, nil
}
