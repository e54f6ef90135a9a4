package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/courierpay/payroll-engine/internal/config"
	"github.com/courierpay/payroll-engine/internal/domain"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			DefaultLoanInstallments: 3,
			OpenWeekScanLimit:       26,
			WeekStartWeekday:        int(time.Thursday),
			PreviewCacheTTL:         30 * time.Second,
		},
	}
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedWeek(store *memStore, seq int, start time.Time, status string) *domain.Week {
	week := &domain.Week{
		ID:         uuid.New(),
		ClosingSeq: seq,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 6),
		Status:     status,
		CreatedAt:  time.Now(),
	}
	store.weeks[week.ID] = week
	return week
}

func seedCourier(store *memStore, name string) *domain.Courier {
	courier := &domain.Courier{
		ID:          uuid.New(),
		DisplayName: name,
		Category:    domain.CourierCategoryWeekly,
		Active:      true,
		CreatedAt:   time.Now(),
	}
	store.couriers[courier.ID] = courier
	return courier
}

func seedRecord(store *memStore, week *domain.Week, courierID *uuid.UUID, fee string, status string, orderDate time.Time) *domain.DeliveryRecord {
	record := &domain.DeliveryRecord{
		ID:         uuid.New(),
		CourierID:  courierID,
		PayableFee: dec(fee),
		Status:     status,
		OrderDate:  orderDate,
		WeekID:     week.ID,
		CreatedAt:  time.Now(),
	}
	store.records[record.ID] = record
	return record
}

func seedLedgerEntry(store *memStore, week *domain.Week, courierID uuid.UUID, entryType, amount string, effective time.Time) *domain.LedgerEntry {
	entry := &domain.LedgerEntry{
		ID:            uuid.New(),
		CourierID:     courierID,
		WeekID:        week.ID,
		EffectiveDate: effective,
		Type:          entryType,
		Amount:        dec(amount),
		CreatedAt:     time.Now(),
	}
	store.entries[entry.ID] = entry
	return entry
}

func seedPlan(store *memStore, courierID uuid.UUID, total string, startSeq int, amounts ...string) (*domain.LoanPlan, []*domain.LoanInstallment) {
	now := time.Now()
	plan := &domain.LoanPlan{
		ID:              uuid.New(),
		CourierID:       courierID,
		TotalAmount:     dec(total),
		NInstallments:   len(amounts),
		RoundingMode:    domain.RoundingSubUnit,
		Status:          domain.PlanStatusActive,
		StartClosingSeq: startSeq,
		CreatedAt:       now,
	}
	store.plans[plan.ID] = plan

	installments := make([]*domain.LoanInstallment, 0, len(amounts))
	for i, amount := range amounts {
		installment := &domain.LoanInstallment{
			ID:            uuid.New(),
			PlanID:        plan.ID,
			InstallmentNo: i + 1,
			DueClosingSeq: startSeq + i,
			Amount:        dec(amount),
			PaidAmount:    decimal.Zero,
			Status:        domain.InstallmentStatusDue,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		store.installments[installment.ID] = installment
		installments = append(installments, installment)
	}
	return plan, installments
}
