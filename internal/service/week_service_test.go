package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courierpay/payroll-engine/internal/domain"
	customError "github.com/courierpay/payroll-engine/pkg/errors"
)

func newWeekService(store *memStore) *WeekService {
	return NewWeekService(store, newTestConfig(), testLogger())
}

func TestResolveWeekForDate_CreatesThursdayAnchoredWeek(t *testing.T) {
	store := newMemStore()
	service := newWeekService(store)

	// 2026-08-31 is a Monday; its week anchors on Thursday 2026-08-27.
	week, err := service.ResolveWeekForDate(context.Background(), date(2026, time.August, 31))

	require.NoError(t, err)
	assert.Equal(t, date(2026, time.August, 27), week.StartDate)
	assert.Equal(t, date(2026, time.September, 2), week.EndDate)
	assert.Equal(t, domain.WeekStatusOpen, week.Status)
	assert.Equal(t, 1, week.ClosingSeq)
}

func TestResolveWeekForDate_AnchorDayMapsToItself(t *testing.T) {
	store := newMemStore()
	service := newWeekService(store)

	week, err := service.ResolveWeekForDate(context.Background(), date(2026, time.August, 27))

	require.NoError(t, err)
	assert.Equal(t, date(2026, time.August, 27), week.StartDate)
}

func TestResolveWeekForDate_ReusesExistingWeek(t *testing.T) {
	store := newMemStore()
	service := newWeekService(store)

	first, err := service.ResolveWeekForDate(context.Background(), date(2026, time.August, 28))
	require.NoError(t, err)

	second, err := service.ResolveWeekForDate(context.Background(), date(2026, time.September, 1))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.weeks, 1)
}

func TestResolveWeekForDate_ClosingSeqIncreases(t *testing.T) {
	store := newMemStore()
	service := newWeekService(store)

	first, err := service.ResolveWeekForDate(context.Background(), date(2026, time.August, 27))
	require.NoError(t, err)
	second, err := service.ResolveWeekForDate(context.Background(), date(2026, time.September, 3))
	require.NoError(t, err)

	assert.Equal(t, 1, first.ClosingSeq)
	assert.Equal(t, 2, second.ClosingSeq)
}

func TestOpenWeekOnOrAfter_SkipsClosedWeeks(t *testing.T) {
	store := newMemStore()
	service := newWeekService(store)

	closed := seedWeek(store, 1, date(2026, time.August, 27), domain.WeekStatusClosed)

	week, err := service.OpenWeekOnOrAfter(context.Background(), date(2026, time.August, 28))

	require.NoError(t, err)
	assert.NotEqual(t, closed.ID, week.ID)
	assert.Equal(t, domain.WeekStatusOpen, week.Status)
	assert.Equal(t, date(2026, time.September, 3), week.StartDate)
}

func TestGetWeek_NotFound(t *testing.T) {
	store := newMemStore()
	service := newWeekService(store)

	_, err := service.GetWeek(context.Background(), uuid.New())

	require.Error(t, err)
	var businessErr *customError.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, customError.ErrCodeWeekNotFound, businessErr.Code)
}

func TestValidateNoOverlap_DetectsConflict(t *testing.T) {
	store := newMemStore()
	service := newWeekService(store)

	week := seedWeek(store, 1, date(2026, time.August, 27), domain.WeekStatusOpen)
	// Conflicting week sharing part of the range, simulating an out-of-band
	// edit.
	seedWeek(store, 2, date(2026, time.August, 30), domain.WeekStatusOpen)

	err := service.validateNoOverlap(context.Background(), store, week)

	require.Error(t, err)
	var businessErr *customError.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, customError.ErrCodeWeekOverlap, businessErr.Code)
}
