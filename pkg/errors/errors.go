package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrWeekNotFound        = errors.New("week not found")
	ErrWeekNotOpen         = errors.New("week is not open")
	ErrWeekNotClosed       = errors.New("week is not closed")
	ErrWeekHasPendings     = errors.New("week has pending deliveries")
	ErrWeekOverlap         = errors.New("week date range overlaps an existing week")
	ErrDateOutsideWeek     = errors.New("effective date falls outside the week range")
	ErrCourierNotFound     = errors.New("courier not found")
	ErrDeliveryNotFound    = errors.New("delivery record not found")
	ErrLedgerNotFound      = errors.New("ledger entry not found")
	ErrInvalidLedgerAmount = errors.New("ledger amount must be positive")
	ErrInvalidLedgerType   = errors.New("unknown ledger entry type")
	ErrInvalidPlan         = errors.New("invalid loan plan parameters")
)

// BusinessError represents a business logic error with a machine-readable
// code and contextual details for the caller to render.
type BusinessError struct {
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeWeekNotFound        = "WEEK_NOT_FOUND"
	ErrCodeWeekNotOpen         = "WEEK_NOT_OPEN"
	ErrCodeWeekNotClosed       = "WEEK_NOT_CLOSED"
	ErrCodeWeekHasPendings     = "WEEK_HAS_PENDINGS"
	ErrCodeWeekOverlap         = "WEEK_OVERLAP"
	ErrCodeDateOutsideWeek     = "DATE_OUTSIDE_WEEK"
	ErrCodeCourierNotFound     = "COURIER_NOT_FOUND"
	ErrCodeDeliveryNotFound    = "DELIVERY_NOT_FOUND"
	ErrCodeLedgerNotFound      = "LEDGER_NOT_FOUND"
	ErrCodeInvalidLedgerAmount = "INVALID_LEDGER_AMOUNT"
	ErrCodeInvalidLedgerType   = "INVALID_LEDGER_TYPE"
	ErrCodeInvalidPlan         = "INVALID_PLAN"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
)

// Wrap common errors with business context
func WrapWeekNotFound(weekID string) *BusinessError {
	return NewBusinessError(
		ErrCodeWeekNotFound,
		fmt.Sprintf("Week with ID %s not found", weekID),
		ErrWeekNotFound,
	)
}

func WrapWeekNotOpen(weekID, status string) *BusinessError {
	e := NewBusinessError(
		ErrCodeWeekNotOpen,
		fmt.Sprintf("Week %s is %s, expected OPEN", weekID, status),
		ErrWeekNotOpen,
	)
	e.Details = map[string]interface{}{"week_id": weekID, "status": status}
	return e
}

func WrapWeekNotClosed(weekID, status string) *BusinessError {
	e := NewBusinessError(
		ErrCodeWeekNotClosed,
		fmt.Sprintf("Week %s is %s, expected CLOSED", weekID, status),
		ErrWeekNotClosed,
	)
	e.Details = map[string]interface{}{"week_id": weekID, "status": status}
	return e
}

func WrapWeekHasPendings(weekID string, pendingCount, unassignedRides int) *BusinessError {
	e := NewBusinessError(
		ErrCodeWeekHasPendings,
		fmt.Sprintf("Week %s has %d pending deliveries and %d unassigned OK rides", weekID, pendingCount, unassignedRides),
		ErrWeekHasPendings,
	)
	e.Details = map[string]interface{}{
		"week_id":          weekID,
		"pending_count":    pendingCount,
		"unassigned_rides": unassignedRides,
	}
	return e
}

func WrapWeekOverlap(newStart, newEnd, conflictID, conflictStart, conflictEnd string) *BusinessError {
	e := NewBusinessError(
		ErrCodeWeekOverlap,
		fmt.Sprintf("Range [%s, %s] overlaps week %s [%s, %s]", newStart, newEnd, conflictID, conflictStart, conflictEnd),
		ErrWeekOverlap,
	)
	e.Details = map[string]interface{}{
		"new_range":        []string{newStart, newEnd},
		"conflict_week_id": conflictID,
		"conflict_range":   []string{conflictStart, conflictEnd},
	}
	return e
}

func WrapDateOutsideWeek(weekID, date string) *BusinessError {
	e := NewBusinessError(
		ErrCodeDateOutsideWeek,
		fmt.Sprintf("Date %s is outside the range of week %s", date, weekID),
		ErrDateOutsideWeek,
	)
	e.Details = map[string]interface{}{"week_id": weekID, "date": date}
	return e
}

func WrapCourierNotFound(courierID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCourierNotFound,
		fmt.Sprintf("Courier with ID %s not found", courierID),
		ErrCourierNotFound,
	)
}

func WrapDeliveryNotFound(recordID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDeliveryNotFound,
		fmt.Sprintf("Delivery record with ID %s not found", recordID),
		ErrDeliveryNotFound,
	)
}

func WrapLedgerNotFound(ledgerID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLedgerNotFound,
		fmt.Sprintf("Ledger entry with ID %s not found", ledgerID),
		ErrLedgerNotFound,
	)
}

func WrapInvalidLedgerAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLedgerAmount,
		fmt.Sprintf("Invalid ledger amount: %s", amount),
		ErrInvalidLedgerAmount,
	)
}

func WrapInvalidLedgerType(entryType string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLedgerType,
		fmt.Sprintf("Unknown ledger entry type: %s", entryType),
		ErrInvalidLedgerType,
	)
}

func WrapInvalidPlan(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPlan,
		reason,
		ErrInvalidPlan,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}
