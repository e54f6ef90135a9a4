package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/courierpay/payroll-engine/internal/service"
	customError "github.com/courierpay/payroll-engine/pkg/errors"
	"github.com/courierpay/payroll-engine/pkg/response"
)

// Handler carries the API surface: week lifecycle, payouts, ledger, loans,
// delivery assignment and couriers.
type Handler struct {
	weeks      *service.WeekService
	payouts    *service.PayoutService
	loans      *service.LoanService
	ledger     *service.LedgerService
	deliveries *service.DeliveryService
	couriers   *service.CourierService
	validator  *validator.Validate
}

func NewHandler(
	weeks *service.WeekService,
	payouts *service.PayoutService,
	loans *service.LoanService,
	ledger *service.LedgerService,
	deliveries *service.DeliveryService,
	couriers *service.CourierService,
) *Handler {
	v := validator.New()
	_ = v.RegisterValidation("decimal_gt", decimalGT)
	_ = v.RegisterValidation("decimal_gte", decimalGTE)

	return &Handler{
		weeks:      weeks,
		payouts:    payouts,
		loans:      loans,
		ledger:     ledger,
		deliveries: deliveries,
		couriers:   couriers,
		validator:  v,
	}
}

func decimalGT(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	limit, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return false
	}
	return value.GreaterThan(limit)
}

func decimalGTE(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	limit, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return false
	}
	return value.GreaterThanOrEqual(limit)
}

// decodeAndValidate parses a JSON body into dst and runs struct validation.
func (h *Handler) decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return h.validator.Struct(dst)
}

// pathUUID extracts a uuid path variable.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}

// statusForCode maps business error codes onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case customError.ErrCodeWeekNotFound,
		customError.ErrCodeCourierNotFound,
		customError.ErrCodeDeliveryNotFound,
		customError.ErrCodeLedgerNotFound:
		return http.StatusNotFound
	case customError.ErrCodeWeekNotOpen,
		customError.ErrCodeWeekNotClosed,
		customError.ErrCodeWeekHasPendings,
		customError.ErrCodeWeekOverlap:
		return http.StatusConflict
	case customError.ErrCodeDateOutsideWeek,
		customError.ErrCodeInvalidLedgerAmount,
		customError.ErrCodeInvalidLedgerType,
		customError.ErrCodeInvalidPlan:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError renders any service error as the JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	var businessErr *customError.BusinessError
	if errors.As(err, &businessErr) {
		response.ErrorWithCode(w, statusForCode(businessErr.Code), businessErr.Code, businessErr.Message, businessErr.Details, businessErr.Err)
		return
	}
	response.InternalServerError(w, "Internal server error", err)
}
