package handler

import (
	"net/http"

	"github.com/courierpay/payroll-engine/internal/domain"
	"github.com/courierpay/payroll-engine/pkg/response"
)

// ListCouriers handles GET /api/v1/couriers with an optional active=true
// filter.
func (h *Handler) ListCouriers(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	couriers, err := h.couriers.List(r.Context(), activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, couriers)
}

// CreateCourier handles POST /api/v1/couriers
func (h *Handler) CreateCourier(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateCourierRequest
	if err := h.decodeAndValidate(r, &request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	courier, err := h.couriers.Create(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, courier)
}

// GetCourier handles GET /api/v1/couriers/{courierId}
func (h *Handler) GetCourier(w http.ResponseWriter, r *http.Request) {
	courierID, err := pathUUID(r, "courierId")
	if err != nil {
		response.BadRequest(w, "Invalid courier ID", err)
		return
	}

	courier, err := h.couriers.GetByID(r.Context(), courierID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, courier)
}
