package handler

import (
	"net/http"

	"github.com/courierpay/payroll-engine/internal/domain"
	"github.com/courierpay/payroll-engine/pkg/response"
)

// AssignDelivery handles POST /api/v1/deliveries/{recordId}/assign
func (h *Handler) AssignDelivery(w http.ResponseWriter, r *http.Request) {
	recordID, err := pathUUID(r, "recordId")
	if err != nil {
		response.BadRequest(w, "Invalid delivery record ID", err)
		return
	}

	var request domain.AssignDeliveryRequest
	if err := h.decodeAndValidate(r, &request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	result, err := h.deliveries.AssignDelivery(r.Context(), recordID, &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, result)
}

// ListDeliveryEvents handles GET /api/v1/deliveries/{recordId}/events
func (h *Handler) ListDeliveryEvents(w http.ResponseWriter, r *http.Request) {
	recordID, err := pathUUID(r, "recordId")
	if err != nil {
		response.BadRequest(w, "Invalid delivery record ID", err)
		return
	}

	events, err := h.deliveries.ListRecordEvents(r.Context(), recordID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, events)
}
