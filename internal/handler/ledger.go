package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/courierpay/payroll-engine/internal/domain"
	"github.com/courierpay/payroll-engine/pkg/response"
)

// CreateLedgerEntry handles POST /api/v1/ledger
func (h *Handler) CreateLedgerEntry(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLedgerEntryRequest
	if err := h.decodeAndValidate(r, &request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	result, err := h.ledger.CreateEntry(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, result)
}

// DeleteLedgerEntry handles DELETE /api/v1/ledger/{ledgerId}
func (h *Handler) DeleteLedgerEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "ledgerId")
	if err != nil {
		response.BadRequest(w, "Invalid ledger entry ID", err)
		return
	}

	if err := h.ledger.DeleteEntry(r.Context(), entryID); err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, map[string]interface{}{"deleted": true, "id": entryID})
}

// ListWeekLedger handles GET /api/v1/weeks/{weekId}/ledger with an optional
// courier_id filter.
func (h *Handler) ListWeekLedger(w http.ResponseWriter, r *http.Request) {
	weekID, err := pathUUID(r, "weekId")
	if err != nil {
		response.BadRequest(w, "Invalid week ID", err)
		return
	}

	var courierID *uuid.UUID
	if raw := r.URL.Query().Get("courier_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid courier_id filter", err)
			return
		}
		courierID = &parsed
	}

	entries, err := h.ledger.ListWeekLedger(r.Context(), weekID, courierID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, entries)
}
