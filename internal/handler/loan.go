package handler

import (
	"net/http"

	"github.com/courierpay/payroll-engine/internal/domain"
	"github.com/courierpay/payroll-engine/pkg/response"
)

// CreateLoanPlan handles POST /api/v1/loans
func (h *Handler) CreateLoanPlan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanPlanRequest
	if err := h.decodeAndValidate(r, &request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	plan, err := h.loans.CreatePlan(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, plan)
}
