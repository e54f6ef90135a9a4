package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/courierpay/payroll-engine/internal/domain"
	"github.com/courierpay/payroll-engine/pkg/response"
)

// ListWeeks handles GET /api/v1/weeks
func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.weeks.ListWeeks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, weeks)
}

// GetCurrentWeek handles GET /api/v1/weeks/current. The week containing
// today is created on the fly when it does not exist yet.
func (h *Handler) GetCurrentWeek(w http.ResponseWriter, r *http.Request) {
	week, err := h.weeks.ResolveWeekForDate(r.Context(), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, week)
}

// GetWeek handles GET /api/v1/weeks/{weekId}
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	weekID, err := pathUUID(r, "weekId")
	if err != nil {
		response.BadRequest(w, "Invalid week ID", err)
		return
	}

	week, err := h.weeks.GetWeek(r.Context(), weekID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, week)
}

// PreviewPayouts handles GET /api/v1/weeks/{weekId}/payouts/preview
func (h *Handler) PreviewPayouts(w http.ResponseWriter, r *http.Request) {
	weekID, err := pathUUID(r, "weekId")
	if err != nil {
		response.BadRequest(w, "Invalid week ID", err)
		return
	}

	rows, err := h.payouts.ComputePreview(r.Context(), weekID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, rows)
}

// CloseWeek handles POST /api/v1/weeks/{weekId}/close
func (h *Handler) CloseWeek(w http.ResponseWriter, r *http.Request) {
	weekID, err := pathUUID(r, "weekId")
	if err != nil {
		response.BadRequest(w, "Invalid week ID", err)
		return
	}

	result, err := h.payouts.CloseWeek(r.Context(), weekID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, result)
}

// PayWeek handles POST /api/v1/weeks/{weekId}/pay
func (h *Handler) PayWeek(w http.ResponseWriter, r *http.Request) {
	weekID, err := pathUUID(r, "weekId")
	if err != nil {
		response.BadRequest(w, "Invalid week ID", err)
		return
	}

	result, err := h.payouts.PayWeek(r.Context(), weekID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, result)
}

// GetPayouts handles GET /api/v1/weeks/{weekId}/payouts. Returns the frozen
// snapshot; empty for weeks that never closed.
func (h *Handler) GetPayouts(w http.ResponseWriter, r *http.Request) {
	weekID, err := pathUUID(r, "weekId")
	if err != nil {
		response.BadRequest(w, "Invalid week ID", err)
		return
	}

	rows, err := h.payouts.GetSnapshot(r.Context(), weekID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, rows)
}

// ExportPayoutsCSV handles GET /api/v1/weeks/{weekId}/payouts.csv. OPEN
// weeks export the live preview, closed and paid weeks the frozen snapshot.
func (h *Handler) ExportPayoutsCSV(w http.ResponseWriter, r *http.Request) {
	weekID, err := pathUUID(r, "weekId")
	if err != nil {
		response.BadRequest(w, "Invalid week ID", err)
		return
	}

	week, err := h.weeks.GetWeek(r.Context(), weekID)
	if err != nil {
		writeError(w, err)
		return
	}

	var rows []*domain.PayoutRow
	if week.IsOpen() {
		rows, err = h.payouts.ComputePreview(r.Context(), weekID)
	} else {
		var snapshot []*domain.SnapshotRow
		snapshot, err = h.payouts.GetSnapshot(r.Context(), weekID)
		if err == nil {
			rows = make([]*domain.PayoutRow, 0, len(snapshot))
			for _, s := range snapshot {
				name := domain.UnassignedLabel
				if s.CourierName != nil {
					name = *s.CourierName
				}
				rows = append(rows, &domain.PayoutRow{
					CourierID:          s.CourierID,
					CourierName:        name,
					RidesCount:         s.RidesCount,
					RidesAmount:        s.RidesAmount,
					ExtrasAmount:       s.ExtrasAmount,
					ValesAmount:        s.ValesAmount,
					InstallmentsAmount: s.InstallmentsAmount,
					NetAmount:          s.NetAmount,
					PendingCount:       s.PendingCount,
					IsFlagRed:          s.IsFlagRed,
				})
			}
		}
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payouts-%s.csv"`, week.StartDate.Format("2006-01-02")))

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{
		"courier_id", "courier_name", "rides_count", "rides_amount",
		"extras_amount", "vales_amount", "installments_amount", "net_amount",
		"pending_count", "flag_red",
	})
	for _, row := range rows {
		courierID := ""
		if row.CourierID != nil {
			courierID = row.CourierID.String()
		}
		_ = writer.Write([]string{
			courierID,
			row.CourierName,
			strconv.Itoa(row.RidesCount),
			money(row.RidesAmount),
			money(row.ExtrasAmount),
			money(row.ValesAmount),
			money(row.InstallmentsAmount),
			money(row.NetAmount),
			strconv.Itoa(row.PendingCount),
			strconv.FormatBool(row.IsFlagRed),
		})
	}
	writer.Flush()
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
