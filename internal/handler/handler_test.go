package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courierpay/payroll-engine/internal/domain"
	customError "github.com/courierpay/payroll-engine/pkg/errors"
)

func TestStatusForCode(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{customError.ErrCodeWeekNotFound, http.StatusNotFound},
		{customError.ErrCodeCourierNotFound, http.StatusNotFound},
		{customError.ErrCodeDeliveryNotFound, http.StatusNotFound},
		{customError.ErrCodeLedgerNotFound, http.StatusNotFound},
		{customError.ErrCodeWeekNotOpen, http.StatusConflict},
		{customError.ErrCodeWeekNotClosed, http.StatusConflict},
		{customError.ErrCodeWeekHasPendings, http.StatusConflict},
		{customError.ErrCodeWeekOverlap, http.StatusConflict},
		{customError.ErrCodeDateOutsideWeek, http.StatusBadRequest},
		{customError.ErrCodeInvalidLedgerAmount, http.StatusBadRequest},
		{customError.ErrCodeInvalidLedgerType, http.StatusBadRequest},
		{customError.ErrCodeInvalidPlan, http.StatusBadRequest},
		{customError.ErrCodeDatabaseError, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.want, statusForCode(tc.code))
		})
	}
}

func TestWriteError_BusinessError(t *testing.T) {
	recorder := httptest.NewRecorder()

	writeError(recorder, customError.WrapWeekHasPendings("w1", 2, 1))

	assert.Equal(t, http.StatusConflict, recorder.Code)

	var body struct {
		Success bool                   `json:"success"`
		Code    string                 `json:"code"`
		Details map[string]interface{} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, customError.ErrCodeWeekHasPendings, body.Code)
	assert.Equal(t, float64(2), body.Details["pending_count"])
	assert.Equal(t, float64(1), body.Details["unassigned_rides"])
}

func TestWriteError_Unknown(t *testing.T) {
	recorder := httptest.NewRecorder()

	writeError(recorder, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestDecodeAndValidate_DecimalRules(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil, nil, nil)

	valid := `{"courier_id":"7e9b5c3a-4f7d-4f07-9b2e-2f3a43a8a111","week_id":"7e9b5c3a-4f7d-4f07-9b2e-2f3a43a8a222","effective_date":"2026-08-28","type":"VALE","amount":"50"}`
	request := httptest.NewRequest(http.MethodPost, "/api/v1/ledger", strings.NewReader(valid))

	var dto domain.CreateLedgerEntryRequest
	require.NoError(t, h.decodeAndValidate(request, &dto))
	assert.Equal(t, domain.LedgerTypeVale, dto.Type)

	invalid := `{"courier_id":"7e9b5c3a-4f7d-4f07-9b2e-2f3a43a8a111","week_id":"7e9b5c3a-4f7d-4f07-9b2e-2f3a43a8a222","effective_date":"2026-08-28","type":"VALE","amount":"-5"}`
	request = httptest.NewRequest(http.MethodPost, "/api/v1/ledger", strings.NewReader(invalid))

	var rejected domain.CreateLedgerEntryRequest
	assert.Error(t, h.decodeAndValidate(request, &rejected))
}

func TestDecodeAndValidate_RejectsBadDate(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil, nil, nil)

	payload := `{"courier_id":"7e9b5c3a-4f7d-4f07-9b2e-2f3a43a8a111","week_id":"7e9b5c3a-4f7d-4f07-9b2e-2f3a43a8a222","effective_date":"28/08/2026","type":"EXTRA","amount":"10"}`
	request := httptest.NewRequest(http.MethodPost, "/api/v1/ledger", strings.NewReader(payload))

	var dto domain.CreateLedgerEntryRequest
	assert.Error(t, h.decodeAndValidate(request, &dto))
}
