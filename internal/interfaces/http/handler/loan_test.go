package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanHandler_CreateLoan(t *testing.T) {
	engine := setupTestRouter(t)
	token := registerAndLogin(t, engine, "alice@example.com")

	detail := createTestLoan(t, engine, token, nil)
	assert.Equal(t, "Bike loan", detail.Loan.Name)
	assert.Equal(t, "ACTIVE", detail.Loan.Status)
	assert.Len(t, detail.Schedule, 12)
	assert.Equal(t, 1, detail.Schedule[0].MonthIndex)

	t.Run("requires authentication", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodPost, "/api/v1/loans", "", CreateLoanRequest{})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid principal", func(t *testing.T) {
		start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
		w := doRequest(t, engine, http.MethodPost, "/api/v1/loans", token, CreateLoanRequest{
			Name:          "Bad loan",
			Principal:     mustDecimal(t, "-5"),
			InterestRate:  mustDecimal(t, "12"),
			TenureMonths:  12,
			StartDate:     &start,
			EmiDayOfMonth: 10,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ERR_INVALID_INPUT", decodeEnvelope(t, w).Error.Code)
	})
}

func TestLoanHandler_ListAndGet(t *testing.T) {
	engine := setupTestRouter(t)
	token := registerAndLogin(t, engine, "alice@example.com")
	detail := createTestLoan(t, engine, token, nil)

	t.Run("list returns summaries", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodGet, "/api/v1/loans", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var summaries []struct {
			LoanID uuid.UUID `json:"loan_id"`
			Name   string    `json:"name"`
			Status string    `json:"loan_status"`
		}
		decodeData(t, w, &summaries)
		require.Len(t, summaries, 1)
		assert.Equal(t, detail.Loan.ID, summaries[0].LoanID)
		assert.Equal(t, "ACTIVE", summaries[0].Status)
	})

	t.Run("get returns loan with ledger", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodGet, "/api/v1/loans/"+detail.Loan.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var got LoanDetailResponse
		decodeData(t, w, &got)
		assert.Equal(t, detail.Loan.ID, got.Loan.ID)
		assert.Len(t, got.Schedule, 12)
	})

	t.Run("unknown loan is 404", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodGet, "/api/v1/loans/"+uuid.NewString(), token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodGet, "/api/v1/loans/not-a-uuid", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("another user cannot see the loan", func(t *testing.T) {
		otherToken := registerAndLogin(t, engine, "bob@example.com")
		w := doRequest(t, engine, http.MethodGet, "/api/v1/loans/"+detail.Loan.ID.String(), otherToken, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestLoanHandler_GetLoanHealth(t *testing.T) {
	engine := setupTestRouter(t)
	token := registerAndLogin(t, engine, "alice@example.com")
	detail := createTestLoan(t, engine, token, func(req *CreateLoanRequest) {
		req.ForeclosureAllowed = true
	})

	w := doRequest(t, engine, http.MethodGet, "/api/v1/loans/"+detail.Loan.ID.String()+"/health", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var health struct {
		LoanStatus string `json:"loan_status"`
		EmiCounts  struct {
			Pending int `json:"pending"`
		} `json:"emi_counts"`
		CanForeclose bool `json:"can_foreclose"`
	}
	decodeData(t, w, &health)
	assert.Equal(t, "ACTIVE", health.LoanStatus)
	assert.Equal(t, 12, health.EmiCounts.Pending)
	assert.True(t, health.CanForeclose)
}
