package handler

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepaymentHandler_PayEmi(t *testing.T) {
	engine := setupTestRouter(t)
	token := registerAndLogin(t, engine, "alice@example.com")
	detail := createTestLoan(t, engine, token, nil)
	firstEmi := detail.Schedule[0].ID.String()

	t.Run("pays with default amount", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodPost, "/api/v1/emis/"+firstEmi+"/pay", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result struct {
			MonthIndex        int             `json:"month_index"`
			InterestComponent decimal.Decimal `json:"interest_component"`
			LoanStatus        string          `json:"loan_status"`
		}
		decodeData(t, w, &result)
		assert.Equal(t, 1, result.MonthIndex)
		assert.True(t, result.InterestComponent.Equal(mustDecimal(t, "1000")))
		assert.Equal(t, "ACTIVE", result.LoanStatus)
	})

	t.Run("paying again is 422", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodPost, "/api/v1/emis/"+firstEmi+"/pay", token, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "ERR_INVALID_STATE", decodeEnvelope(t, w).Error.Code)
	})

	t.Run("short amount is 422", func(t *testing.T) {
		amount := mustDecimal(t, "10")
		w := doRequest(t, engine, http.MethodPost,
			"/api/v1/emis/"+detail.Schedule[1].ID.String()+"/pay", token, PayEmiRequest{Amount: &amount})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "ERR_INSUFFICIENT_AMOUNT", decodeEnvelope(t, w).Error.Code)
	})

	t.Run("other user's EMI is 401", func(t *testing.T) {
		otherToken := registerAndLogin(t, engine, "bob@example.com")
		w := doRequest(t, engine, http.MethodPost,
			"/api/v1/emis/"+detail.Schedule[1].ID.String()+"/pay", otherToken, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRepaymentHandler_MarkPaidAndMissed(t *testing.T) {
	engine := setupTestRouter(t)
	token := registerAndLogin(t, engine, "alice@example.com")
	detail := createTestLoan(t, engine, token, nil)

	t.Run("mark paid", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodPost,
			"/api/v1/emis/"+detail.Schedule[0].ID.String()+"/mark-paid", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result struct {
			MonthIndex int    `json:"month_index"`
			LoanStatus string `json:"loan_status"`
		}
		decodeData(t, w, &result)
		assert.Equal(t, 1, result.MonthIndex)
		assert.Equal(t, "ACTIVE", result.LoanStatus)
	})

	t.Run("mark missed drives loan overdue", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodPost,
			"/api/v1/emis/"+detail.Schedule[1].ID.String()+"/mark-missed", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result struct {
			Status     string `json:"status"`
			LoanStatus string `json:"loan_status"`
		}
		decodeData(t, w, &result)
		assert.Equal(t, "MISSED", result.Status)
		assert.Equal(t, "OVERDUE", result.LoanStatus)
	})
}

func TestRepaymentHandler_PartPayment(t *testing.T) {
	engine := setupTestRouter(t)
	token := registerAndLogin(t, engine, "alice@example.com")
	detail := createTestLoan(t, engine, token, func(req *CreateLoanRequest) {
		req.PartPaymentAllowed = true
	})

	w := doRequest(t, engine, http.MethodPost,
		"/api/v1/loans/"+detail.Loan.ID.String()+"/part-payment", token,
		PartPaymentRequest{Amount: mustDecimal(t, "20000")})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		NewPrincipal        decimal.Decimal `json:"new_principal"`
		EmiRowsRecalculated int             `json:"emi_rows_recalculated"`
	}
	decodeData(t, w, &result)
	assert.True(t, result.NewPrincipal.Equal(mustDecimal(t, "80000")))
	assert.Greater(t, result.EmiRowsRecalculated, 0)

	t.Run("below minimum is 422", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodPost,
			"/api/v1/loans/"+detail.Loan.ID.String()+"/part-payment", token,
			PartPaymentRequest{Amount: mustDecimal(t, "500")})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "ERR_INSUFFICIENT_AMOUNT", decodeEnvelope(t, w).Error.Code)
	})
}

func TestRepaymentHandler_ForecloseAndHistory(t *testing.T) {
	engine := setupTestRouter(t)
	token := registerAndLogin(t, engine, "alice@example.com")
	detail := createTestLoan(t, engine, token, func(req *CreateLoanRequest) {
		req.ForeclosureAllowed = true
		req.ForeclosurePenaltyPercent = mustDecimal(t, "2")
	})

	w := doRequest(t, engine, http.MethodPost,
		"/api/v1/loans/"+detail.Loan.ID.String()+"/foreclose", token,
		ForeclosureRequest{Amount: mustDecimal(t, "102000")})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		PenaltyApplied decimal.Decimal `json:"penalty_applied"`
		Status         string          `json:"status"`
	}
	decodeData(t, w, &result)
	assert.True(t, result.PenaltyApplied.Equal(mustDecimal(t, "2000")))
	assert.Equal(t, "CLOSED", result.Status)

	t.Run("history shows the settlement", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodGet,
			"/api/v1/loans/"+detail.Loan.ID.String()+"/payments", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var history []struct {
			PaymentType string `json:"payment_type"`
			Remarks     string `json:"remarks"`
		}
		decodeData(t, w, &history)
		require.Len(t, history, 1)
		assert.Equal(t, "FORECLOSURE", history[0].PaymentType)
		assert.Contains(t, history[0].Remarks, "foreclosed with penalty")
	})
}
