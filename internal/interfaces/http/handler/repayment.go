package handler

import (
	"time"

	applending "github.com/dma/backend/internal/application/lending"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PayEmiRequest represents an EMI payment request. A missing amount
// defaults to the scheduled EMI amount.
type PayEmiRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

// MarkEmiPaidRequest represents a manual EMI settlement request
type MarkEmiPaidRequest struct {
	PaymentDate *time.Time `json:"payment_date"`
}

// PartPaymentRequest represents a lump-sum principal reduction request
type PartPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// ForeclosureRequest represents an early settlement request
type ForeclosureRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// RepaymentHandler handles repayment-related HTTP requests
type RepaymentHandler struct {
	BaseHandler
	repaymentService *applending.RepaymentService
}

// NewRepaymentHandler creates a new repayment handler
func NewRepaymentHandler(repaymentService *applending.RepaymentService) *RepaymentHandler {
	return &RepaymentHandler{
		repaymentService: repaymentService,
	}
}

// RegisterRoutes registers the repayment routes
func (h *RepaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	emis := rg.Group("/emis")
	{
		emis.POST("/:id/pay", h.PayEmi)
		emis.POST("/:id/mark-paid", h.MarkEmiPaid)
		emis.POST("/:id/mark-missed", h.MarkEmiMissed)
	}

	loans := rg.Group("/loans")
	{
		loans.POST("/:id/part-payment", h.PartPayment)
		loans.POST("/:id/foreclose", h.ForecloseLoan)
		loans.GET("/:id/payments", h.GetRepaymentHistory)
	}
}

// PayEmi settles an EMI with an actual payment
func (h *RepaymentHandler) PayEmi(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	emiID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	// The body is optional; omitting it pays the scheduled EMI amount
	var req PayEmiRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	result, err := h.repaymentService.PayEmi(c.Request.Context(), emiID, userID, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// MarkEmiPaid manually settles an EMI
func (h *RepaymentHandler) MarkEmiPaid(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	emiID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	// The body is optional; omitting it books the payment as of now
	var req MarkEmiPaidRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	result, err := h.repaymentService.MarkEmiPaid(c.Request.Context(), emiID, userID, req.PaymentDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// MarkEmiMissed flags an EMI as missed
func (h *RepaymentHandler) MarkEmiMissed(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	emiID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.repaymentService.MarkEmiMissed(c.Request.Context(), emiID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// PartPayment applies a lump sum against the outstanding principal
func (h *RepaymentHandler) PartPayment(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	loanID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req PartPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.repaymentService.PartPayment(c.Request.Context(), loanID, userID, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ForecloseLoan settles the full outstanding balance early
func (h *RepaymentHandler) ForecloseLoan(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	loanID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req ForeclosureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.repaymentService.ForecloseLoan(c.Request.Context(), loanID, userID, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetRepaymentHistory returns a loan's payment ledger
func (h *RepaymentHandler) GetRepaymentHistory(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	loanID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	history, err := h.repaymentService.GetRepaymentHistory(c.Request.Context(), loanID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, history)
}
