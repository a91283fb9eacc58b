package handler

import (
	applending "github.com/dma/backend/internal/application/lending"
	"github.com/gin-gonic/gin"
)

// LoanHandler handles loan-related HTTP requests
type LoanHandler struct {
	BaseHandler
	loanService *applending.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *applending.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
	}
}

// RegisterRoutes registers the loan routes
func (h *LoanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	loans := rg.Group("/loans")
	{
		loans.POST("", h.CreateLoan)
		loans.GET("", h.ListLoans)
		loans.GET("/:id", h.GetLoan)
		loans.GET("/:id/health", h.GetLoanHealth)
		loans.POST("/:id/status/refresh", h.RefreshLoanStatus)
	}
}

// CreateLoan creates a loan and its amortization schedule
func (h *LoanHandler) CreateLoan(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.loanService.CreateLoan(c.Request.Context(), applending.CreateLoanInput{
		UserID:                    userID,
		Name:                      req.Name,
		Category:                  req.Category,
		Lender:                    req.Lender,
		Principal:                 req.Principal,
		InterestRate:              req.InterestRate,
		TenureMonths:              req.TenureMonths,
		EmiAmount:                 req.EmiAmount,
		StartDate:                 req.StartDate,
		EmiStartDate:              req.EmiStartDate,
		EmiDayOfMonth:             req.EmiDayOfMonth,
		ForeclosureAllowed:        req.ForeclosureAllowed,
		ForeclosurePenaltyPercent: req.ForeclosurePenaltyPercent,
		PartPaymentAllowed:        req.PartPaymentAllowed,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, LoanDetailResponse{
		Loan:     toLoanResponse(result.Loan),
		Schedule: toScheduleResponse(result.Schedule),
	})
}

// ListLoans returns the per-loan summaries of the authenticated user
func (h *LoanHandler) ListLoans(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	summaries, err := h.loanService.ListLoanSummaries(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summaries)
}

// GetLoan returns a loan with its full EMI ledger
func (h *LoanHandler) GetLoan(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	loanID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	detail, err := h.loanService.GetLoan(c.Request.Context(), loanID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LoanDetailResponse{
		Loan:     toLoanResponse(detail.Loan),
		Schedule: toScheduleResponse(detail.Schedule),
	})
}

// GetLoanHealth returns the derived repayment health of a loan
func (h *LoanHandler) GetLoanHealth(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	loanID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	health, err := h.loanService.GetLoanHealth(c.Request.Context(), loanID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, health)
}

// RefreshLoanStatus re-derives and persists the loan status
func (h *LoanHandler) RefreshLoanStatus(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	loanID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	status, err := h.loanService.RefreshLoanStatus(c.Request.Context(), loanID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"loan_id": loanID, "status": status})
}
