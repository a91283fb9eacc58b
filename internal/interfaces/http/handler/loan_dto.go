package handler

import (
	"time"

	domain "github.com/dma/backend/internal/domain/lending"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLoanRequest represents a loan creation request.
// Either emi_start_date or (start_date + emi_day_of_month) must be given;
// when both dates are present they must agree on the EMI cycle.
// emi_amount is optional; it carries the installment of a loan taken out
// elsewhere, and the EMI is computed from the terms when it is absent.
type CreateLoanRequest struct {
	Name                      string           `json:"name" binding:"required,max=200"`
	Category                  string           `json:"category" binding:"max=100"`
	Lender                    string           `json:"lender" binding:"max=200"`
	Principal                 decimal.Decimal  `json:"principal" binding:"required"`
	InterestRate              decimal.Decimal  `json:"interest_rate"`
	TenureMonths              int              `json:"tenure_months" binding:"required,min=1,max=600"`
	EmiAmount                 *decimal.Decimal `json:"emi_amount"`
	StartDate                 *time.Time       `json:"start_date"`
	EmiStartDate              *time.Time       `json:"emi_start_date"`
	EmiDayOfMonth             int              `json:"emi_day_of_month" binding:"omitempty,min=1,max=31"`
	ForeclosureAllowed        bool             `json:"foreclosure_allowed"`
	ForeclosurePenaltyPercent decimal.Decimal  `json:"foreclosure_penalty_percent"`
	PartPaymentAllowed        bool             `json:"part_payment_allowed"`
}

// EmiScheduleEntryResponse is one ledger row in API responses
type EmiScheduleEntryResponse struct {
	ID                 uuid.UUID       `json:"id"`
	MonthIndex         int             `json:"month_index"`
	DueDate            time.Time       `json:"due_date"`
	OpeningBalance     decimal.Decimal `json:"opening_balance"`
	EmiAmount          decimal.Decimal `json:"emi_amount"`
	InterestComponent  decimal.Decimal `json:"interest_component"`
	PrincipalComponent decimal.Decimal `json:"principal_component"`
	ClosingBalance     decimal.Decimal `json:"closing_balance"`
	Status             string          `json:"status"`
	PaymentDate        *time.Time      `json:"payment_date,omitempty"`
}

// LoanResponse is the loan view returned by the API
type LoanResponse struct {
	ID                        uuid.UUID       `json:"id"`
	Name                      string          `json:"name"`
	Category                  string          `json:"category"`
	Lender                    string          `json:"lender"`
	Principal                 decimal.Decimal `json:"principal"`
	InterestRate              decimal.Decimal `json:"interest_rate"`
	TenureMonths              int             `json:"tenure_months"`
	EmiAmount                 decimal.Decimal `json:"emi_amount"`
	StartDate                 time.Time       `json:"start_date"`
	EmiStartDate              time.Time       `json:"emi_start_date"`
	ForeclosureAllowed        bool            `json:"foreclosure_allowed"`
	ForeclosurePenaltyPercent decimal.Decimal `json:"foreclosure_penalty_percent"`
	PartPaymentAllowed        bool            `json:"part_payment_allowed"`
	Status                    string          `json:"status"`
	CreatedAt                 time.Time       `json:"created_at"`
}

// LoanDetailResponse bundles a loan with its full EMI ledger
type LoanDetailResponse struct {
	Loan     LoanResponse               `json:"loan"`
	Schedule []EmiScheduleEntryResponse `json:"schedule"`
}

func toLoanResponse(loan *domain.Loan) LoanResponse {
	return LoanResponse{
		ID:                        loan.ID,
		Name:                      loan.Name,
		Category:                  loan.Category,
		Lender:                    loan.Lender,
		Principal:                 loan.Principal,
		InterestRate:              loan.InterestRate,
		TenureMonths:              loan.TenureMonths,
		EmiAmount:                 loan.EmiAmount,
		StartDate:                 loan.StartDate,
		EmiStartDate:              loan.EmiStartDate,
		ForeclosureAllowed:        loan.ForeclosureAllowed,
		ForeclosurePenaltyPercent: loan.ForeclosurePenaltyPercent,
		PartPaymentAllowed:        loan.PartPaymentAllowed,
		Status:                    loan.Status.String(),
		CreatedAt:                 loan.CreatedAt,
	}
}

func toScheduleResponse(entries []domain.EmiScheduleEntry) []EmiScheduleEntryResponse {
	schedule := make([]EmiScheduleEntryResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		schedule = append(schedule, EmiScheduleEntryResponse{
			ID:                 e.ID,
			MonthIndex:         e.MonthIndex,
			DueDate:            e.DueDate,
			OpeningBalance:     e.OpeningBalance,
			EmiAmount:          e.EmiAmount,
			InterestComponent:  e.InterestComponent,
			PrincipalComponent: e.PrincipalComponent,
			ClosingBalance:     e.ClosingBalance,
			Status:             e.Status.String(),
			PaymentDate:        e.PaymentDate,
		})
	}
	return schedule
}
