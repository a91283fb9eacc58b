package lending

import (
	"time"

	"github.com/dma/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus represents the lifecycle status of a loan
type LoanStatus string

const (
	LoanStatusActive     LoanStatus = "ACTIVE"     // Repayments ongoing, nothing missed
	LoanStatusOverdue    LoanStatus = "OVERDUE"    // At least one EMI has been missed
	LoanStatusClosed     LoanStatus = "CLOSED"     // Outstanding principal fully repaid
	LoanStatusForeclosed LoanStatus = "FORECLOSED" // Closed early via foreclosure
)

// IsValid checks if the status is a valid LoanStatus
func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanStatusActive, LoanStatusOverdue, LoanStatusClosed, LoanStatusForeclosed:
		return true
	}
	return false
}

// String returns the string representation of LoanStatus
func (s LoanStatus) String() string {
	return string(s)
}

// IsResolved returns true if no further repayment operations are permitted
func (s LoanStatus) IsResolved() bool {
	return s == LoanStatusClosed || s == LoanStatusForeclosed
}

// Loan is the aggregate root for an installment loan.
// Principal holds the current outstanding balance and is reduced by every
// repayment operation; TenureMonths and EmiAmount stay fixed at creation.
type Loan struct {
	shared.BaseEntity
	UserID                    uuid.UUID       `json:"user_id"`
	Name                      string          `json:"name"`
	Category                  string          `json:"category"`
	Lender                    string          `json:"lender"`
	Principal                 decimal.Decimal `json:"principal"`
	InterestRate              decimal.Decimal `json:"interest_rate"` // annual, percent
	TenureMonths              int             `json:"tenure_months"`
	EmiAmount                 decimal.Decimal `json:"emi_amount"`
	StartDate                 time.Time       `json:"start_date"`
	EmiStartDate              time.Time       `json:"emi_start_date"`
	ForeclosureAllowed        bool            `json:"foreclosure_allowed"`
	ForeclosurePenaltyPercent decimal.Decimal `json:"foreclosure_penalty_percent"`
	PartPaymentAllowed        bool            `json:"part_payment_allowed"`
	Status                    LoanStatus      `json:"status"`
}

// NewLoanInput carries the validated attributes for loan creation.
// StartDate/EmiStartDate must already be resolved via DeriveLoanDates and
// EmiAmount via CalculateEmi.
type NewLoanInput struct {
	UserID                    uuid.UUID
	Name                      string
	Category                  string
	Lender                    string
	Principal                 decimal.Decimal
	InterestRate              decimal.Decimal
	TenureMonths              int
	EmiAmount                 decimal.Decimal
	StartDate                 time.Time
	EmiStartDate              time.Time
	ForeclosureAllowed        bool
	ForeclosurePenaltyPercent decimal.Decimal
	PartPaymentAllowed        bool
}

// NewLoan creates a new active loan
func NewLoan(input NewLoanInput) (*Loan, error) {
	if input.UserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "User ID cannot be empty")
	}
	if input.Name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Loan name cannot be empty")
	}
	if !input.Principal.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Principal must be greater than zero")
	}
	if input.InterestRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Interest rate cannot be negative")
	}
	if input.TenureMonths <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Tenure (months) must be greater than zero")
	}
	if !input.EmiAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "EMI amount must be greater than zero")
	}
	if input.ForeclosurePenaltyPercent.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Foreclosure penalty percent cannot be negative")
	}

	return &Loan{
		BaseEntity:                shared.NewBaseEntity(),
		UserID:                    input.UserID,
		Name:                      input.Name,
		Category:                  input.Category,
		Lender:                    input.Lender,
		Principal:                 input.Principal,
		InterestRate:              input.InterestRate,
		TenureMonths:              input.TenureMonths,
		EmiAmount:                 input.EmiAmount,
		StartDate:                 input.StartDate,
		EmiStartDate:              input.EmiStartDate,
		ForeclosureAllowed:        input.ForeclosureAllowed,
		ForeclosurePenaltyPercent: input.ForeclosurePenaltyPercent,
		PartPaymentAllowed:        input.PartPaymentAllowed,
		Status:                    LoanStatusActive,
	}, nil
}

// IsOwnedBy returns true if the loan belongs to the given user
func (l *Loan) IsOwnedBy(userID uuid.UUID) bool {
	return l.UserID == userID
}

// MonthlyRate returns the monthly interest rate as a decimal fraction,
// carried to 34 digits (annual percent / 1200).
func (l *Loan) MonthlyRate() decimal.Decimal {
	return MonthlyRate(l.InterestRate)
}

// SetPrincipal replaces the outstanding principal, flooring at zero
func (l *Loan) SetPrincipal(p decimal.Decimal) {
	if p.IsNegative() {
		p = decimal.Zero
	}
	l.Principal = p
	l.Touch()
}
