package lending

import (
	"time"

	"github.com/dma/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType classifies an entry of the payment ledger
type PaymentType string

const (
	PaymentTypeEmi         PaymentType = "EMI"
	PaymentTypePartPayment PaymentType = "PART_PAYMENT"
	PaymentTypeForeclosure PaymentType = "FORECLOSURE"
)

// IsValid checks if the payment type is valid
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeEmi, PaymentTypePartPayment, PaymentTypeForeclosure:
		return true
	}
	return false
}

// String returns the string representation of PaymentType
func (t PaymentType) String() string {
	return string(t)
}

// Payment is an append-only record of money received against a loan.
// OutstandingAfterPayment captures the loan principal at the moment the
// record was written; records are never mutated or deleted.
type Payment struct {
	shared.BaseEntity
	LoanID                  uuid.UUID       `json:"loan_id"`
	PaymentDate             time.Time       `json:"payment_date"`
	AmountPaid              decimal.Decimal `json:"amount_paid"`
	AllocatedToInterest     decimal.Decimal `json:"allocated_to_interest"`
	AllocatedToPrincipal    decimal.Decimal `json:"allocated_to_principal"`
	OutstandingAfterPayment decimal.Decimal `json:"outstanding_after_payment"`
	PaymentType             PaymentType     `json:"payment_type"`
	Remarks                 string          `json:"remarks"`
}

// NewPayment creates a new payment ledger record
func NewPayment(loanID uuid.UUID, paymentDate time.Time, amountPaid, toInterest, toPrincipal, outstandingAfter decimal.Decimal, paymentType PaymentType, remarks string) (*Payment, error) {
	if loanID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Loan ID cannot be empty")
	}
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment type is not valid")
	}
	if !amountPaid.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Amount paid must be greater than zero")
	}

	return &Payment{
		BaseEntity:              shared.NewBaseEntity(),
		LoanID:                  loanID,
		PaymentDate:             paymentDate,
		AmountPaid:              amountPaid,
		AllocatedToInterest:     toInterest,
		AllocatedToPrincipal:    toPrincipal,
		OutstandingAfterPayment: outstandingAfter,
		PaymentType:             paymentType,
		Remarks:                 remarks,
	}, nil
}
