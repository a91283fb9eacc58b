package lending

import (
	"time"

	"github.com/dma/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EmiScheduleStatus represents the outcome of one EMI ledger row
type EmiScheduleStatus string

const (
	EmiStatusPending    EmiScheduleStatus = "PENDING"    // Not yet paid or missed
	EmiStatusPaid       EmiScheduleStatus = "PAID"       // Settled (paid or manually marked paid)
	EmiStatusMissed     EmiScheduleStatus = "MISSED"     // Due date passed without payment
	EmiStatusForeclosed EmiScheduleStatus = "FORECLOSED" // Cancelled by loan foreclosure
)

// IsValid checks if the status is a valid EmiScheduleStatus
func (s EmiScheduleStatus) IsValid() bool {
	switch s {
	case EmiStatusPending, EmiStatusPaid, EmiStatusMissed, EmiStatusForeclosed:
		return true
	}
	return false
}

// String returns the string representation of EmiScheduleStatus
func (s EmiScheduleStatus) String() string {
	return string(s)
}

// EmiScheduleEntry is one row of a loan's amortization ledger.
// Rows are created in bulk by the schedule generator and mutated in place
// when paid, missed or foreclosed. Only PENDING rows are ever deleted, and
// only as a block during part-payment regeneration.
type EmiScheduleEntry struct {
	shared.BaseEntity
	LoanID             uuid.UUID         `json:"loan_id"`
	MonthIndex         int               `json:"month_index"`
	DueDate            time.Time         `json:"due_date"`
	OpeningBalance     decimal.Decimal   `json:"opening_balance"`
	EmiAmount          decimal.Decimal   `json:"emi_amount"`
	InterestComponent  decimal.Decimal   `json:"interest_component"`
	PrincipalComponent decimal.Decimal   `json:"principal_component"`
	ClosingBalance     decimal.Decimal   `json:"closing_balance"`
	Status             EmiScheduleStatus `json:"status"`
	PaymentDate        *time.Time        `json:"payment_date,omitempty"`
}

// IsPending returns true if the row can still be paid, missed or foreclosed
func (e *EmiScheduleEntry) IsPending() bool {
	return e.Status == EmiStatusPending
}

// MarkPaid books the breakdown onto the row and settles it
func (e *EmiScheduleEntry) MarkPaid(b EmiBreakdown, paymentDate time.Time) error {
	if !e.IsPending() {
		return shared.NewDomainError("INVALID_STATE", "EMI is not pending and cannot be paid")
	}
	e.InterestComponent = b.InterestComponent
	e.PrincipalComponent = b.PrincipalComponent
	e.ClosingBalance = b.ClosingBalance
	e.Status = EmiStatusPaid
	e.PaymentDate = &paymentDate
	e.Touch()
	return nil
}

// MarkMissed flags a pending row as missed
func (e *EmiScheduleEntry) MarkMissed() error {
	if !e.IsPending() {
		return shared.NewDomainError("INVALID_STATE", "EMI is not pending and cannot be marked missed")
	}
	e.Status = EmiStatusMissed
	e.Touch()
	return nil
}

// MarkForeclosed cancels a pending row as part of loan foreclosure
func (e *EmiScheduleEntry) MarkForeclosed() {
	e.Status = EmiStatusForeclosed
	e.Touch()
}
