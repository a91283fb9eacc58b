package lending

import (
	"time"

	"github.com/dma/backend/internal/domain/lending"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLoanInput contains the input for loan creation.
// StartDate and EmiStartDate are optional; at least one must be present and
// EmiDayOfMonth anchors the first due date when EmiStartDate is absent.
// EmiAmount is optional: loans imported mid-life carry the installment they
// were sold with, which need not match the computed one. When nil the EMI
// is computed from principal, rate and tenure.
type CreateLoanInput struct {
	UserID                    uuid.UUID
	Name                      string
	Category                  string
	Lender                    string
	Principal                 decimal.Decimal
	InterestRate              decimal.Decimal
	TenureMonths              int
	EmiAmount                 *decimal.Decimal
	StartDate                 *time.Time
	EmiStartDate              *time.Time
	EmiDayOfMonth             int
	ForeclosureAllowed        bool
	ForeclosurePenaltyPercent decimal.Decimal
	PartPaymentAllowed        bool
}

// CreateLoanResult contains the created loan and its generated schedule
type CreateLoanResult struct {
	Loan     *lending.Loan
	Schedule []lending.EmiScheduleEntry
}

// LoanDetailResult contains a loan together with its full EMI ledger
type LoanDetailResult struct {
	Loan     *lending.Loan
	Schedule []lending.EmiScheduleEntry
}

// PayEmiResult describes the outcome of an EMI payment
type PayEmiResult struct {
	EmiID                  uuid.UUID          `json:"emi_id"`
	MonthIndex             int                `json:"month_index"`
	OpeningBalance         decimal.Decimal    `json:"opening_balance"`
	InterestComponent      decimal.Decimal    `json:"interest_component"`
	PrincipalComponent     decimal.Decimal    `json:"principal_component"`
	ClosingBalance         decimal.Decimal    `json:"closing_balance"`
	UpdatedLoanOutstanding decimal.Decimal    `json:"updated_loan_outstanding"`
	LoanStatus             lending.LoanStatus `json:"loan_status"`
}

// MarkPaidResult describes the outcome of manually settling an EMI
type MarkPaidResult struct {
	EmiID                  uuid.UUID          `json:"emi_id"`
	MonthIndex             int                `json:"month_index"`
	ActualPaymentDate      time.Time          `json:"actual_payment_date"`
	OpeningBalance         decimal.Decimal    `json:"opening_balance"`
	InterestComponent      decimal.Decimal    `json:"interest_component"`
	PrincipalComponent     decimal.Decimal    `json:"principal_component"`
	ClosingBalance         decimal.Decimal    `json:"closing_balance"`
	UpdatedLoanOutstanding decimal.Decimal    `json:"updated_loan_outstanding"`
	LoanStatus             lending.LoanStatus `json:"loan_status"`
}

// MarkMissedResult describes the outcome of flagging an EMI as missed
type MarkMissedResult struct {
	EmiID      uuid.UUID                 `json:"emi_id"`
	MonthIndex int                       `json:"month_index"`
	DueDate    time.Time                 `json:"due_date"`
	Status     lending.EmiScheduleStatus `json:"status"`
	LoanStatus lending.LoanStatus        `json:"loan_status"`
}

// PartPaymentResult describes the outcome of a lump-sum principal reduction
type PartPaymentResult struct {
	OldPrincipal        decimal.Decimal    `json:"old_principal"`
	NewPrincipal        decimal.Decimal    `json:"new_principal"`
	AmountPaid          decimal.Decimal    `json:"amount_paid"`
	EmiRowsRecalculated int                `json:"emi_rows_recalculated"`
	LoanStatus          lending.LoanStatus `json:"loan_status"`
}

// ForeclosureResult describes the outcome of an early full settlement
type ForeclosureResult struct {
	PrincipalOutstanding  decimal.Decimal    `json:"principal_outstanding"`
	PenaltyApplied        decimal.Decimal    `json:"penalty_applied"`
	TotalAmountRequired   decimal.Decimal    `json:"total_amount_required"`
	AmountPaid            decimal.Decimal    `json:"amount_paid"`
	Status                lending.LoanStatus `json:"status"`
	PendingEmiCountClosed int                `json:"pending_emi_count_closed"`
}

// RepaymentHistoryItem is one entry of a loan's payment ledger
type RepaymentHistoryItem struct {
	PaymentID               uuid.UUID           `json:"payment_id"`
	PaymentDate             time.Time           `json:"payment_date"`
	AmountPaid              decimal.Decimal     `json:"amount_paid"`
	AllocatedToInterest     decimal.Decimal     `json:"allocated_to_interest"`
	AllocatedToPrincipal    decimal.Decimal     `json:"allocated_to_principal"`
	OutstandingAfterPayment decimal.Decimal     `json:"outstanding_after_payment"`
	PaymentType             lending.PaymentType `json:"payment_type"`
	Remarks                 string              `json:"remarks"`
}
