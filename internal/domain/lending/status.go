package lending

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeriveLoanStatus recomputes a loan's lifecycle status from its current
// principal, current status and EMI ledger. It is a pure re-derivation, not
// a transition table, and is invoked after every repayment mutation.
//
// Precedence: a zero principal always yields CLOSED, even for a loan just
// marked FORECLOSED (foreclosure zeroes the principal, so a foreclosed loan
// re-derives to CLOSED). A FORECLOSED status with a non-zero principal is
// sticky. Otherwise any MISSED row makes the loan OVERDUE, else ACTIVE.
func DeriveLoanStatus(principal decimal.Decimal, current LoanStatus, entries []EmiScheduleEntry) LoanStatus {
	if principal.IsZero() {
		return LoanStatusClosed
	}

	if current == LoanStatusForeclosed {
		return LoanStatusForeclosed
	}

	for i := range entries {
		if entries[i].Status == EmiStatusMissed {
			return LoanStatusOverdue
		}
	}

	return LoanStatusActive
}

// NextEmi identifies the earliest pending row of a schedule
type NextEmi struct {
	EmiID      uuid.UUID       `json:"emi_id"`
	MonthIndex int             `json:"month_index"`
	DueDate    time.Time       `json:"due_date"`
	EmiAmount  decimal.Decimal `json:"emi_amount"`
}

// EmiCounts aggregates a loan's EMI rows by status
type EmiCounts struct {
	Total   int `json:"total"`
	Paid    int `json:"paid"`
	Pending int `json:"pending"`
	Missed  int `json:"missed"`
}

// LoanHealth is the derived repayment health of a single loan
type LoanHealth struct {
	LoanID               uuid.UUID       `json:"loan_id"`
	LoanStatus           LoanStatus      `json:"loan_status"`
	EmiCounts            EmiCounts       `json:"emi_counts"`
	NextEmi              *NextEmi        `json:"next_emi,omitempty"`
	PrincipalOutstanding decimal.Decimal `json:"principal_outstanding"`
	HasMissedEmis        bool            `json:"has_missed_emis"`
	CanPayNextEmi        bool            `json:"can_pay_next_emi"`
	CanForeclose         bool            `json:"can_foreclose"`
}

// LoanSummary is the per-loan digest used in a user's loan listing
type LoanSummary struct {
	LoanID               uuid.UUID       `json:"loan_id"`
	Name                 string          `json:"name"`
	Category             string          `json:"category"`
	Lender               string          `json:"lender"`
	PrincipalOutstanding decimal.Decimal `json:"principal_outstanding"`
	LoanStatus           LoanStatus      `json:"loan_status"`
	EmiCounts            EmiCounts       `json:"emi_counts"`
	NextEmi              *NextEmi        `json:"next_emi,omitempty"`
	HasMissedEmis        bool            `json:"has_missed_emis"`
	CanPayNextEmi        bool            `json:"can_pay_next_emi"`
}

// CountEmis tallies schedule rows by status
func CountEmis(entries []EmiScheduleEntry) EmiCounts {
	counts := EmiCounts{Total: len(entries)}
	for i := range entries {
		switch entries[i].Status {
		case EmiStatusPaid:
			counts.Paid++
		case EmiStatusPending:
			counts.Pending++
		case EmiStatusMissed:
			counts.Missed++
		}
	}
	return counts
}

// FirstPendingEmi returns the earliest PENDING row of a month-index-ordered
// schedule, or nil if none remains.
func FirstPendingEmi(entries []EmiScheduleEntry) *EmiScheduleEntry {
	for i := range entries {
		if entries[i].Status == EmiStatusPending {
			return &entries[i]
		}
	}
	return nil
}

// BuildLoanHealth derives the health view of a loan from its schedule
func BuildLoanHealth(loan *Loan, entries []EmiScheduleEntry) LoanHealth {
	counts := CountEmis(entries)
	nextPending := FirstPendingEmi(entries)

	health := LoanHealth{
		LoanID:               loan.ID,
		LoanStatus:           loan.Status,
		EmiCounts:            counts,
		PrincipalOutstanding: loan.Principal,
		HasMissedEmis:        counts.Missed > 0,
		CanPayNextEmi:        nextPending != nil && !loan.Status.IsResolved(),
		CanForeclose:         loan.ForeclosureAllowed && !loan.Status.IsResolved(),
	}
	if nextPending != nil {
		health.NextEmi = &NextEmi{
			EmiID:      nextPending.ID,
			MonthIndex: nextPending.MonthIndex,
			DueDate:    nextPending.DueDate,
			EmiAmount:  nextPending.EmiAmount,
		}
	}
	return health
}

// BuildLoanSummary derives the listing digest of a loan from its schedule
func BuildLoanSummary(loan *Loan, entries []EmiScheduleEntry) LoanSummary {
	counts := CountEmis(entries)
	nextPending := FirstPendingEmi(entries)

	summary := LoanSummary{
		LoanID:               loan.ID,
		Name:                 loan.Name,
		Category:             loan.Category,
		Lender:               loan.Lender,
		PrincipalOutstanding: loan.Principal,
		LoanStatus:           loan.Status,
		EmiCounts:            counts,
		HasMissedEmis:        counts.Missed > 0,
		CanPayNextEmi:        nextPending != nil && !loan.Status.IsResolved(),
	}
	if nextPending != nil {
		summary.NextEmi = &NextEmi{
			EmiID:      nextPending.ID,
			MonthIndex: nextPending.MonthIndex,
			DueDate:    nextPending.DueDate,
			EmiAmount:  nextPending.EmiAmount,
		}
	}
	return summary
}
