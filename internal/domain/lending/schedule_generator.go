package lending

import (
	"github.com/dma/backend/internal/domain/shared"
)

// ScheduleGenerator produces the month-by-month amortization ledger for a
// loan from its current principal, fixed EMI amount and first due date.
type ScheduleGenerator struct{}

// NewScheduleGenerator creates a new ScheduleGenerator
func NewScheduleGenerator() *ScheduleGenerator {
	return &ScheduleGenerator{}
}

// Generate builds the full PENDING schedule for a loan.
//
// The loop runs for at most the loan's nominal tenure but stops as soon as
// a row's closing balance reaches zero: a fixed EMI that over-amortizes the
// balance produces a schedule shorter than the tenure, which is expected.
// Month indices are 1-based and contiguous.
func (g *ScheduleGenerator) Generate(loan *Loan) ([]EmiScheduleEntry, error) {
	if loan == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Loan cannot be nil")
	}

	monthlyRate := loan.MonthlyRate()
	openingBalance := loan.Principal
	dueDate := loan.EmiStartDate

	entries := make([]EmiScheduleEntry, 0, loan.TenureMonths)

	for monthIndex := 1; monthIndex <= loan.TenureMonths; monthIndex++ {
		breakdown, err := CalculateEmiBreakdown(openingBalance, monthlyRate, loan.EmiAmount)
		if err != nil {
			return nil, err
		}

		entries = append(entries, EmiScheduleEntry{
			BaseEntity:         shared.NewBaseEntity(),
			LoanID:             loan.ID,
			MonthIndex:         monthIndex,
			DueDate:            dueDate,
			OpeningBalance:     openingBalance,
			EmiAmount:          loan.EmiAmount,
			InterestComponent:  breakdown.InterestComponent,
			PrincipalComponent: breakdown.PrincipalComponent,
			ClosingBalance:     breakdown.ClosingBalance,
			Status:             EmiStatusPending,
		})

		if !breakdown.ClosingBalance.IsPositive() {
			break
		}

		openingBalance = breakdown.ClosingBalance
		dueDate = addMonths(dueDate, 1)
	}

	return entries, nil
}
