package lending

import (
	"github.com/dma/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EmiBreakdown is the interest/principal split of one EMI payment against
// an opening balance.
type EmiBreakdown struct {
	InterestComponent  decimal.Decimal `json:"interest_component"`
	PrincipalComponent decimal.Decimal `json:"principal_component"`
	ClosingBalance     decimal.Decimal `json:"closing_balance"`
}

// CalculateEmiBreakdown splits one EMI payment into its interest and
// principal components.
//
//	interest  = openingBalance * monthlyRate   (rounded to 2 decimals)
//	principal = emiAmount - interest           (rounded to 2 decimals)
//	closing   = openingBalance - principal     (rounded, floored at 0)
//
// The principal component is deliberately not capped at the opening
// balance: when the fixed EMI over-amortizes the final installment the
// closing balance floors at zero while the principal component records the
// full EMI allocation.
func CalculateEmiBreakdown(openingBalance, monthlyRate, emiAmount decimal.Decimal) (EmiBreakdown, error) {
	if !openingBalance.IsPositive() {
		return EmiBreakdown{}, shared.NewDomainError("INVALID_INPUT", "Opening balance must be greater than zero")
	}
	if monthlyRate.IsNegative() {
		return EmiBreakdown{}, shared.NewDomainError("INVALID_INPUT", "Monthly interest rate cannot be negative")
	}
	if !emiAmount.IsPositive() {
		return EmiBreakdown{}, shared.NewDomainError("INVALID_INPUT", "EMI amount must be greater than zero")
	}

	interest := openingBalance.Mul(monthlyRate).Round(2)
	principal := emiAmount.Sub(interest).Round(2)

	closing := openingBalance.Sub(principal).Round(2)
	if closing.IsNegative() {
		closing = decimal.Zero
	}

	return EmiBreakdown{
		InterestComponent:  interest,
		PrincipalComponent: principal,
		ClosingBalance:     closing,
	}, nil
}
