package lending

import (
	"github.com/dma/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// calcScale is the number of decimal places carried through intermediate
// amortization arithmetic before the final rounding to 2 decimals.
const calcScale = 34

var (
	one            = decimal.NewFromInt(1)
	monthsPerYear  = decimal.NewFromInt(12)
	percentDivisor = decimal.NewFromInt(100)
)

// MonthlyRate converts an annual percentage rate into a monthly decimal
// fraction (rate / 1200), carried to calcScale decimal places.
func MonthlyRate(annualRate decimal.Decimal) decimal.Decimal {
	return annualRate.
		DivRound(percentDivisor, calcScale).
		DivRound(monthsPerYear, calcScale)
}

// CalculateEmi computes the level monthly installment for a loan.
//
// For a zero interest rate the installment is the principal spread evenly
// over the tenure. Otherwise:
//
//	EMI = P * r * (1+r)^n / ((1+r)^n - 1)
//
// with r the monthly rate and n the tenure in months. The result is rounded
// half-up to 2 decimal places.
func CalculateEmi(principal, annualRate decimal.Decimal, tenureMonths int) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", "Principal must be greater than zero")
	}
	if tenureMonths <= 0 {
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", "Tenure (months) must be greater than zero")
	}
	if annualRate.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", "Interest rate cannot be negative")
	}

	months := decimal.NewFromInt(int64(tenureMonths))

	if annualRate.IsZero() {
		return principal.DivRound(months, 2), nil
	}

	monthlyRate := MonthlyRate(annualRate)
	pow := compoundFactor(monthlyRate, tenureMonths)

	numerator := principal.Mul(monthlyRate).Mul(pow)
	denominator := pow.Sub(one)

	emi := numerator.DivRound(denominator, calcScale)
	return emi.Round(2), nil
}

// compoundFactor computes (1+r)^n, rounding each intermediate product to
// calcScale decimal places to keep operand sizes bounded.
func compoundFactor(monthlyRate decimal.Decimal, n int) decimal.Decimal {
	base := one.Add(monthlyRate)
	result := one
	for i := 0; i < n; i++ {
		result = result.Mul(base).Round(calcScale)
	}
	return result
}
