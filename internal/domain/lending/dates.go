package lending

import (
	"fmt"
	"time"

	"github.com/dma/backend/internal/domain/shared"
)

// DerivedDates is the resolved (loan start date, first EMI due date) pair.
type DerivedDates struct {
	StartDate    time.Time `json:"start_date"`
	EmiStartDate time.Time `json:"emi_start_date"`
}

// DeriveLoanDates resolves the loan start date and first EMI due date from
// partial input, enforcing the EMI-cycle rule:
//
//   - only the EMI start date given: the loan starts on the first day of
//     that month;
//   - only the start date given: the first EMI falls on emiDayOfMonth in the
//     same month if the start day is still before it, otherwise in the next
//     month, clamped to the month's last day;
//   - both given: the supplied EMI start date must match the one the rule
//     derives from the start date.
func DeriveLoanDates(startDate, emiStartDate *time.Time, emiDayOfMonth int) (DerivedDates, error) {
	if startDate == nil && emiStartDate == nil {
		return DerivedDates{}, shared.NewDomainError("INVALID_INPUT", "Either start date or EMI start date must be provided")
	}

	if startDate == nil {
		emiStart := dateOnly(*emiStartDate)
		derivedStart := time.Date(emiStart.Year(), emiStart.Month(), 1, 0, 0, 0, 0, time.UTC)
		return DerivedDates{StartDate: derivedStart, EmiStartDate: emiStart}, nil
	}

	if emiDayOfMonth < 1 || emiDayOfMonth > 31 {
		return DerivedDates{}, shared.NewDomainError("INVALID_INPUT", "EMI day of month must be between 1 and 31")
	}

	start := dateOnly(*startDate)

	if emiStartDate == nil {
		return DerivedDates{StartDate: start, EmiStartDate: nextEmiDate(start, emiDayOfMonth)}, nil
	}

	emiStart := dateOnly(*emiStartDate)
	expected := nextEmiDate(start, emiDayOfMonth)
	if !expected.Equal(emiStart) {
		return DerivedDates{}, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf(
			"Provided dates are inconsistent with EMI cycle. Expected EMI start: %s but got: %s",
			expected.Format(time.DateOnly), emiStart.Format(time.DateOnly)))
	}

	return DerivedDates{StartDate: start, EmiStartDate: emiStart}, nil
}

// nextEmiDate computes the earliest date on or after start whose
// day-of-month is emiDay. The day is clamped to the target month's length.
func nextEmiDate(start time.Time, emiDay int) time.Time {
	if start.Day() < emiDay {
		return withDayOfMonth(start, emiDay)
	}
	next := addMonths(start, 1)
	return withDayOfMonth(next, emiDay)
}

// dateOnly truncates a timestamp to a UTC calendar date
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// withDayOfMonth returns t with its day replaced, clamped to the month's length
func withDayOfMonth(t time.Time, day int) time.Time {
	if last := daysInMonth(t.Year(), t.Month()); day > last {
		day = last
	}
	return time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, time.UTC)
}

// addMonths advances a date by whole calendar months, clamping the day to
// the target month's length instead of letting short months roll over.
func addMonths(t time.Time, months int) time.Time {
	year, month := t.Year(), int(t.Month())+months
	for month > 12 {
		month -= 12
		year++
	}
	for month < 1 {
		month += 12
		year--
	}
	day := t.Day()
	if last := daysInMonth(year, time.Month(month)); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// daysInMonth returns the number of days in the given month
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
