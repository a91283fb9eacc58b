package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/dma/backend/internal/domain/lending"
	"github.com/dma/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.UserModel{},
		&models.LoanModel{},
		&models.EmiScheduleModel{},
		&models.PaymentModel{},
	)
	require.NoError(t, err)

	return db
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

// seedLoan creates a loan with its generated schedule and persists both
func seedLoan(t *testing.T, db *gorm.DB, principal, rate string, tenure int) (*lending.Loan, []lending.EmiScheduleEntry) {
	t.Helper()

	p := mustDecimal(t, principal)
	r := mustDecimal(t, rate)
	emi, err := lending.CalculateEmi(p, r, tenure)
	require.NoError(t, err)

	loan, err := lending.NewLoan(lending.NewLoanInput{
		UserID:       uuid.New(),
		Name:         "Bike loan",
		Category:     "VEHICLE",
		Lender:       "City Bank",
		Principal:    p,
		InterestRate: r,
		TenureMonths: tenure,
		EmiAmount:    emi,
		StartDate:    time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		EmiStartDate: time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	entries, err := lending.NewScheduleGenerator().Generate(loan)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, NewGormLoanRepository(db).Create(ctx, loan))
	require.NoError(t, NewGormEmiScheduleRepository(db).CreateAll(ctx, entries))

	return loan, entries
}
