package lending

import (
	"context"
	"testing"
	"time"

	domain "github.com/dma/backend/internal/domain/lending"
	"github.com/dma/backend/internal/domain/shared"
	"github.com/dma/backend/internal/infrastructure/persistence"
	"github.com/dma/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testServices struct {
	db       *gorm.DB
	loans    *LoanService
	repay    *RepaymentService
	loanRepo domain.LoanRepository
	emiRepo  domain.EmiScheduleRepository
}

// setupServices wires the services against an in-memory SQLite database
func setupServices(t *testing.T) *testServices {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.LoanModel{},
		&models.EmiScheduleModel{},
		&models.PaymentModel{},
	)
	require.NoError(t, err)

	uow := persistence.NewGormUnitOfWork(db)
	loanRepo := persistence.NewGormLoanRepository(db)
	emiRepo := persistence.NewGormEmiScheduleRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	logger := zap.NewNop()

	return &testServices{
		db:       db,
		loans:    NewLoanService(uow, loanRepo, emiRepo, logger),
		repay:    NewRepaymentService(uow, loanRepo, paymentRepo, logger),
		loanRepo: loanRepo,
		emiRepo:  emiRepo,
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

func timePtr(v time.Time) *time.Time {
	return &v
}

// createLoan seeds a standard 12-month loan through the loan service
func createLoan(t *testing.T, svc *testServices, userID uuid.UUID, mutate func(*CreateLoanInput)) *CreateLoanResult {
	t.Helper()

	input := CreateLoanInput{
		UserID:       userID,
		Name:         "Bike loan",
		Category:     "VEHICLE",
		Lender:       "City Bank",
		Principal:    mustDecimal(t, "100000"),
		InterestRate: mustDecimal(t, "12"),
		TenureMonths: 12,
		StartDate:     timePtr(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)),
		EmiStartDate:  timePtr(time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)),
		EmiDayOfMonth: 10,
	}
	if mutate != nil {
		mutate(&input)
	}

	result, err := svc.loans.CreateLoan(context.Background(), input)
	require.NoError(t, err)
	return result
}

func assertDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}
