package lending

import (
	"context"
	"testing"
	"time"

	domain "github.com/dma/backend/internal/domain/lending"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepaymentService_PayEmi(t *testing.T) {
	svc := setupServices(t)
	userID := uuid.New()
	created := createLoan(t, svc, userID, nil)
	ctx := context.Background()

	result, err := svc.repay.PayEmi(ctx, created.Schedule[0].ID, userID, nil)
	require.NoError(t, err)

	// 100000 at 12% p.a.: first month interest is exactly 1000
	assert.Equal(t, 1, result.MonthIndex)
	assert.True(t, result.OpeningBalance.Equal(mustDecimal(t, "100000")))
	assert.True(t, result.InterestComponent.Equal(mustDecimal(t, "1000")))
	assert.True(t, result.PrincipalComponent.Equal(created.Loan.EmiAmount.Sub(mustDecimal(t, "1000"))))
	assert.True(t, result.ClosingBalance.Equal(result.OpeningBalance.Sub(result.PrincipalComponent)))
	assert.True(t, result.UpdatedLoanOutstanding.Equal(result.ClosingBalance))
	assert.Equal(t, domain.LoanStatusActive, result.LoanStatus)

	// Row settled with a payment date
	row, err := svc.emiRepo.FindByID(ctx, result.EmiID)
	require.NoError(t, err)
	assert.Equal(t, domain.EmiStatusPaid, row.Status)
	assert.NotNil(t, row.PaymentDate)

	// Loan balance moved to the closing balance
	loan, err := svc.loanRepo.FindByID(ctx, created.Loan.ID)
	require.NoError(t, err)
	assert.True(t, loan.Principal.Equal(result.ClosingBalance))

	// Payment ledger records the split
	history, err := svc.repay.GetRepaymentHistory(ctx, created.Loan.ID, userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.PaymentTypeEmi, history[0].PaymentType)
	assert.Equal(t, "EMI payment for month 1", history[0].Remarks)
	assert.True(t, history[0].AmountPaid.Equal(created.Loan.EmiAmount))
	assert.True(t, history[0].AllocatedToInterest.Equal(mustDecimal(t, "1000")))
}

func TestRepaymentService_PayEmi_Guards(t *testing.T) {
	svc := setupServices(t)
	userID := uuid.New()
	created := createLoan(t, svc, userID, nil)
	ctx := context.Background()
	firstEmi := created.Schedule[0].ID

	t.Run("unknown emi", func(t *testing.T) {
		_, err := svc.repay.PayEmi(ctx, uuid.New(), userID, nil)
		assertDomainErrorCode(t, err, "NOT_FOUND")
	})

	t.Run("wrong owner", func(t *testing.T) {
		_, err := svc.repay.PayEmi(ctx, firstEmi, uuid.New(), nil)
		assertDomainErrorCode(t, err, "UNAUTHORIZED")
	})

	t.Run("amount below emi", func(t *testing.T) {
		amount := mustDecimal(t, "100")
		_, err := svc.repay.PayEmi(ctx, firstEmi, userID, &amount)
		assertDomainErrorCode(t, err, "INSUFFICIENT_AMOUNT")
	})

	t.Run("overpayment is accepted and recorded", func(t *testing.T) {
		amount := mustDecimal(t, "10000")
		result, err := svc.repay.PayEmi(ctx, firstEmi, userID, &amount)
		require.NoError(t, err)

		history, err := svc.repay.GetRepaymentHistory(ctx, created.Loan.ID, userID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.True(t, history[0].AmountPaid.Equal(amount))
		// The booked split still follows the scheduled EMI amount
		assert.True(t, result.PrincipalComponent.Equal(created.Loan.EmiAmount.Sub(result.InterestComponent)))
	})

	t.Run("already settled row", func(t *testing.T) {
		_, err := svc.repay.PayEmi(ctx, firstEmi, userID, nil)
		assertDomainErrorCode(t, err, "INVALID_STATE")
	})

	t.Run("resolved loan", func(t *testing.T) {
		loan, err := svc.loanRepo.FindByID(ctx, created.Loan.ID)
		require.NoError(t, err)
		loan.Status = domain.LoanStatusClosed
		require.NoError(t, svc.loanRepo.Save(ctx, loan))

		_, err = svc.repay.PayEmi(ctx, created.Schedule[1].ID, userID, nil)
		assertDomainErrorCode(t, err, "INVALID_STATE")
		assert.Equal(t, "Loan already closed", err.Error())
	})
}

func TestRepaymentService_PayEmi_FullAmortizationClosesLoan(t *testing.T) {
	svc := setupServices(t)
	userID := uuid.New()
	created := createLoan(t, svc, userID, func(input *CreateLoanInput) {
		input.Principal = mustDecimal(t, "50000")
		input.TenureMonths = 3
	})
	ctx := context.Background()

	var last *PayEmiResult
	for _, entry := range created.Schedule {
		result, err := svc.repay.PayEmi(ctx, entry.ID, userID, nil)
		require.NoError(t, err)
		last = result
	}

	assert.Equal(t, domain.LoanStatusClosed, last.LoanStatus)
	assert.True(t, last.UpdatedLoanOutstanding.IsZero())

	loan, err := svc.loanRepo.FindByID(ctx, created.Loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusClosed, loan.Status)
	assert.True(t, loan.Principal.IsZero())
}

func TestRepaymentService_MarkEmiPaid(t *testing.T) {
	svc := setupServices(t)
	userID := uuid.New()
	created := createLoan(t, svc, userID, nil)
	ctx := context.Background()

	t.Run("explicit payment date", func(t *testing.T) {
		when := time.Date(2025, time.January, 12, 0, 0, 0, 0, time.UTC)
		result, err := svc.repay.MarkEmiPaid(ctx, created.Schedule[0].ID, userID, &when)
		require.NoError(t, err)
		assert.Equal(t, when, result.ActualPaymentDate)
		assert.True(t, result.InterestComponent.Equal(mustDecimal(t, "1000")))

		history, err := svc.repay.GetRepaymentHistory(ctx, created.Loan.ID, userID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "Manual EMI paid: Month 1", history[0].Remarks)
	})

	t.Run("defaults payment date to now", func(t *testing.T) {
		before := time.Now()
		result, err := svc.repay.MarkEmiPaid(ctx, created.Schedule[1].ID, userID, nil)
		require.NoError(t, err)
		assert.False(t, result.ActualPaymentDate.Before(before))
	})

	t.Run("no resolved-loan guard", func(t *testing.T) {
		loan, err := svc.loanRepo.FindByID(ctx, created.Loan.ID)
		require.NoError(t, err)
		loan.Status = domain.LoanStatusClosed
		require.NoError(t, svc.loanRepo.Save(ctx, loan))

		_, err = svc.repay.MarkEmiPaid(ctx, created.Schedule[2].ID, userID, nil)
		assert.NoError(t, err)
	})

	t.Run("non-pending row", func(t *testing.T) {
		_, err := svc.repay.MarkEmiPaid(ctx, created.Schedule[0].ID, userID, nil)
		assertDomainErrorCode(t, err, "INVALID_STATE")
	})
}

func TestRepaymentService_MarkEmiMissed(t *testing.T) {
	svc := setupServices(t)
	userID := uuid.New()
	created := createLoan(t, svc, userID, nil)
	ctx := context.Background()

	result, err := svc.repay.MarkEmiMissed(ctx, created.Schedule[0].ID, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.EmiStatusMissed, result.Status)
	assert.Equal(t, domain.LoanStatusOverdue, result.LoanStatus)

	// No money moved
	history, err := svc.repay.GetRepaymentHistory(ctx, created.Loan.ID, userID)
	require.NoError(t, err)
	assert.Empty(t, history)

	// Paying the next pending row keeps the loan overdue
	payResult, err := svc.repay.PayEmi(ctx, created.Schedule[1].ID, userID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusOverdue, payResult.LoanStatus)

	t.Run("missed row cannot be missed again", func(t *testing.T) {
		_, err := svc.repay.MarkEmiMissed(ctx, created.Schedule[0].ID, userID)
		assertDomainErrorCode(t, err, "INVALID_STATE")
	})
}

func TestRepaymentService_PartPayment(t *testing.T) {
	svc := setupServices(t)
	userID := uuid.New()
	created := createLoan(t, svc, userID, func(input *CreateLoanInput) {
		input.PartPaymentAllowed = true
	})
	ctx := context.Background()

	// Settle the first EMI so the regeneration anchor is the second due date
	payResult, err := svc.repay.PayEmi(ctx, created.Schedule[0].ID, userID, nil)
	require.NoError(t, err)

	result, err := svc.repay.PartPayment(ctx, created.Loan.ID, userID, mustDecimal(t, "20000"))
	require.NoError(t, err)

	expectedPrincipal := payResult.UpdatedLoanOutstanding.Sub(mustDecimal(t, "20000"))
	assert.True(t, result.OldPrincipal.Equal(payResult.UpdatedLoanOutstanding))
	assert.True(t, result.NewPrincipal.Equal(expectedPrincipal))
	assert.Equal(t, domain.LoanStatusActive, result.LoanStatus)
	assert.Greater(t, result.EmiRowsRecalculated, 0)
	assert.Less(t, result.EmiRowsRecalculated, 11)

	// Regenerated rows restart at month 1 from the old next due date
	pending, err := svc.emiRepo.FindByLoanIDAndStatus(ctx, created.Loan.ID, domain.EmiStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, result.EmiRowsRecalculated)
	assert.Equal(t, 1, pending[0].MonthIndex)
	assert.Equal(t, created.Schedule[1].DueDate, pending[0].DueDate)
	assert.True(t, pending[0].OpeningBalance.Equal(expectedPrincipal))
	assert.True(t, pending[0].EmiAmount.Equal(created.Loan.EmiAmount))

	// The paid row survived the purge
	all, err := svc.emiRepo.FindByLoanID(ctx, created.Loan.ID)
	require.NoError(t, err)
	assert.Len(t, all, result.EmiRowsRecalculated+1)

	history, err := svc.repay.GetRepaymentHistory(ctx, created.Loan.ID, userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	partPayment := history[1]
	assert.Equal(t, domain.PaymentTypePartPayment, partPayment.PaymentType)
	assert.Equal(t, "Part payment made", partPayment.Remarks)
	assert.True(t, partPayment.AllocatedToInterest.IsZero())
	assert.True(t, partPayment.AllocatedToPrincipal.Equal(mustDecimal(t, "20000")))
}

func TestRepaymentService_PartPayment_Guards(t *testing.T) {
	svc := setupServices(t)
	userID := uuid.New()
	ctx := context.Background()

	t.Run("not allowed for loan", func(t *testing.T) {
		created := createLoan(t, svc, userID, nil)
		_, err := svc.repay.PartPayment(ctx, created.Loan.ID, userID, mustDecimal(t, "20000"))
		assertDomainErrorCode(t, err, "INVALID_STATE")
	})

	t.Run("below minimum amount", func(t *testing.T) {
		created := createLoan(t, svc, userID, func(input *CreateLoanInput) {
			input.PartPaymentAllowed = true
		})
		_, err := svc.repay.PartPayment(ctx, created.Loan.ID, userID, mustDecimal(t, "999"))
		assertDomainErrorCode(t, err, "INSUFFICIENT_AMOUNT")
	})

	t.Run("wrong owner", func(t *testing.T) {
		created := createLoan(t, svc, userID, func(input *CreateLoanInput) {
			input.PartPaymentAllowed = true
		})
		_, err := svc.repay.PartPayment(ctx, created.Loan.ID, uuid.New(), mustDecimal(t, "20000"))
		assertDomainErrorCode(t, err, "UNAUTHORIZED")
	})

	t.Run("no pending rows", func(t *testing.T) {
		created := createLoan(t, svc, userID, func(input *CreateLoanInput) {
			input.PartPaymentAllowed = true
			input.Principal = mustDecimal(t, "50000")
			input.TenureMonths = 3
		})
		for _, entry := range created.Schedule {
			_, err := svc.repay.MarkEmiMissed(ctx, entry.ID, userID)
			require.NoError(t, err)
		}

		_, err := svc.repay.PartPayment(ctx, created.Loan.ID, userID, mustDecimal(t, "20000"))
		assertDomainErrorCode(t, err, "INVALID_STATE")
		assert.Equal(t, "No pending EMIs", err.Error())
	})
}

func TestRepaymentService_PartPayment_ClearsBalance(t *testing.T) {
	svc := setupServices(t)
	userID := uuid.New()
	created := createLoan(t, svc, userID, func(input *CreateLoanInput) {
		input.PartPaymentAllowed = true
	})
	ctx := context.Background()

	result, err := svc.repay.PartPayment(ctx, created.Loan.ID, userID, mustDecimal(t, "150000"))
	require.NoError(t, err)

	assert.True(t, result.NewPrincipal.IsZero())
	assert.Equal(t, 0, result.EmiRowsRecalculated)
	assert.Equal(t, domain.LoanStatusClosed, result.LoanStatus)

	pending, err := svc.emiRepo.FindByLoanIDAndStatus(ctx, created.Loan.ID, domain.EmiStatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRepaymentService_ForecloseLoan(t *testing.T) {
	svc := setupServices(t)
	userID := uuid.New()
	created := createLoan(t, svc, userID, func(input *CreateLoanInput) {
		input.ForeclosureAllowed = true
		input.ForeclosurePenaltyPercent = mustDecimal(t, "2")
	})
	ctx := context.Background()

	t.Run("insufficient amount", func(t *testing.T) {
		_, err := svc.repay.ForecloseLoan(ctx, created.Loan.ID, userID, mustDecimal(t, "100000"))
		assertDomainErrorCode(t, err, "INSUFFICIENT_AMOUNT")

		// One cent below principal plus penalty still fails
		_, err = svc.repay.ForecloseLoan(ctx, created.Loan.ID, userID, mustDecimal(t, "101999.99"))
		assertDomainErrorCode(t, err, "INSUFFICIENT_AMOUNT")
	})

	t.Run("settles the loan", func(t *testing.T) {
		// 2% of 100000
		result, err := svc.repay.ForecloseLoan(ctx, created.Loan.ID, userID, mustDecimal(t, "102000"))
		require.NoError(t, err)

		assert.True(t, result.PenaltyApplied.Equal(mustDecimal(t, "2000")))
		assert.True(t, result.TotalAmountRequired.Equal(mustDecimal(t, "102000")))
		assert.Equal(t, 12, result.PendingEmiCountClosed)
		// Zero principal re-derives straight to CLOSED
		assert.Equal(t, domain.LoanStatusClosed, result.Status)

		loan, err := svc.loanRepo.FindByID(ctx, created.Loan.ID)
		require.NoError(t, err)
		assert.True(t, loan.Principal.IsZero())
		assert.Equal(t, domain.LoanStatusClosed, loan.Status)

		rows, err := svc.emiRepo.FindByLoanID(ctx, created.Loan.ID)
		require.NoError(t, err)
		for _, row := range rows {
			assert.Equal(t, domain.EmiStatusForeclosed, row.Status)
		}

		history, err := svc.repay.GetRepaymentHistory(ctx, created.Loan.ID, userID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, domain.PaymentTypeForeclosure, history[0].PaymentType)
		assert.Equal(t, "Loan foreclosed with penalty 2000", history[0].Remarks)
		// The ledger books the outstanding principal and no interest; the
		// penalty is carried by the amount paid and the remarks only
		assert.True(t, history[0].AmountPaid.Equal(mustDecimal(t, "102000")))
		assert.True(t, history[0].AllocatedToInterest.IsZero())
		assert.True(t, history[0].AllocatedToPrincipal.Equal(mustDecimal(t, "100000")))
		assert.True(t, history[0].OutstandingAfterPayment.IsZero())
	})

	t.Run("already resolved", func(t *testing.T) {
		_, err := svc.repay.ForecloseLoan(ctx, created.Loan.ID, userID, mustDecimal(t, "102000"))
		assertDomainErrorCode(t, err, "INVALID_STATE")
	})
}

func TestRepaymentService_ForecloseLoan_NotAllowed(t *testing.T) {
	svc := setupServices(t)
	userID := uuid.New()
	created := createLoan(t, svc, userID, nil)

	_, err := svc.repay.ForecloseLoan(context.Background(), created.Loan.ID, userID, mustDecimal(t, "200000"))
	assertDomainErrorCode(t, err, "INVALID_STATE")
}

func TestRepaymentService_GetRepaymentHistory_Ordered(t *testing.T) {
	svc := setupServices(t)
	userID := uuid.New()
	created := createLoan(t, svc, userID, nil)
	ctx := context.Background()

	early := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)

	// Book the later month first; history must still come back date-ordered
	_, err := svc.repay.MarkEmiPaid(ctx, created.Schedule[1].ID, userID, &late)
	require.NoError(t, err)
	_, err = svc.repay.MarkEmiPaid(ctx, created.Schedule[0].ID, userID, &early)
	require.NoError(t, err)

	history, err := svc.repay.GetRepaymentHistory(ctx, created.Loan.ID, userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, early, history[0].PaymentDate.UTC())
	assert.Equal(t, late, history[1].PaymentDate.UTC())

	t.Run("wrong owner", func(t *testing.T) {
		_, err := svc.repay.GetRepaymentHistory(ctx, created.Loan.ID, uuid.New())
		assertDomainErrorCode(t, err, "UNAUTHORIZED")
	})
}
