package lending

import (
	"context"
	"fmt"
	"time"

	"github.com/dma/backend/internal/domain/lending"
	"github.com/dma/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// minPartPaymentAmount is the smallest lump sum accepted as a part payment
var minPartPaymentAmount = decimal.NewFromInt(1000)

// RepaymentService executes the repayment operations of a loan. Every
// mutation runs inside a single unit of work so the EMI row, loan balance,
// status and payment record always move together.
type RepaymentService struct {
	uow      lending.UnitOfWork
	payments lending.PaymentRepository
	loans    lending.LoanRepository
	logger   *zap.Logger
}

// NewRepaymentService creates a new repayment service
func NewRepaymentService(
	uow lending.UnitOfWork,
	loans lending.LoanRepository,
	payments lending.PaymentRepository,
	logger *zap.Logger,
) *RepaymentService {
	return &RepaymentService{
		uow:      uow,
		payments: payments,
		loans:    loans,
		logger:   logger,
	}
}

// PayEmi settles the given EMI with an actual payment. A nil amount defaults
// to the scheduled EMI amount; anything below it is rejected. The interest
// and principal split is recomputed against the loan's live balance at
// payment time, so the booked figures can differ from the projections the
// schedule was generated with.
func (s *RepaymentService) PayEmi(ctx context.Context, emiID, userID uuid.UUID, amountPaid *decimal.Decimal) (*PayEmiResult, error) {
	var result PayEmiResult

	err := s.uow.Execute(ctx, func(repos lending.Repositories) error {
		emi, err := repos.Schedules.FindByID(ctx, emiID)
		if err != nil {
			return err
		}

		loan, err := repos.Loans.FindByID(ctx, emi.LoanID)
		if err != nil {
			return err
		}
		if !loan.IsOwnedBy(userID) {
			return shared.ErrUnauthorized
		}
		if loan.Status.IsResolved() {
			return shared.NewDomainError("INVALID_STATE", "Loan already closed")
		}
		if !emi.IsPending() {
			return shared.NewDomainError("INVALID_STATE", "EMI is not in pending state")
		}

		amount := emi.EmiAmount
		if amountPaid != nil {
			amount = *amountPaid
		}
		if amount.LessThan(emi.EmiAmount) {
			return shared.NewDomainError("INSUFFICIENT_AMOUNT", "Insufficient amount to pay EMI")
		}

		breakdown, err := lending.CalculateEmiBreakdown(emi.OpeningBalance, loan.MonthlyRate(), emi.EmiAmount)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := emi.MarkPaid(breakdown, now); err != nil {
			return err
		}
		if err := repos.Schedules.Save(ctx, emi); err != nil {
			return err
		}

		loan.SetPrincipal(breakdown.ClosingBalance)
		status, err := s.refreshStatus(ctx, repos, loan)
		if err != nil {
			return err
		}

		payment, err := lending.NewPayment(loan.ID, now, amount,
			breakdown.InterestComponent, breakdown.PrincipalComponent, loan.Principal,
			lending.PaymentTypeEmi, fmt.Sprintf("EMI payment for month %d", emi.MonthIndex))
		if err != nil {
			return err
		}
		if err := repos.Payments.Create(ctx, payment); err != nil {
			return err
		}

		result = PayEmiResult{
			EmiID:                  emi.ID,
			MonthIndex:             emi.MonthIndex,
			OpeningBalance:         emi.OpeningBalance,
			InterestComponent:      breakdown.InterestComponent,
			PrincipalComponent:     breakdown.PrincipalComponent,
			ClosingBalance:         breakdown.ClosingBalance,
			UpdatedLoanOutstanding: loan.Principal,
			LoanStatus:             status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("EMI paid",
		zap.String("emi_id", result.EmiID.String()),
		zap.Int("month_index", result.MonthIndex),
		zap.String("outstanding", result.UpdatedLoanOutstanding.String()),
		zap.String("loan_status", result.LoanStatus.String()))

	return &result, nil
}

// MarkEmiPaid manually settles an EMI without requiring an amount, used to
// backfill payments made outside the system. Unlike PayEmi there is no
// closed-loan guard: a row of a settled loan can still be backfilled as
// long as it is pending. The payment date defaults to now.
func (s *RepaymentService) MarkEmiPaid(ctx context.Context, emiID, userID uuid.UUID, paymentDate *time.Time) (*MarkPaidResult, error) {
	var result MarkPaidResult

	err := s.uow.Execute(ctx, func(repos lending.Repositories) error {
		emi, err := repos.Schedules.FindByID(ctx, emiID)
		if err != nil {
			return err
		}

		loan, err := repos.Loans.FindByID(ctx, emi.LoanID)
		if err != nil {
			return err
		}
		if !loan.IsOwnedBy(userID) {
			return shared.ErrUnauthorized
		}
		if !emi.IsPending() {
			return shared.NewDomainError("INVALID_STATE", "EMI is not in pending state")
		}

		when := time.Now()
		if paymentDate != nil {
			when = *paymentDate
		}

		breakdown, err := lending.CalculateEmiBreakdown(emi.OpeningBalance, loan.MonthlyRate(), emi.EmiAmount)
		if err != nil {
			return err
		}
		if err := emi.MarkPaid(breakdown, when); err != nil {
			return err
		}
		if err := repos.Schedules.Save(ctx, emi); err != nil {
			return err
		}

		loan.SetPrincipal(breakdown.ClosingBalance)
		status, err := s.refreshStatus(ctx, repos, loan)
		if err != nil {
			return err
		}

		payment, err := lending.NewPayment(loan.ID, when, emi.EmiAmount,
			breakdown.InterestComponent, breakdown.PrincipalComponent, loan.Principal,
			lending.PaymentTypeEmi, fmt.Sprintf("Manual EMI paid: Month %d", emi.MonthIndex))
		if err != nil {
			return err
		}
		if err := repos.Payments.Create(ctx, payment); err != nil {
			return err
		}

		result = MarkPaidResult{
			EmiID:                  emi.ID,
			MonthIndex:             emi.MonthIndex,
			ActualPaymentDate:      when,
			OpeningBalance:         emi.OpeningBalance,
			InterestComponent:      breakdown.InterestComponent,
			PrincipalComponent:     breakdown.PrincipalComponent,
			ClosingBalance:         breakdown.ClosingBalance,
			UpdatedLoanOutstanding: loan.Principal,
			LoanStatus:             status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("EMI marked paid",
		zap.String("emi_id", result.EmiID.String()),
		zap.Int("month_index", result.MonthIndex),
		zap.String("loan_status", result.LoanStatus.String()))

	return &result, nil
}

// MarkEmiMissed flags a pending EMI as missed, which normally drives the
// loan to OVERDUE on re-derivation. No money moves and no payment record
// is written.
func (s *RepaymentService) MarkEmiMissed(ctx context.Context, emiID, userID uuid.UUID) (*MarkMissedResult, error) {
	var result MarkMissedResult

	err := s.uow.Execute(ctx, func(repos lending.Repositories) error {
		emi, err := repos.Schedules.FindByID(ctx, emiID)
		if err != nil {
			return err
		}

		loan, err := repos.Loans.FindByID(ctx, emi.LoanID)
		if err != nil {
			return err
		}
		if !loan.IsOwnedBy(userID) {
			return shared.ErrUnauthorized
		}

		if err := emi.MarkMissed(); err != nil {
			return err
		}
		if err := repos.Schedules.Save(ctx, emi); err != nil {
			return err
		}

		status, err := s.refreshStatus(ctx, repos, loan)
		if err != nil {
			return err
		}

		result = MarkMissedResult{
			EmiID:      emi.ID,
			MonthIndex: emi.MonthIndex,
			DueDate:    emi.DueDate,
			Status:     emi.Status,
			LoanStatus: status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("EMI marked missed",
		zap.String("emi_id", result.EmiID.String()),
		zap.Int("month_index", result.MonthIndex),
		zap.String("loan_status", result.LoanStatus.String()))

	return &result, nil
}

// PartPayment applies a lump sum directly against the outstanding principal
// and regenerates the remaining schedule. All pending rows are dropped and
// rebuilt from the reduced balance with the same EMI amount; the new first
// due date is the due date the earliest pending row had, and month indices
// restart at 1.
func (s *RepaymentService) PartPayment(ctx context.Context, loanID, userID uuid.UUID, amount decimal.Decimal) (*PartPaymentResult, error) {
	var result PartPaymentResult

	err := s.uow.Execute(ctx, func(repos lending.Repositories) error {
		loan, err := repos.Loans.FindByID(ctx, loanID)
		if err != nil {
			return err
		}
		if !loan.IsOwnedBy(userID) {
			return shared.ErrUnauthorized
		}
		if !loan.PartPaymentAllowed {
			return shared.NewDomainError("INVALID_STATE", "Part payment is not allowed for this loan")
		}
		if loan.Status.IsResolved() {
			return shared.NewDomainError("INVALID_STATE", "Loan already closed")
		}
		if amount.LessThan(minPartPaymentAmount) {
			return shared.NewDomainError("INSUFFICIENT_AMOUNT", "Minimum part payment amount is 1000")
		}

		pending, err := repos.Schedules.FindByLoanIDAndStatus(ctx, loanID, lending.EmiStatusPending)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return shared.NewDomainError("INVALID_STATE", "No pending EMIs")
		}
		nextDueDate := pending[0].DueDate

		oldPrincipal := loan.Principal
		newPrincipal := oldPrincipal.Sub(amount)
		if newPrincipal.IsNegative() {
			newPrincipal = decimal.Zero
		}

		if err := repos.Schedules.DeleteByLoanIDAndStatus(ctx, loanID, lending.EmiStatusPending); err != nil {
			return err
		}

		loan.SetPrincipal(newPrincipal)

		// Rebuild only while principal remains; a part payment that clears
		// the balance leaves no schedule behind.
		var regenerated []lending.EmiScheduleEntry
		if newPrincipal.IsPositive() {
			view := *loan
			view.EmiStartDate = nextDueDate
			regenerated, err = lending.NewScheduleGenerator().Generate(&view)
			if err != nil {
				return err
			}
			if err := repos.Schedules.CreateAll(ctx, regenerated); err != nil {
				return err
			}
		}

		status, err := s.refreshStatus(ctx, repos, loan)
		if err != nil {
			return err
		}

		payment, err := lending.NewPayment(loan.ID, time.Now(), amount,
			decimal.Zero, amount, loan.Principal,
			lending.PaymentTypePartPayment, "Part payment made")
		if err != nil {
			return err
		}
		if err := repos.Payments.Create(ctx, payment); err != nil {
			return err
		}

		result = PartPaymentResult{
			OldPrincipal:        oldPrincipal,
			NewPrincipal:        loan.Principal,
			AmountPaid:          amount,
			EmiRowsRecalculated: len(regenerated),
			LoanStatus:          status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Part payment applied",
		zap.String("loan_id", loanID.String()),
		zap.String("amount", result.AmountPaid.String()),
		zap.String("new_principal", result.NewPrincipal.String()),
		zap.Int("emi_rows", result.EmiRowsRecalculated))

	return &result, nil
}

// ForecloseLoan settles the full outstanding balance early. The required
// amount is the outstanding principal plus the configured penalty; all
// pending rows are cancelled and the principal drops to zero, which the
// status re-derivation maps to CLOSED.
func (s *RepaymentService) ForecloseLoan(ctx context.Context, loanID, userID uuid.UUID, amountPaid decimal.Decimal) (*ForeclosureResult, error) {
	var result ForeclosureResult

	err := s.uow.Execute(ctx, func(repos lending.Repositories) error {
		loan, err := repos.Loans.FindByID(ctx, loanID)
		if err != nil {
			return err
		}
		if !loan.IsOwnedBy(userID) {
			return shared.ErrUnauthorized
		}
		if !loan.ForeclosureAllowed {
			return shared.NewDomainError("INVALID_STATE", "Foreclosure is not allowed for this loan")
		}
		if loan.Status.IsResolved() {
			return shared.NewDomainError("INVALID_STATE", "Loan already closed")
		}

		outstanding := loan.Principal
		penalty := outstanding.Mul(loan.ForeclosurePenaltyPercent).Div(decimal.NewFromInt(100)).Round(2)
		required := outstanding.Add(penalty)

		if amountPaid.LessThan(required) {
			return shared.NewDomainError("INSUFFICIENT_AMOUNT", "Insufficient amount for foreclosure")
		}

		pending, err := repos.Schedules.FindByLoanIDAndStatus(ctx, loanID, lending.EmiStatusPending)
		if err != nil {
			return err
		}
		for i := range pending {
			pending[i].MarkForeclosed()
		}
		if err := repos.Schedules.SaveAll(ctx, pending); err != nil {
			return err
		}

		loan.SetPrincipal(decimal.Zero)
		loan.Status = lending.LoanStatusForeclosed
		status, err := s.refreshStatus(ctx, repos, loan)
		if err != nil {
			return err
		}

		// The penalty shows up in the remarks and the amount paid only; the
		// ledger allocates the outstanding principal and books no interest.
		payment, err := lending.NewPayment(loan.ID, time.Now(), amountPaid,
			decimal.Zero, outstanding, loan.Principal,
			lending.PaymentTypeForeclosure, fmt.Sprintf("Loan foreclosed with penalty %s", penalty.String()))
		if err != nil {
			return err
		}
		if err := repos.Payments.Create(ctx, payment); err != nil {
			return err
		}

		result = ForeclosureResult{
			PrincipalOutstanding:  outstanding,
			PenaltyApplied:        penalty,
			TotalAmountRequired:   required,
			AmountPaid:            amountPaid,
			Status:                status,
			PendingEmiCountClosed: len(pending),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loan foreclosed",
		zap.String("loan_id", loanID.String()),
		zap.String("penalty", result.PenaltyApplied.String()),
		zap.Int("pending_closed", result.PendingEmiCountClosed))

	return &result, nil
}

// GetRepaymentHistory returns the payment ledger of a loan ordered by
// payment date ascending, owner-checked.
func (s *RepaymentService) GetRepaymentHistory(ctx context.Context, loanID, userID uuid.UUID) ([]RepaymentHistoryItem, error) {
	loan, err := s.loans.FindByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.IsOwnedBy(userID) {
		return nil, shared.ErrUnauthorized
	}

	payments, err := s.payments.FindByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	history := make([]RepaymentHistoryItem, 0, len(payments))
	for i := range payments {
		p := &payments[i]
		history = append(history, RepaymentHistoryItem{
			PaymentID:               p.ID,
			PaymentDate:             p.PaymentDate,
			AmountPaid:              p.AmountPaid,
			AllocatedToInterest:     p.AllocatedToInterest,
			AllocatedToPrincipal:    p.AllocatedToPrincipal,
			OutstandingAfterPayment: p.OutstandingAfterPayment,
			PaymentType:             p.PaymentType,
			Remarks:                 p.Remarks,
		})
	}
	return history, nil
}

// refreshStatus re-derives the loan status from the full ledger and
// persists the loan, returning the derived status. Callers mutate the loan
// (principal, status) before invoking it, so the save always runs.
func (s *RepaymentService) refreshStatus(ctx context.Context, repos lending.Repositories, loan *lending.Loan) (lending.LoanStatus, error) {
	entries, err := repos.Schedules.FindByLoanID(ctx, loan.ID)
	if err != nil {
		return "", err
	}
	loan.Status = lending.DeriveLoanStatus(loan.Principal, loan.Status, entries)
	if err := repos.Loans.Save(ctx, loan); err != nil {
		return "", err
	}
	return loan.Status, nil
}
