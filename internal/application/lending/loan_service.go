package lending

import (
	"context"

	"github.com/dma/backend/internal/domain/lending"
	"github.com/dma/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LoanService handles loan creation and read operations
type LoanService struct {
	uow       lending.UnitOfWork
	loans     lending.LoanRepository
	schedules lending.EmiScheduleRepository
	generator *lending.ScheduleGenerator
	logger    *zap.Logger
}

// NewLoanService creates a new loan service
func NewLoanService(
	uow lending.UnitOfWork,
	loans lending.LoanRepository,
	schedules lending.EmiScheduleRepository,
	logger *zap.Logger,
) *LoanService {
	return &LoanService{
		uow:       uow,
		loans:     loans,
		schedules: schedules,
		generator: lending.NewScheduleGenerator(),
		logger:    logger,
	}
}

// CreateLoan derives the loan dates, computes the level installment,
// generates the amortization ledger and persists everything atomically.
func (s *LoanService) CreateLoan(ctx context.Context, input CreateLoanInput) (*CreateLoanResult, error) {
	dates, err := lending.DeriveLoanDates(input.StartDate, input.EmiStartDate, input.EmiDayOfMonth)
	if err != nil {
		return nil, err
	}

	var emiAmount decimal.Decimal
	if input.EmiAmount != nil {
		emiAmount = *input.EmiAmount
	} else {
		emiAmount, err = lending.CalculateEmi(input.Principal, input.InterestRate, input.TenureMonths)
		if err != nil {
			return nil, err
		}
	}

	loan, err := lending.NewLoan(lending.NewLoanInput{
		UserID:                    input.UserID,
		Name:                      input.Name,
		Category:                  input.Category,
		Lender:                    input.Lender,
		Principal:                 input.Principal,
		InterestRate:              input.InterestRate,
		TenureMonths:              input.TenureMonths,
		EmiAmount:                 emiAmount,
		StartDate:                 dates.StartDate,
		EmiStartDate:              dates.EmiStartDate,
		ForeclosureAllowed:        input.ForeclosureAllowed,
		ForeclosurePenaltyPercent: input.ForeclosurePenaltyPercent,
		PartPaymentAllowed:        input.PartPaymentAllowed,
	})
	if err != nil {
		return nil, err
	}

	schedule, err := s.generator.Generate(loan)
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(repos lending.Repositories) error {
		if err := repos.Loans.Create(ctx, loan); err != nil {
			return err
		}
		return repos.Schedules.CreateAll(ctx, schedule)
	})
	if err != nil {
		s.logger.Error("Failed to persist loan", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Loan created",
		zap.String("loan_id", loan.ID.String()),
		zap.String("user_id", loan.UserID.String()),
		zap.String("emi_amount", emiAmount.String()),
		zap.Int("schedule_rows", len(schedule)))

	return &CreateLoanResult{Loan: loan, Schedule: schedule}, nil
}

// GetLoan returns a loan and its full EMI ledger, owner-checked
func (s *LoanService) GetLoan(ctx context.Context, loanID, userID uuid.UUID) (*LoanDetailResult, error) {
	loan, err := s.findOwnedLoan(ctx, loanID, userID)
	if err != nil {
		return nil, err
	}

	schedule, err := s.schedules.FindByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	return &LoanDetailResult{Loan: loan, Schedule: schedule}, nil
}

// GetLoanHealth returns the derived repayment health of a loan
func (s *LoanService) GetLoanHealth(ctx context.Context, loanID, userID uuid.UUID) (*lending.LoanHealth, error) {
	loan, err := s.findOwnedLoan(ctx, loanID, userID)
	if err != nil {
		return nil, err
	}

	schedule, err := s.schedules.FindByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	health := lending.BuildLoanHealth(loan, schedule)
	return &health, nil
}

// ListLoanSummaries returns the per-loan digest for all loans of a user
func (s *LoanService) ListLoanSummaries(ctx context.Context, userID uuid.UUID) ([]lending.LoanSummary, error) {
	loans, err := s.loans.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]lending.LoanSummary, 0, len(loans))
	for i := range loans {
		schedule, err := s.schedules.FindByLoanID(ctx, loans[i].ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, lending.BuildLoanSummary(&loans[i], schedule))
	}
	return summaries, nil
}

// RefreshLoanStatus re-derives a loan's status from its current principal
// and ledger and persists the result.
func (s *LoanService) RefreshLoanStatus(ctx context.Context, loanID, userID uuid.UUID) (lending.LoanStatus, error) {
	var status lending.LoanStatus

	err := s.uow.Execute(ctx, func(repos lending.Repositories) error {
		loan, err := repos.Loans.FindByID(ctx, loanID)
		if err != nil {
			return err
		}
		if !loan.IsOwnedBy(userID) {
			return shared.ErrUnauthorized
		}

		schedule, err := repos.Schedules.FindByLoanID(ctx, loanID)
		if err != nil {
			return err
		}

		status = lending.DeriveLoanStatus(loan.Principal, loan.Status, schedule)
		if status == loan.Status {
			return nil
		}
		loan.Status = status
		loan.Touch()
		return repos.Loans.Save(ctx, loan)
	})
	if err != nil {
		return "", err
	}
	return status, nil
}

func (s *LoanService) findOwnedLoan(ctx context.Context, loanID, userID uuid.UUID) (*lending.Loan, error) {
	loan, err := s.loans.FindByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.IsOwnedBy(userID) {
		return nil, shared.ErrUnauthorized
	}
	return loan, nil
}
