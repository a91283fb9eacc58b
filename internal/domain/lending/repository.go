package lending

import (
	"context"

	"github.com/google/uuid"
)

// LoanRepository defines the interface for loan persistence
type LoanRepository interface {
	// FindByID finds a loan by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Loan, error)

	// FindByUserID finds all loans owned by a user
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]Loan, error)

	// Create persists a new loan
	Create(ctx context.Context, loan *Loan) error

	// Save updates an existing loan
	Save(ctx context.Context, loan *Loan) error
}

// EmiScheduleRepository defines the interface for EMI ledger persistence
type EmiScheduleRepository interface {
	// FindByID finds a schedule row by ID
	FindByID(ctx context.Context, id uuid.UUID) (*EmiScheduleEntry, error)

	// FindByLoanID finds all rows of a loan ordered by month index
	FindByLoanID(ctx context.Context, loanID uuid.UUID) ([]EmiScheduleEntry, error)

	// FindByLoanIDAndStatus finds a loan's rows with the given status ordered by month index
	FindByLoanIDAndStatus(ctx context.Context, loanID uuid.UUID, status EmiScheduleStatus) ([]EmiScheduleEntry, error)

	// CreateAll bulk-inserts schedule rows
	CreateAll(ctx context.Context, entries []EmiScheduleEntry) error

	// Save updates an existing schedule row
	Save(ctx context.Context, entry *EmiScheduleEntry) error

	// SaveAll updates multiple schedule rows
	SaveAll(ctx context.Context, entries []EmiScheduleEntry) error

	// DeleteByLoanIDAndStatus bulk-deletes a loan's rows with the given status
	DeleteByLoanIDAndStatus(ctx context.Context, loanID uuid.UUID, status EmiScheduleStatus) error
}

// PaymentRepository defines the interface for the append-only payment ledger
type PaymentRepository interface {
	// Create appends a payment record
	Create(ctx context.Context, payment *Payment) error

	// FindByLoanID finds all payments of a loan ordered by payment date ascending
	FindByLoanID(ctx context.Context, loanID uuid.UUID) ([]Payment, error)
}

// Repositories bundles the lending repositories participating in one
// atomic unit of work.
type Repositories struct {
	Loans     LoanRepository
	Schedules EmiScheduleRepository
	Payments  PaymentRepository
}

// UnitOfWork executes a function against the lending repositories inside a
// single atomic transaction: either every mutation made through the
// supplied repositories becomes visible, or none of them does. Operations
// on the same loan are serialized by the storage layer's transaction
// facility; this package does no locking of its own.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}
