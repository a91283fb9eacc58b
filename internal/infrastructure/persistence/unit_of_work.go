package persistence

import (
	"context"

	"github.com/dma/backend/internal/domain/lending"
	"gorm.io/gorm"
)

// GormUnitOfWork implements lending.UnitOfWork on top of GORM transactions.
// Every repository handed to the callback is bound to the same transaction,
// so a failing repayment operation rolls back all of its writes.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn inside a database transaction
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(repos lending.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := lending.Repositories{
			Loans:     NewGormLoanRepository(tx),
			Schedules: NewGormEmiScheduleRepository(tx),
			Payments:  NewGormPaymentRepository(tx),
		}
		return fn(repos)
	})
}

// Ensure GormUnitOfWork implements lending.UnitOfWork
var _ lending.UnitOfWork = (*GormUnitOfWork)(nil)
