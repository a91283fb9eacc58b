package models

import (
	"time"

	"github.com/dma/backend/internal/domain/lending"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanModel is the persistence model for loans
type LoanModel struct {
	BaseModel
	UserID                    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name                      string          `gorm:"size:200;not null"`
	Category                  string          `gorm:"size:100"`
	Lender                    string          `gorm:"size:200"`
	Principal                 decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InterestRate              decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	TenureMonths              int             `gorm:"not null"`
	EmiAmount                 decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	StartDate                 time.Time       `gorm:"not null"`
	EmiStartDate              time.Time       `gorm:"not null"`
	ForeclosureAllowed        bool            `gorm:"not null;default:false"`
	ForeclosurePenaltyPercent decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`
	PartPaymentAllowed        bool            `gorm:"not null;default:false"`
	Status                    string          `gorm:"size:20;not null;index"`
}

// TableName returns the table name for LoanModel
func (LoanModel) TableName() string {
	return "loans"
}

// ToDomain converts LoanModel to domain Loan
func (m *LoanModel) ToDomain() *lending.Loan {
	return &lending.Loan{
		BaseEntity:                m.BaseModel.ToDomain(),
		UserID:                    m.UserID,
		Name:                      m.Name,
		Category:                  m.Category,
		Lender:                    m.Lender,
		Principal:                 m.Principal,
		InterestRate:              m.InterestRate,
		TenureMonths:              m.TenureMonths,
		EmiAmount:                 m.EmiAmount,
		StartDate:                 m.StartDate,
		EmiStartDate:              m.EmiStartDate,
		ForeclosureAllowed:        m.ForeclosureAllowed,
		ForeclosurePenaltyPercent: m.ForeclosurePenaltyPercent,
		PartPaymentAllowed:        m.PartPaymentAllowed,
		Status:                    lending.LoanStatus(m.Status),
	}
}

// LoanModelFromDomain converts domain Loan to LoanModel
func LoanModelFromDomain(l *lending.Loan) *LoanModel {
	m := &LoanModel{
		UserID:                    l.UserID,
		Name:                      l.Name,
		Category:                  l.Category,
		Lender:                    l.Lender,
		Principal:                 l.Principal,
		InterestRate:              l.InterestRate,
		TenureMonths:              l.TenureMonths,
		EmiAmount:                 l.EmiAmount,
		StartDate:                 l.StartDate,
		EmiStartDate:              l.EmiStartDate,
		ForeclosureAllowed:        l.ForeclosureAllowed,
		ForeclosurePenaltyPercent: l.ForeclosurePenaltyPercent,
		PartPaymentAllowed:        l.PartPaymentAllowed,
		Status:                    l.Status.String(),
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// EmiScheduleModel is the persistence model for EMI schedule rows
type EmiScheduleModel struct {
	BaseModel
	LoanID             uuid.UUID       `gorm:"type:uuid;not null;index:idx_emi_loan_month"`
	MonthIndex         int             `gorm:"not null;index:idx_emi_loan_month"`
	DueDate            time.Time       `gorm:"not null"`
	OpeningBalance     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	EmiAmount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InterestComponent  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PrincipalComponent decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ClosingBalance     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status             string          `gorm:"size:20;not null;index"`
	PaymentDate        *time.Time
}

// TableName returns the table name for EmiScheduleModel
func (EmiScheduleModel) TableName() string {
	return "emi_schedules"
}

// ToDomain converts EmiScheduleModel to domain EmiScheduleEntry
func (m *EmiScheduleModel) ToDomain() *lending.EmiScheduleEntry {
	return &lending.EmiScheduleEntry{
		BaseEntity:         m.BaseModel.ToDomain(),
		LoanID:             m.LoanID,
		MonthIndex:         m.MonthIndex,
		DueDate:            m.DueDate,
		OpeningBalance:     m.OpeningBalance,
		EmiAmount:          m.EmiAmount,
		InterestComponent:  m.InterestComponent,
		PrincipalComponent: m.PrincipalComponent,
		ClosingBalance:     m.ClosingBalance,
		Status:             lending.EmiScheduleStatus(m.Status),
		PaymentDate:        m.PaymentDate,
	}
}

// EmiScheduleModelFromDomain converts domain EmiScheduleEntry to EmiScheduleModel
func EmiScheduleModelFromDomain(e *lending.EmiScheduleEntry) *EmiScheduleModel {
	m := &EmiScheduleModel{
		LoanID:             e.LoanID,
		MonthIndex:         e.MonthIndex,
		DueDate:            e.DueDate,
		OpeningBalance:     e.OpeningBalance,
		EmiAmount:          e.EmiAmount,
		InterestComponent:  e.InterestComponent,
		PrincipalComponent: e.PrincipalComponent,
		ClosingBalance:     e.ClosingBalance,
		Status:             string(e.Status),
		PaymentDate:        e.PaymentDate,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// PaymentModel is the persistence model for the repayment ledger
type PaymentModel struct {
	BaseModel
	LoanID                  uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentDate             time.Time       `gorm:"not null"`
	AmountPaid              decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AllocatedToInterest     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AllocatedToPrincipal    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	OutstandingAfterPayment decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentType             string          `gorm:"size:20;not null"`
	Remarks                 string          `gorm:"size:500"`
}

// TableName returns the table name for PaymentModel
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts PaymentModel to domain Payment
func (m *PaymentModel) ToDomain() *lending.Payment {
	return &lending.Payment{
		BaseEntity:              m.BaseModel.ToDomain(),
		LoanID:                  m.LoanID,
		PaymentDate:             m.PaymentDate,
		AmountPaid:              m.AmountPaid,
		AllocatedToInterest:     m.AllocatedToInterest,
		AllocatedToPrincipal:    m.AllocatedToPrincipal,
		OutstandingAfterPayment: m.OutstandingAfterPayment,
		PaymentType:             lending.PaymentType(m.PaymentType),
		Remarks:                 m.Remarks,
	}
}

// PaymentModelFromDomain converts domain Payment to PaymentModel
func PaymentModelFromDomain(p *lending.Payment) *PaymentModel {
	m := &PaymentModel{
		LoanID:                  p.LoanID,
		PaymentDate:             p.PaymentDate,
		AmountPaid:              p.AmountPaid,
		AllocatedToInterest:     p.AllocatedToInterest,
		AllocatedToPrincipal:    p.AllocatedToPrincipal,
		OutstandingAfterPayment: p.OutstandingAfterPayment,
		PaymentType:             string(p.PaymentType),
		Remarks:                 p.Remarks,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
