package persistence

import (
	"context"
	"errors"

	"github.com/dma/backend/internal/domain/lending"
	"github.com/dma/backend/internal/domain/shared"
	"github.com/dma/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEmiScheduleRepository implements EmiScheduleRepository using GORM
type GormEmiScheduleRepository struct {
	db *gorm.DB
}

// NewGormEmiScheduleRepository creates a new GormEmiScheduleRepository
func NewGormEmiScheduleRepository(db *gorm.DB) *GormEmiScheduleRepository {
	return &GormEmiScheduleRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormEmiScheduleRepository) WithTx(tx *gorm.DB) *GormEmiScheduleRepository {
	return &GormEmiScheduleRepository{db: tx}
}

// FindByID finds a schedule row by ID
func (r *GormEmiScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.EmiScheduleEntry, error) {
	var model models.EmiScheduleModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLoanID finds all rows of a loan ordered by month index
func (r *GormEmiScheduleRepository) FindByLoanID(ctx context.Context, loanID uuid.UUID) ([]lending.EmiScheduleEntry, error) {
	var scheduleModels []models.EmiScheduleModel
	if err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("month_index ASC").
		Find(&scheduleModels).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(scheduleModels), nil
}

// FindByLoanIDAndStatus finds a loan's rows with the given status ordered by month index
func (r *GormEmiScheduleRepository) FindByLoanIDAndStatus(ctx context.Context, loanID uuid.UUID, status lending.EmiScheduleStatus) ([]lending.EmiScheduleEntry, error) {
	var scheduleModels []models.EmiScheduleModel
	if err := r.db.WithContext(ctx).
		Where("loan_id = ? AND status = ?", loanID, string(status)).
		Order("month_index ASC").
		Find(&scheduleModels).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(scheduleModels), nil
}

// CreateAll bulk-inserts schedule rows
func (r *GormEmiScheduleRepository) CreateAll(ctx context.Context, entries []lending.EmiScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	scheduleModels := make([]models.EmiScheduleModel, len(entries))
	for i := range entries {
		scheduleModels[i] = *models.EmiScheduleModelFromDomain(&entries[i])
	}
	return r.db.WithContext(ctx).CreateInBatches(scheduleModels, 100).Error
}

// Save updates an existing schedule row
func (r *GormEmiScheduleRepository) Save(ctx context.Context, entry *lending.EmiScheduleEntry) error {
	model := models.EmiScheduleModelFromDomain(entry)
	result := r.db.WithContext(ctx).Model(&models.EmiScheduleModel{}).
		Where("id = ?", model.ID).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SaveAll updates multiple schedule rows
func (r *GormEmiScheduleRepository) SaveAll(ctx context.Context, entries []lending.EmiScheduleEntry) error {
	for i := range entries {
		if err := r.Save(ctx, &entries[i]); err != nil {
			return err
		}
	}
	return nil
}

// DeleteByLoanIDAndStatus bulk-deletes a loan's rows with the given status
func (r *GormEmiScheduleRepository) DeleteByLoanIDAndStatus(ctx context.Context, loanID uuid.UUID, status lending.EmiScheduleStatus) error {
	return r.db.WithContext(ctx).
		Where("loan_id = ? AND status = ?", loanID, string(status)).
		Delete(&models.EmiScheduleModel{}).Error
}

func toDomainEntries(scheduleModels []models.EmiScheduleModel) []lending.EmiScheduleEntry {
	entries := make([]lending.EmiScheduleEntry, len(scheduleModels))
	for i := range scheduleModels {
		entries[i] = *scheduleModels[i].ToDomain()
	}
	return entries
}

// Ensure GormEmiScheduleRepository implements EmiScheduleRepository
var _ lending.EmiScheduleRepository = (*GormEmiScheduleRepository)(nil)
