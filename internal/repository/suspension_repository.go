package repository

import (
	"context"

	"github.com/fitcore/membership-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SuspensionRepository defines the interface for suspension data access
type SuspensionRepository interface {
	FindByID(ctx context.Context, contractID, id string) (*models.Suspension, error)
	FindByIDForUpdate(ctx context.Context, contractID, id string) (*models.Suspension, error)
	FindByContract(ctx context.Context, contractID string) ([]models.Suspension, error)
	Create(ctx context.Context, suspension *models.Suspension) error
	Update(ctx context.Context, suspension *models.Suspension) error
	// FindDueScheduled scans for scheduled holds whose start date arrived.
	FindDueScheduled(ctx context.Context, today string) ([]models.Suspension, error)
	// FindEndedActive scans for active holds whose end date has passed.
	FindEndedActive(ctx context.Context, today string) ([]models.Suspension, error)
	// HasOtherOpenHolds reports whether the contract still has another
	// scheduled or active suspension besides excludeID.
	HasOtherOpenHolds(ctx context.Context, contractID, excludeID string) (bool, error)
}

type suspensionRepository struct {
	db *gorm.DB
}

// NewSuspensionRepository creates a new suspension repository
func NewSuspensionRepository(db *gorm.DB) SuspensionRepository {
	return &suspensionRepository{db: db}
}

func (r *suspensionRepository) FindByID(ctx context.Context, contractID, id string) (*models.Suspension, error) {
	var suspension models.Suspension
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND id = ?", contractID, id).
		First(&suspension).Error
	if err != nil {
		return nil, err
	}
	return &suspension, nil
}

func (r *suspensionRepository) FindByIDForUpdate(ctx context.Context, contractID, id string) (*models.Suspension, error) {
	var suspension models.Suspension
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("contract_id = ? AND id = ?", contractID, id).
		First(&suspension).Error
	if err != nil {
		return nil, err
	}
	return &suspension, nil
}

func (r *suspensionRepository) FindByContract(ctx context.Context, contractID string) ([]models.Suspension, error) {
	var suspensions []models.Suspension
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("start_date ASC").
		Find(&suspensions).Error
	return suspensions, err
}

func (r *suspensionRepository) Create(ctx context.Context, suspension *models.Suspension) error {
	return r.db.WithContext(ctx).Create(suspension).Error
}

func (r *suspensionRepository) Update(ctx context.Context, suspension *models.Suspension) error {
	return r.db.WithContext(ctx).Save(suspension).Error
}

func (r *suspensionRepository) FindDueScheduled(ctx context.Context, today string) ([]models.Suspension, error) {
	var suspensions []models.Suspension
	err := r.db.WithContext(ctx).
		Where("status = ? AND start_date <= ?", models.SuspensionStatusScheduled, today).
		Find(&suspensions).Error
	return suspensions, err
}

func (r *suspensionRepository) FindEndedActive(ctx context.Context, today string) ([]models.Suspension, error) {
	var suspensions []models.Suspension
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date <= ?", models.SuspensionStatusActive, today).
		Find(&suspensions).Error
	return suspensions, err
}

func (r *suspensionRepository) HasOtherOpenHolds(ctx context.Context, contractID, excludeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Suspension{}).
		Where("contract_id = ? AND id <> ? AND status IN ?", contractID, excludeID,
			[]string{models.SuspensionStatusScheduled, models.SuspensionStatusActive}).
		Count(&count).Error
	return count > 0, err
}
