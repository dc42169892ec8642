package repository

import (
	"context"
	"errors"

	"github.com/fitcore/membership-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrRecordNotFound is returned when a scoped lookup finds nothing
var ErrRecordNotFound = gorm.ErrRecordNotFound

// ContractRepository defines the interface for contract data access
type ContractRepository interface {
	FindByID(ctx context.Context, tenantID, branchID, id string) (*models.Contract, error)
	FindByIDForUpdate(ctx context.Context, tenantID, branchID, id string) (*models.Contract, error)
	FindByIDWithSuspensions(ctx context.Context, tenantID, branchID, id string) (*models.Contract, error)
	Create(ctx context.Context, contract *models.Contract) error
	Update(ctx context.Context, contract *models.Contract) error
	// FindDueScheduledCancellations scans every branch for contracts whose
	// scheduled cancellation date has arrived.
	FindDueScheduledCancellations(ctx context.Context, today string) ([]models.Contract, error)
}

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) FindByID(ctx context.Context, tenantID, branchID, id string) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ? AND id = ?", tenantID, branchID, id).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByIDForUpdate(ctx context.Context, tenantID, branchID, id string) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND branch_id = ? AND id = ?", tenantID, branchID, id).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByIDWithSuspensions(ctx context.Context, tenantID, branchID, id string) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ? AND id = ?", tenantID, branchID, id).
		Preload("Suspensions", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_date ASC")
		}).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) Create(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *contractRepository) Update(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

func (r *contractRepository) FindDueScheduledCancellations(ctx context.Context, today string) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Where("status = ? AND cancel_date IS NOT NULL AND cancel_date <= ?", models.ContractStatusScheduledCancellation, today).
		Find(&contracts).Error
	return contracts, err
}

// IsNotFound reports whether err means the record does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
