package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Contract   ContractRepository
	Suspension SuspensionRepository
	Summary    SummaryRepository
	Branch     BranchRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Contract:   NewContractRepository(db),
		Suspension: NewSuspensionRepository(db),
		Summary:    NewSummaryRepository(db),
		Branch:     NewBranchRepository(db),
	}
}

// TxManager runs a unit of work against transaction-scoped repositories.
// Services never touch *gorm.DB directly; everything they read or write
// inside the closure commits or rolls back atomically.
type TxManager interface {
	Transaction(ctx context.Context, fn func(r *Repositories) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a TxManager backed by gorm transactions
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) Transaction(ctx context.Context, fn func(r *Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
