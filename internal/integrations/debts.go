package integrations

import (
	"context"

	"github.com/fitcore/membership-api/internal/models"
	"gorm.io/gorm"
)

// DebtStore writes off the open receivables of a sale. The rows belong
// to the billing module; paid rows are never touched.
type DebtStore struct {
	db *gorm.DB
}

func NewDebtStore(db *gorm.DB) *DebtStore {
	return &DebtStore{db: db}
}

func (s *DebtStore) CleanupOpenDebts(ctx context.Context, tenantID, branchID, saleID string) (int, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Debt{}).
		Where("tenant_id = ? AND branch_id = ? AND sale_id = ?", tenantID, branchID, saleID).
		Where("status = ?", models.DebtStatusOpen).
		Update("status", models.DebtStatusWrittenOff)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}
