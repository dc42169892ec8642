package services

import (
	"context"

	"github.com/fitcore/membership-api/internal/models"
	"gorm.io/gorm"
)

// AuditLogger records audit entries. Callers treat it as fire-and-forget:
// a failed audit write is logged, never surfaced to the user operation.
type AuditLogger interface {
	Log(ctx context.Context, tenantID, branchID, actorID, action, entity, entityID, details, metadata string) error
}

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Log records an audit entry
func (s *AuditService) Log(ctx context.Context, tenantID, branchID, actorID, action, entity, entityID, details, metadata string) error {
	logEntry := &models.AuditLog{
		TenantID: tenantID,
		BranchID: branchID,
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
		Metadata: metadata,
	}
	return s.db.WithContext(ctx).Create(logEntry).Error
}

// List retrieves audit logs for a branch, newest first
func (s *AuditService) List(ctx context.Context, tenantID, branchID string, limit, offset int) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	db := s.db.WithContext(ctx).Model(&models.AuditLog{}).
		Where("tenant_id = ? AND branch_id = ?", tenantID, branchID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := db.Order("created_at desc").Limit(limit).Offset(offset).Find(&logs)
	return logs, total, result.Error
}
