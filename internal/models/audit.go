package models

import (
	"time"
)

// AuditLog represents a system audit entry
type AuditLog struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	TenantID string `gorm:"size:36;not null;index:idx_audit_scope" json:"tenant_id"`
	BranchID string `gorm:"size:36;not null;index:idx_audit_scope" json:"branch_id"`
	ActorID  string `gorm:"size:36;not null" json:"actor_id"`

	Action   string `gorm:"size:50;not null" json:"action"` // SCHEDULE_SUSPENSION, STOP_SUSPENSION, CANCEL, ...
	Entity   string `gorm:"size:50;not null" json:"entity"` // Contract, Suspension
	EntityID string `gorm:"size:36" json:"entity_id"`
	Details  string `gorm:"type:text" json:"details"`
	Metadata string `gorm:"type:text" json:"metadata"` // JSON blob, optional

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
