package models

import (
	"time"
)

// BranchSettings holds per-branch operational flags. Day arithmetic for
// suspensions and cancellations is anchored to the branch timezone so
// "today" never drifts across a midnight boundary.
type BranchSettings struct {
	TenantID string `gorm:"primaryKey;size:36" json:"tenant_id"`
	BranchID string `gorm:"primaryKey;size:36" json:"branch_id"`

	AllowDebtWriteOffOnCancel bool   `gorm:"default:false" json:"allow_debt_write_off_on_cancel"`
	Timezone                  string `gorm:"size:64;default:UTC" json:"timezone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for BranchSettings
func (BranchSettings) TableName() string {
	return "branch_settings"
}

// Location resolves the configured timezone, falling back to UTC when
// the name is empty or unknown.
func (b *BranchSettings) Location() *time.Location {
	if b == nil || b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
