package models

import (
	"time"
)

// Contract represents a client's service agreement within a tenant branch.
// EndDate is nil for open-ended contracts; suspensions push it forward by
// the number of days held and a stop gives the unused days back.
type Contract struct {
	ID       string  `gorm:"primaryKey;size:36" json:"id"`
	TenantID string  `gorm:"size:36;not null;index:idx_contracts_scope" json:"tenant_id"`
	BranchID string  `gorm:"size:36;not null;index:idx_contracts_scope" json:"branch_id"`
	ClientID string  `gorm:"size:36;not null;index" json:"client_id"`
	SaleID   *string `gorm:"size:36" json:"sale_id"`

	StartDate string  `gorm:"size:10;not null" json:"start_date"`
	EndDate   *string `gorm:"size:10" json:"end_date"`

	Status string `gorm:"size:32;default:active;index" json:"status"`

	AllowSuspension       bool `gorm:"default:true" json:"allow_suspension"`
	SuspensionMaxDays     int  `gorm:"default:0" json:"suspension_max_days"` // 0 = unlimited
	TotalSuspendedDays    int  `gorm:"default:0" json:"total_suspended_days"`
	PendingSuspensionDays int  `gorm:"default:0" json:"pending_suspension_days"`

	CancelDate   *string    `gorm:"size:10;index" json:"cancel_date"`
	CancelReason *string    `gorm:"type:text" json:"cancel_reason"`
	CanceledAt   *time.Time `json:"canceled_at"`
	CanceledBy   *string    `gorm:"size:36" json:"canceled_by"`
	Refunded     bool       `gorm:"default:false" json:"refunded"`

	CreatedBy string    `gorm:"size:36" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Suspensions []Suspension `gorm:"foreignKey:ContractID" json:"suspensions,omitempty"`
}

// TableName specifies the table name for Contract
func (Contract) TableName() string {
	return "contracts"
}

// Contract status constants
const (
	ContractStatusActive                = "active"
	ContractStatusPendingSetup          = "pending_setup"
	ContractStatusExpiring              = "expiring"
	ContractStatusSuspended             = "suspended"
	ContractStatusScheduledCancellation = "scheduled_cancellation"
	ContractStatusCanceled              = "canceled"
)

// IsActiveLike returns true for statuses counted toward the active aggregate
func (c *Contract) IsActiveLike() bool {
	return ContractStatusIsActiveLike(c.Status)
}

// ContractStatusIsActiveLike reports whether a status counts as active
func ContractStatusIsActiveLike(status string) bool {
	switch status {
	case ContractStatusActive, ContractStatusPendingSetup, ContractStatusExpiring:
		return true
	}
	return false
}

// IsCanceled returns true once the contract reached its terminal state
func (c *Contract) IsCanceled() bool {
	return c.Status == ContractStatusCanceled
}

// MaySuspend returns true if the contract can transition to suspended
func (c *Contract) MaySuspend() bool {
	return c.IsActiveLike()
}

// MayResume returns true if the contract can go back to active
func (c *Contract) MayResume() bool {
	return c.Status == ContractStatusSuspended
}

// MayScheduleCancellation returns true if a future cancellation can be recorded
func (c *Contract) MayScheduleCancellation() bool {
	return c.IsActiveLike() || c.Status == ContractStatusSuspended
}

// MayCancel returns true if the contract can be cancelled now
func (c *Contract) MayCancel() bool {
	return c.Status != ContractStatusCanceled
}

// SuspensionDaysCommitted is the quota already consumed plus reserved
func (c *Contract) SuspensionDaysCommitted() int {
	return c.TotalSuspendedDays + c.PendingSuspensionDays
}

// WithinSuspensionQuota checks whether extra days still fit the quota.
// A zero SuspensionMaxDays means unlimited.
func (c *Contract) WithinSuspensionQuota(extraDays int) bool {
	if c.SuspensionMaxDays <= 0 {
		return true
	}
	return c.SuspensionDaysCommitted()+extraDays <= c.SuspensionMaxDays
}

// ContractResponse is the JSON response format for contracts
type ContractResponse struct {
	ID                    string               `json:"id"`
	TenantID              string               `json:"tenant_id"`
	BranchID              string               `json:"branch_id"`
	ClientID              string               `json:"client_id"`
	SaleID                *string              `json:"sale_id"`
	StartDate             string               `json:"start_date"`
	EndDate               *string              `json:"end_date"`
	Status                string               `json:"status"`
	AllowSuspension       bool                 `json:"allow_suspension"`
	SuspensionMaxDays     int                  `json:"suspension_max_days"`
	TotalSuspendedDays    int                  `json:"total_suspended_days"`
	PendingSuspensionDays int                  `json:"pending_suspension_days"`
	CancelDate            *string              `json:"cancel_date"`
	CancelReason          *string              `json:"cancel_reason"`
	CanceledAt            *time.Time           `json:"canceled_at"`
	Refunded              bool                 `json:"refunded"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
	Suspensions           []SuspensionResponse `json:"suspensions,omitempty"`
}

// ToResponse converts Contract to ContractResponse
func (c *Contract) ToResponse() ContractResponse {
	resp := ContractResponse{
		ID:                    c.ID,
		TenantID:              c.TenantID,
		BranchID:              c.BranchID,
		ClientID:              c.ClientID,
		SaleID:                c.SaleID,
		StartDate:             c.StartDate,
		EndDate:               c.EndDate,
		Status:                c.Status,
		AllowSuspension:       c.AllowSuspension,
		SuspensionMaxDays:     c.SuspensionMaxDays,
		TotalSuspendedDays:    c.TotalSuspendedDays,
		PendingSuspensionDays: c.PendingSuspensionDays,
		CancelDate:            c.CancelDate,
		CancelReason:          c.CancelReason,
		CanceledAt:            c.CanceledAt,
		Refunded:              c.Refunded,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
	for _, s := range c.Suspensions {
		resp.Suspensions = append(resp.Suspensions, s.ToResponse())
	}
	return resp
}
