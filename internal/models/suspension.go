package models

import (
	"time"
)

// Suspension is a temporary hold on a contract's term. The requested
// window is [StartDate, EndDate]; DaysUsed starts as the inclusive day
// count of that window and is rewritten when the hold is stopped early.
type Suspension struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	ContractID string `gorm:"size:36;not null;index" json:"contract_id"`
	TenantID   string `gorm:"size:36;not null;index:idx_suspensions_scope" json:"tenant_id"`
	BranchID   string `gorm:"size:36;not null;index:idx_suspensions_scope" json:"branch_id"`

	StartDate string  `gorm:"size:10;not null;index" json:"start_date"`
	EndDate   string  `gorm:"size:10;not null;index" json:"end_date"`
	Reason    *string `gorm:"type:text" json:"reason"`

	DaysUsed   int `gorm:"default:0" json:"days_used"`
	UnusedDays int `gorm:"default:0" json:"unused_days"`

	Status string `gorm:"size:32;default:scheduled;index" json:"status"`

	CreatedBy   string     `gorm:"size:36" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ProcessedAt *time.Time `json:"processed_at"`
	StoppedAt   *time.Time `json:"stopped_at"`
	StoppedBy   *string    `gorm:"size:36" json:"stopped_by"`
	CompletedAt *time.Time `json:"completed_at"`
}

// TableName specifies the table name for Suspension
func (Suspension) TableName() string {
	return "suspensions"
}

// Suspension status constants
const (
	SuspensionStatusScheduled = "scheduled"
	SuspensionStatusActive    = "active"
	SuspensionStatusStopped   = "stopped"
	SuspensionStatusCancelled = "cancelled"
	SuspensionStatusCompleted = "completed"
)

// MayActivate returns true if the hold can take effect
func (s *Suspension) MayActivate() bool {
	return s.Status == SuspensionStatusScheduled
}

// MayStop returns true if the hold can be stopped or cancelled by a user
func (s *Suspension) MayStop() bool {
	return s.Status == SuspensionStatusScheduled || s.Status == SuspensionStatusActive
}

// MayComplete returns true if the hold can run out naturally
func (s *Suspension) MayComplete() bool {
	return s.Status == SuspensionStatusActive
}

// IsOpen returns true while the hold still reserves or consumes days
func (s *Suspension) IsOpen() bool {
	return s.Status == SuspensionStatusScheduled || s.Status == SuspensionStatusActive
}

// SuspensionResponse is the JSON response format for suspensions
type SuspensionResponse struct {
	ID          string     `json:"id"`
	ContractID  string     `json:"contract_id"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	Reason      *string    `json:"reason"`
	DaysUsed    int        `json:"days_used"`
	UnusedDays  int        `json:"unused_days"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at"`
	StoppedAt   *time.Time `json:"stopped_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// ToResponse converts Suspension to SuspensionResponse
func (s *Suspension) ToResponse() SuspensionResponse {
	return SuspensionResponse{
		ID:          s.ID,
		ContractID:  s.ContractID,
		StartDate:   s.StartDate,
		EndDate:     s.EndDate,
		Reason:      s.Reason,
		DaysUsed:    s.DaysUsed,
		UnusedDays:  s.UnusedDays,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
		ProcessedAt: s.ProcessedAt,
		StoppedAt:   s.StoppedAt,
		CompletedAt: s.CompletedAt,
	}
}
