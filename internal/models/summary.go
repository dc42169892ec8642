package models

import (
	"time"
)

// DailySummary is a denormalized counter document, one row per
// tenant+branch+calendar day. Counters only ever move by increments so
// concurrent writers never overwrite each other.
type DailySummary struct {
	TenantID string `gorm:"primaryKey;size:36" json:"tenant_id"`
	BranchID string `gorm:"primaryKey;size:36" json:"branch_id"`
	Date     string `gorm:"primaryKey;size:10" json:"date"` // YYYY-MM-DD

	ActiveCount                    int `gorm:"default:0" json:"active_count"`
	SuspendedCount                 int `gorm:"default:0" json:"suspended_count"`
	NewCount                       int `gorm:"default:0" json:"new_count"`
	ContractsCanceled              int `gorm:"default:0" json:"contracts_canceled"`
	Churn                          int `gorm:"default:0" json:"churn"`
	ContractsScheduledCancellation int `gorm:"default:0" json:"contracts_scheduled_cancellation"`
	Refunds                        int `gorm:"default:0" json:"refunds"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for DailySummary
func (DailySummary) TableName() string {
	return "daily_summaries"
}

// MonthlySummary mirrors DailySummary at month granularity. The active
// aggregate is tracked as a running signed adjustment (ActiveAvg).
type MonthlySummary struct {
	TenantID string `gorm:"primaryKey;size:36" json:"tenant_id"`
	BranchID string `gorm:"primaryKey;size:36" json:"branch_id"`
	Month    string `gorm:"primaryKey;size:7" json:"month"` // YYYY-MM

	ActiveAvg                      int `gorm:"default:0" json:"active_avg"`
	SuspendedCount                 int `gorm:"default:0" json:"suspended_count"`
	NewCount                       int `gorm:"default:0" json:"new_count"`
	ContractsCanceled              int `gorm:"default:0" json:"contracts_canceled"`
	Churn                          int `gorm:"default:0" json:"churn"`
	ContractsScheduledCancellation int `gorm:"default:0" json:"contracts_scheduled_cancellation"`
	Refunds                        int `gorm:"default:0" json:"refunds"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for MonthlySummary
func (MonthlySummary) TableName() string {
	return "monthly_summaries"
}

// SummaryDelta is a set of named counter increments applied to the daily
// and monthly documents of one tenant branch in a single batched write.
type SummaryDelta struct {
	Active                int `json:"active"`
	Suspended             int `json:"suspended"`
	New                   int `json:"new"`
	Canceled              int `json:"canceled"`
	Churn                 int `json:"churn"`
	ScheduledCancellation int `json:"scheduled_cancellation"`
	Refunds               int `json:"refunds"`
}

// IsZero returns true when the delta would not change any counter
func (d SummaryDelta) IsZero() bool {
	return d == SummaryDelta{}
}
