package models

import "time"

// Enrollment statuses
const (
	EnrollmentStatusBooked   = "booked"
	EnrollmentStatusCanceled = "canceled"
)

// Enrollment is a client's booking into a scheduled session. Owned by
// the scheduling module; this service only cancels future rows when a
// contract is terminated.
type Enrollment struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	TenantID    string    `gorm:"size:36;not null;index:idx_enrollments_scope" json:"tenant_id"`
	BranchID    string    `gorm:"size:36;not null;index:idx_enrollments_scope" json:"branch_id"`
	ClientID    string    `gorm:"size:36;not null;index" json:"client_id"`
	SessionDate string    `gorm:"size:10;not null" json:"session_date"` // YYYY-MM-DD
	Status      string    `gorm:"size:20;not null;default:booked" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for Enrollment
func (Enrollment) TableName() string {
	return "enrollments"
}
