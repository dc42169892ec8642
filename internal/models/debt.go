package models

import "time"

// Debt statuses
const (
	DebtStatusOpen       = "open"
	DebtStatusPaid       = "paid"
	DebtStatusWrittenOff = "written_off"
)

// Debt is an open receivable tied to the sale that originated a
// contract. Owned by the billing module; this service only writes off
// open rows when a branch enables that on cancellation.
type Debt struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TenantID  string    `gorm:"size:36;not null;index:idx_debts_scope" json:"tenant_id"`
	BranchID  string    `gorm:"size:36;not null;index:idx_debts_scope" json:"branch_id"`
	SaleID    string    `gorm:"size:36;not null;index" json:"sale_id"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Status    string    `gorm:"size:20;not null;default:open" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Debt
func (Debt) TableName() string {
	return "debts"
}
