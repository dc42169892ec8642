package database

import (
	"github.com/fitcore/membership-api/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for all owned tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Contract{},
		&models.Suspension{},
		&models.DailySummary{},
		&models.MonthlySummary{},
		&models.BranchSettings{},
		&models.AuditLog{},
		&models.Enrollment{},
		&models.Debt{},
	)
}
