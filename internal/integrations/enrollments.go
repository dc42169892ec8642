package integrations

import (
	"context"

	"github.com/fitcore/membership-api/internal/models"
	"github.com/fitcore/membership-api/pkg/dates"
	"gorm.io/gorm"
)

// EnrollmentStore cancels a client's future session bookings. The rows
// belong to the scheduling module; contract cancellation only flips
// booked rows dated today or later.
type EnrollmentStore struct {
	db *gorm.DB
}

func NewEnrollmentStore(db *gorm.DB) *EnrollmentStore {
	return &EnrollmentStore{db: db}
}

func (s *EnrollmentStore) CleanupEnrollments(ctx context.Context, tenantID, branchID, clientID string) (int, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("tenant_id = ? AND branch_id = ? AND client_id = ?", tenantID, branchID, clientID).
		Where("status = ? AND session_date >= ?", models.EnrollmentStatusBooked, dates.Today()).
		Update("status", models.EnrollmentStatusCanceled)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}
