package repository

import (
	"context"

	"github.com/fitcore/membership-api/internal/models"
	"github.com/fitcore/membership-api/pkg/dates"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SummaryRepository maintains the denormalized daily and monthly counter
// documents. Every write is an add-only upsert (col = col + delta), so
// concurrent writers compose without read-modify-write races.
type SummaryRepository interface {
	// ApplyDelta applies one batched counter delta to the daily document
	// for date and the monthly document for the same date.
	ApplyDelta(ctx context.Context, tenantID, branchID, date string, delta models.SummaryDelta) error
	ListDaily(ctx context.Context, tenantID, branchID, from, to string) ([]models.DailySummary, error)
	ListMonthly(ctx context.Context, tenantID, branchID, year string) ([]models.MonthlySummary, error)
}

type summaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &summaryRepository{db: db}
}

func (r *summaryRepository) ApplyDelta(ctx context.Context, tenantID, branchID, date string, delta models.SummaryDelta) error {
	if delta.IsZero() {
		return nil
	}

	daily := models.DailySummary{
		TenantID:                       tenantID,
		BranchID:                       branchID,
		Date:                           date,
		ActiveCount:                    delta.Active,
		SuspendedCount:                 delta.Suspended,
		NewCount:                       delta.New,
		ContractsCanceled:              delta.Canceled,
		Churn:                          delta.Churn,
		ContractsScheduledCancellation: delta.ScheduledCancellation,
		Refunds:                        delta.Refunds,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "branch_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"active_count":                     gorm.Expr("daily_summaries.active_count + EXCLUDED.active_count"),
			"suspended_count":                  gorm.Expr("daily_summaries.suspended_count + EXCLUDED.suspended_count"),
			"new_count":                        gorm.Expr("daily_summaries.new_count + EXCLUDED.new_count"),
			"contracts_canceled":               gorm.Expr("daily_summaries.contracts_canceled + EXCLUDED.contracts_canceled"),
			"churn":                            gorm.Expr("daily_summaries.churn + EXCLUDED.churn"),
			"contracts_scheduled_cancellation": gorm.Expr("daily_summaries.contracts_scheduled_cancellation + EXCLUDED.contracts_scheduled_cancellation"),
			"refunds":                          gorm.Expr("daily_summaries.refunds + EXCLUDED.refunds"),
			"updated_at":                       gorm.Expr("NOW()"),
		}),
	}).Create(&daily).Error
	if err != nil {
		return err
	}

	monthly := models.MonthlySummary{
		TenantID:                       tenantID,
		BranchID:                       branchID,
		Month:                          dates.MonthOf(date),
		ActiveAvg:                      delta.Active,
		SuspendedCount:                 delta.Suspended,
		NewCount:                       delta.New,
		ContractsCanceled:              delta.Canceled,
		Churn:                          delta.Churn,
		ContractsScheduledCancellation: delta.ScheduledCancellation,
		Refunds:                        delta.Refunds,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "branch_id"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"active_avg":                       gorm.Expr("monthly_summaries.active_avg + EXCLUDED.active_avg"),
			"suspended_count":                  gorm.Expr("monthly_summaries.suspended_count + EXCLUDED.suspended_count"),
			"new_count":                        gorm.Expr("monthly_summaries.new_count + EXCLUDED.new_count"),
			"contracts_canceled":               gorm.Expr("monthly_summaries.contracts_canceled + EXCLUDED.contracts_canceled"),
			"churn":                            gorm.Expr("monthly_summaries.churn + EXCLUDED.churn"),
			"contracts_scheduled_cancellation": gorm.Expr("monthly_summaries.contracts_scheduled_cancellation + EXCLUDED.contracts_scheduled_cancellation"),
			"refunds":                          gorm.Expr("monthly_summaries.refunds + EXCLUDED.refunds"),
			"updated_at":                       gorm.Expr("NOW()"),
		}),
	}).Create(&monthly).Error
}

func (r *summaryRepository) ListDaily(ctx context.Context, tenantID, branchID, from, to string) ([]models.DailySummary, error) {
	var summaries []models.DailySummary
	db := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ?", tenantID, branchID)
	if from != "" {
		db = db.Where("date >= ?", from)
	}
	if to != "" {
		db = db.Where("date <= ?", to)
	}
	err := db.Order("date ASC").Find(&summaries).Error
	return summaries, err
}

func (r *summaryRepository) ListMonthly(ctx context.Context, tenantID, branchID, year string) ([]models.MonthlySummary, error) {
	var summaries []models.MonthlySummary
	db := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ?", tenantID, branchID)
	if year != "" {
		db = db.Where("month LIKE ?", year+"-%")
	}
	err := db.Order("month ASC").Find(&summaries).Error
	return summaries, err
}
