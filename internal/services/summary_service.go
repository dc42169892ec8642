package services

import (
	"context"

	"github.com/fitcore/membership-api/internal/models"
	"github.com/fitcore/membership-api/internal/repository"
)

// SummaryService turns contract state changes into counter increments on
// the daily and monthly summary documents. It is the only writer of
// summary counters; every contract write feeds it a before/after
// snapshot and it derives which transition edges fired.
type SummaryService struct {
	repo repository.SummaryRepository
}

func NewSummaryService(repo repository.SummaryRepository) *SummaryService {
	return &SummaryService{repo: repo}
}

// DiffContract computes the counter delta for one contract write. A nil
// before means a create, a nil after means a delete. Several independent
// edges may fire from a single update (e.g. leaving suspended while
// becoming canceled).
func DiffContract(before, after *models.Contract) models.SummaryDelta {
	var d models.SummaryDelta

	switch {
	case before == nil && after == nil:
		return d

	case before == nil:
		d.New++
		if after.IsActiveLike() {
			d.Active++
		}

	case after == nil:
		if before.IsActiveLike() {
			d.Active--
		}

	default:
		if before.IsActiveLike() != after.IsActiveLike() {
			if after.IsActiveLike() {
				d.Active++
			} else {
				d.Active--
			}
		}
		if before.Status != models.ContractStatusSuspended && after.Status == models.ContractStatusSuspended {
			d.Suspended++
		}
		if before.Status == models.ContractStatusSuspended && after.Status != models.ContractStatusSuspended {
			d.Suspended--
		}
		if before.Status != models.ContractStatusCanceled && after.Status == models.ContractStatusCanceled {
			d.Canceled++
			d.Churn++
		}
		if before.Status != models.ContractStatusScheduledCancellation && after.Status == models.ContractStatusScheduledCancellation {
			d.ScheduledCancellation++
		}
		if !before.Refunded && after.Refunded {
			d.Refunds++
		}
	}

	return d
}

// RecordContractChange applies the delta for a contract write to the
// summary documents keyed by the processing date (not the contract's own
// dates). Safe under concurrency: the underlying writes are commutative
// increments.
func (s *SummaryService) RecordContractChange(ctx context.Context, tenantID, branchID, date string, before, after *models.Contract) error {
	delta := DiffContract(before, after)
	if delta.IsZero() {
		return nil
	}
	return s.repo.ApplyDelta(ctx, tenantID, branchID, date, delta)
}

// ListDaily returns the daily documents for a branch in [from, to]
func (s *SummaryService) ListDaily(ctx context.Context, tenantID, branchID, from, to string) ([]models.DailySummary, error) {
	return s.repo.ListDaily(ctx, tenantID, branchID, from, to)
}

// ListMonthly returns the monthly documents for a branch in one year
func (s *SummaryService) ListMonthly(ctx context.Context, tenantID, branchID, year string) ([]models.MonthlySummary, error) {
	return s.repo.ListMonthly(ctx, tenantID, branchID, year)
}
