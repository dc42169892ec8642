package services

import (
	"context"
	"fmt"

	"github.com/fitcore/membership-api/internal/jobs"
)

type JobService struct {
	worker         *jobs.Worker
	reconciliation *ReconciliationService
}

func NewJobService(worker *jobs.Worker, reconciliation *ReconciliationService) *JobService {
	return &JobService{
		worker:         worker,
		reconciliation: reconciliation,
	}
}

func (s *JobService) GetStatus() map[string]interface{} {
	stats := s.worker.GetStats()
	return map[string]interface{}{
		"active_jobs":    stats.ActiveJobs,
		"completed_jobs": stats.CompletedJobs,
		"failed_jobs":    stats.FailedJobs,
		"queue_length":   stats.QueueLength,
		"max_concurrent": stats.MaxConcurrent,
	}
}

// Trigger runs one reconciliation job by name, synchronously, and
// returns how many candidates it advanced. Used by the manual trigger
// endpoints; the jobs are idempotent so an extra run is always safe.
func (s *JobService) Trigger(ctx context.Context, name string) (int, error) {
	switch name {
	case "activate_suspensions":
		return s.reconciliation.ActivateDueSuspensions(ctx)
	case "complete_suspensions":
		return s.reconciliation.CompleteEndedSuspensions(ctx)
	case "execute_cancellations":
		return s.reconciliation.ExecuteScheduledCancellations(ctx)
	default:
		return 0, fmt.Errorf("%w: unknown job %q", ErrInvalidArgument, name)
	}
}
