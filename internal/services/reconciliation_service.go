package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fitcore/membership-api/internal/jobs"
	"github.com/fitcore/membership-api/internal/models"
	"github.com/fitcore/membership-api/internal/repository"
	"github.com/fitcore/membership-api/internal/statemachine"
	"github.com/fitcore/membership-api/pkg/dates"
	"github.com/fitcore/membership-api/pkg/logger"
)

// ReconciliationService runs the daily batch jobs that advance contracts
// and suspensions whose effective dates have arrived. Every candidate is
// processed in its own transaction with unordered, bounded parallelism;
// a failing candidate is logged and left for the next run, it never
// aborts the batch. Re-running a job is a no-op for already-advanced
// candidates because the status filters exclude them.
type ReconciliationService struct {
	txm         repository.TxManager
	repos       *repository.Repositories
	summarySvc  *SummaryService
	worker      *jobs.Worker
	enrollments EnrollmentCleaner
	debts       DebtCleaner
	parallelism int
}

func NewReconciliationService(
	txm repository.TxManager,
	repos *repository.Repositories,
	summarySvc *SummaryService,
	worker *jobs.Worker,
	enrollments EnrollmentCleaner,
	debts DebtCleaner,
	parallelism int,
) *ReconciliationService {
	if parallelism < 1 {
		parallelism = 4
	}
	return &ReconciliationService{
		txm:         txm,
		repos:       repos,
		summarySvc:  summarySvc,
		worker:      worker,
		enrollments: enrollments,
		debts:       debts,
		parallelism: parallelism,
	}
}

// RunDaily executes the three reconciliation jobs in order. Activation
// must precede completion within the same processing day so a hold due
// to start today is not transiently completed.
func (s *ReconciliationService) RunDaily(ctx context.Context) error {
	activated, err1 := s.ActivateDueSuspensions(ctx)
	logger.Info("[Reconciliation] Due suspensions activated", "count", activated)

	completed, err2 := s.CompleteEndedSuspensions(ctx)
	logger.Info("[Reconciliation] Ended suspensions completed", "count", completed)

	canceled, err3 := s.ExecuteScheduledCancellations(ctx)
	logger.Info("[Reconciliation] Scheduled cancellations executed", "count", canceled)

	return errors.Join(err1, err2, err3)
}

// ActivateDueSuspensions advances scheduled suspensions whose start date
// has arrived: the contract is suspended and its end date pushed out by
// the hold's day count. Returns how many candidates were advanced.
func (s *ReconciliationService) ActivateDueSuspensions(ctx context.Context) (int, error) {
	candidates, err := s.repos.Suspension.FindDueScheduled(ctx, dates.Today())
	if err != nil {
		return 0, fmt.Errorf("%w: scanning due suspensions: %v", ErrInternal, err)
	}

	return s.runParallel(ctx, len(candidates), func(i int) bool {
		return s.activateOne(ctx, &candidates[i])
	}), nil
}

func (s *ReconciliationService) activateOne(ctx context.Context, candidate *models.Suspension) bool {
	localToday, ok := s.branchToday(ctx, candidate.TenantID, candidate.BranchID)
	if !ok {
		return false
	}

	var (
		before, after models.Contract
		advanced      bool
	)

	err := s.txm.Transaction(ctx, func(r *repository.Repositories) error {
		hold, err := r.Suspension.FindByIDForUpdate(ctx, candidate.ContractID, candidate.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil
			}
			return err
		}
		// Re-validate: another run may have advanced it, and the scan
		// date may be ahead of the branch-local calendar.
		if !hold.MayActivate() || dates.Before(localToday, hold.StartDate) {
			return nil
		}

		contract, err := r.Contract.FindByIDForUpdate(ctx, hold.TenantID, hold.BranchID, hold.ContractID)
		if err != nil {
			if repository.IsNotFound(err) {
				logger.Warn("Skipping suspension with missing parent contract",
					"suspension_id", hold.ID, "contract_id", hold.ContractID)
				return nil
			}
			return err
		}
		if contract.EndDate == nil || hold.DaysUsed <= 0 {
			logger.Warn("Skipping suspension that cannot take effect",
				"suspension_id", hold.ID, "contract_id", contract.ID)
			return nil
		}

		before = *contract

		extended, err := dates.AddDays(*contract.EndDate, hold.DaysUsed)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		sfsm := statemachine.NewSuspensionFSM(hold)
		if err := sfsm.Activate(ctx); err != nil {
			return err
		}
		hold.ProcessedAt = &now

		if contract.Status != models.ContractStatusSuspended {
			cfsm := statemachine.NewContractFSM(contract)
			if err := cfsm.Suspend(ctx); err != nil {
				logger.Warn("Skipping suspension: contract cannot be suspended",
					"suspension_id", hold.ID, "contract_id", contract.ID, "status", before.Status)
				return nil
			}
		}
		contract.EndDate = &extended
		contract.TotalSuspendedDays += hold.DaysUsed
		contract.PendingSuspensionDays -= hold.DaysUsed
		if contract.PendingSuspensionDays < 0 {
			contract.PendingSuspensionDays = 0
		}

		if err := r.Suspension.Update(ctx, hold); err != nil {
			return err
		}
		if err := r.Contract.Update(ctx, contract); err != nil {
			return err
		}

		after = *contract
		advanced = true
		return nil
	})
	if err != nil {
		logger.Error("Failed to activate suspension, leaving for next run",
			"suspension_id", candidate.ID, "error", err)
		return false
	}
	if !advanced {
		return false
	}

	s.applySummary(ctx, localToday, before, after)
	return true
}

// CompleteEndedSuspensions marks active suspensions whose window has
// passed as completed and, when the contract holds no other open
// suspension, flips it back to active.
func (s *ReconciliationService) CompleteEndedSuspensions(ctx context.Context) (int, error) {
	candidates, err := s.repos.Suspension.FindEndedActive(ctx, dates.Today())
	if err != nil {
		return 0, fmt.Errorf("%w: scanning ended suspensions: %v", ErrInternal, err)
	}

	return s.runParallel(ctx, len(candidates), func(i int) bool {
		return s.completeOne(ctx, &candidates[i])
	}), nil
}

func (s *ReconciliationService) completeOne(ctx context.Context, candidate *models.Suspension) bool {
	localToday, ok := s.branchToday(ctx, candidate.TenantID, candidate.BranchID)
	if !ok {
		return false
	}

	var (
		before, after models.Contract
		advanced      bool
		resumed       bool
	)

	err := s.txm.Transaction(ctx, func(r *repository.Repositories) error {
		hold, err := r.Suspension.FindByIDForUpdate(ctx, candidate.ContractID, candidate.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil
			}
			return err
		}
		if !hold.MayComplete() || dates.Before(localToday, hold.EndDate) {
			return nil
		}

		now := time.Now().UTC()
		sfsm := statemachine.NewSuspensionFSM(hold)
		if err := sfsm.Complete(ctx); err != nil {
			return err
		}
		hold.CompletedAt = &now
		if err := r.Suspension.Update(ctx, hold); err != nil {
			return err
		}
		advanced = true

		contract, err := r.Contract.FindByIDForUpdate(ctx, hold.TenantID, hold.BranchID, hold.ContractID)
		if err != nil {
			if repository.IsNotFound(err) {
				logger.Warn("Completed suspension has no parent contract",
					"suspension_id", hold.ID, "contract_id", hold.ContractID)
				return nil
			}
			return err
		}

		hasOther, err := r.Suspension.HasOtherOpenHolds(ctx, contract.ID, hold.ID)
		if err != nil {
			return err
		}
		if hasOther || contract.Status != models.ContractStatusSuspended {
			return nil
		}

		before = *contract
		cfsm := statemachine.NewContractFSM(contract)
		if err := cfsm.Resume(ctx); err != nil {
			return err
		}
		if err := r.Contract.Update(ctx, contract); err != nil {
			return err
		}
		after = *contract
		resumed = true
		return nil
	})
	if err != nil {
		logger.Error("Failed to complete suspension, leaving for next run",
			"suspension_id", candidate.ID, "error", err)
		return false
	}

	if resumed {
		s.applySummary(ctx, localToday, before, after)
	}
	return advanced
}

// ExecuteScheduledCancellations cancels contracts whose scheduled
// cancellation date has arrived and delegates post-commit cleanup.
func (s *ReconciliationService) ExecuteScheduledCancellations(ctx context.Context) (int, error) {
	candidates, err := s.repos.Contract.FindDueScheduledCancellations(ctx, dates.Today())
	if err != nil {
		return 0, fmt.Errorf("%w: scanning scheduled cancellations: %v", ErrInternal, err)
	}

	return s.runParallel(ctx, len(candidates), func(i int) bool {
		return s.cancelOne(ctx, &candidates[i])
	}), nil
}

func (s *ReconciliationService) cancelOne(ctx context.Context, candidate *models.Contract) bool {
	localToday, ok := s.branchToday(ctx, candidate.TenantID, candidate.BranchID)
	if !ok {
		return false
	}

	var (
		before, after models.Contract
		advanced      bool
	)

	err := s.txm.Transaction(ctx, func(r *repository.Repositories) error {
		contract, err := r.Contract.FindByIDForUpdate(ctx, candidate.TenantID, candidate.BranchID, candidate.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil
			}
			return err
		}
		if contract.Status != models.ContractStatusScheduledCancellation ||
			contract.CancelDate == nil || dates.Before(localToday, *contract.CancelDate) {
			return nil
		}

		before = *contract

		now := time.Now().UTC()
		cfsm := statemachine.NewContractFSM(contract)
		if err := cfsm.Cancel(ctx); err != nil {
			return err
		}
		contract.CanceledAt = &now

		if err := r.Contract.Update(ctx, contract); err != nil {
			return err
		}

		after = *contract
		advanced = true
		return nil
	})
	if err != nil {
		logger.Error("Failed to execute scheduled cancellation, leaving for next run",
			"contract_id", candidate.ID, "error", err)
		return false
	}
	if !advanced {
		return false
	}

	s.applySummary(ctx, localToday, before, after)

	canceled := after
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return runPostCancelCleanup(ctx, s.enrollments, s.debts, s.repos.Branch, &canceled)
	})
	return true
}

// runParallel runs fn over n candidates with bounded concurrency and
// returns how many reported progress. Panics in one candidate are
// contained so the rest of the batch still runs.
func (s *ReconciliationService) runParallel(ctx context.Context, n int, fn func(i int) bool) int {
	if n == 0 {
		return 0
	}

	sem := make(chan struct{}, s.parallelism)
	var wg sync.WaitGroup
	var processed int64

	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					logger.Error(fmt.Sprintf("[Reconciliation] Candidate panic: %v", r))
				}
			}()
			if fn(i) {
				atomic.AddInt64(&processed, 1)
			}
		}(i)
	}

	wg.Wait()
	return int(processed)
}

func (s *ReconciliationService) branchToday(ctx context.Context, tenantID, branchID string) (string, bool) {
	settings, err := s.repos.Branch.GetSettings(ctx, tenantID, branchID)
	if err != nil {
		logger.Error("Branch settings lookup failed, skipping candidate",
			"tenant_id", tenantID, "branch_id", branchID, "error", err)
		return "", false
	}
	return dates.TodayIn(settings.Location()), true
}

// applySummary applies the counter delta for one reconciled contract.
// Runs after the candidate's commit; a failure only delays the counters.
func (s *ReconciliationService) applySummary(ctx context.Context, date string, before, after models.Contract) {
	if err := s.summarySvc.RecordContractChange(ctx, after.TenantID, after.BranchID, date, &before, &after); err != nil {
		logger.Error("Failed to update summaries after reconciliation",
			"contract_id", after.ID, "error", err)
	}
}
