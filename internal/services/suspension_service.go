package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fitcore/membership-api/internal/jobs"
	"github.com/fitcore/membership-api/internal/models"
	"github.com/fitcore/membership-api/internal/repository"
	"github.com/fitcore/membership-api/internal/statemachine"
	"github.com/fitcore/membership-api/pkg/dates"
	"github.com/google/uuid"
)

// SuspensionService implements the user-facing suspension operations.
// Each operation mutates the suspension and its parent contract in one
// transaction; summaries and audit entries are fired after commit.
type SuspensionService struct {
	txm        repository.TxManager
	repos      *repository.Repositories
	summarySvc *SummaryService
	audit      AuditLogger
	worker     *jobs.Worker
}

func NewSuspensionService(
	txm repository.TxManager,
	repos *repository.Repositories,
	summarySvc *SummaryService,
	audit AuditLogger,
	worker *jobs.Worker,
) *SuspensionService {
	return &SuspensionService{
		txm:        txm,
		repos:      repos,
		summarySvc: summarySvc,
		audit:      audit,
		worker:     worker,
	}
}

// ScheduleSuspensionInput carries a vacation-hold request
type ScheduleSuspensionInput struct {
	TenantID   string
	BranchID   string
	ActorID    string
	ContractID string
	StartDate  string
	EndDate    string
	Reason     string
}

// ScheduleSuspensionResult is returned to the caller
type ScheduleSuspensionResult struct {
	Suspension *models.Suspension
	// NewEndDate is set when the hold took effect immediately and the
	// contract's end date moved.
	NewEndDate *string
}

// ScheduleSuspension creates a hold on the contract. A hold starting
// today or earlier takes effect immediately (contract suspended, end
// date pushed out); a future hold only reserves quota days.
func (s *SuspensionService) ScheduleSuspension(ctx context.Context, in ScheduleSuspensionInput) (*ScheduleSuspensionResult, error) {
	if !dates.Valid(in.StartDate) || !dates.Valid(in.EndDate) {
		return nil, fmt.Errorf("%w: start and end must be YYYY-MM-DD dates", ErrInvalidArgument)
	}
	if dates.Before(in.EndDate, in.StartDate) {
		return nil, fmt.Errorf("%w: end date %s precedes start date %s", ErrInvalidArgument, in.EndDate, in.StartDate)
	}
	daysRequested, err := dates.DaysBetweenInclusive(in.StartDate, in.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	settings, err := s.repos.Branch.GetSettings(ctx, in.TenantID, in.BranchID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading branch settings: %v", ErrInternal, err)
	}
	today := dates.TodayIn(settings.Location())

	var (
		suspension *models.Suspension
		before     models.Contract
		after      models.Contract
		newEndDate *string
	)

	err = s.txm.Transaction(ctx, func(r *repository.Repositories) error {
		contract, err := r.Contract.FindByIDForUpdate(ctx, in.TenantID, in.BranchID, in.ContractID)
		if err != nil {
			if repository.IsNotFound(err) {
				return fmt.Errorf("%w: contract %s", ErrNotFound, in.ContractID)
			}
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}

		if !contract.AllowSuspension {
			return fmt.Errorf("%w: contract does not allow suspensions", ErrFailedPrecondition)
		}
		if contract.IsCanceled() {
			return fmt.Errorf("%w: contract is canceled", ErrFailedPrecondition)
		}
		if !contract.WithinSuspensionQuota(daysRequested) {
			return fmt.Errorf("%w: suspension quota exceeded (%d used + %d pending + %d requested > %d max)",
				ErrFailedPrecondition,
				contract.TotalSuspendedDays, contract.PendingSuspensionDays, daysRequested, contract.SuspensionMaxDays)
		}

		before = *contract
		now := time.Now().UTC()

		hold := &models.Suspension{
			ID:         uuid.NewString(),
			ContractID: contract.ID,
			TenantID:   contract.TenantID,
			BranchID:   contract.BranchID,
			StartDate:  in.StartDate,
			EndDate:    in.EndDate,
			DaysUsed:   daysRequested,
			CreatedBy:  in.ActorID,
		}
		if in.Reason != "" {
			reason := in.Reason
			hold.Reason = &reason
		}

		if dates.OnOrBefore(in.StartDate, today) {
			// Immediate effect: push the end date out and suspend now.
			if contract.EndDate == nil {
				return fmt.Errorf("%w: open-ended contract cannot be suspended with immediate effect", ErrFailedPrecondition)
			}
			extended, err := dates.AddDays(*contract.EndDate, daysRequested)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInternal, err)
			}

			hold.Status = models.SuspensionStatusActive
			hold.ProcessedAt = &now

			if contract.Status != models.ContractStatusSuspended {
				cfsm := statemachine.NewContractFSM(contract)
				if err := cfsm.Suspend(ctx); err != nil {
					return fmt.Errorf("%w: %v", ErrFailedPrecondition, err)
				}
			}
			contract.EndDate = &extended
			contract.TotalSuspendedDays += daysRequested
			newEndDate = &extended
		} else {
			hold.Status = models.SuspensionStatusScheduled
			contract.PendingSuspensionDays += daysRequested
		}

		if err := r.Suspension.Create(ctx, hold); err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		if err := r.Contract.Update(ctx, contract); err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}

		suspension = hold
		after = *contract
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordChange(in.TenantID, in.BranchID, today, before, after)
	s.logAudit(in.TenantID, in.BranchID, in.ActorID, "SCHEDULE_SUSPENSION", "Suspension", suspension.ID,
		fmt.Sprintf("Suspension %s..%s (%d days) on contract %s, status %s",
			in.StartDate, in.EndDate, daysRequested, in.ContractID, suspension.Status))

	return &ScheduleSuspensionResult{Suspension: suspension, NewEndDate: newEndDate}, nil
}

// Stop result type constants
const (
	StopTypeScheduledCancelled = "scheduled_cancelled"
	StopTypeActiveStopped      = "active_stopped"
)

// StopSuspensionInput identifies the hold to stop
type StopSuspensionInput struct {
	TenantID     string
	BranchID     string
	ActorID      string
	ContractID   string
	SuspensionID string
}

// StopSuspensionResult describes what the stop did
type StopSuspensionResult struct {
	Type               string  `json:"type"`
	UnusedDays         int     `json:"unused_days"`
	ActuallyUsedDays   int     `json:"actually_used_days,omitempty"`
	NewContractEndDate *string `json:"new_contract_end_date,omitempty"`
}

// StopSuspension cancels a scheduled hold or stops an active one early.
// Stopping an active hold gives the unused days back: the contract's end
// date moves back by exactly the days not consumed, so a schedule/stop
// round trip is precisely reversible.
func (s *SuspensionService) StopSuspension(ctx context.Context, in StopSuspensionInput) (*StopSuspensionResult, error) {
	settings, err := s.repos.Branch.GetSettings(ctx, in.TenantID, in.BranchID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading branch settings: %v", ErrInternal, err)
	}
	today := dates.TodayIn(settings.Location())

	var (
		result *StopSuspensionResult
		before models.Contract
		after  models.Contract
	)

	err = s.txm.Transaction(ctx, func(r *repository.Repositories) error {
		contract, err := r.Contract.FindByIDForUpdate(ctx, in.TenantID, in.BranchID, in.ContractID)
		if err != nil {
			if repository.IsNotFound(err) {
				return fmt.Errorf("%w: contract %s", ErrNotFound, in.ContractID)
			}
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}

		hold, err := r.Suspension.FindByIDForUpdate(ctx, in.ContractID, in.SuspensionID)
		if err != nil {
			if repository.IsNotFound(err) {
				return fmt.Errorf("%w: suspension %s", ErrNotFound, in.SuspensionID)
			}
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}

		if !hold.MayStop() {
			return fmt.Errorf("%w: suspension is %s, only scheduled or active suspensions can be stopped",
				ErrFailedPrecondition, hold.Status)
		}

		before = *contract
		now := time.Now().UTC()
		sfsm := statemachine.NewSuspensionFSM(hold)

		if hold.Status == models.SuspensionStatusScheduled {
			// Never started: release the reservation in full.
			if err := sfsm.Cancel(ctx); err != nil {
				return fmt.Errorf("%w: %v", ErrFailedPrecondition, err)
			}
			unused := hold.DaysUsed
			hold.UnusedDays = unused
			hold.DaysUsed = 0
			hold.StoppedAt = &now
			hold.StoppedBy = &in.ActorID

			contract.PendingSuspensionDays -= unused
			if contract.PendingSuspensionDays < 0 {
				contract.PendingSuspensionDays = 0
			}

			result = &StopSuspensionResult{
				Type:       StopTypeScheduledCancelled,
				UnusedDays: unused,
			}
		} else {
			// Active: the stop day itself is not consumed, the member
			// resumes today.
			elapsed, err := dates.DaysBetween(hold.StartDate, today)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInternal, err)
			}
			actuallyUsed := elapsed
			if actuallyUsed < 0 {
				actuallyUsed = 0
			}
			unused := hold.DaysUsed - actuallyUsed
			if unused <= 0 {
				return fmt.Errorf("%w: suspension already exhausted", ErrFailedPrecondition)
			}
			if contract.EndDate == nil {
				return fmt.Errorf("%w: contract has no end date while a dated suspension is active", ErrFailedPrecondition)
			}

			restored, err := dates.AddDays(*contract.EndDate, -unused)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInternal, err)
			}
			lastHeldDay, err := dates.AddDays(today, -1)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInternal, err)
			}

			if err := sfsm.Stop(ctx); err != nil {
				return fmt.Errorf("%w: %v", ErrFailedPrecondition, err)
			}
			hold.EndDate = lastHeldDay
			hold.DaysUsed = actuallyUsed
			hold.UnusedDays = unused
			hold.StoppedAt = &now
			hold.StoppedBy = &in.ActorID

			if contract.Status == models.ContractStatusSuspended {
				cfsm := statemachine.NewContractFSM(contract)
				if err := cfsm.Resume(ctx); err != nil {
					return fmt.Errorf("%w: %v", ErrFailedPrecondition, err)
				}
			}
			contract.EndDate = &restored
			contract.TotalSuspendedDays -= unused
			if contract.TotalSuspendedDays < 0 {
				contract.TotalSuspendedDays = 0
			}

			result = &StopSuspensionResult{
				Type:               StopTypeActiveStopped,
				UnusedDays:         unused,
				ActuallyUsedDays:   actuallyUsed,
				NewContractEndDate: &restored,
			}
		}

		if err := r.Suspension.Update(ctx, hold); err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		if err := r.Contract.Update(ctx, contract); err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}

		after = *contract
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordChange(in.TenantID, in.BranchID, today, before, after)
	s.logAudit(in.TenantID, in.BranchID, in.ActorID, "STOP_SUSPENSION", "Suspension", in.SuspensionID,
		fmt.Sprintf("Suspension stopped on contract %s (%s, %d unused days)", in.ContractID, result.Type, result.UnusedDays))

	return result, nil
}

// ListByContract returns the suspensions of one contract
func (s *SuspensionService) ListByContract(ctx context.Context, tenantID, branchID, contractID string) ([]models.Suspension, error) {
	if _, err := s.repos.Contract.FindByID(ctx, tenantID, branchID, contractID); err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: contract %s", ErrNotFound, contractID)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return s.repos.Suspension.FindByContract(ctx, contractID)
}

func (s *SuspensionService) recordChange(tenantID, branchID, date string, before, after models.Contract) {
	b, a := before, after
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.summarySvc.RecordContractChange(ctx, tenantID, branchID, date, &b, &a)
	})
}

func (s *SuspensionService) logAudit(tenantID, branchID, actorID, action, entity, entityID, details string) {
	if s.audit == nil {
		return
	}
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.audit.Log(ctx, tenantID, branchID, actorID, action, entity, entityID, details, "")
	})
}
