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

// ContractService implements contract construction and cancellation.
type ContractService struct {
	txm         repository.TxManager
	repos       *repository.Repositories
	summarySvc  *SummaryService
	audit       AuditLogger
	worker      *jobs.Worker
	enrollments EnrollmentCleaner
	debts       DebtCleaner
}

func NewContractService(
	txm repository.TxManager,
	repos *repository.Repositories,
	summarySvc *SummaryService,
	audit AuditLogger,
	worker *jobs.Worker,
	enrollments EnrollmentCleaner,
	debts DebtCleaner,
) *ContractService {
	return &ContractService{
		txm:         txm,
		repos:       repos,
		summarySvc:  summarySvc,
		audit:       audit,
		worker:      worker,
		enrollments: enrollments,
		debts:       debts,
	}
}

// FindByID gets a contract by ID within the caller's branch scope
func (s *ContractService) FindByID(ctx context.Context, tenantID, branchID, id string) (*models.Contract, error) {
	contract, err := s.repos.Contract.FindByIDWithSuspensions(ctx, tenantID, branchID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: contract %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return contract, nil
}

// CreateContractInput carries the construction parameters
type CreateContractInput struct {
	TenantID          string
	BranchID          string
	ActorID           string
	ClientID          string
	SaleID            *string
	StartDate         string
	EndDate           *string
	Status            string
	AllowSuspension   bool
	SuspensionMaxDays int
}

// Create creates a contract. Status defaults to active when unset.
func (s *ContractService) Create(ctx context.Context, in CreateContractInput) (*models.Contract, error) {
	if in.ClientID == "" {
		return nil, fmt.Errorf("%w: client id is required", ErrInvalidArgument)
	}
	if !dates.Valid(in.StartDate) {
		return nil, fmt.Errorf("%w: start date must be YYYY-MM-DD", ErrInvalidArgument)
	}
	if in.EndDate != nil {
		if !dates.Valid(*in.EndDate) {
			return nil, fmt.Errorf("%w: end date must be YYYY-MM-DD", ErrInvalidArgument)
		}
		if dates.Before(*in.EndDate, in.StartDate) {
			return nil, fmt.Errorf("%w: end date precedes start date", ErrInvalidArgument)
		}
	}

	status := in.Status
	if status == "" {
		status = models.ContractStatusActive
	}
	switch status {
	case models.ContractStatusActive, models.ContractStatusPendingSetup,
		models.ContractStatusExpiring, models.ContractStatusSuspended:
	default:
		return nil, fmt.Errorf("%w: cannot create contract with status %q", ErrInvalidArgument, status)
	}
	if in.SuspensionMaxDays < 0 {
		return nil, fmt.Errorf("%w: suspension max days cannot be negative", ErrInvalidArgument)
	}

	contract := &models.Contract{
		ID:                uuid.NewString(),
		TenantID:          in.TenantID,
		BranchID:          in.BranchID,
		ClientID:          in.ClientID,
		SaleID:            in.SaleID,
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
		Status:            status,
		AllowSuspension:   in.AllowSuspension,
		SuspensionMaxDays: in.SuspensionMaxDays,
		CreatedBy:         in.ActorID,
	}

	if err := s.repos.Contract.Create(ctx, contract); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	created := *contract
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.summarySvc.RecordContractChange(ctx, created.TenantID, created.BranchID, s.processingDate(ctx, created.TenantID, created.BranchID), nil, &created)
	})
	s.logAudit(in.TenantID, in.BranchID, in.ActorID, "CREATE", "Contract", contract.ID,
		fmt.Sprintf("Contract created for client %s, start %s", in.ClientID, in.StartDate))

	return contract, nil
}

// CancelContractInput carries the cancellation parameters
type CancelContractInput struct {
	TenantID      string
	BranchID      string
	ActorID       string
	ContractID    string
	Reason        string
	RefundRevenue bool
	Schedule      bool
	CancelDate    string
}

// CancelContractResult is returned to the caller
type CancelContractResult struct {
	Status   string  `json:"status"`
	ClientID string  `json:"client_id"`
	SaleID   *string `json:"sale_id"`
}

// Cancel cancels a contract immediately or records a future cancellation
// date. Cancelling an already-canceled contract is a no-op that reports
// success without touching counters or cleanup.
func (s *ContractService) Cancel(ctx context.Context, in CancelContractInput) (*CancelContractResult, error) {
	settings, err := s.repos.Branch.GetSettings(ctx, in.TenantID, in.BranchID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading branch settings: %v", ErrInternal, err)
	}
	today := dates.TodayIn(settings.Location())

	if in.Schedule {
		if !dates.Valid(in.CancelDate) {
			return nil, fmt.Errorf("%w: cancel date must be YYYY-MM-DD", ErrInvalidArgument)
		}
		if dates.Before(in.CancelDate, today) {
			return nil, fmt.Errorf("%w: cancel date %s is in the past", ErrInvalidArgument, in.CancelDate)
		}
	}

	var (
		result   *CancelContractResult
		before   models.Contract
		after    models.Contract
		noop     bool
		canceled models.Contract
	)

	err = s.txm.Transaction(ctx, func(r *repository.Repositories) error {
		contract, err := r.Contract.FindByIDForUpdate(ctx, in.TenantID, in.BranchID, in.ContractID)
		if err != nil {
			if repository.IsNotFound(err) {
				return fmt.Errorf("%w: contract %s", ErrNotFound, in.ContractID)
			}
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}

		if contract.IsCanceled() {
			noop = true
			result = &CancelContractResult{
				Status:   contract.Status,
				ClientID: contract.ClientID,
				SaleID:   contract.SaleID,
			}
			return nil
		}

		before = *contract
		cfsm := statemachine.NewContractFSM(contract)

		if in.Schedule {
			if err := cfsm.ScheduleCancellation(ctx); err != nil {
				return fmt.Errorf("%w: %v", ErrFailedPrecondition, err)
			}
			cancelDate := in.CancelDate
			reason := in.Reason
			contract.CancelDate = &cancelDate
			contract.CancelReason = &reason
		} else {
			if err := cfsm.Cancel(ctx); err != nil {
				return fmt.Errorf("%w: %v", ErrFailedPrecondition, err)
			}
			now := time.Now().UTC()
			actor := in.ActorID
			reason := in.Reason
			contract.CanceledAt = &now
			contract.CanceledBy = &actor
			contract.CancelReason = &reason
			contract.Refunded = in.RefundRevenue
		}

		if err := r.Contract.Update(ctx, contract); err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}

		after = *contract
		canceled = *contract
		result = &CancelContractResult{
			Status:   contract.Status,
			ClientID: contract.ClientID,
			SaleID:   contract.SaleID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if noop {
		return result, nil
	}

	b, a := before, after
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.summarySvc.RecordContractChange(ctx, in.TenantID, in.BranchID, today, &b, &a)
	})

	action := "CANCEL"
	details := fmt.Sprintf("Contract canceled. Reason: %s", in.Reason)
	if in.Schedule {
		action = "SCHEDULE_CANCELLATION"
		details = fmt.Sprintf("Contract cancellation scheduled for %s. Reason: %s", in.CancelDate, in.Reason)
	}
	s.logAudit(in.TenantID, in.BranchID, in.ActorID, action, "Contract", in.ContractID, details)

	// Immediate cancellations clean up enrollments and open debts after
	// commit; failures are logged, never rolled back.
	if !in.Schedule {
		c := canceled
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return runPostCancelCleanup(ctx, s.enrollments, s.debts, s.repos.Branch, &c)
		})
	}

	return result, nil
}

// processingDate resolves today's calendar date in the branch timezone,
// falling back to UTC when settings cannot be read.
func (s *ContractService) processingDate(ctx context.Context, tenantID, branchID string) string {
	settings, err := s.repos.Branch.GetSettings(ctx, tenantID, branchID)
	if err != nil {
		return dates.Today()
	}
	return dates.TodayIn(settings.Location())
}

func (s *ContractService) logAudit(tenantID, branchID, actorID, action, entity, entityID, details string) {
	if s.audit == nil {
		return
	}
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.audit.Log(ctx, tenantID, branchID, actorID, action, entity, entityID, details, "")
	})
}
