package services

import (
	"github.com/fitcore/membership-api/internal/config"
	"github.com/fitcore/membership-api/internal/jobs"
	"github.com/fitcore/membership-api/internal/repository"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Contract       *ContractService
	Suspension     *SuspensionService
	Summary        *SummaryService
	Reconciliation *ReconciliationService
	Export         *ExportService
	Audit          *AuditService
	Job            *JobService
}

// NewServices creates all service instances
func NewServices(
	repos *repository.Repositories,
	txm repository.TxManager,
	worker *jobs.Worker,
	enrollments EnrollmentCleaner,
	debts DebtCleaner,
	cfg *config.Config,
	db *gorm.DB,
) *Services {
	auditSvc := NewAuditService(db)
	summarySvc := NewSummaryService(repos.Summary)
	reconciliationSvc := NewReconciliationService(txm, repos, summarySvc, worker, enrollments, debts, cfg.JobParallelism)

	return &Services{
		Contract:       NewContractService(txm, repos, summarySvc, auditSvc, worker, enrollments, debts),
		Suspension:     NewSuspensionService(txm, repos, summarySvc, auditSvc, worker),
		Summary:        summarySvc,
		Reconciliation: reconciliationSvc,
		Export:         NewExportService(summarySvc),
		Audit:          auditSvc,
		Job:            NewJobService(worker, reconciliationSvc),
	}
}
