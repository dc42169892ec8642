package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fitcore/membership-api/internal/models"
	"github.com/fitcore/membership-api/internal/repository"
	"github.com/fitcore/membership-api/pkg/logger"
)

// EnrollmentCleaner removes a client's future enrollments after a
// contract is cancelled. Implemented by an external collaborator.
type EnrollmentCleaner interface {
	CleanupEnrollments(ctx context.Context, tenantID, branchID, clientID string) (int, error)
}

// DebtCleaner writes off open receivables tied to the contract's
// originating sale. Implemented by an external collaborator.
type DebtCleaner interface {
	CleanupOpenDebts(ctx context.Context, tenantID, branchID, saleID string) (int, error)
}

// runPostCancelCleanup performs the best-effort, post-commit cleanup for
// a cancelled contract: enrollment removal always, debt write-off only
// when the branch enables it. Each call is retried with exponential
// backoff; a final failure is logged and the committed cancellation
// stands.
func runPostCancelCleanup(
	ctx context.Context,
	enrollments EnrollmentCleaner,
	debts DebtCleaner,
	branches repository.BranchRepository,
	contract *models.Contract,
) error {
	retry := func(op func() error) error {
		policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(500*time.Millisecond),
			backoff.WithMaxElapsedTime(30*time.Second),
		), 4)
		return backoff.Retry(op, backoff.WithContext(policy, ctx))
	}

	var firstErr error

	if err := retry(func() error {
		n, err := enrollments.CleanupEnrollments(ctx, contract.TenantID, contract.BranchID, contract.ClientID)
		if err != nil {
			return err
		}
		logger.Info("Cleaned up enrollments after cancellation",
			"contract_id", contract.ID, "client_id", contract.ClientID, "count", n)
		return nil
	}); err != nil {
		logger.Error("Enrollment cleanup failed after retries",
			"contract_id", contract.ID, "error", err)
		firstErr = fmt.Errorf("enrollment cleanup: %w", err)
	}

	if contract.SaleID != nil {
		settings, err := branches.GetSettings(ctx, contract.TenantID, contract.BranchID)
		if err != nil {
			logger.Error("Branch settings lookup failed during cleanup",
				"contract_id", contract.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			return firstErr
		}
		if settings.AllowDebtWriteOffOnCancel {
			if err := retry(func() error {
				n, err := debts.CleanupOpenDebts(ctx, contract.TenantID, contract.BranchID, *contract.SaleID)
				if err != nil {
					return err
				}
				logger.Info("Wrote off open debts after cancellation",
					"contract_id", contract.ID, "sale_id", *contract.SaleID, "count", n)
				return nil
			}); err != nil {
				logger.Error("Debt write-off failed after retries",
					"contract_id", contract.ID, "error", err)
				if firstErr == nil {
					firstErr = fmt.Errorf("debt write-off: %w", err)
				}
			}
		}
	}

	return firstErr
}
