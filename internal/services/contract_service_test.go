package services

import (
	"context"
	"testing"
	"time"

	"github.com/fitcore/membership-api/internal/jobs"
	"github.com/fitcore/membership-api/internal/models"
	"github.com/fitcore/membership-api/pkg/dates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContractService(t *testing.T, env *testEnv, enrollments *fakeEnrollmentCleaner, debts *fakeDebtCleaner) *ContractService {
	t.Helper()
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)
	return NewContractService(env.txm, env.repos, env.summarySvc, env.audit, worker, enrollments, debts)
}

func TestCreateContract_DefaultsToActive(t *testing.T) {
	env := newTestEnv()
	svc := newContractService(t, env, &fakeEnrollmentCleaner{}, &fakeDebtCleaner{})

	contract, err := svc.Create(context.Background(), CreateContractInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ClientID: "m1",
		StartDate: "2026-02-01", AllowSuspension: true, SuspensionMaxDays: 30,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, contract.ID)
	assert.Equal(t, models.ContractStatusActive, contract.Status)
	assert.Equal(t, "u1", contract.CreatedBy)

	stored := env.contracts.get(contract.ID)
	assert.Equal(t, "m1", stored.ClientID)
}

func TestCreateContract_Validation(t *testing.T) {
	env := newTestEnv()
	svc := newContractService(t, env, &fakeEnrollmentCleaner{}, &fakeDebtCleaner{})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateContractInput{TenantID: "t1", BranchID: "b1", StartDate: "2026-02-01"})
	assert.ErrorIs(t, err, ErrInvalidArgument, "missing client")

	_, err = svc.Create(ctx, CreateContractInput{TenantID: "t1", BranchID: "b1", ClientID: "m1", StartDate: "Feb 1"})
	assert.ErrorIs(t, err, ErrInvalidArgument, "malformed start date")

	end := "2026-01-01"
	_, err = svc.Create(ctx, CreateContractInput{TenantID: "t1", BranchID: "b1", ClientID: "m1", StartDate: "2026-02-01", EndDate: &end})
	assert.ErrorIs(t, err, ErrInvalidArgument, "end before start")

	_, err = svc.Create(ctx, CreateContractInput{TenantID: "t1", BranchID: "b1", ClientID: "m1", StartDate: "2026-02-01", Status: models.ContractStatusCanceled})
	assert.ErrorIs(t, err, ErrInvalidArgument, "cannot create canceled")

	_, err = svc.Create(ctx, CreateContractInput{TenantID: "t1", BranchID: "b1", ClientID: "m1", StartDate: "2026-02-01", SuspensionMaxDays: -1})
	assert.ErrorIs(t, err, ErrInvalidArgument, "negative quota")
}

func TestCancelContract_Immediate(t *testing.T) {
	env := newTestEnv()
	enrollments := &fakeEnrollmentCleaner{}
	debts := &fakeDebtCleaner{}
	svc := newContractService(t, env, enrollments, debts)
	saleID := "sale-9"
	seedContract(env, func(c *models.Contract) { c.SaleID = &saleID })

	result, err := svc.Cancel(context.Background(), CancelContractInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ContractID: "c1",
		Reason: "moving away", RefundRevenue: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusCanceled, result.Status)
	assert.Equal(t, "m1", result.ClientID)
	require.NotNil(t, result.SaleID)
	assert.Equal(t, saleID, *result.SaleID)

	stored := env.contracts.get("c1")
	assert.Equal(t, models.ContractStatusCanceled, stored.Status)
	assert.True(t, stored.Refunded)
	require.NotNil(t, stored.CanceledAt)
	require.NotNil(t, stored.CanceledBy)
	assert.Equal(t, "u1", *stored.CanceledBy)

	// Cleanup is fired post-commit on the worker.
	assert.Eventually(t, func() bool {
		return enrollments.callCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCancelContract_Idempotent(t *testing.T) {
	env := newTestEnv()
	enrollments := &fakeEnrollmentCleaner{}
	svc := newContractService(t, env, enrollments, &fakeDebtCleaner{})
	seedContract(env, nil)
	ctx := context.Background()

	first, err := svc.Cancel(ctx, CancelContractInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ContractID: "c1", Reason: "x",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusCanceled, first.Status)

	second, err := svc.Cancel(ctx, CancelContractInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u2", ContractID: "c1", Reason: "again",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusCanceled, second.Status)

	stored := env.contracts.get("c1")
	require.NotNil(t, stored.CanceledBy)
	assert.Equal(t, "u1", *stored.CanceledBy, "repeat cancel must not overwrite the original")
}

func TestCancelContract_Scheduled(t *testing.T) {
	env := newTestEnv()
	svc := newContractService(t, env, &fakeEnrollmentCleaner{}, &fakeDebtCleaner{})
	seedContract(env, nil)

	cancelDate, _ := dates.AddDays(dates.Today(), 14)
	result, err := svc.Cancel(context.Background(), CancelContractInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ContractID: "c1",
		Reason: "end of season", Schedule: true, CancelDate: cancelDate,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusScheduledCancellation, result.Status)

	stored := env.contracts.get("c1")
	require.NotNil(t, stored.CancelDate)
	assert.Equal(t, cancelDate, *stored.CancelDate)
	assert.Nil(t, stored.CanceledAt, "scheduling must not stamp the terminal fields")
}

func TestCancelContract_ScheduledPastDate(t *testing.T) {
	env := newTestEnv()
	svc := newContractService(t, env, &fakeEnrollmentCleaner{}, &fakeDebtCleaner{})
	seedContract(env, nil)

	past, _ := dates.AddDays(dates.Today(), -1)
	_, err := svc.Cancel(context.Background(), CancelContractInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ContractID: "c1",
		Schedule: true, CancelDate: past,
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCancelContract_NotFound(t *testing.T) {
	env := newTestEnv()
	svc := newContractService(t, env, &fakeEnrollmentCleaner{}, &fakeDebtCleaner{})

	_, err := svc.Cancel(context.Background(), CancelContractInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ContractID: "missing",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
