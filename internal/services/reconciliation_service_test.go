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

func newReconciliationService(t *testing.T, env *testEnv, enrollments *fakeEnrollmentCleaner, debts *fakeDebtCleaner) *ReconciliationService {
	t.Helper()
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)
	return NewReconciliationService(env.txm, env.repos, env.summarySvc, worker, enrollments, debts, 2)
}

func TestActivateDueSuspensions(t *testing.T) {
	env := newTestEnv()
	svc := newReconciliationService(t, env, &fakeEnrollmentCleaner{}, &fakeDebtCleaner{})
	original := seedContract(env, func(c *models.Contract) { c.PendingSuspensionDays = 5 })

	holdEnd, _ := dates.AddDays(dates.Today(), 4)
	env.suspensions.put(models.Suspension{
		ID: "s1", ContractID: "c1", TenantID: "t1", BranchID: "b1",
		StartDate: dates.Today(), EndDate: holdEnd, DaysUsed: 5,
		Status: models.SuspensionStatusScheduled,
	})

	processed, err := svc.ActivateDueSuspensions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	hold := env.suspensions.get("s1")
	assert.Equal(t, models.SuspensionStatusActive, hold.Status)
	require.NotNil(t, hold.ProcessedAt)

	stored := env.contracts.get("c1")
	assert.Equal(t, models.ContractStatusSuspended, stored.Status)
	assert.Equal(t, 5, stored.TotalSuspendedDays)
	assert.Equal(t, 0, stored.PendingSuspensionDays)
	wantEnd, _ := dates.AddDays(*original.EndDate, 5)
	assert.Equal(t, wantEnd, *stored.EndDate)

	delta := env.summaries.total("t1", "b1", dates.Today())
	assert.Equal(t, -1, delta.Active)
	assert.Equal(t, 1, delta.Suspended)

	// Re-running is a no-op: the hold is no longer scheduled.
	processed, err = svc.ActivateDueSuspensions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
	stored = env.contracts.get("c1")
	assert.Equal(t, 5, stored.TotalSuspendedDays)
	assert.Equal(t, wantEnd, *stored.EndDate)
}

func TestActivateDueSuspensions_SkipsInvalidParent(t *testing.T) {
	env := newTestEnv()
	svc := newReconciliationService(t, env, &fakeEnrollmentCleaner{}, &fakeDebtCleaner{})
	seedContract(env, func(c *models.Contract) { c.EndDate = nil })

	holdEnd, _ := dates.AddDays(dates.Today(), 2)
	env.suspensions.put(models.Suspension{
		ID: "s1", ContractID: "c1", TenantID: "t1", BranchID: "b1",
		StartDate: dates.Today(), EndDate: holdEnd, DaysUsed: 3,
		Status: models.SuspensionStatusScheduled,
	})

	processed, err := svc.ActivateDueSuspensions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
	assert.Equal(t, models.SuspensionStatusScheduled, env.suspensions.get("s1").Status)
	assert.Equal(t, models.ContractStatusActive, env.contracts.get("c1").Status)
}

func TestCompleteEndedSuspensions(t *testing.T) {
	env := newTestEnv()
	svc := newReconciliationService(t, env, &fakeEnrollmentCleaner{}, &fakeDebtCleaner{})
	seedContract(env, func(c *models.Contract) {
		c.Status = models.ContractStatusSuspended
		c.TotalSuspendedDays = 5
	})

	start, _ := dates.AddDays(dates.Today(), -5)
	ended, _ := dates.AddDays(dates.Today(), -1)
	env.suspensions.put(models.Suspension{
		ID: "s1", ContractID: "c1", TenantID: "t1", BranchID: "b1",
		StartDate: start, EndDate: ended, DaysUsed: 5,
		Status: models.SuspensionStatusActive,
	})

	processed, err := svc.CompleteEndedSuspensions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	hold := env.suspensions.get("s1")
	assert.Equal(t, models.SuspensionStatusCompleted, hold.Status)
	require.NotNil(t, hold.CompletedAt)

	stored := env.contracts.get("c1")
	assert.Equal(t, models.ContractStatusActive, stored.Status)
	assert.Equal(t, 5, stored.TotalSuspendedDays, "consumed days stay consumed on completion")

	delta := env.summaries.total("t1", "b1", dates.Today())
	assert.Equal(t, 1, delta.Active)
	assert.Equal(t, -1, delta.Suspended)
}

func TestCompleteEndedSuspensions_OtherOpenHoldKeepsContractSuspended(t *testing.T) {
	env := newTestEnv()
	svc := newReconciliationService(t, env, &fakeEnrollmentCleaner{}, &fakeDebtCleaner{})
	seedContract(env, func(c *models.Contract) { c.Status = models.ContractStatusSuspended })

	start, _ := dates.AddDays(dates.Today(), -5)
	ended, _ := dates.AddDays(dates.Today(), -1)
	env.suspensions.put(models.Suspension{
		ID: "s1", ContractID: "c1", TenantID: "t1", BranchID: "b1",
		StartDate: start, EndDate: ended, DaysUsed: 5,
		Status: models.SuspensionStatusActive,
	})
	future, _ := dates.AddDays(dates.Today(), 3)
	futureEnd, _ := dates.AddDays(dates.Today(), 6)
	env.suspensions.put(models.Suspension{
		ID: "s2", ContractID: "c1", TenantID: "t1", BranchID: "b1",
		StartDate: future, EndDate: futureEnd, DaysUsed: 4,
		Status: models.SuspensionStatusScheduled,
	})

	processed, err := svc.CompleteEndedSuspensions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	assert.Equal(t, models.SuspensionStatusCompleted, env.suspensions.get("s1").Status)
	assert.Equal(t, models.ContractStatusSuspended, env.contracts.get("c1").Status)
	assert.True(t, env.summaries.total("t1", "b1", dates.Today()).IsZero(),
		"no contract transition, no counter movement")
}

func TestExecuteScheduledCancellations(t *testing.T) {
	env := newTestEnv()
	enrollments := &fakeEnrollmentCleaner{}
	svc := newReconciliationService(t, env, enrollments, &fakeDebtCleaner{})
	today := dates.Today()
	seedContract(env, func(c *models.Contract) {
		c.Status = models.ContractStatusScheduledCancellation
		c.CancelDate = &today
	})

	processed, err := svc.ExecuteScheduledCancellations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	stored := env.contracts.get("c1")
	assert.Equal(t, models.ContractStatusCanceled, stored.Status)
	require.NotNil(t, stored.CanceledAt)

	delta := env.summaries.total("t1", "b1", today)
	assert.Equal(t, 1, delta.Canceled)
	assert.Equal(t, 1, delta.Churn)
	assert.Equal(t, 0, delta.Active, "active already decremented when the cancellation was scheduled")

	assert.Eventually(t, func() bool {
		return enrollments.callCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Second run finds nothing.
	processed, err = svc.ExecuteScheduledCancellations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
}

func TestExecuteScheduledCancellations_FutureDateNotDue(t *testing.T) {
	env := newTestEnv()
	svc := newReconciliationService(t, env, &fakeEnrollmentCleaner{}, &fakeDebtCleaner{})
	tomorrow, _ := dates.AddDays(dates.Today(), 1)
	seedContract(env, func(c *models.Contract) {
		c.Status = models.ContractStatusScheduledCancellation
		c.CancelDate = &tomorrow
	})

	processed, err := svc.ExecuteScheduledCancellations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
	assert.Equal(t, models.ContractStatusScheduledCancellation, env.contracts.get("c1").Status)
}

func TestRunDaily_SequencesAllJobs(t *testing.T) {
	env := newTestEnv()
	svc := newReconciliationService(t, env, &fakeEnrollmentCleaner{}, &fakeDebtCleaner{})
	today := dates.Today()

	// One contract with a hold due to start, one due for cancellation.
	seedContract(env, func(c *models.Contract) { c.PendingSuspensionDays = 3 })
	holdEnd, _ := dates.AddDays(today, 2)
	env.suspensions.put(models.Suspension{
		ID: "s1", ContractID: "c1", TenantID: "t1", BranchID: "b1",
		StartDate: today, EndDate: holdEnd, DaysUsed: 3,
		Status: models.SuspensionStatusScheduled,
	})

	end2, _ := dates.AddDays(today, 30)
	env.contracts.put(models.Contract{
		ID: "c2", TenantID: "t1", BranchID: "b1", ClientID: "m2",
		StartDate: "2026-01-01", EndDate: &end2,
		Status: models.ContractStatusScheduledCancellation, CancelDate: &today,
	})

	err := svc.RunDaily(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.ContractStatusSuspended, env.contracts.get("c1").Status)
	assert.Equal(t, models.ContractStatusCanceled, env.contracts.get("c2").Status)
}
