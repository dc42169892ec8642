package services

import (
	"context"
	"testing"

	"github.com/fitcore/membership-api/internal/jobs"
	"github.com/fitcore/membership-api/internal/models"
	"github.com/fitcore/membership-api/pkg/dates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSuspensionService(t *testing.T, env *testEnv) *SuspensionService {
	t.Helper()
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)
	return NewSuspensionService(env.txm, env.repos, env.summarySvc, env.audit, worker)
}

func seedContract(env *testEnv, mutate func(c *models.Contract)) models.Contract {
	end, _ := dates.AddDays(dates.Today(), 90)
	c := models.Contract{
		ID:                "c1",
		TenantID:          "t1",
		BranchID:          "b1",
		ClientID:          "m1",
		StartDate:         "2026-01-01",
		EndDate:           &end,
		Status:            models.ContractStatusActive,
		AllowSuspension:   true,
		SuspensionMaxDays: 30,
	}
	if mutate != nil {
		mutate(&c)
	}
	env.contracts.put(c)
	return c
}

func TestScheduleSuspension_FutureHoldReservesQuota(t *testing.T) {
	env := newTestEnv()
	svc := newSuspensionService(t, env)
	seedContract(env, nil)

	start, _ := dates.AddDays(dates.Today(), 10)
	end, _ := dates.AddDays(dates.Today(), 16) // 7 days inclusive

	result, err := svc.ScheduleSuspension(context.Background(), ScheduleSuspensionInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ContractID: "c1",
		StartDate: start, EndDate: end, Reason: "vacation",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Suspension)
	assert.Equal(t, models.SuspensionStatusScheduled, result.Suspension.Status)
	assert.Equal(t, 7, result.Suspension.DaysUsed)
	assert.Nil(t, result.NewEndDate)

	stored := env.contracts.get("c1")
	assert.Equal(t, models.ContractStatusActive, stored.Status, "future hold must not suspend the contract yet")
	assert.Equal(t, 7, stored.PendingSuspensionDays)
	assert.Equal(t, 0, stored.TotalSuspendedDays)
}

func TestScheduleSuspension_ImmediateHoldSuspendsAndExtends(t *testing.T) {
	env := newTestEnv()
	svc := newSuspensionService(t, env)
	original := seedContract(env, nil)

	today := dates.Today()
	end, _ := dates.AddDays(today, 6) // 7 days inclusive

	result, err := svc.ScheduleSuspension(context.Background(), ScheduleSuspensionInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ContractID: "c1",
		StartDate: today, EndDate: end,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SuspensionStatusActive, result.Suspension.Status)
	require.NotNil(t, result.NewEndDate)

	wantEnd, _ := dates.AddDays(*original.EndDate, 7)
	assert.Equal(t, wantEnd, *result.NewEndDate)

	stored := env.contracts.get("c1")
	assert.Equal(t, models.ContractStatusSuspended, stored.Status)
	assert.Equal(t, wantEnd, *stored.EndDate)
	assert.Equal(t, 7, stored.TotalSuspendedDays)
	assert.Equal(t, 0, stored.PendingSuspensionDays)
}

func TestScheduleSuspension_QuotaExceeded(t *testing.T) {
	env := newTestEnv()
	svc := newSuspensionService(t, env)
	seedContract(env, func(c *models.Contract) {
		c.SuspensionMaxDays = 10
		c.TotalSuspendedDays = 5
		c.PendingSuspensionDays = 3
	})

	start, _ := dates.AddDays(dates.Today(), 5)
	end, _ := dates.AddDays(dates.Today(), 7) // 3 days, 5+3+3 > 10

	_, err := svc.ScheduleSuspension(context.Background(), ScheduleSuspensionInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ContractID: "c1",
		StartDate: start, EndDate: end,
	})
	assert.ErrorIs(t, err, ErrFailedPrecondition)

	stored := env.contracts.get("c1")
	assert.Equal(t, 3, stored.PendingSuspensionDays, "rejected request must not change the reservation")
}

func TestScheduleSuspension_ZeroMaxDaysIsUnlimited(t *testing.T) {
	env := newTestEnv()
	svc := newSuspensionService(t, env)
	seedContract(env, func(c *models.Contract) {
		c.SuspensionMaxDays = 0
		c.TotalSuspendedDays = 400
	})

	start, _ := dates.AddDays(dates.Today(), 5)
	end, _ := dates.AddDays(dates.Today(), 34)

	_, err := svc.ScheduleSuspension(context.Background(), ScheduleSuspensionInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ContractID: "c1",
		StartDate: start, EndDate: end,
	})
	assert.NoError(t, err)
}

func TestScheduleSuspension_Preconditions(t *testing.T) {
	env := newTestEnv()
	svc := newSuspensionService(t, env)
	ctx := context.Background()

	start, _ := dates.AddDays(dates.Today(), 2)
	end, _ := dates.AddDays(dates.Today(), 4)
	valid := ScheduleSuspensionInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ContractID: "c1",
		StartDate: start, EndDate: end,
	}

	seedContract(env, func(c *models.Contract) { c.AllowSuspension = false })
	_, err := svc.ScheduleSuspension(ctx, valid)
	assert.ErrorIs(t, err, ErrFailedPrecondition)

	seedContract(env, func(c *models.Contract) { c.Status = models.ContractStatusCanceled })
	_, err = svc.ScheduleSuspension(ctx, valid)
	assert.ErrorIs(t, err, ErrFailedPrecondition)

	missing := valid
	missing.ContractID = "nope"
	_, err = svc.ScheduleSuspension(ctx, missing)
	assert.ErrorIs(t, err, ErrNotFound)

	badDates := valid
	badDates.StartDate = "03/15/2026"
	_, err = svc.ScheduleSuspension(ctx, badDates)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	inverted := valid
	inverted.StartDate, inverted.EndDate = end, start
	_, err = svc.ScheduleSuspension(ctx, inverted)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestScheduleSuspension_ImmediateOnOpenEndedContract(t *testing.T) {
	env := newTestEnv()
	svc := newSuspensionService(t, env)
	seedContract(env, func(c *models.Contract) { c.EndDate = nil })

	end, _ := dates.AddDays(dates.Today(), 3)
	_, err := svc.ScheduleSuspension(context.Background(), ScheduleSuspensionInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ContractID: "c1",
		StartDate: dates.Today(), EndDate: end,
	})
	assert.ErrorIs(t, err, ErrFailedPrecondition)
}

func TestStopSuspension_ScheduledHoldReleasesReservation(t *testing.T) {
	env := newTestEnv()
	svc := newSuspensionService(t, env)
	seedContract(env, func(c *models.Contract) { c.PendingSuspensionDays = 7 })

	start, _ := dates.AddDays(dates.Today(), 10)
	end, _ := dates.AddDays(dates.Today(), 16)
	env.suspensions.put(models.Suspension{
		ID: "s1", ContractID: "c1", TenantID: "t1", BranchID: "b1",
		StartDate: start, EndDate: end, DaysUsed: 7,
		Status: models.SuspensionStatusScheduled,
	})

	result, err := svc.StopSuspension(context.Background(), StopSuspensionInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ContractID: "c1", SuspensionID: "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, StopTypeScheduledCancelled, result.Type)
	assert.Equal(t, 7, result.UnusedDays)

	hold := env.suspensions.get("s1")
	assert.Equal(t, models.SuspensionStatusCancelled, hold.Status)
	assert.Equal(t, 0, hold.DaysUsed)
	assert.Equal(t, 7, hold.UnusedDays)

	stored := env.contracts.get("c1")
	assert.Equal(t, 0, stored.PendingSuspensionDays)
	assert.Equal(t, models.ContractStatusActive, stored.Status)
}

func TestStopSuspension_ActiveHoldRoundTripRestoresEndDate(t *testing.T) {
	env := newTestEnv()
	svc := newSuspensionService(t, env)
	original := seedContract(env, nil)
	ctx := context.Background()

	today := dates.Today()
	end, _ := dates.AddDays(today, 9) // 10 days inclusive

	scheduled, err := svc.ScheduleSuspension(ctx, ScheduleSuspensionInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ContractID: "c1",
		StartDate: today, EndDate: end,
	})
	require.NoError(t, err)

	// Stop the same day: zero days consumed, everything comes back.
	result, err := svc.StopSuspension(ctx, StopSuspensionInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1",
		ContractID: "c1", SuspensionID: scheduled.Suspension.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, StopTypeActiveStopped, result.Type)
	assert.Equal(t, 0, result.ActuallyUsedDays)
	assert.Equal(t, 10, result.UnusedDays)
	require.NotNil(t, result.NewContractEndDate)
	assert.Equal(t, *original.EndDate, *result.NewContractEndDate)

	stored := env.contracts.get("c1")
	assert.Equal(t, models.ContractStatusActive, stored.Status)
	assert.Equal(t, *original.EndDate, *stored.EndDate)
	assert.Equal(t, 0, stored.TotalSuspendedDays)

	hold := env.suspensions.get(scheduled.Suspension.ID)
	assert.Equal(t, models.SuspensionStatusStopped, hold.Status)
	assert.Equal(t, 0, hold.DaysUsed)
	assert.Equal(t, 10, hold.UnusedDays)
}

func TestStopSuspension_PartiallyUsedHold(t *testing.T) {
	env := newTestEnv()
	svc := newSuspensionService(t, env)

	// Hold started 3 days ago for 10 days, contract end already extended.
	start, _ := dates.AddDays(dates.Today(), -3)
	holdEnd, _ := dates.AddDays(start, 9)
	contractEnd, _ := dates.AddDays(dates.Today(), 100)
	seedContract(env, func(c *models.Contract) {
		c.Status = models.ContractStatusSuspended
		c.EndDate = &contractEnd
		c.TotalSuspendedDays = 10
	})
	env.suspensions.put(models.Suspension{
		ID: "s1", ContractID: "c1", TenantID: "t1", BranchID: "b1",
		StartDate: start, EndDate: holdEnd, DaysUsed: 10,
		Status: models.SuspensionStatusActive,
	})

	result, err := svc.StopSuspension(context.Background(), StopSuspensionInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ContractID: "c1", SuspensionID: "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.ActuallyUsedDays)
	assert.Equal(t, 7, result.UnusedDays)

	wantEnd, _ := dates.AddDays(contractEnd, -7)
	assert.Equal(t, wantEnd, *result.NewContractEndDate)

	stored := env.contracts.get("c1")
	assert.Equal(t, models.ContractStatusActive, stored.Status)
	assert.Equal(t, 3, stored.TotalSuspendedDays)

	hold := env.suspensions.get("s1")
	lastHeld, _ := dates.AddDays(dates.Today(), -1)
	assert.Equal(t, lastHeld, hold.EndDate)
	assert.Equal(t, 3, hold.DaysUsed)
}

func TestStopSuspension_ExhaustedHold(t *testing.T) {
	env := newTestEnv()
	svc := newSuspensionService(t, env)

	start, _ := dates.AddDays(dates.Today(), -10)
	holdEnd, _ := dates.AddDays(start, 4)
	seedContract(env, func(c *models.Contract) {
		c.Status = models.ContractStatusSuspended
		c.TotalSuspendedDays = 5
	})
	env.suspensions.put(models.Suspension{
		ID: "s1", ContractID: "c1", TenantID: "t1", BranchID: "b1",
		StartDate: start, EndDate: holdEnd, DaysUsed: 5,
		Status: models.SuspensionStatusActive,
	})

	_, err := svc.StopSuspension(context.Background(), StopSuspensionInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ContractID: "c1", SuspensionID: "s1",
	})
	assert.ErrorIs(t, err, ErrFailedPrecondition)
}

func TestStopSuspension_TerminalHold(t *testing.T) {
	env := newTestEnv()
	svc := newSuspensionService(t, env)
	seedContract(env, nil)
	env.suspensions.put(models.Suspension{
		ID: "s1", ContractID: "c1", TenantID: "t1", BranchID: "b1",
		StartDate: "2026-01-10", EndDate: "2026-01-12", DaysUsed: 3,
		Status: models.SuspensionStatusCompleted,
	})

	_, err := svc.StopSuspension(context.Background(), StopSuspensionInput{
		TenantID: "t1", BranchID: "b1", ActorID: "u1", ContractID: "c1", SuspensionID: "s1",
	})
	assert.ErrorIs(t, err, ErrFailedPrecondition)
}
