package statemachine

import (
	"context"
	"fmt"

	"github.com/fitcore/membership-api/internal/models"
	"github.com/looplab/fsm"
)

// ContractFSM wraps a contract with its state machine
type ContractFSM struct {
	contract *models.Contract
	fsm      *fsm.FSM
}

// NewContractFSM creates a new contract state machine
func NewContractFSM(contract *models.Contract) *ContractFSM {
	cfsm := &ContractFSM{
		contract: contract,
	}

	activeLike := []string{
		models.ContractStatusActive,
		models.ContractStatusPendingSetup,
		models.ContractStatusExpiring,
	}

	cfsm.fsm = fsm.NewFSM(
		contract.Status,
		fsm.Events{
			// active-like → suspended
			{Name: "suspend", Src: activeLike, Dst: models.ContractStatusSuspended},

			// suspended → active
			{Name: "resume", Src: []string{models.ContractStatusSuspended}, Dst: models.ContractStatusActive},

			// active-like/suspended → scheduled_cancellation
			{Name: "schedule_cancellation", Src: append(append([]string{}, activeLike...), models.ContractStatusSuspended), Dst: models.ContractStatusScheduledCancellation},

			// anything not yet canceled → canceled
			{Name: "cancel", Src: append(append([]string{}, activeLike...), models.ContractStatusSuspended, models.ContractStatusScheduledCancellation), Dst: models.ContractStatusCanceled},
		},
		fsm.Callbacks{},
	)

	return cfsm
}

// Suspend transitions the contract to suspended state
func (c *ContractFSM) Suspend(ctx context.Context) error {
	if !c.contract.MaySuspend() {
		return fmt.Errorf("contract cannot be suspended in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "suspend"); err != nil {
		return fmt.Errorf("failed to suspend contract: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// Resume transitions the contract back to active state
func (c *ContractFSM) Resume(ctx context.Context) error {
	if !c.contract.MayResume() {
		return fmt.Errorf("contract cannot be resumed in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "resume"); err != nil {
		return fmt.Errorf("failed to resume contract: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// ScheduleCancellation records a future cancellation
func (c *ContractFSM) ScheduleCancellation(ctx context.Context) error {
	if !c.contract.MayScheduleCancellation() {
		return fmt.Errorf("contract cancellation cannot be scheduled in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "schedule_cancellation"); err != nil {
		return fmt.Errorf("failed to schedule contract cancellation: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// Cancel transitions the contract to its terminal canceled state
func (c *ContractFSM) Cancel(ctx context.Context) error {
	if !c.contract.MayCancel() {
		return fmt.Errorf("contract cannot be cancelled in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("failed to cancel contract: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// Current returns the current state
func (c *ContractFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if a transition is possible
func (c *ContractFSM) Can(event string) bool {
	return c.fsm.Can(event)
}
