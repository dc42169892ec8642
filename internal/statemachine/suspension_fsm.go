package statemachine

import (
	"context"
	"fmt"

	"github.com/fitcore/membership-api/internal/models"
	"github.com/looplab/fsm"
)

// SuspensionFSM wraps a suspension with its state machine. A suspension
// is never re-opened once it reaches stopped, cancelled or completed.
type SuspensionFSM struct {
	suspension *models.Suspension
	fsm        *fsm.FSM
}

// NewSuspensionFSM creates a new suspension state machine
func NewSuspensionFSM(suspension *models.Suspension) *SuspensionFSM {
	sfsm := &SuspensionFSM{
		suspension: suspension,
	}

	sfsm.fsm = fsm.NewFSM(
		suspension.Status,
		fsm.Events{
			// scheduled → active (start date arrived)
			{Name: "activate", Src: []string{models.SuspensionStatusScheduled}, Dst: models.SuspensionStatusActive},

			// active → stopped (stopped early by a user)
			{Name: "stop", Src: []string{models.SuspensionStatusActive}, Dst: models.SuspensionStatusStopped},

			// scheduled → cancelled (revoked before it ever started)
			{Name: "cancel", Src: []string{models.SuspensionStatusScheduled}, Dst: models.SuspensionStatusCancelled},

			// active → completed (ran its full window)
			{Name: "complete", Src: []string{models.SuspensionStatusActive}, Dst: models.SuspensionStatusCompleted},
		},
		fsm.Callbacks{},
	)

	return sfsm
}

// Activate transitions the suspension to active state
func (s *SuspensionFSM) Activate(ctx context.Context) error {
	if !s.suspension.MayActivate() {
		return fmt.Errorf("suspension cannot be activated in current state: %s", s.suspension.Status)
	}

	if err := s.fsm.Event(ctx, "activate"); err != nil {
		return fmt.Errorf("failed to activate suspension: %w", err)
	}

	s.suspension.Status = s.fsm.Current()
	return nil
}

// Stop transitions an active suspension to stopped state
func (s *SuspensionFSM) Stop(ctx context.Context) error {
	if s.suspension.Status != models.SuspensionStatusActive {
		return fmt.Errorf("suspension cannot be stopped in current state: %s", s.suspension.Status)
	}

	if err := s.fsm.Event(ctx, "stop"); err != nil {
		return fmt.Errorf("failed to stop suspension: %w", err)
	}

	s.suspension.Status = s.fsm.Current()
	return nil
}

// Cancel revokes a scheduled suspension before it starts
func (s *SuspensionFSM) Cancel(ctx context.Context) error {
	if s.suspension.Status != models.SuspensionStatusScheduled {
		return fmt.Errorf("suspension cannot be cancelled in current state: %s", s.suspension.Status)
	}

	if err := s.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("failed to cancel suspension: %w", err)
	}

	s.suspension.Status = s.fsm.Current()
	return nil
}

// Complete marks an active suspension as naturally finished
func (s *SuspensionFSM) Complete(ctx context.Context) error {
	if !s.suspension.MayComplete() {
		return fmt.Errorf("suspension cannot be completed in current state: %s", s.suspension.Status)
	}

	if err := s.fsm.Event(ctx, "complete"); err != nil {
		return fmt.Errorf("failed to complete suspension: %w", err)
	}

	s.suspension.Status = s.fsm.Current()
	return nil
}

// Current returns the current state
func (s *SuspensionFSM) Current() string {
	return s.fsm.Current()
}
