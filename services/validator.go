package services

import (
	"context"
	"log"
	"time"

	"raffle-system/internal/status"
	"raffle-system/models"
	"raffle-system/monitoring"
)

// Claim intents accepted by the validator.
const (
	IntentSell    = "sell"
	IntentReserve = "reserve"
	IntentAssign  = "assign"
	IntentConfirm = "confirm"
)

// ConflictValidator re-derives ticket states immediately before a remote
// write is attempted. It is a best-effort pre-write check, not a
// transactional guarantee: two sessions can still both pass within one
// network round-trip, and that overbooking is caught by the next
// reconciliation and resolved manually.
type ConflictValidator struct {
	set        *WorkingSet
	selections *SelectionService
	monitor    *monitoring.Monitor
}

func NewConflictValidator(set *WorkingSet, selections *SelectionService, monitor *monitoring.Monitor) *ConflictValidator {
	return &ConflictValidator{set: set, selections: selections, monitor: monitor}
}

func (v *ConflictValidator) currentSelections(ctx context.Context) map[int]string {
	if v.selections == nil {
		return nil
	}
	selections, err := v.selections.Selections(ctx)
	if err != nil {
		// A selection read failure must not block a sale; selections are
		// advisory holds, the remote store stays the arbiter.
		log.Printf("Error reading selections during validation: %v", err)
		return nil
	}
	return selections
}

// Validate checks that every requested number is free for a new claim.
// Numbers selected by the requesting session itself do not conflict.
func (v *ConflictValidator) Validate(ctx context.Context, numbers []int, intent, sessionID string) error {
	sales, reservations, assignments, _ := v.set.Snapshot()
	selections := v.currentSelections(ctx)
	states := ComputeStates(sales, reservations, assignments, selections, time.Now())

	var conflicting []int
	for _, number := range numbers {
		state := StateOf(states, number)
		if state == models.TicketAvailable {
			continue
		}
		if state == models.TicketSelected && selections[number] == sessionID {
			continue
		}
		conflicting = append(conflicting, number)
	}

	if len(conflicting) > 0 {
		v.monitor.TrackConflict(intent)
		return status.NewConflictError(intent, conflicting)
	}
	return nil
}

// ValidateConfirmReservation checks that a reservation's numbers are still
// held by that reservation and nothing else: a racing direct sale on any of
// them blocks the confirmation.
func (v *ConflictValidator) ValidateConfirmReservation(ctx context.Context, reservation models.Reservation) error {
	sales, reservations, assignments, _ := v.set.Snapshot()

	others := make([]models.Reservation, 0, len(reservations))
	for _, other := range reservations {
		if other.ID != reservation.ID {
			others = append(others, other)
		}
	}
	states := ComputeStates(sales, others, assignments, nil, time.Now())

	var conflicting []int
	for _, number := range reservation.Numbers {
		if StateOf(states, number) != models.TicketAvailable {
			conflicting = append(conflicting, number)
		}
	}

	if len(conflicting) > 0 {
		v.monitor.TrackConflict(IntentConfirm)
		return status.NewConflictError(IntentConfirm, conflicting)
	}
	return nil
}

// ValidateConfirmAssignment checks that none of an assignment's numbers were
// sold out from under it before marking it paid.
func (v *ConflictValidator) ValidateConfirmAssignment(ctx context.Context, assignment models.Assignment) error {
	sales, reservations, assignments, _ := v.set.Snapshot()

	others := make([]models.Assignment, 0, len(assignments))
	for _, other := range assignments {
		if other.ID != assignment.ID {
			others = append(others, other)
		}
	}
	states := ComputeStates(sales, reservations, others, nil, time.Now())

	var conflicting []int
	for _, number := range assignment.Numbers {
		if StateOf(states, number).Taken() {
			conflicting = append(conflicting, number)
		}
	}

	if len(conflicting) > 0 {
		v.monitor.TrackConflict(IntentConfirm)
		return status.NewConflictError(IntentConfirm, conflicting)
	}
	return nil
}
