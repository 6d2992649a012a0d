package services

import (
	"time"

	"raffle-system/models"
)

// stateRank orders claims for defensive resolution when a number appears in
// more than one collection. Higher wins.
var stateRank = map[models.TicketState]int{
	models.TicketAvailable: 0,
	models.TicketSelected:  1,
	models.TicketReserved:  2,
	models.TicketAssigned:  3,
	models.TicketConfirmed: 4,
	models.TicketSold:      4,
}

// ComputeStates derives one state per ticket number from the working set
// collections plus the per-session selections. Pure and deterministic for a
// fixed "now": expiry of reservations and assignment deadlines is evaluated
// lazily against the given instant, so a reservation whose persisted status
// still says "active" reads as available once its deadline passed.
func ComputeStates(
	sales []models.Sale,
	reservations []models.Reservation,
	assignments []models.Assignment,
	selections map[int]string,
	now time.Time,
) map[int]models.TicketState {
	states := make(map[int]models.TicketState)

	claim := func(number int, state models.TicketState) {
		if stateRank[state] > stateRank[states[number]] {
			states[number] = state
		}
	}

	for _, sale := range sales {
		for _, number := range sale.Numbers {
			claim(number, models.TicketSold)
		}
	}

	for _, assignment := range assignments {
		switch {
		case assignment.Status == models.AssignmentStatusPaid:
			for _, number := range assignment.Numbers {
				claim(number, models.TicketConfirmed)
			}
		case assignment.Status == models.AssignmentStatusAssigned && assignment.PaymentDeadline.After(now):
			for _, number := range assignment.Numbers {
				claim(number, models.TicketAssigned)
			}
		}
	}

	for _, reservation := range reservations {
		if !reservation.ActiveAt(now) {
			continue
		}
		for _, number := range reservation.Numbers {
			claim(number, models.TicketReserved)
		}
	}

	for number := range selections {
		claim(number, models.TicketSelected)
	}

	return states
}

// StateOf looks up one number in a derived map, defaulting to available.
func StateOf(states map[int]models.TicketState, number int) models.TicketState {
	if state, ok := states[number]; ok {
		return state
	}
	return models.TicketAvailable
}

// CountByState tallies a derived map into per-state totals over the full
// inventory of totalNumbers tickets (numbered 1..totalNumbers).
func CountByState(states map[int]models.TicketState, totalNumbers int) map[models.TicketState]int {
	counts := map[models.TicketState]int{
		models.TicketAvailable: 0,
		models.TicketSelected:  0,
		models.TicketReserved:  0,
		models.TicketAssigned:  0,
		models.TicketSold:      0,
		models.TicketConfirmed: 0,
	}
	for number := 1; number <= totalNumbers; number++ {
		counts[StateOf(states, number)]++
	}
	return counts
}
