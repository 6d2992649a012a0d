package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"raffle-system/models"
)

func TestComputeStates_BasicClaims(t *testing.T) {
	now := time.Now()

	sales := []models.Sale{
		{ID: "s1", Numbers: []int{1, 2}, Status: models.SaleStatusPaid},
	}
	reservations := []models.Reservation{
		{ID: "r1", Numbers: []int{3}, Status: models.ReservationStatusActive, ExpiresAt: now.Add(time.Hour)},
	}
	assignments := []models.Assignment{
		{ID: "a1", Numbers: []int{4}, Status: models.AssignmentStatusAssigned, PaymentDeadline: now.Add(24 * time.Hour)},
	}
	selections := map[int]string{5: "session-1"}

	states := ComputeStates(sales, reservations, assignments, selections, now)

	assert.Equal(t, models.TicketSold, StateOf(states, 1))
	assert.Equal(t, models.TicketSold, StateOf(states, 2))
	assert.Equal(t, models.TicketReserved, StateOf(states, 3))
	assert.Equal(t, models.TicketAssigned, StateOf(states, 4))
	assert.Equal(t, models.TicketSelected, StateOf(states, 5))
	assert.Equal(t, models.TicketAvailable, StateOf(states, 6))
}

func TestComputeStates_SoldWinsOverEverything(t *testing.T) {
	now := time.Now()

	sales := []models.Sale{
		{ID: "s1", Numbers: []int{7}, Status: models.SaleStatusPending},
	}
	reservations := []models.Reservation{
		{ID: "r1", Numbers: []int{7}, Status: models.ReservationStatusActive, ExpiresAt: now.Add(time.Hour)},
	}
	assignments := []models.Assignment{
		{ID: "a1", Numbers: []int{7}, Status: models.AssignmentStatusAssigned, PaymentDeadline: now.Add(time.Hour)},
	}
	selections := map[int]string{7: "session-1"}

	states := ComputeStates(sales, reservations, assignments, selections, now)

	assert.Equal(t, models.TicketSold, StateOf(states, 7))
}

func TestComputeStates_ExpiredReservationReadsAvailable(t *testing.T) {
	now := time.Now()

	// Persisted status still says active, deadline already passed. The sweep
	// has not caught up but derivation must not show the hold.
	reservations := []models.Reservation{
		{ID: "r1", Numbers: []int{10, 11}, Status: models.ReservationStatusActive, ExpiresAt: now.Add(-time.Minute)},
	}

	states := ComputeStates(nil, reservations, nil, nil, now)

	assert.Equal(t, models.TicketAvailable, StateOf(states, 10))
	assert.Equal(t, models.TicketAvailable, StateOf(states, 11))
}

func TestComputeStates_ReservationExpiryIsEvaluatedAgainstGivenInstant(t *testing.T) {
	expiry := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	reservations := []models.Reservation{
		{ID: "r1", Numbers: []int{1}, Status: models.ReservationStatusActive, ExpiresAt: expiry},
	}

	before := ComputeStates(nil, reservations, nil, nil, expiry.Add(-time.Second))
	after := ComputeStates(nil, reservations, nil, nil, expiry.Add(time.Second))

	assert.Equal(t, models.TicketReserved, StateOf(before, 1))
	assert.Equal(t, models.TicketAvailable, StateOf(after, 1))
}

func TestComputeStates_PaidAssignmentIsConfirmed(t *testing.T) {
	now := time.Now()

	assignments := []models.Assignment{
		// Deadline in the past does not matter once the assignment is paid.
		{ID: "a1", Numbers: []int{20, 21}, Status: models.AssignmentStatusPaid, PaymentDeadline: now.Add(-time.Hour)},
	}

	states := ComputeStates(nil, nil, assignments, nil, now)

	assert.Equal(t, models.TicketConfirmed, StateOf(states, 20))
	assert.True(t, StateOf(states, 20).Taken())
	assert.Equal(t, models.TicketConfirmed, StateOf(states, 21))
}

func TestComputeStates_LapsedAssignmentReleasesNumbers(t *testing.T) {
	now := time.Now()

	assignments := []models.Assignment{
		{ID: "a1", Numbers: []int{30}, Status: models.AssignmentStatusAssigned, PaymentDeadline: now.Add(-time.Minute)},
	}

	states := ComputeStates(nil, nil, assignments, nil, now)

	assert.Equal(t, models.TicketAvailable, StateOf(states, 30))
}

func TestComputeStates_CancelledAndExpiredRecordsHoldNothing(t *testing.T) {
	now := time.Now()

	reservations := []models.Reservation{
		{ID: "r1", Numbers: []int{1}, Status: models.ReservationStatusCancelled, ExpiresAt: now.Add(time.Hour)},
		{ID: "r2", Numbers: []int{2}, Status: models.ReservationStatusExpired, ExpiresAt: now.Add(time.Hour)},
	}
	assignments := []models.Assignment{
		{ID: "a1", Numbers: []int{3}, Status: models.AssignmentStatusCancelled, PaymentDeadline: now.Add(time.Hour)},
		{ID: "a2", Numbers: []int{4}, Status: models.AssignmentStatusExpired, PaymentDeadline: now.Add(time.Hour)},
	}

	states := ComputeStates(nil, reservations, assignments, nil, now)

	for n := 1; n <= 4; n++ {
		assert.Equal(t, models.TicketAvailable, StateOf(states, n), "number %d", n)
	}
}

func TestComputeStates_ReservedBeatsSelected(t *testing.T) {
	now := time.Now()

	reservations := []models.Reservation{
		{ID: "r1", Numbers: []int{8}, Status: models.ReservationStatusActive, ExpiresAt: now.Add(time.Hour)},
	}
	selections := map[int]string{8: "session-1"}

	states := ComputeStates(nil, reservations, nil, selections, now)

	assert.Equal(t, models.TicketReserved, StateOf(states, 8))
}

func TestCountByState(t *testing.T) {
	now := time.Now()

	sales := []models.Sale{
		{ID: "s1", Numbers: []int{1, 2, 3}, Total: decimal.NewFromInt(30)},
	}
	reservations := []models.Reservation{
		{ID: "r1", Numbers: []int{4}, Status: models.ReservationStatusActive, ExpiresAt: now.Add(time.Hour)},
	}

	states := ComputeStates(sales, reservations, nil, nil, now)
	counts := CountByState(states, 10)

	assert.Equal(t, 3, counts[models.TicketSold])
	assert.Equal(t, 1, counts[models.TicketReserved])
	assert.Equal(t, 6, counts[models.TicketAvailable])
	assert.Equal(t, 0, counts[models.TicketAssigned])
}

func TestComputeStates_Deterministic(t *testing.T) {
	now := time.Now()

	sales := []models.Sale{
		{ID: "s1", Numbers: []int{1, 5, 9}},
		{ID: "s2", Numbers: []int{2}},
	}
	reservations := []models.Reservation{
		{ID: "r1", Numbers: []int{3, 4}, Status: models.ReservationStatusActive, ExpiresAt: now.Add(time.Hour)},
	}

	first := ComputeStates(sales, reservations, nil, nil, now)
	second := ComputeStates(sales, reservations, nil, nil, now)

	assert.Equal(t, first, second)
}
