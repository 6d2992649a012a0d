package services

import (
	"sync"
	"time"

	"raffle-system/models"
)

// WorkingSet holds the in-memory collections the engine currently treats as
// authoritative. Only the reconciler (wholesale Replace) and the optimistic
// submit path (single Append) mutate it; everything else reads copies.
type WorkingSet struct {
	mu           sync.RWMutex
	sales        []models.Sale
	reservations []models.Reservation
	assignments  []models.Assignment
	owners       []models.NumberOwner
}

func NewWorkingSet() *WorkingSet {
	return &WorkingSet{}
}

// Snapshot returns copies of all four collections.
func (w *WorkingSet) Snapshot() ([]models.Sale, []models.Reservation, []models.Assignment, []models.NumberOwner) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	sales := make([]models.Sale, len(w.sales))
	copy(sales, w.sales)
	reservations := make([]models.Reservation, len(w.reservations))
	copy(reservations, w.reservations)
	assignments := make([]models.Assignment, len(w.assignments))
	copy(assignments, w.assignments)
	owners := make([]models.NumberOwner, len(w.owners))
	copy(owners, w.owners)

	return sales, reservations, assignments, owners
}

// Replace swaps the entire working set. Used by the reconciler only.
func (w *WorkingSet) Replace(sales []models.Sale, reservations []models.Reservation, assignments []models.Assignment, owners []models.NumberOwner) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sales = sales
	w.reservations = reservations
	w.assignments = assignments
	w.owners = owners
}

func (w *WorkingSet) AppendSale(sale models.Sale) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sales = append(w.sales, sale)
}

func (w *WorkingSet) AppendReservation(reservation models.Reservation) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reservations = append(w.reservations, reservation)
}

// PendingSales returns local optimistic sales not yet seen remotely.
func (w *WorkingSet) PendingSales() []models.Sale {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var pending []models.Sale
	for _, sale := range w.sales {
		if sale.Pending {
			pending = append(pending, sale)
		}
	}
	return pending
}

func (w *WorkingSet) PendingReservations() []models.Reservation {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var pending []models.Reservation
	for _, reservation := range w.reservations {
		if reservation.Pending {
			pending = append(pending, reservation)
		}
	}
	return pending
}

func (w *WorkingSet) FindReservation(id string) (models.Reservation, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, reservation := range w.reservations {
		if reservation.ID == id {
			return reservation, true
		}
	}
	return models.Reservation{}, false
}

func (w *WorkingSet) FindAssignment(id string) (models.Assignment, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, assignment := range w.assignments {
		if assignment.ID == id {
			return assignment, true
		}
	}
	return models.Assignment{}, false
}

// SetReservationStatus updates the local mirror of one reservation. The
// remote record is updated separately; this keeps the UI consistent even
// when that remote write fails.
func (w *WorkingSet) SetReservationStatus(id, reservationStatus string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.reservations {
		if w.reservations[i].ID == id {
			w.reservations[i].Status = reservationStatus
			return
		}
	}
}

func (w *WorkingSet) SetReservationExpiry(id string, until time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.reservations {
		if w.reservations[i].ID == id {
			w.reservations[i].ExpiresAt = until
			return
		}
	}
}

func (w *WorkingSet) SetSaleStatus(id, saleStatus string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.sales {
		if w.sales[i].ID == id {
			w.sales[i].Status = saleStatus
			return
		}
	}
}

func (w *WorkingSet) SetAssignmentStatus(id, assignmentStatus string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.assignments {
		if w.assignments[i].ID == id {
			w.assignments[i].Status = assignmentStatus
			return
		}
	}
}

// Counts reports collection sizes; used by monitoring and the admin summary.
func (w *WorkingSet) Counts() (sales, reservations, assignments, owners int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.sales), len(w.reservations), len(w.assignments), len(w.owners)
}
