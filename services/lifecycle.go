package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"raffle-system/config"
	"raffle-system/internal/status"
	"raffle-system/internal/store"
	"raffle-system/models"
	"raffle-system/monitoring"
	"raffle-system/utils"
)

// ReservationLifecycleManager owns reservation and assignment deadlines:
// the periodic expiry sweep plus the admin transitions (confirm, cancel,
// extend). The sweep marks lapsed records expired remotely and locally; a
// failed remote update still flips the local mirror so availability shows
// immediately, and lazy expiry in state derivation covers the window until
// the remote store catches up.
type ReservationLifecycleManager struct {
	store     store.RemoteStore
	set       *WorkingSet
	validator *ConflictValidator
	mirror    *PendingMirror
	monitor   *monitoring.Monitor
	config    *config.Config
	onChange  func()

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewReservationLifecycleManager(
	remoteStore store.RemoteStore,
	set *WorkingSet,
	validator *ConflictValidator,
	mirror *PendingMirror,
	monitor *monitoring.Monitor,
	cfg *config.Config,
	onChange func(),
) *ReservationLifecycleManager {
	return &ReservationLifecycleManager{
		store:     remoteStore,
		set:       set,
		validator: validator,
		mirror:    mirror,
		monitor:   monitor,
		config:    cfg,
		onChange:  onChange,
		stopChan:  make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (m *ReservationLifecycleManager) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.sweepLoop(ctx)
}

func (m *ReservationLifecycleManager) Stop() {
	close(m.stopChan)
	m.wg.Wait()
}

func (m *ReservationLifecycleManager) sweepLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.SweepInterval)
	defer ticker.Stop()

	log.Println("Reservation expiry sweep started")

	for {
		select {
		case <-ticker.C:
			m.Sweep(ctx)
		case <-m.stopChan:
			log.Println("Reservation expiry sweep stopping")
			return
		case <-ctx.Done():
			return
		}
	}
}

// Sweep expires every active reservation and open assignment whose deadline
// passed. Exported so the admin consistency check can force a pass.
func (m *ReservationLifecycleManager) Sweep(ctx context.Context) {
	now := time.Now()
	_, reservations, assignments, _ := m.set.Snapshot()

	expired := 0
	for _, reservation := range reservations {
		if !reservation.LapsedAt(now) {
			continue
		}
		if reservation.Pending {
			// Not yet visible remotely; the local mirror is all there is.
			m.set.SetReservationStatus(reservation.ID, models.ReservationStatusExpired)
			expired++
			continue
		}
		if err := m.store.UpdateReservationStatus(ctx, reservation.ID, models.ReservationStatusExpired); err != nil {
			log.Printf("Error expiring reservation %s remotely, local mirror updated anyway: %v", reservation.ID, err)
		}
		m.set.SetReservationStatus(reservation.ID, models.ReservationStatusExpired)
		m.monitor.TrackExpired("reservation")
		expired++
	}

	for _, assignment := range assignments {
		if !assignment.LapsedAt(now) {
			continue
		}
		if err := m.store.UpdateAssignmentStatus(ctx, assignment.ID, models.AssignmentStatusExpired); err != nil {
			log.Printf("Error expiring assignment %s remotely, local mirror updated anyway: %v", assignment.ID, err)
		}
		m.set.SetAssignmentStatus(assignment.ID, models.AssignmentStatusExpired)
		m.monitor.TrackExpired("assignment")
		expired++
	}

	if expired > 0 {
		log.Printf("Expiry sweep released %d lapsed claims", expired)
		if m.onChange != nil {
			m.onChange()
		}
	}
}

// Confirm turns an active reservation into a paid sale. The sale is written
// remotely first; only after the acknowledgment is the working set touched.
func (m *ReservationLifecycleManager) Confirm(ctx context.Context, id, paymentMethod string) (*models.Sale, error) {
	reservation, ok := m.set.FindReservation(id)
	if !ok {
		return nil, fmt.Errorf("reservation %s not found", id)
	}
	if !reservation.ActiveAt(time.Now()) {
		return nil, status.ErrReservationNotActive
	}
	if err := m.validator.ValidateConfirmReservation(ctx, reservation); err != nil {
		return nil, err
	}

	sale := &models.Sale{
		LocalID:       utils.GenerateLocalID(),
		Numbers:       reservation.Numbers,
		Buyer:         reservation.Buyer,
		PaymentMethod: paymentMethod,
		Total:         reservation.Total,
		Status:        models.SaleStatusPaid,
	}

	created, err := m.store.CreateSale(ctx, sale)
	if err != nil {
		return nil, fmt.Errorf("confirm reservation %s: %w", id, err)
	}
	created.Pending = true
	m.set.AppendSale(*created)
	if m.mirror != nil {
		m.mirror.RecordSale(ctx, *created)
	}

	if err := m.store.UpdateReservationStatus(ctx, id, models.ReservationStatusConfirmed); err != nil {
		log.Printf("Error marking reservation %s confirmed remotely, local mirror updated anyway: %v", id, err)
	}
	m.set.SetReservationStatus(id, models.ReservationStatusConfirmed)

	if m.onChange != nil {
		m.onChange()
	}
	return created, nil
}

// Cancel releases an active reservation's numbers.
func (m *ReservationLifecycleManager) Cancel(ctx context.Context, id string) error {
	reservation, ok := m.set.FindReservation(id)
	if !ok {
		return fmt.Errorf("reservation %s not found", id)
	}
	if reservation.Status != models.ReservationStatusActive {
		return status.ErrReservationNotActive
	}

	if err := m.store.UpdateReservationStatus(ctx, id, models.ReservationStatusCancelled); err != nil {
		log.Printf("Error cancelling reservation %s remotely, local mirror updated anyway: %v", id, err)
	}
	m.set.SetReservationStatus(id, models.ReservationStatusCancelled)

	if m.onChange != nil {
		m.onChange()
	}
	return nil
}

// Extend pushes an active reservation's deadline out. Only the persisted
// status gates this: an admin may rescue a reservation that lapsed on the
// wall clock but has not been swept yet.
func (m *ReservationLifecycleManager) Extend(ctx context.Context, id string, until time.Time) error {
	reservation, ok := m.set.FindReservation(id)
	if !ok {
		return fmt.Errorf("reservation %s not found", id)
	}
	if reservation.Status != models.ReservationStatusActive {
		return status.ErrReservationNotActive
	}
	if !until.After(reservation.ExpiresAt) && !until.After(time.Now()) {
		return fmt.Errorf("extension deadline %s is not in the future", until.Format(time.RFC3339))
	}

	if err := m.store.ExtendReservation(ctx, id, until); err != nil {
		return fmt.Errorf("extend reservation %s: %w", id, err)
	}
	m.set.SetReservationExpiry(id, until)

	if m.onChange != nil {
		m.onChange()
	}
	return nil
}
