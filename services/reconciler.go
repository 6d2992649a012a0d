package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"raffle-system/internal/store"
	"raffle-system/models"
	"raffle-system/monitoring"
)

// RemoteSyncReconciler merges full remote snapshots with locally-held
// optimistic writes and replaces the working set wholesale. One pass runs
// at a time; overlapping triggers queue behind the mutex instead of
// spawning concurrent passes.
type RemoteSyncReconciler struct {
	store   store.RemoteStore
	guard   *DuplicationGuard
	set     *WorkingSet
	mirror  *PendingMirror
	monitor *monitoring.Monitor

	mu sync.Mutex

	stateMu  sync.RWMutex
	lastSync time.Time
	lastErr  error
}

func NewRemoteSyncReconciler(remoteStore store.RemoteStore, guard *DuplicationGuard, set *WorkingSet, mirror *PendingMirror, monitor *monitoring.Monitor) *RemoteSyncReconciler {
	return &RemoteSyncReconciler{
		store:   remoteStore,
		guard:   guard,
		set:     set,
		mirror:  mirror,
		monitor: monitor,
	}
}

// Reconcile fetches the four collections, dedups against pending local
// writes, and swaps the result in as the new working set. On any fetch
// failure the previous working set stays untouched; the next trigger
// retries.
func (r *RemoteSyncReconciler) Reconcile(ctx context.Context, trigger string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	started := time.Now()

	remoteSales, err := r.store.ListSales(ctx)
	if err != nil {
		return r.fail(trigger, fmt.Errorf("reconcile sales: %w", err))
	}
	remoteReservations, err := r.store.ListReservations(ctx)
	if err != nil {
		return r.fail(trigger, fmt.Errorf("reconcile reservations: %w", err))
	}
	remoteAssignments, err := r.store.ListAssignments(ctx)
	if err != nil {
		return r.fail(trigger, fmt.Errorf("reconcile assignments: %w", err))
	}
	remoteOwners, err := r.store.ListNumberOwners(ctx)
	if err != nil {
		return r.fail(trigger, fmt.Errorf("reconcile number owners: %w", err))
	}

	pendingSales := r.set.PendingSales()
	pendingReservations := r.set.PendingReservations()

	mergedSales := r.guard.MergeSales(pendingSales, remoteSales)
	mergedReservations := r.guard.MergeReservations(pendingReservations, remoteReservations)

	// Assignments and owners have no local optimistic path; the remote
	// snapshot is taken as-is.
	r.set.Replace(mergedSales, mergedReservations, remoteAssignments, remoteOwners)

	r.confirmMirrored(ctx, mergedSales, mergedReservations, pendingSales, pendingReservations)

	stillPending := 0
	for _, sale := range mergedSales {
		if sale.Pending {
			stillPending++
		}
	}
	for _, reservation := range mergedReservations {
		if reservation.Pending {
			stillPending++
		}
	}
	r.monitor.SetPendingWrites(stillPending)
	r.monitor.TrackReconcile(trigger, "success", time.Since(started))

	r.stateMu.Lock()
	r.lastSync = time.Now()
	r.lastErr = nil
	r.stateMu.Unlock()

	return nil
}

func (r *RemoteSyncReconciler) fail(trigger string, err error) error {
	log.Printf("Reconciliation failed (trigger %s), keeping previous working set: %v", trigger, err)
	r.monitor.TrackReconcile(trigger, "failure", 0)

	r.stateMu.Lock()
	r.lastErr = err
	r.stateMu.Unlock()

	return err
}

// confirmMirrored clears the Redis mirror for optimistic entries whose
// remote echo arrived in this snapshot.
func (r *RemoteSyncReconciler) confirmMirrored(ctx context.Context, mergedSales []models.Sale, mergedReservations []models.Reservation, pendingSales []models.Sale, pendingReservations []models.Reservation) {
	if r.mirror == nil {
		return
	}

	stillPendingSales := make(map[string]bool)
	for _, sale := range mergedSales {
		if sale.Pending && sale.LocalID != "" {
			stillPendingSales[sale.LocalID] = true
		}
	}
	stillPendingReservations := make(map[string]bool)
	for _, reservation := range mergedReservations {
		if reservation.Pending && reservation.LocalID != "" {
			stillPendingReservations[reservation.LocalID] = true
		}
	}

	var confirmedSales, confirmedReservations []string
	for _, sale := range pendingSales {
		if sale.LocalID != "" && !stillPendingSales[sale.LocalID] {
			confirmedSales = append(confirmedSales, sale.LocalID)
		}
	}
	for _, reservation := range pendingReservations {
		if reservation.LocalID != "" && !stillPendingReservations[reservation.LocalID] {
			confirmedReservations = append(confirmedReservations, reservation.LocalID)
		}
	}

	r.mirror.Confirm(ctx, confirmedSales, confirmedReservations)
}

// LastSync reports when the working set last matched a remote snapshot.
func (r *RemoteSyncReconciler) LastSync() (time.Time, error) {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.lastSync, r.lastErr
}
