package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"raffle-system/config"
	"raffle-system/internal/status"
	"raffle-system/internal/store"
	"raffle-system/models"
	"raffle-system/monitoring"
	"raffle-system/utils"

	pubnub "github.com/pubnub/go/v7"
	"github.com/redis/go-redis/v9"
)

// InventoryService is the engine facade: it owns the working set, wires the
// derivation, dedup, lifecycle, reconciliation and change feed components,
// and exposes the operations the UI layers call. All remote writes go
// through the circuit breaker; an open breaker surfaces as NotConnected.
type InventoryService struct {
	Store      store.RemoteStore
	Set        *WorkingSet
	Guard      *DuplicationGuard
	Validator  *ConflictValidator
	Reconciler *RemoteSyncReconciler
	Lifecycle  *ReservationLifecycleManager
	Feed       *ChangeFeedListener
	Selections *SelectionService
	Mirror     *PendingMirror

	monitor *monitoring.Monitor
	breaker *utils.CircuitBreaker
	config  *config.Config

	raffleMu sync.RWMutex
	raffle   *models.RaffleConfig
}

func NewInventoryService(remoteStore store.RemoteStore, redisClient *redis.Client, pn *pubnub.PubNub, cfg *config.Config, monitor *monitoring.Monitor) *InventoryService {
	set := NewWorkingSet()
	guard := NewDuplicationGuard()
	selections := NewSelectionService(redisClient, cfg.SelectionTTL)
	mirror := NewPendingMirror(redisClient)
	validator := NewConflictValidator(set, selections, monitor)
	reconciler := NewRemoteSyncReconciler(remoteStore, guard, set, mirror, monitor)
	feed := NewChangeFeedListener(pn, reconciler, monitor, cfg.DebounceInterval, cfg.PubNubUUID)
	lifecycle := NewReservationLifecycleManager(remoteStore, set, validator, mirror, monitor, cfg, feed.EmitStateChanged)

	return &InventoryService{
		Store:      remoteStore,
		Set:        set,
		Guard:      guard,
		Validator:  validator,
		Reconciler: reconciler,
		Lifecycle:  lifecycle,
		Feed:       feed,
		Selections: selections,
		Mirror:     mirror,
		monitor:    monitor,
		breaker:    utils.NewCircuitBreaker("remote-store"),
		config:     cfg,
	}
}

// Start restores mirrored pending writes, loads the raffle config, runs the
// initial reconciliation and launches the background loops.
func (s *InventoryService) Start(ctx context.Context) error {
	pendingSales, pendingReservations, err := s.Mirror.Restore(ctx)
	if err != nil {
		log.Printf("Error restoring pending writes, continuing without them: %v", err)
	}
	for _, sale := range pendingSales {
		s.Set.AppendSale(sale)
	}
	for _, reservation := range pendingReservations {
		s.Set.AppendReservation(reservation)
	}
	if n := len(pendingSales) + len(pendingReservations); n > 0 {
		log.Printf("Restored %d pending writes from mirror", n)
	}

	if err := s.loadRaffleConfig(ctx); err != nil {
		return err
	}

	if err := s.Reconciler.Reconcile(ctx, "initial"); err != nil {
		// Not fatal: the working set starts from the mirror and the next
		// change feed trigger retries.
		log.Printf("Initial reconciliation failed: %v", err)
	}

	s.Lifecycle.Start(ctx)
	s.Feed.Start(ctx)
	return nil
}

func (s *InventoryService) Stop() {
	s.Lifecycle.Stop()
	s.Feed.Stop()
}

func (s *InventoryService) loadRaffleConfig(ctx context.Context) error {
	cfg, err := s.Store.GetRaffleConfig(ctx)
	if errors.Is(err, status.ErrRaffleNotFound) {
		cfg = &models.RaffleConfig{
			ID:                     models.CurrentRaffleID,
			Name:                   "Raffle",
			TotalNumbers:           s.config.TotalNumbers,
			ReservationTTLHours:    int(s.config.ReservationTTL.Hours()),
			AssignmentDeadlineDays: s.config.AssignmentDeadlineDays,
		}
		if err := s.Store.SaveRaffleConfig(ctx, cfg); err != nil {
			return fmt.Errorf("seed raffle config: %w", err)
		}
		log.Printf("Seeded raffle config with %d numbers", cfg.TotalNumbers)
	} else if err != nil {
		return fmt.Errorf("load raffle config: %w", err)
	}

	s.raffleMu.Lock()
	s.raffle = cfg
	s.raffleMu.Unlock()
	return nil
}

// Raffle returns a copy of the active raffle configuration.
func (s *InventoryService) Raffle() models.RaffleConfig {
	s.raffleMu.RLock()
	defer s.raffleMu.RUnlock()
	return *s.raffle
}

func (s *InventoryService) UpdateRaffleConfig(ctx context.Context, cfg models.RaffleConfig) error {
	cfg.ID = models.CurrentRaffleID
	if cfg.TotalNumbers <= 0 {
		return fmt.Errorf("total_numbers must be positive")
	}
	if err := s.Store.SaveRaffleConfig(ctx, &cfg); err != nil {
		return err
	}
	s.raffleMu.Lock()
	s.raffle = &cfg
	s.raffleMu.Unlock()
	s.Feed.EmitStateChanged()
	return nil
}

// writeRemote funnels a remote write through the circuit breaker.
func (s *InventoryService) writeRemote(ctx context.Context, op func() (interface{}, error)) (interface{}, error) {
	result, err := s.breaker.Execute(ctx, op)
	if errors.Is(err, utils.ErrOpen) || errors.Is(err, utils.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", status.ErrNotConnected, err)
	}
	return result, err
}

// normalizeNumbers sorts, dedupes and bounds-checks a requested number set.
func (s *InventoryService) normalizeNumbers(numbers []int) ([]int, error) {
	if len(numbers) == 0 {
		return nil, fmt.Errorf("no numbers requested")
	}
	raffle := s.Raffle()

	seen := make(map[int]bool, len(numbers))
	normalized := make([]int, 0, len(numbers))
	for _, number := range numbers {
		if number < 1 || number > raffle.TotalNumbers {
			return nil, fmt.Errorf("number %d outside raffle range 1..%d", number, raffle.TotalNumbers)
		}
		if seen[number] {
			continue
		}
		seen[number] = true
		normalized = append(normalized, number)
	}
	sort.Ints(normalized)
	return normalized, nil
}

// --- derived state reads ---

func (s *InventoryService) TicketStates(ctx context.Context) (map[int]models.TicketState, error) {
	sales, reservations, assignments, _ := s.Set.Snapshot()
	selections, err := s.Selections.Selections(ctx)
	if err != nil {
		log.Printf("Error reading selections, deriving without them: %v", err)
		selections = nil
	}
	return ComputeStates(sales, reservations, assignments, selections, time.Now()), nil
}

func (s *InventoryService) GetTicketState(ctx context.Context, number int) (models.TicketState, error) {
	states, err := s.TicketStates(ctx)
	if err != nil {
		return models.TicketAvailable, err
	}
	return StateOf(states, number), nil
}

// Summary tallies the inventory per state and refreshes the gauges.
func (s *InventoryService) Summary(ctx context.Context) (map[models.TicketState]int, error) {
	states, err := s.TicketStates(ctx)
	if err != nil {
		return nil, err
	}
	counts := CountByState(states, s.Raffle().TotalNumbers)

	gauges := make(map[string]int, len(counts))
	for state, count := range counts {
		gauges[string(state)] = count
	}
	s.monitor.SetTicketStates(gauges)
	return counts, nil
}

func (s *InventoryService) ValidateNumbers(ctx context.Context, numbers []int, intent, sessionID string) error {
	normalized, err := s.normalizeNumbers(numbers)
	if err != nil {
		return err
	}
	return s.Validator.Validate(ctx, normalized, intent, sessionID)
}

// --- selection (client-local state) ---

func (s *InventoryService) SelectNumbers(ctx context.Context, sessionID string, numbers []int) error {
	normalized, err := s.normalizeNumbers(numbers)
	if err != nil {
		return err
	}
	// Selecting an already-claimed number is allowed to fail early.
	if err := s.Validator.Validate(ctx, normalized, "select", sessionID); err != nil {
		return err
	}
	return s.Selections.Select(ctx, sessionID, normalized)
}

func (s *InventoryService) ReleaseNumbers(ctx context.Context, sessionID string, numbers []int) error {
	normalized, err := s.normalizeNumbers(numbers)
	if err != nil {
		return err
	}
	return s.Selections.Release(ctx, sessionID, normalized)
}

// --- sales ---

// SubmitSale validates, writes the sale remotely and appends it to the
// working set only after the acknowledgment. No partial local mutation on
// failure.
func (s *InventoryService) SubmitSale(ctx context.Context, buyer models.Buyer, numbers []int, paymentMethod, sessionID string) (*models.Sale, error) {
	normalized, err := s.normalizeNumbers(numbers)
	if err != nil {
		return nil, err
	}
	if paymentMethod != models.PaymentCash && paymentMethod != models.PaymentTransfer {
		return nil, fmt.Errorf("unknown payment method %q", paymentMethod)
	}
	if err := s.Validator.Validate(ctx, normalized, IntentSell, sessionID); err != nil {
		return nil, err
	}

	raffle := s.Raffle()
	sale := &models.Sale{
		LocalID:       utils.GenerateLocalID(),
		Numbers:       normalized,
		Buyer:         buyer,
		PaymentMethod: paymentMethod,
		Total:         raffle.PriceFor(len(normalized)),
		Status:        models.SaleStatusPending,
	}

	result, err := s.writeRemote(ctx, func() (interface{}, error) {
		return s.Store.CreateSale(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	created := result.(*models.Sale)

	created.Pending = true
	s.Set.AppendSale(*created)
	s.Mirror.RecordSale(ctx, *created)
	if sessionID != "" {
		s.Selections.Release(ctx, sessionID, normalized)
	}
	s.Feed.Notify()
	s.Feed.EmitStateChanged()

	return created, nil
}

func (s *InventoryService) MarkSalePaid(ctx context.Context, id string) error {
	_, err := s.writeRemote(ctx, func() (interface{}, error) {
		return nil, s.Store.UpdateSaleStatus(ctx, id, models.SaleStatusPaid)
	})
	if err != nil {
		return err
	}
	s.Set.SetSaleStatus(id, models.SaleStatusPaid)
	s.Feed.EmitStateChanged()
	return nil
}

// DeleteSale is the manual admin path; sales are never auto-deleted.
func (s *InventoryService) DeleteSale(ctx context.Context, id string) error {
	_, err := s.writeRemote(ctx, func() (interface{}, error) {
		return nil, s.Store.DeleteSale(ctx, id)
	})
	if err != nil {
		return err
	}
	s.Feed.Notify()
	return nil
}

// --- reservations ---

func (s *InventoryService) SubmitReservation(ctx context.Context, buyer models.Buyer, numbers []int, sessionID string) (*models.Reservation, error) {
	normalized, err := s.normalizeNumbers(numbers)
	if err != nil {
		return nil, err
	}
	if err := s.Validator.Validate(ctx, normalized, IntentReserve, sessionID); err != nil {
		return nil, err
	}

	raffle := s.Raffle()
	reservation := &models.Reservation{
		LocalID:   utils.GenerateLocalID(),
		Numbers:   normalized,
		Buyer:     buyer,
		Total:     raffle.PriceFor(len(normalized)),
		Status:    models.ReservationStatusActive,
		ExpiresAt: time.Now().Add(raffle.ReservationTTL()),
	}

	result, err := s.writeRemote(ctx, func() (interface{}, error) {
		return s.Store.CreateReservation(ctx, reservation)
	})
	if err != nil {
		return nil, err
	}
	created := result.(*models.Reservation)

	created.Pending = true
	s.Set.AppendReservation(*created)
	s.Mirror.RecordReservation(ctx, *created)
	if sessionID != "" {
		s.Selections.Release(ctx, sessionID, normalized)
	}
	s.Feed.Notify()
	s.Feed.EmitStateChanged()

	return created, nil
}

func (s *InventoryService) ConfirmReservation(ctx context.Context, id, paymentMethod string) (*models.Sale, error) {
	if paymentMethod != models.PaymentCash && paymentMethod != models.PaymentTransfer {
		return nil, fmt.Errorf("unknown payment method %q", paymentMethod)
	}
	return s.Lifecycle.Confirm(ctx, id, paymentMethod)
}

func (s *InventoryService) CancelReservation(ctx context.Context, id string) error {
	return s.Lifecycle.Cancel(ctx, id)
}

func (s *InventoryService) ExtendReservation(ctx context.Context, id string, hours int) error {
	if hours <= 0 {
		return fmt.Errorf("extension hours must be positive")
	}
	return s.Lifecycle.Extend(ctx, id, time.Now().Add(time.Duration(hours)*time.Hour))
}

// --- assignments ---

func (s *InventoryService) CreateAssignment(ctx context.Context, seller models.Seller, numbers []int, notes string, deadlineDays int) (*models.Assignment, error) {
	normalized, err := s.normalizeNumbers(numbers)
	if err != nil {
		return nil, err
	}
	if err := s.Validator.Validate(ctx, normalized, IntentAssign, ""); err != nil {
		return nil, err
	}

	raffle := s.Raffle()
	if deadlineDays <= 0 {
		deadlineDays = raffle.AssignmentDeadlineDays
	}

	assignment := &models.Assignment{
		Seller:          seller,
		Numbers:         normalized,
		TotalAmount:     raffle.PriceFor(len(normalized)),
		Status:          models.AssignmentStatusAssigned,
		PaymentDeadline: time.Now().Add(time.Duration(deadlineDays) * 24 * time.Hour),
		Notes:           notes,
	}

	result, err := s.writeRemote(ctx, func() (interface{}, error) {
		return s.Store.CreateAssignment(ctx, assignment)
	})
	if err != nil {
		return nil, err
	}
	created := result.(*models.Assignment)

	// Assignments are remote-authoritative; the change feed pulls them in.
	s.Feed.Notify()
	return created, nil
}

func (s *InventoryService) MarkAssignmentPaid(ctx context.Context, id string) error {
	assignment, ok := s.Set.FindAssignment(id)
	if !ok {
		return fmt.Errorf("assignment %s not found", id)
	}
	if assignment.Status != models.AssignmentStatusAssigned {
		return status.ErrAssignmentNotOpen
	}
	if err := s.Validator.ValidateConfirmAssignment(ctx, assignment); err != nil {
		return err
	}

	_, err := s.writeRemote(ctx, func() (interface{}, error) {
		return nil, s.Store.UpdateAssignmentStatus(ctx, id, models.AssignmentStatusPaid)
	})
	if err != nil {
		return err
	}
	s.Set.SetAssignmentStatus(id, models.AssignmentStatusPaid)
	s.Feed.EmitStateChanged()
	return nil
}

func (s *InventoryService) CancelAssignment(ctx context.Context, id string) error {
	assignment, ok := s.Set.FindAssignment(id)
	if !ok {
		return fmt.Errorf("assignment %s not found", id)
	}
	if assignment.Status != models.AssignmentStatusAssigned {
		return status.ErrAssignmentNotOpen
	}

	_, err := s.writeRemote(ctx, func() (interface{}, error) {
		return nil, s.Store.UpdateAssignmentStatus(ctx, id, models.AssignmentStatusCancelled)
	})
	if err != nil {
		return err
	}
	s.Set.SetAssignmentStatus(id, models.AssignmentStatusCancelled)
	s.Feed.EmitStateChanged()
	return nil
}

// UpdateNumberOwner edits who holds one number of an assignment. Locked
// once the payment deadline passes.
func (s *InventoryService) UpdateNumberOwner(ctx context.Context, assignmentID string, number int, owner models.OwnerContact) (*models.NumberOwner, error) {
	assignment, ok := s.Set.FindAssignment(assignmentID)
	if !ok {
		return nil, fmt.Errorf("assignment %s not found", assignmentID)
	}
	if !assignment.PaymentDeadline.After(time.Now()) {
		return nil, status.ErrOwnerDeadlinePassed
	}

	held := false
	for _, n := range assignment.Numbers {
		if n == number {
			held = true
			break
		}
	}
	if !held {
		return nil, fmt.Errorf("number %d is not part of assignment %s", number, assignmentID)
	}

	record := &models.NumberOwner{
		AssignmentID: assignmentID,
		Number:       number,
		Owner:        owner,
	}
	result, err := s.writeRemote(ctx, func() (interface{}, error) {
		return s.Store.UpsertNumberOwner(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	saved := result.(*models.NumberOwner)
	s.Feed.Notify()
	return saved, nil
}

// --- admin ---

// VerifyConsistency forces a sweep plus a full reconciliation pass.
func (s *InventoryService) VerifyConsistency(ctx context.Context) error {
	s.Lifecycle.Sweep(ctx)
	if err := s.Reconciler.Reconcile(ctx, "manual"); err != nil {
		return err
	}
	s.Feed.EmitStateChanged()
	return nil
}

// DuplicateReport lists sales sharing an identity key, the manual cleanup
// path for the accepted double-write race.
func (s *InventoryService) DuplicateReport() map[string][]models.Sale {
	sales, _, _, _ := s.Set.Snapshot()
	return s.Guard.DuplicateSaleGroups(sales)
}

func (s *InventoryService) OnStateChanged(fn func()) int {
	return s.Feed.Subscribe(fn)
}

func (s *InventoryService) Unsubscribe(id int) {
	s.Feed.Unsubscribe(id)
}
