package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"raffle-system/internal/status"
	"raffle-system/models"
)

// FallbackStore delegates to the primary store and, the first time a
// collection turns out to be missing, degrades that one collection to an
// in-memory store. The other collections keep using the primary. Data
// written while degraded lives only in process memory.
type FallbackStore struct {
	primary RemoteStore
	memory  *MemoryStore

	mu       sync.Mutex
	degraded map[string]bool
}

func NewFallbackStore(primary RemoteStore) *FallbackStore {
	return &FallbackStore{
		primary:  primary,
		memory:   NewMemoryStore(),
		degraded: make(map[string]bool),
	}
}

func (s *FallbackStore) isDegraded(collection string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded[collection]
}

// degrade flips one collection to memory. Returns true on the first flip.
func (s *FallbackStore) degrade(collection string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.degraded[collection] {
		return false
	}
	s.degraded[collection] = true
	return true
}

func (s *FallbackStore) checkSchema(collection string, err error) bool {
	if !errors.Is(err, status.ErrSchemaMissing) {
		return false
	}
	if s.degrade(collection) {
		log.Printf("Collection %q missing in remote store, degrading to local memory", collection)
	}
	return true
}

// DegradedCollections lists collections currently served from memory.
func (s *FallbackStore) DegradedCollections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.degraded))
	for name := range s.degraded {
		out = append(out, name)
	}
	return out
}

func (s *FallbackStore) ListSales(ctx context.Context) ([]models.Sale, error) {
	if s.isDegraded(CollectionSales) {
		return s.memory.ListSales(ctx)
	}
	sales, err := s.primary.ListSales(ctx)
	if err != nil && s.checkSchema(CollectionSales, err) {
		return s.memory.ListSales(ctx)
	}
	return sales, err
}

func (s *FallbackStore) CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if s.isDegraded(CollectionSales) {
		return s.memory.CreateSale(ctx, sale)
	}
	created, err := s.primary.CreateSale(ctx, sale)
	if err != nil && s.checkSchema(CollectionSales, err) {
		return s.memory.CreateSale(ctx, sale)
	}
	return created, err
}

func (s *FallbackStore) UpdateSaleStatus(ctx context.Context, id, saleStatus string) error {
	if s.isDegraded(CollectionSales) {
		return s.memory.UpdateSaleStatus(ctx, id, saleStatus)
	}
	err := s.primary.UpdateSaleStatus(ctx, id, saleStatus)
	if err != nil && s.checkSchema(CollectionSales, err) {
		return s.memory.UpdateSaleStatus(ctx, id, saleStatus)
	}
	return err
}

func (s *FallbackStore) DeleteSale(ctx context.Context, id string) error {
	if s.isDegraded(CollectionSales) {
		return s.memory.DeleteSale(ctx, id)
	}
	err := s.primary.DeleteSale(ctx, id)
	if err != nil && s.checkSchema(CollectionSales, err) {
		return s.memory.DeleteSale(ctx, id)
	}
	return err
}

func (s *FallbackStore) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	if s.isDegraded(CollectionReservations) {
		return s.memory.ListReservations(ctx)
	}
	reservations, err := s.primary.ListReservations(ctx)
	if err != nil && s.checkSchema(CollectionReservations, err) {
		return s.memory.ListReservations(ctx)
	}
	return reservations, err
}

func (s *FallbackStore) CreateReservation(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	if s.isDegraded(CollectionReservations) {
		return s.memory.CreateReservation(ctx, reservation)
	}
	created, err := s.primary.CreateReservation(ctx, reservation)
	if err != nil && s.checkSchema(CollectionReservations, err) {
		return s.memory.CreateReservation(ctx, reservation)
	}
	return created, err
}

func (s *FallbackStore) UpdateReservationStatus(ctx context.Context, id, reservationStatus string) error {
	if s.isDegraded(CollectionReservations) {
		return s.memory.UpdateReservationStatus(ctx, id, reservationStatus)
	}
	err := s.primary.UpdateReservationStatus(ctx, id, reservationStatus)
	if err != nil && s.checkSchema(CollectionReservations, err) {
		return s.memory.UpdateReservationStatus(ctx, id, reservationStatus)
	}
	return err
}

func (s *FallbackStore) ExtendReservation(ctx context.Context, id string, until time.Time) error {
	if s.isDegraded(CollectionReservations) {
		return s.memory.ExtendReservation(ctx, id, until)
	}
	err := s.primary.ExtendReservation(ctx, id, until)
	if err != nil && s.checkSchema(CollectionReservations, err) {
		return s.memory.ExtendReservation(ctx, id, until)
	}
	return err
}

func (s *FallbackStore) ListAssignments(ctx context.Context) ([]models.Assignment, error) {
	if s.isDegraded(CollectionAssignments) {
		return s.memory.ListAssignments(ctx)
	}
	assignments, err := s.primary.ListAssignments(ctx)
	if err != nil && s.checkSchema(CollectionAssignments, err) {
		return s.memory.ListAssignments(ctx)
	}
	return assignments, err
}

func (s *FallbackStore) CreateAssignment(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error) {
	if s.isDegraded(CollectionAssignments) {
		return s.memory.CreateAssignment(ctx, assignment)
	}
	created, err := s.primary.CreateAssignment(ctx, assignment)
	if err != nil && s.checkSchema(CollectionAssignments, err) {
		return s.memory.CreateAssignment(ctx, assignment)
	}
	return created, err
}

func (s *FallbackStore) UpdateAssignmentStatus(ctx context.Context, id, assignmentStatus string) error {
	if s.isDegraded(CollectionAssignments) {
		return s.memory.UpdateAssignmentStatus(ctx, id, assignmentStatus)
	}
	err := s.primary.UpdateAssignmentStatus(ctx, id, assignmentStatus)
	if err != nil && s.checkSchema(CollectionAssignments, err) {
		return s.memory.UpdateAssignmentStatus(ctx, id, assignmentStatus)
	}
	return err
}

func (s *FallbackStore) ListNumberOwners(ctx context.Context) ([]models.NumberOwner, error) {
	if s.isDegraded(CollectionNumberOwners) {
		return s.memory.ListNumberOwners(ctx)
	}
	owners, err := s.primary.ListNumberOwners(ctx)
	if err != nil && s.checkSchema(CollectionNumberOwners, err) {
		return s.memory.ListNumberOwners(ctx)
	}
	return owners, err
}

func (s *FallbackStore) UpsertNumberOwner(ctx context.Context, owner *models.NumberOwner) (*models.NumberOwner, error) {
	if s.isDegraded(CollectionNumberOwners) {
		return s.memory.UpsertNumberOwner(ctx, owner)
	}
	saved, err := s.primary.UpsertNumberOwner(ctx, owner)
	if err != nil && s.checkSchema(CollectionNumberOwners, err) {
		return s.memory.UpsertNumberOwner(ctx, owner)
	}
	return saved, err
}

func (s *FallbackStore) GetRaffleConfig(ctx context.Context) (*models.RaffleConfig, error) {
	if s.isDegraded(CollectionRaffles) {
		return s.memory.GetRaffleConfig(ctx)
	}
	cfg, err := s.primary.GetRaffleConfig(ctx)
	if err != nil && s.checkSchema(CollectionRaffles, err) {
		return s.memory.GetRaffleConfig(ctx)
	}
	return cfg, err
}

func (s *FallbackStore) SaveRaffleConfig(ctx context.Context, cfg *models.RaffleConfig) error {
	if s.isDegraded(CollectionRaffles) {
		return s.memory.SaveRaffleConfig(ctx, cfg)
	}
	err := s.primary.SaveRaffleConfig(ctx, cfg)
	if err != nil && s.checkSchema(CollectionRaffles, err) {
		return s.memory.SaveRaffleConfig(ctx, cfg)
	}
	return err
}
