package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"raffle-system/internal/status"
	"raffle-system/models"
)

// MemoryStore is an in-process RemoteStore. It backs the degraded
// "local memory only" mode when a remote collection is missing, and tests.
type MemoryStore struct {
	mu           sync.RWMutex
	seq          int
	sales        []models.Sale
	reservations []models.Reservation
	assignments  []models.Assignment
	owners       []models.NumberOwner
	raffle       *models.RaffleConfig
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s_%06d", prefix, s.seq)
}

func (s *MemoryStore) ListSales(ctx context.Context) ([]models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Sale, len(s.sales))
	copy(out, s.sales)
	return out, nil
}

func (s *MemoryStore) CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *sale
	created.ID = s.nextID("sale")
	created.CreatedAt = time.Now()
	created.Pending = false
	s.sales = append(s.sales, created)
	return &created, nil
}

func (s *MemoryStore) UpdateSaleStatus(ctx context.Context, id, saleStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sales {
		if s.sales[i].ID == id {
			s.sales[i].Status = saleStatus
			return nil
		}
	}
	return fmt.Errorf("sale %s not found", id)
}

func (s *MemoryStore) DeleteSale(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sales {
		if s.sales[i].ID == id {
			s.sales = append(s.sales[:i], s.sales[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("sale %s not found", id)
}

func (s *MemoryStore) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Reservation, len(s.reservations))
	copy(out, s.reservations)
	return out, nil
}

func (s *MemoryStore) CreateReservation(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *reservation
	created.ID = s.nextID("reservation")
	created.CreatedAt = time.Now()
	created.Pending = false
	s.reservations = append(s.reservations, created)
	return &created, nil
}

func (s *MemoryStore) UpdateReservationStatus(ctx context.Context, id, reservationStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reservations {
		if s.reservations[i].ID == id {
			s.reservations[i].Status = reservationStatus
			return nil
		}
	}
	return fmt.Errorf("reservation %s not found", id)
}

func (s *MemoryStore) ExtendReservation(ctx context.Context, id string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reservations {
		if s.reservations[i].ID == id {
			s.reservations[i].ExpiresAt = until
			return nil
		}
	}
	return fmt.Errorf("reservation %s not found", id)
}

func (s *MemoryStore) ListAssignments(ctx context.Context) ([]models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Assignment, len(s.assignments))
	copy(out, s.assignments)
	return out, nil
}

func (s *MemoryStore) CreateAssignment(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *assignment
	created.ID = s.nextID("assignment")
	created.AssignedAt = time.Now()
	s.assignments = append(s.assignments, created)
	return &created, nil
}

func (s *MemoryStore) UpdateAssignmentStatus(ctx context.Context, id, assignmentStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assignments {
		if s.assignments[i].ID == id {
			s.assignments[i].Status = assignmentStatus
			return nil
		}
	}
	return fmt.Errorf("assignment %s not found", id)
}

func (s *MemoryStore) ListNumberOwners(ctx context.Context) ([]models.NumberOwner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.NumberOwner, len(s.owners))
	copy(out, s.owners)
	return out, nil
}

func (s *MemoryStore) UpsertNumberOwner(ctx context.Context, owner *models.NumberOwner) (*models.NumberOwner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.owners {
		if s.owners[i].AssignmentID == owner.AssignmentID && s.owners[i].Number == owner.Number {
			s.owners[i].Owner = owner.Owner
			s.owners[i].EditedAt = time.Now()
			saved := s.owners[i]
			return &saved, nil
		}
	}
	created := *owner
	created.ID = s.nextID("owner")
	created.EditedAt = time.Now()
	s.owners = append(s.owners, created)
	return &created, nil
}

func (s *MemoryStore) GetRaffleConfig(ctx context.Context) (*models.RaffleConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.raffle == nil {
		return nil, status.ErrRaffleNotFound
	}
	cfg := *s.raffle
	return &cfg, nil
}

func (s *MemoryStore) SaveRaffleConfig(ctx context.Context, cfg *models.RaffleConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *cfg
	saved.UpdatedAt = time.Now()
	s.raffle = &saved
	return nil
}
