package store

import (
	"context"
	"time"

	"raffle-system/models"
)

// Collection names in the remote store.
const (
	CollectionSales        = "sales"
	CollectionReservations = "reservations"
	CollectionAssignments  = "assignments"
	CollectionNumberOwners = "number_owners"
	CollectionRaffles      = "raffles"
)

// RemoteStore is the engine's only view of the remote collections. Adapters
// translate transport failures into the sentinel errors of internal/status
// (ErrSchemaMissing for a missing collection, ErrNotConnected for an
// unreachable store) so callers never inspect transport error shapes.
type RemoteStore interface {
	ListSales(ctx context.Context) ([]models.Sale, error)
	CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error)
	UpdateSaleStatus(ctx context.Context, id, saleStatus string) error
	DeleteSale(ctx context.Context, id string) error

	ListReservations(ctx context.Context) ([]models.Reservation, error)
	CreateReservation(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id, reservationStatus string) error
	ExtendReservation(ctx context.Context, id string, until time.Time) error

	ListAssignments(ctx context.Context) ([]models.Assignment, error)
	CreateAssignment(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error)
	UpdateAssignmentStatus(ctx context.Context, id, assignmentStatus string) error

	ListNumberOwners(ctx context.Context) ([]models.NumberOwner, error)
	UpsertNumberOwner(ctx context.Context, owner *models.NumberOwner) (*models.NumberOwner, error)

	GetRaffleConfig(ctx context.Context) (*models.RaffleConfig, error)
	SaveRaffleConfig(ctx context.Context, cfg *models.RaffleConfig) error
}
