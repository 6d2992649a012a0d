package store

import (
	"context"
	"fmt"
	"time"

	"raffle-system/internal/status"
	"raffle-system/models"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// PocketBaseStore adapts the embedded PocketBase collections to RemoteStore.
type PocketBaseStore struct {
	app core.App
}

func NewPocketBaseStore(app core.App) *PocketBaseStore {
	return &PocketBaseStore{app: app}
}

func (s *PocketBaseStore) collection(name string) (*core.Collection, error) {
	col, err := s.app.FindCachedCollectionByNameOrId(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", status.ErrSchemaMissing, name)
	}
	return col, nil
}

// --- sales ---

func (s *PocketBaseStore) ListSales(ctx context.Context) ([]models.Sale, error) {
	if _, err := s.collection(CollectionSales); err != nil {
		return nil, err
	}
	records, err := s.app.FindAllRecords(CollectionSales)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	sales := make([]models.Sale, 0, len(records))
	for _, record := range records {
		sale, err := saleFromRecord(record)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

func (s *PocketBaseStore) CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	col, err := s.collection(CollectionSales)
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(col)
	record.Set("local_id", sale.LocalID)
	record.Set("numbers", sale.Numbers)
	record.Set("buyer", sale.Buyer)
	record.Set("payment_method", sale.PaymentMethod)
	record.Set("total", sale.Total.InexactFloat64())
	record.Set("status", sale.Status)

	if err := s.app.Save(record); err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}

	created, err := saleFromRecord(record)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *PocketBaseStore) UpdateSaleStatus(ctx context.Context, id, saleStatus string) error {
	if _, err := s.collection(CollectionSales); err != nil {
		return err
	}
	record, err := s.app.FindRecordById(CollectionSales, id)
	if err != nil {
		return fmt.Errorf("find sale %s: %w", id, err)
	}
	record.Set("status", saleStatus)
	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("update sale %s: %w", id, err)
	}
	return nil
}

func (s *PocketBaseStore) DeleteSale(ctx context.Context, id string) error {
	if _, err := s.collection(CollectionSales); err != nil {
		return err
	}
	record, err := s.app.FindRecordById(CollectionSales, id)
	if err != nil {
		return fmt.Errorf("find sale %s: %w", id, err)
	}
	if err := s.app.Delete(record); err != nil {
		return fmt.Errorf("delete sale %s: %w", id, err)
	}
	return nil
}

// --- reservations ---

func (s *PocketBaseStore) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	if _, err := s.collection(CollectionReservations); err != nil {
		return nil, err
	}
	records, err := s.app.FindAllRecords(CollectionReservations)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	reservations := make([]models.Reservation, 0, len(records))
	for _, record := range records {
		reservation, err := reservationFromRecord(record)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	return reservations, nil
}

func (s *PocketBaseStore) CreateReservation(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	col, err := s.collection(CollectionReservations)
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(col)
	record.Set("local_id", reservation.LocalID)
	record.Set("numbers", reservation.Numbers)
	record.Set("buyer", reservation.Buyer)
	record.Set("total", reservation.Total.InexactFloat64())
	record.Set("status", reservation.Status)
	record.Set("expires_at", reservation.ExpiresAt)

	if err := s.app.Save(record); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	created, err := reservationFromRecord(record)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *PocketBaseStore) UpdateReservationStatus(ctx context.Context, id, reservationStatus string) error {
	if _, err := s.collection(CollectionReservations); err != nil {
		return err
	}
	record, err := s.app.FindRecordById(CollectionReservations, id)
	if err != nil {
		return fmt.Errorf("find reservation %s: %w", id, err)
	}
	record.Set("status", reservationStatus)
	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("update reservation %s: %w", id, err)
	}
	return nil
}

func (s *PocketBaseStore) ExtendReservation(ctx context.Context, id string, until time.Time) error {
	if _, err := s.collection(CollectionReservations); err != nil {
		return err
	}
	record, err := s.app.FindRecordById(CollectionReservations, id)
	if err != nil {
		return fmt.Errorf("find reservation %s: %w", id, err)
	}
	record.Set("expires_at", until)
	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("extend reservation %s: %w", id, err)
	}
	return nil
}

// --- assignments ---

func (s *PocketBaseStore) ListAssignments(ctx context.Context) ([]models.Assignment, error) {
	if _, err := s.collection(CollectionAssignments); err != nil {
		return nil, err
	}
	records, err := s.app.FindAllRecords(CollectionAssignments)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	assignments := make([]models.Assignment, 0, len(records))
	for _, record := range records {
		assignment, err := assignmentFromRecord(record)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	return assignments, nil
}

func (s *PocketBaseStore) CreateAssignment(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error) {
	col, err := s.collection(CollectionAssignments)
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(col)
	record.Set("seller_name", assignment.Seller.Name)
	record.Set("seller_lastname", assignment.Seller.LastName)
	record.Set("seller_phone", assignment.Seller.Phone)
	record.Set("seller_email", assignment.Seller.Email)
	record.Set("numbers", assignment.Numbers)
	record.Set("total_amount", assignment.TotalAmount.InexactFloat64())
	record.Set("status", assignment.Status)
	record.Set("payment_deadline", assignment.PaymentDeadline)
	record.Set("notes", assignment.Notes)

	if err := s.app.Save(record); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	created, err := assignmentFromRecord(record)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *PocketBaseStore) UpdateAssignmentStatus(ctx context.Context, id, assignmentStatus string) error {
	if _, err := s.collection(CollectionAssignments); err != nil {
		return err
	}
	record, err := s.app.FindRecordById(CollectionAssignments, id)
	if err != nil {
		return fmt.Errorf("find assignment %s: %w", id, err)
	}
	record.Set("status", assignmentStatus)
	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("update assignment %s: %w", id, err)
	}
	return nil
}

// --- number owners ---

func (s *PocketBaseStore) ListNumberOwners(ctx context.Context) ([]models.NumberOwner, error) {
	if _, err := s.collection(CollectionNumberOwners); err != nil {
		return nil, err
	}
	records, err := s.app.FindAllRecords(CollectionNumberOwners)
	if err != nil {
		return nil, fmt.Errorf("list number owners: %w", err)
	}

	owners := make([]models.NumberOwner, 0, len(records))
	for _, record := range records {
		owner, err := ownerFromRecord(record)
		if err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}
	return owners, nil
}

func (s *PocketBaseStore) UpsertNumberOwner(ctx context.Context, owner *models.NumberOwner) (*models.NumberOwner, error) {
	col, err := s.collection(CollectionNumberOwners)
	if err != nil {
		return nil, err
	}

	record, err := s.app.FindFirstRecordByFilter(
		CollectionNumberOwners,
		"assignment_id = {:assignmentId} && number_value = {:number}",
		map[string]any{"assignmentId": owner.AssignmentID, "number": owner.Number},
	)
	if err != nil {
		record = core.NewRecord(col)
		record.Set("assignment_id", owner.AssignmentID)
		record.Set("number_value", owner.Number)
	}
	record.Set("owner", owner.Owner)
	record.Set("edited_at", time.Now())

	if err := s.app.Save(record); err != nil {
		return nil, fmt.Errorf("upsert number owner: %w", err)
	}

	saved, err := ownerFromRecord(record)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// --- raffle config ---

func (s *PocketBaseStore) GetRaffleConfig(ctx context.Context) (*models.RaffleConfig, error) {
	if _, err := s.collection(CollectionRaffles); err != nil {
		return nil, err
	}
	record, err := s.app.FindFirstRecordByData(CollectionRaffles, "raffle_key", models.CurrentRaffleID)
	if err != nil {
		return nil, status.ErrRaffleNotFound
	}

	cfg := &models.RaffleConfig{ID: models.CurrentRaffleID}
	if err := record.UnmarshalJSONField("config", cfg); err != nil {
		return nil, fmt.Errorf("decode raffle config: %w", err)
	}
	cfg.ID = models.CurrentRaffleID
	cfg.UpdatedAt = record.GetDateTime("updated").Time()
	return cfg, nil
}

func (s *PocketBaseStore) SaveRaffleConfig(ctx context.Context, cfg *models.RaffleConfig) error {
	col, err := s.collection(CollectionRaffles)
	if err != nil {
		return err
	}

	record, err := s.app.FindFirstRecordByData(CollectionRaffles, "raffle_key", models.CurrentRaffleID)
	if err != nil {
		record = core.NewRecord(col)
		record.Set("raffle_key", models.CurrentRaffleID)
	}
	record.Set("config", cfg)

	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("save raffle config: %w", err)
	}
	return nil
}

// --- record mapping ---

func saleFromRecord(record *core.Record) (models.Sale, error) {
	sale := models.Sale{
		ID:            record.Id,
		LocalID:       record.GetString("local_id"),
		PaymentMethod: record.GetString("payment_method"),
		Status:        record.GetString("status"),
		Total:         decimal.NewFromFloat(record.GetFloat("total")),
		CreatedAt:     record.GetDateTime("created").Time(),
	}
	if err := record.UnmarshalJSONField("numbers", &sale.Numbers); err != nil {
		return sale, fmt.Errorf("decode sale %s numbers: %w", record.Id, err)
	}
	if err := record.UnmarshalJSONField("buyer", &sale.Buyer); err != nil {
		return sale, fmt.Errorf("decode sale %s buyer: %w", record.Id, err)
	}
	return sale, nil
}

func reservationFromRecord(record *core.Record) (models.Reservation, error) {
	reservation := models.Reservation{
		ID:        record.Id,
		LocalID:   record.GetString("local_id"),
		Status:    record.GetString("status"),
		Total:     decimal.NewFromFloat(record.GetFloat("total")),
		CreatedAt: record.GetDateTime("created").Time(),
		ExpiresAt: record.GetDateTime("expires_at").Time(),
	}
	if err := record.UnmarshalJSONField("numbers", &reservation.Numbers); err != nil {
		return reservation, fmt.Errorf("decode reservation %s numbers: %w", record.Id, err)
	}
	if err := record.UnmarshalJSONField("buyer", &reservation.Buyer); err != nil {
		return reservation, fmt.Errorf("decode reservation %s buyer: %w", record.Id, err)
	}
	return reservation, nil
}

func assignmentFromRecord(record *core.Record) (models.Assignment, error) {
	assignment := models.Assignment{
		ID: record.Id,
		Seller: models.Seller{
			Name:     record.GetString("seller_name"),
			LastName: record.GetString("seller_lastname"),
			Phone:    record.GetString("seller_phone"),
			Email:    record.GetString("seller_email"),
		},
		TotalAmount:     decimal.NewFromFloat(record.GetFloat("total_amount")),
		Status:          record.GetString("status"),
		AssignedAt:      record.GetDateTime("created").Time(),
		PaymentDeadline: record.GetDateTime("payment_deadline").Time(),
		Notes:           record.GetString("notes"),
	}
	if err := record.UnmarshalJSONField("numbers", &assignment.Numbers); err != nil {
		return assignment, fmt.Errorf("decode assignment %s numbers: %w", record.Id, err)
	}
	return assignment, nil
}

func ownerFromRecord(record *core.Record) (models.NumberOwner, error) {
	owner := models.NumberOwner{
		ID:           record.Id,
		AssignmentID: record.GetString("assignment_id"),
		Number:       record.GetInt("number_value"),
		EditedAt:     record.GetDateTime("edited_at").Time(),
	}
	if err := record.UnmarshalJSONField("owner", &owner.Owner); err != nil {
		return owner, fmt.Errorf("decode number owner %s: %w", record.Id, err)
	}
	return owner, nil
}
