package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"raffle-system/models"

	"github.com/redis/go-redis/v9"
)

const (
	pendingSalesKey        = "pending:sales"
	pendingReservationsKey = "pending:reservations"
)

// PendingMirror persists optimistic writes in Redis so a restart does not
// lose "pending confirmation" entries before the remote snapshot catches
// up. Keyed by the client-generated local id.
type PendingMirror struct {
	Redis *redis.Client
}

func NewPendingMirror(redisClient *redis.Client) *PendingMirror {
	return &PendingMirror{Redis: redisClient}
}

func (m *PendingMirror) RecordSale(ctx context.Context, sale models.Sale) {
	data, err := json.Marshal(sale)
	if err != nil {
		return
	}
	if err := m.Redis.HSet(ctx, pendingSalesKey, sale.LocalID, data).Err(); err != nil {
		log.Printf("Error mirroring pending sale %s: %v", sale.LocalID, err)
	}
}

func (m *PendingMirror) RecordReservation(ctx context.Context, reservation models.Reservation) {
	data, err := json.Marshal(reservation)
	if err != nil {
		return
	}
	if err := m.Redis.HSet(ctx, pendingReservationsKey, reservation.LocalID, data).Err(); err != nil {
		log.Printf("Error mirroring pending reservation %s: %v", reservation.LocalID, err)
	}
}

// Confirm removes mirrored entries whose remote echo has been observed.
func (m *PendingMirror) Confirm(ctx context.Context, saleLocalIDs, reservationLocalIDs []string) {
	if len(saleLocalIDs) > 0 {
		m.Redis.HDel(ctx, pendingSalesKey, saleLocalIDs...)
	}
	if len(reservationLocalIDs) > 0 {
		m.Redis.HDel(ctx, pendingReservationsKey, reservationLocalIDs...)
	}
}

// Restore loads mirrored pending writes, used at startup before the first
// reconciliation pass.
func (m *PendingMirror) Restore(ctx context.Context) ([]models.Sale, []models.Reservation, error) {
	saleRows, err := m.Redis.HGetAll(ctx, pendingSalesKey).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("restore pending sales: %w", err)
	}
	reservationRows, err := m.Redis.HGetAll(ctx, pendingReservationsKey).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("restore pending reservations: %w", err)
	}

	var sales []models.Sale
	for localID, raw := range saleRows {
		var sale models.Sale
		if err := json.Unmarshal([]byte(raw), &sale); err != nil {
			log.Printf("Dropping unreadable pending sale %s: %v", localID, err)
			continue
		}
		sale.Pending = true
		sales = append(sales, sale)
	}

	var reservations []models.Reservation
	for localID, raw := range reservationRows {
		var reservation models.Reservation
		if err := json.Unmarshal([]byte(raw), &reservation); err != nil {
			log.Printf("Dropping unreadable pending reservation %s: %v", localID, err)
			continue
		}
		reservation.Pending = true
		reservations = append(reservations, reservation)
	}

	return sales, reservations, nil
}
