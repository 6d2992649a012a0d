package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ReservationStatusActive    = "active"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusExpired   = "expired"
)

type Reservation struct {
	ID        string          `json:"id"`
	LocalID   string          `json:"local_id,omitempty"`
	Numbers   []int           `json:"numbers"`
	Buyer     Buyer           `json:"buyer"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"` // active, confirmed, cancelled, expired
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`

	Pending bool `json:"-"`
}

// ActiveAt reports whether the reservation still holds its numbers at the
// given instant. A persisted "active" status past its deadline counts as
// expired, regardless of whether the sweep has caught up.
func (r *Reservation) ActiveAt(now time.Time) bool {
	return r.Status == ReservationStatusActive && r.ExpiresAt.After(now)
}

// LapsedAt reports whether the reservation shows "active" but its deadline
// already passed at the given instant.
func (r *Reservation) LapsedAt(now time.Time) bool {
	return r.Status == ReservationStatusActive && !r.ExpiresAt.After(now)
}
