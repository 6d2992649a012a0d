package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SaleStatusPending = "pending"
	SaleStatusPaid    = "paid"

	PaymentCash     = "cash"
	PaymentTransfer = "transfer"
)

type Buyer struct {
	Name           string `json:"name"`
	LastName       string `json:"last_name"`
	Phone          string `json:"phone"`
	Email          string `json:"email,omitempty"`
	MembershipArea string `json:"membership_area,omitempty"`
}

type Sale struct {
	ID            string          `json:"id"`
	LocalID       string          `json:"local_id,omitempty"` // client-generated id, recorded so the remote echo can be matched back
	Numbers       []int           `json:"numbers"`
	Buyer         Buyer           `json:"buyer"`
	PaymentMethod string          `json:"payment_method"` // cash, transfer
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"` // pending, paid
	CreatedAt     time.Time       `json:"created_at"`

	// Pending marks an optimistic local write that has not yet been
	// observed in a remote snapshot. Never serialized.
	Pending bool `json:"-"`
}
