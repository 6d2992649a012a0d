package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AssignmentStatusAssigned  = "assigned"
	AssignmentStatusPaid      = "paid"
	AssignmentStatusExpired   = "expired"
	AssignmentStatusCancelled = "cancelled"
)

type Seller struct {
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
}

// Assignment is a bulk hand-over of numbers to a seller, payable until
// PaymentDeadline. Once paid its numbers are permanently taken.
type Assignment struct {
	ID              string          `json:"id"`
	Seller          Seller          `json:"seller"`
	Numbers         []int           `json:"numbers"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          string          `json:"status"` // assigned, paid, expired, cancelled
	AssignedAt      time.Time       `json:"assigned_at"`
	PaymentDeadline time.Time       `json:"payment_deadline"`
	Notes           string          `json:"notes,omitempty"`
}

// LapsedAt reports an "assigned" record whose payment deadline already passed.
func (a *Assignment) LapsedAt(now time.Time) bool {
	return a.Status == AssignmentStatusAssigned && !a.PaymentDeadline.After(now)
}

type OwnerContact struct {
	Name           string `json:"name"`
	LastName       string `json:"last_name"`
	Phone          string `json:"phone"`
	Email          string `json:"email,omitempty"`
	Instagram      string `json:"instagram,omitempty"`
	MembershipArea string `json:"membership_area,omitempty"`
}

// NumberOwner records who holds one number of an assignment. Editable until
// the assignment's payment deadline, independent of the seller identity.
type NumberOwner struct {
	ID           string       `json:"id"`
	AssignmentID string       `json:"assignment_id"`
	Number       int          `json:"number"`
	Owner        OwnerContact `json:"owner"`
	EditedAt     time.Time    `json:"edited_at"`
}
