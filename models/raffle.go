package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrentRaffleID is the singleton row id of the active raffle.
const CurrentRaffleID = "current"

type RaffleConfig struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	TotalNumbers           int             `json:"total_numbers"`
	TicketPrice            decimal.Decimal `json:"ticket_price"`
	ReservationTTLHours    int             `json:"reservation_ttl_hours"`
	AssignmentDeadlineDays int             `json:"assignment_deadline_days"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

func (c *RaffleConfig) ReservationTTL() time.Duration {
	return time.Duration(c.ReservationTTLHours) * time.Hour
}

func (c *RaffleConfig) AssignmentDeadline() time.Duration {
	return time.Duration(c.AssignmentDeadlineDays) * 24 * time.Hour
}

// PriceFor is the total for a set of numbers at the configured ticket price.
func (c *RaffleConfig) PriceFor(count int) decimal.Decimal {
	return c.TicketPrice.Mul(decimal.NewFromInt(int64(count)))
}
