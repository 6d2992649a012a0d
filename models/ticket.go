package models

// TicketState is the derived state of one numbered ticket. It is computed
// from the working set on every read and never stored.
type TicketState string

const (
	TicketAvailable TicketState = "available"
	TicketSelected  TicketState = "selected"  // held by a session, not yet submitted
	TicketReserved  TicketState = "reserved"  // active, unexpired reservation
	TicketAssigned  TicketState = "assigned"  // unpaid seller assignment
	TicketSold      TicketState = "sold"      // sale exists
	TicketConfirmed TicketState = "confirmed" // paid seller assignment
)

// Taken reports whether the state permanently claims the number. Sold and
// Confirmed are equivalent for allocation purposes.
func (s TicketState) Taken() bool {
	return s == TicketSold || s == TicketConfirmed
}

type Ticket struct {
	Number int         `json:"number"`
	State  TicketState `json:"state"`
}
