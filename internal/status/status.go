package status

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotConnected         = errors.New("store: remote store unreachable")
	ErrSchemaMissing        = errors.New("store: collection does not exist")
	ErrRaffleNotFound       = errors.New("raffle: no current raffle configured")
	ErrReservationNotActive = errors.New("reservation: not in active state")
	ErrAssignmentNotOpen    = errors.New("assignment: not in assigned state")
	ErrOwnerDeadlinePassed  = errors.New("assignment: payment deadline passed, owner locked")
)

// ConflictError reports the exact numbers that blocked an operation.
type ConflictError struct {
	Intent  string
	Numbers []int
}

func (e *ConflictError) Error() string {
	parts := make([]string, len(e.Numbers))
	for i, n := range e.Numbers {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("conflict: numbers not available for %s: %s", e.Intent, strings.Join(parts, ", "))
}

// NewConflictError sorts the numbers so messages and JSON payloads are stable.
func NewConflictError(intent string, numbers []int) *ConflictError {
	sorted := make([]int, len(numbers))
	copy(sorted, numbers)
	sort.Ints(sorted)
	return &ConflictError{Intent: intent, Numbers: sorted}
}
