package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"raffle-system/internal/status"
)

// respondError maps service errors to HTTP responses. Conflicts carry the
// contested numbers so clients can refresh just those tickets.
func respondError(e *core.RequestEvent, err error) error {
	var conflict *status.ConflictError
	if errors.As(err, &conflict) {
		return e.JSON(http.StatusConflict, map[string]interface{}{
			"error":               "numbers are no longer available",
			"intent":              conflict.Intent,
			"conflicting_numbers": conflict.Numbers,
		})
	}

	switch {
	case errors.Is(err, status.ErrNotConnected):
		return e.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "remote store unavailable, try again shortly",
		})
	case errors.Is(err, status.ErrRaffleNotFound):
		return apis.NewNotFoundError("raffle not found", err)
	case errors.Is(err, status.ErrReservationNotActive),
		errors.Is(err, status.ErrAssignmentNotOpen),
		errors.Is(err, status.ErrOwnerDeadlinePassed):
		return apis.NewBadRequestError(err.Error(), nil)
	}

	return apis.NewBadRequestError("request failed", err)
}

func parseNumber(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse ticket number %q: %w", raw, err)
	}
	return n, nil
}

func sessionFrom(e *core.RequestEvent, fallback string) string {
	if s := e.Request.Header.Get("X-Session-Id"); s != "" {
		return s
	}
	return fallback
}
