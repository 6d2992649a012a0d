package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"raffle-system/models"
	"raffle-system/services"
)

type TicketHandler struct {
	inventory *services.InventoryService
}

func NewTicketHandler(inventory *services.InventoryService) *TicketHandler {
	return &TicketHandler{inventory: inventory}
}

// ListStates returns the derived state of every ticket in the raffle.
func (h *TicketHandler) ListStates(e *core.RequestEvent) error {
	states, err := h.inventory.TicketStates(e.Request.Context())
	if err != nil {
		return respondError(e, err)
	}

	raffle := h.inventory.Raffle()
	tickets := make([]models.Ticket, 0, raffle.TotalNumbers)
	for n := 1; n <= raffle.TotalNumbers; n++ {
		state, ok := states[n]
		if !ok {
			state = models.TicketAvailable
		}
		tickets = append(tickets, models.Ticket{Number: n, State: state})
	}

	return e.JSON(http.StatusOK, map[string]interface{}{
		"raffle":  raffle.ID,
		"total":   raffle.TotalNumbers,
		"tickets": tickets,
	})
}

func (h *TicketHandler) GetState(e *core.RequestEvent) error {
	number, err := parseNumber(e.Request.PathValue("number"))
	if err != nil {
		return apis.NewBadRequestError("invalid ticket number", err)
	}

	state, err := h.inventory.GetTicketState(e.Request.Context(), number)
	if err != nil {
		return respondError(e, err)
	}

	return e.JSON(http.StatusOK, models.Ticket{Number: number, State: state})
}

type validateRequest struct {
	Numbers   []int  `json:"numbers"`
	Intent    string `json:"intent"`
	SessionID string `json:"session_id"`
}

// Validate checks a set of numbers against the current working set without
// taking any hold. A 409 response lists the numbers that would conflict.
func (h *TicketHandler) Validate(e *core.RequestEvent) error {
	var req validateRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("invalid request body", err)
	}
	if req.Intent == "" {
		req.Intent = services.IntentSell
	}

	session := sessionFrom(e, req.SessionID)
	if err := h.inventory.ValidateNumbers(e.Request.Context(), req.Numbers, req.Intent, session); err != nil {
		return respondError(e, err)
	}

	return e.JSON(http.StatusOK, map[string]bool{"available": true})
}

type selectionRequest struct {
	Numbers   []int  `json:"numbers"`
	SessionID string `json:"session_id"`
}

func (h *TicketHandler) Select(e *core.RequestEvent) error {
	var req selectionRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("invalid request body", err)
	}

	session := sessionFrom(e, req.SessionID)
	if session == "" {
		return apis.NewBadRequestError("session_id is required", nil)
	}

	if err := h.inventory.SelectNumbers(e.Request.Context(), session, req.Numbers); err != nil {
		return respondError(e, err)
	}

	return e.JSON(http.StatusOK, map[string]interface{}{
		"selected": req.Numbers,
		"session":  session,
	})
}

func (h *TicketHandler) Release(e *core.RequestEvent) error {
	var req selectionRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("invalid request body", err)
	}

	session := sessionFrom(e, req.SessionID)
	if session == "" {
		return apis.NewBadRequestError("session_id is required", nil)
	}

	if err := h.inventory.ReleaseNumbers(e.Request.Context(), session, req.Numbers); err != nil {
		return respondError(e, err)
	}

	return e.JSON(http.StatusOK, map[string]string{"status": "released"})
}
