package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"raffle-system/models"
	"raffle-system/services"
)

type ReservationHandler struct {
	inventory *services.InventoryService
}

func NewReservationHandler(inventory *services.InventoryService) *ReservationHandler {
	return &ReservationHandler{inventory: inventory}
}

type createReservationRequest struct {
	Buyer     models.Buyer `json:"buyer"`
	Numbers   []int        `json:"numbers"`
	SessionID string       `json:"session_id"`
}

func (h *ReservationHandler) Create(e *core.RequestEvent) error {
	var req createReservationRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("invalid request body", err)
	}

	if req.Buyer.Name == "" || req.Buyer.Phone == "" {
		return apis.NewBadRequestError("buyer name and phone are required", nil)
	}

	session := sessionFrom(e, req.SessionID)
	res, err := h.inventory.SubmitReservation(e.Request.Context(), req.Buyer, req.Numbers, session)
	if err != nil {
		return respondError(e, err)
	}

	return e.JSON(http.StatusCreated, res)
}

type confirmReservationRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// Confirm converts an active reservation into a paid sale.
func (h *ReservationHandler) Confirm(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("reservation id is required", nil)
	}

	var req confirmReservationRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("invalid request body", err)
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentCash
	}

	sale, err := h.inventory.ConfirmReservation(e.Request.Context(), id, req.PaymentMethod)
	if err != nil {
		return respondError(e, err)
	}

	return e.JSON(http.StatusOK, sale)
}

func (h *ReservationHandler) Cancel(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("reservation id is required", nil)
	}

	if err := h.inventory.CancelReservation(e.Request.Context(), id); err != nil {
		return respondError(e, err)
	}

	return e.JSON(http.StatusOK, map[string]string{"id": id, "status": models.ReservationStatusCancelled})
}

type extendReservationRequest struct {
	Hours int `json:"hours"`
}

func (h *ReservationHandler) Extend(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("reservation id is required", nil)
	}

	var req extendReservationRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("invalid request body", err)
	}
	if req.Hours <= 0 {
		return apis.NewBadRequestError("hours must be positive", nil)
	}

	if err := h.inventory.ExtendReservation(e.Request.Context(), id, req.Hours); err != nil {
		return respondError(e, err)
	}

	return e.JSON(http.StatusOK, map[string]string{"id": id, "status": "extended"})
}
