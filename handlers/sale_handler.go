package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"raffle-system/models"
	"raffle-system/services"
)

type SaleHandler struct {
	inventory *services.InventoryService
}

func NewSaleHandler(inventory *services.InventoryService) *SaleHandler {
	return &SaleHandler{inventory: inventory}
}

type createSaleRequest struct {
	Buyer         models.Buyer `json:"buyer"`
	Numbers       []int        `json:"numbers"`
	PaymentMethod string       `json:"payment_method"`
	SessionID     string       `json:"session_id"`
}

func (h *SaleHandler) Create(e *core.RequestEvent) error {
	var req createSaleRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("invalid request body", err)
	}

	if req.Buyer.Name == "" || req.Buyer.Phone == "" {
		return apis.NewBadRequestError("buyer name and phone are required", nil)
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentCash
	}

	session := sessionFrom(e, req.SessionID)
	sale, err := h.inventory.SubmitSale(e.Request.Context(), req.Buyer, req.Numbers, req.PaymentMethod, session)
	if err != nil {
		return respondError(e, err)
	}

	return e.JSON(http.StatusCreated, sale)
}

func (h *SaleHandler) MarkPaid(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("sale id is required", nil)
	}

	if err := h.inventory.MarkSalePaid(e.Request.Context(), id); err != nil {
		return respondError(e, err)
	}

	return e.JSON(http.StatusOK, map[string]string{"id": id, "status": models.SaleStatusPaid})
}

func (h *SaleHandler) Delete(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("sale id is required", nil)
	}

	if err := h.inventory.DeleteSale(e.Request.Context(), id); err != nil {
		return respondError(e, err)
	}

	return e.JSON(http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}
