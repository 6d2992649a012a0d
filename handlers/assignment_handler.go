package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"raffle-system/models"
	"raffle-system/services"
)

type AssignmentHandler struct {
	inventory *services.InventoryService
}

func NewAssignmentHandler(inventory *services.InventoryService) *AssignmentHandler {
	return &AssignmentHandler{inventory: inventory}
}

type createAssignmentRequest struct {
	Seller       models.Seller `json:"seller"`
	Numbers      []int         `json:"numbers"`
	Notes        string        `json:"notes"`
	DeadlineDays int           `json:"deadline_days"`
}

func (h *AssignmentHandler) Create(e *core.RequestEvent) error {
	var req createAssignmentRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("invalid request body", err)
	}

	if req.Seller.Name == "" || req.Seller.Phone == "" {
		return apis.NewBadRequestError("seller name and phone are required", nil)
	}

	assignment, err := h.inventory.CreateAssignment(e.Request.Context(), req.Seller, req.Numbers, req.Notes, req.DeadlineDays)
	if err != nil {
		return respondError(e, err)
	}

	return e.JSON(http.StatusCreated, assignment)
}

func (h *AssignmentHandler) MarkPaid(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("assignment id is required", nil)
	}

	if err := h.inventory.MarkAssignmentPaid(e.Request.Context(), id); err != nil {
		return respondError(e, err)
	}

	return e.JSON(http.StatusOK, map[string]string{"id": id, "status": models.AssignmentStatusPaid})
}

func (h *AssignmentHandler) Cancel(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("assignment id is required", nil)
	}

	if err := h.inventory.CancelAssignment(e.Request.Context(), id); err != nil {
		return respondError(e, err)
	}

	return e.JSON(http.StatusOK, map[string]string{"id": id, "status": models.AssignmentStatusCancelled})
}

type updateOwnerRequest struct {
	Owner models.OwnerContact `json:"owner"`
}

// UpdateOwner records who holds a specific number inside an assignment.
// Edits are rejected once the payment deadline has passed.
func (h *AssignmentHandler) UpdateOwner(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("assignment id is required", nil)
	}
	number, err := parseNumber(e.Request.PathValue("number"))
	if err != nil {
		return apis.NewBadRequestError("invalid ticket number", err)
	}

	var req updateOwnerRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("invalid request body", err)
	}
	if req.Owner.Name == "" {
		return apis.NewBadRequestError("owner name is required", nil)
	}

	owner, err := h.inventory.UpdateNumberOwner(e.Request.Context(), id, number, req.Owner)
	if err != nil {
		return respondError(e, err)
	}

	return e.JSON(http.StatusOK, owner)
}
