package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"raffle-system/internal/store"
	"raffle-system/models"
	"raffle-system/services"
)

type AdminHandler struct {
	app       core.App
	inventory *services.InventoryService
	fallback  *store.FallbackStore
}

func NewAdminHandler(app core.App, inventory *services.InventoryService, fallback *store.FallbackStore) *AdminHandler {
	return &AdminHandler{app: app, inventory: inventory, fallback: fallback}
}

// VerifyConsistency runs an expiry sweep plus a full reconcile pass and
// pushes the refreshed state to subscribers.
func (h *AdminHandler) VerifyConsistency(e *core.RequestEvent) error {
	if err := h.inventory.VerifyConsistency(e.Request.Context()); err != nil {
		return respondError(e, err)
	}
	return e.JSON(http.StatusOK, map[string]string{"status": "reconciled"})
}

type revenueRow struct {
	Status string  `db:"status"`
	Count  int     `db:"count"`
	Total  float64 `db:"total"`
}

// GetSummary reports ticket state counts from the working set and revenue
// aggregates straight from the database. Revenue is reported both ways the
// business counts it: paid sales only, and paid sales plus paid assignments.
func (h *AdminHandler) GetSummary(e *core.RequestEvent) error {
	counts, err := h.inventory.Summary(e.Request.Context())
	if err != nil {
		return respondError(e, err)
	}

	states := make(map[string]int, len(counts))
	for state, n := range counts {
		states[string(state)] = n
	}

	resp := map[string]interface{}{
		"raffle":   h.inventory.Raffle().ID,
		"states":   states,
		"degraded": h.fallback.DegradedCollections(),
	}

	var saleRows []revenueRow
	err = h.app.DB().
		Select("status", "COUNT(*) AS count", "COALESCE(SUM(total), 0) AS total").
		From(store.CollectionSales).
		GroupBy("status").
		All(&saleRows)
	if err != nil {
		log.Printf("admin summary: sales revenue query failed: %v", err)
		return e.JSON(http.StatusOK, resp)
	}

	paidRevenue := decimal.Zero
	pendingRevenue := decimal.Zero
	for _, row := range saleRows {
		amount := decimal.NewFromFloat(row.Total)
		switch row.Status {
		case models.SaleStatusPaid:
			paidRevenue = paidRevenue.Add(amount)
		case models.SaleStatusPending:
			pendingRevenue = pendingRevenue.Add(amount)
		}
	}

	assignmentRevenue := decimal.Zero
	var assignmentTotal float64
	err = h.app.DB().
		Select("COALESCE(SUM(total_amount), 0)").
		From(store.CollectionAssignments).
		Where(dbx.HashExp{"status": models.AssignmentStatusPaid}).
		Row(&assignmentTotal)
	if err != nil {
		log.Printf("admin summary: assignment revenue query failed: %v", err)
	} else {
		assignmentRevenue = decimal.NewFromFloat(assignmentTotal)
	}

	resp["revenue"] = map[string]string{
		"sales_paid":             paidRevenue.String(),
		"sales_pending":          pendingRevenue.String(),
		"assignments_paid":       assignmentRevenue.String(),
		"collected_sales_only":   paidRevenue.String(),
		"collected_with_sellers": paidRevenue.Add(assignmentRevenue).String(),
	}
	return e.JSON(http.StatusOK, resp)
}

// GetDuplicates lists groups of sales that share an identity key. These are
// candidates for manual cleanup after a messy offline period.
func (h *AdminHandler) GetDuplicates(e *core.RequestEvent) error {
	groups := h.inventory.DuplicateReport()
	return e.JSON(http.StatusOK, map[string]interface{}{
		"groups": groups,
		"count":  len(groups),
	})
}

func (h *AdminHandler) GetRaffleConfig(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, h.inventory.Raffle())
}

func (h *AdminHandler) UpdateRaffleConfig(e *core.RequestEvent) error {
	var cfg models.RaffleConfig
	if err := e.BindBody(&cfg); err != nil {
		return apis.NewBadRequestError("invalid request body", err)
	}

	if cfg.TotalNumbers <= 0 {
		return apis.NewBadRequestError("total_numbers must be positive", nil)
	}
	if cfg.TicketPrice.IsNegative() {
		return apis.NewBadRequestError("ticket_price cannot be negative", nil)
	}

	if err := h.inventory.UpdateRaffleConfig(e.Request.Context(), cfg); err != nil {
		return respondError(e, err)
	}

	return e.JSON(http.StatusOK, h.inventory.Raffle())
}
