package api

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/erazemk/oficina/internal/model"
	"github.com/erazemk/oficina/internal/store"
)

// ServiceOrdersHandler handles the service order endpoints that reference
// stock items.
type ServiceOrdersHandler struct {
	DB *sql.DB
}

type createServiceOrderRequest struct {
	Customer string `json:"customer"`
	Vehicle  string `json:"vehicle"`
}

type addServiceOrderItemRequest struct {
	StockItemID int64           `json:"stock_item_id"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Create handles POST /api/service-orders.
func (h *ServiceOrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createServiceOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Customer) == "" {
		jsonError(w, http.StatusBadRequest, "customer required")
		return
	}

	order, err := store.CreateServiceOrder(r.Context(), h.DB, strings.TrimSpace(req.Customer), strings.TrimSpace(req.Vehicle))
	if err != nil {
		storeError(w, err, "failed to create service order")
		return
	}
	jsonResponse(w, http.StatusCreated, order)
}

// Get handles GET /api/service-orders/{id}.
func (h *ServiceOrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid service order id")
		return
	}

	order, err := store.GetServiceOrder(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get service order")
		return
	}
	if order == nil {
		jsonError(w, http.StatusNotFound, "service order not found")
		return
	}
	jsonResponse(w, http.StatusOK, order)
}

// Finish handles POST /api/service-orders/{id}/finish.
func (h *ServiceOrdersHandler) Finish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid service order id")
		return
	}

	if err := store.FinishServiceOrder(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to finish service order")
		return
	}
	order, err := store.GetServiceOrder(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get service order")
		return
	}
	jsonResponse(w, http.StatusOK, order)
}

// ListItems handles GET /api/service-orders/{id}/items.
func (h *ServiceOrdersHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid service order id")
		return
	}

	items, err := store.ListServiceOrderItems(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to list service order items")
		return
	}
	if items == nil {
		items = []model.ServiceOrderItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// AddItem handles POST /api/service-orders/{id}/items.
func (h *ServiceOrdersHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid service order id")
		return
	}

	var req addServiceOrderItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := store.AddServiceOrderItem(r.Context(), h.DB, id, req.StockItemID, req.Quantity, req.UnitPrice)
	if err != nil {
		storeError(w, err, "failed to add service order item")
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}
