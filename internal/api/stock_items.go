package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/oficina/internal/catalog"
	"github.com/erazemk/oficina/internal/imaging"
	"github.com/erazemk/oficina/internal/model"
	"github.com/erazemk/oficina/internal/spreadsheet"
	"github.com/erazemk/oficina/internal/store"
)

// StockItemsHandler handles stock item endpoints.
type StockItemsHandler struct {
	DB                *sql.DB
	LowStockThreshold int64
}

// List handles GET /api/stock-items. The optional q parameter filters by
// code, description or brand.
func (h *StockItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListStockItems(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to list stock items")
		return
	}
	items = catalog.Filter(items, r.URL.Query().Get("q"))
	if items == nil {
		items = []model.StockItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Summary handles GET /api/stock-items/summary.
func (h *StockItemsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListStockItems(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to list stock items")
		return
	}
	jsonResponse(w, http.StatusOK, catalog.Summarize(items, h.LowStockThreshold))
}

// Create handles POST /api/stock-items.
func (h *StockItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var item model.StockItem
	if err := decodeJSON(r, &item); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := item.Validate(); err != nil {
		storeError(w, err, "failed to create stock item")
		return
	}

	created, err := store.CreateStockItem(r.Context(), h.DB, item)
	if err != nil {
		storeError(w, err, "failed to create stock item")
		return
	}
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/stock-items/{id}.
func (h *StockItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid stock item id")
		return
	}

	item, err := store.GetStockItem(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get stock item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "stock item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/stock-items/{id}.
func (h *StockItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid stock item id")
		return
	}

	var item model.StockItem
	if err := decodeJSON(r, &item); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := item.Validate(); err != nil {
		storeError(w, err, "failed to update stock item")
		return
	}

	updated, err := store.UpdateStockItem(r.Context(), h.DB, id, item)
	if err != nil {
		storeError(w, err, "failed to update stock item")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/stock-items/{id}.
func (h *StockItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid stock item id")
		return
	}

	if err := store.DeleteStockItem(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to delete stock item")
		return
	}

	slog.Info("stock item deleted via api", "id", id, "client", GetClaims(r.Context()).Client)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "stock item deleted"})
}

// UploadImage handles PUT /api/stock-items/{id}/image.
func (h *StockItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid stock item id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUpload+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUpload); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if errors.Is(err, imaging.ErrUnsupported) {
		jsonError(w, http.StatusBadRequest, "image must be JPEG, PNG, or WebP")
		return
	}
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid image")
		return
	}

	if err := store.SetStockItemImage(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		storeError(w, err, "failed to save image")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/stock-items/{id}/image.
func (h *StockItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid stock item id")
		return
	}

	data, mime, err := store.GetStockItemImage(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

// Export handles GET /api/stock-items/export.
func (h *StockItemsHandler) Export(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListStockItems(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to list stock items")
		return
	}
	items = catalog.Filter(items, r.URL.Query().Get("q"))

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="estoque_%s.xlsx"`, time.Now().Format("20060102_150405")))
	if err := spreadsheet.WriteCatalog(w, items, catalog.Summarize(items, h.LowStockThreshold)); err != nil {
		slog.Error("writing catalog export", "error", err)
	}
}
