package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, tokenSecret string, lowStockThreshold int64) http.Handler {
	mux := http.NewServeMux()

	stockItems := &StockItemsHandler{DB: db, LowStockThreshold: lowStockThreshold}
	serviceOrders := &ServiceOrdersHandler{DB: db}

	authMW := AuthMiddleware(tokenSecret)
	read := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	write := func(h http.HandlerFunc) http.Handler { return authMW(RequireWrite(h)) }

	// Stock items.
	mux.Handle("GET /api/stock-items", read(stockItems.List))
	mux.Handle("POST /api/stock-items", write(stockItems.Create))
	mux.Handle("GET /api/stock-items/summary", read(stockItems.Summary))
	mux.Handle("GET /api/stock-items/export", read(stockItems.Export))
	mux.Handle("GET /api/stock-items/{id}", read(stockItems.Get))
	mux.Handle("PUT /api/stock-items/{id}", write(stockItems.Update))
	mux.Handle("DELETE /api/stock-items/{id}", write(stockItems.Delete))
	mux.Handle("PUT /api/stock-items/{id}/image", write(stockItems.UploadImage))
	mux.Handle("GET /api/stock-items/{id}/image", read(stockItems.GetImage))

	// Service orders.
	mux.Handle("POST /api/service-orders", write(serviceOrders.Create))
	mux.Handle("GET /api/service-orders/{id}", read(serviceOrders.Get))
	mux.Handle("POST /api/service-orders/{id}/finish", write(serviceOrders.Finish))
	mux.Handle("GET /api/service-orders/{id}/items", read(serviceOrders.ListItems))
	mux.Handle("POST /api/service-orders/{id}/items", write(serviceOrders.AddItem))

	return mux
}
