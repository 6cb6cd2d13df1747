package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/erazemk/oficina/internal/model"
)

// CreateServiceOrder opens a new service order.
func CreateServiceOrder(ctx context.Context, db *sql.DB, customer, vehicle string) (*model.ServiceOrder, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO service_orders (customer, vehicle) VALUES (?, ?)`,
		customer, vehicle,
	)
	if err != nil {
		return nil, fmt.Errorf("creating service order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting service order id: %w", err)
	}

	return GetServiceOrder(ctx, db, id)
}

// GetServiceOrder returns a service order by ID.
func GetServiceOrder(ctx context.Context, db *sql.DB, id int64) (*model.ServiceOrder, error) {
	o := &model.ServiceOrder{}
	err := db.QueryRowContext(ctx,
		`SELECT id, customer, vehicle, status, created_at, closed_at
		 FROM service_orders WHERE id = ?`, id,
	).Scan(&o.ID, &o.Customer, &o.Vehicle, &o.Status, &o.CreatedAt, &o.ClosedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting service order: %w", err)
	}
	return o, nil
}

// FinishServiceOrder marks an open service order as finished.
func FinishServiceOrder(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE service_orders SET status = 'FINALIZADA', closed_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = 'ABERTA'`, id,
	)
	if err != nil {
		return fmt.Errorf("finishing service order: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &model.NotFoundError{Resource: "open service order", ID: id}
	}
	return nil
}

// AddServiceOrderItem records a stock item used by an open service order.
func AddServiceOrderItem(ctx context.Context, db *sql.DB, orderID, stockItemID, quantity int64, unitPrice decimal.Decimal) (*model.ServiceOrderItem, error) {
	if quantity <= 0 {
		return nil, &model.ValidationError{Field: "quantity", Message: "A quantidade deve ser maior que zero."}
	}

	order, err := GetServiceOrder(ctx, db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &model.NotFoundError{Resource: "service order", ID: orderID}
	}
	if order.Status != model.ServiceOrderOpen {
		return nil, &model.ConflictError{Message: fmt.Sprintf("A OS #%d já foi finalizada.", orderID)}
	}

	item, err := GetStockItem(ctx, db, stockItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &model.NotFoundError{Resource: "stock item", ID: stockItemID}
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO service_order_items (order_id, stock_item_id, quantity, unit_price) VALUES (?, ?, ?, ?)`,
		orderID, stockItemID, quantity, unitPrice,
	)
	if err != nil {
		return nil, fmt.Errorf("adding service order item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting service order item id: %w", err)
	}

	return &model.ServiceOrderItem{
		ID:          id,
		OrderID:     orderID,
		StockItemID: stockItemID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Code:        item.Code,
		Description: item.Description,
	}, nil
}

// ListServiceOrderItems returns the line items of a service order.
func ListServiceOrderItems(ctx context.Context, db *sql.DB, orderID int64) ([]model.ServiceOrderItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.id, i.order_id, i.stock_item_id, i.quantity, i.unit_price, s.code, s.description
		 FROM service_order_items i
		 JOIN stock_items s ON s.id = i.stock_item_id
		 WHERE i.order_id = ?
		 ORDER BY i.id`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing service order items: %w", err)
	}
	defer rows.Close()

	var items []model.ServiceOrderItem
	for rows.Next() {
		var it model.ServiceOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.StockItemID, &it.Quantity, &it.UnitPrice, &it.Code, &it.Description); err != nil {
			return nil, fmt.Errorf("scanning service order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
