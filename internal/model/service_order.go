package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceOrder is a work order opened for a customer's vehicle.
type ServiceOrder struct {
	ID        int64      `json:"id"`
	Customer  string     `json:"customer"`
	Vehicle   string     `json:"vehicle,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// Service order statuses.
const (
	ServiceOrderOpen     = "ABERTA"
	ServiceOrderFinished = "FINALIZADA"
)

// ServiceOrderItem is a part consumed by a service order.
type ServiceOrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	StockItemID int64           `json:"stock_item_id"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`

	// Joined fields (not always populated).
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

// Subtotal is quantity times unit price.
func (i ServiceOrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}
