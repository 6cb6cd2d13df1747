package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultUnit is the unit of measure used when none is given.
const DefaultUnit = "UN"

// StockItem represents a part or consumable kept in the shop's stock.
type StockItem struct {
	ID              int64           `json:"id,omitempty"`
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	Brand           string          `json:"brand"`
	CurrentQuantity int64           `json:"current_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Unit            string          `json:"unit"`
	ImageMime       string          `json:"image_mime,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Persisted reports whether the item has been assigned an ID by the backend.
func (s StockItem) Persisted() bool {
	return s.ID > 0
}

// TotalValue is the cost of everything on hand.
func (s StockItem) TotalValue() decimal.Decimal {
	return s.UnitCost.Mul(decimal.NewFromInt(s.CurrentQuantity))
}

// Validate checks that a stock item record is well formed.
func (s StockItem) Validate() error {
	if strings.TrimSpace(s.Code) == "" {
		return &ValidationError{Field: "code", Message: "Informe o código da peça."}
	}
	if strings.TrimSpace(s.Description) == "" {
		return &ValidationError{Field: "description", Message: "Informe a descrição."}
	}
	if s.CurrentQuantity < 0 {
		return &ValidationError{Field: "current_quantity", Message: "A quantidade não pode ser negativa."}
	}
	if s.UnitCost.IsNegative() {
		return &ValidationError{Field: "unit_cost", Message: "O preço de custo não pode ser negativo."}
	}
	return nil
}

// IntakeDraft is the pending entry of the intake form. IncomingQuantity is
// the amount being received, never the stock already on hand.
type IntakeDraft struct {
	Code             string          `json:"code"`
	Description      string          `json:"description"`
	Brand            string          `json:"brand"`
	IncomingQuantity int64           `json:"incoming_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Unit             string          `json:"unit"`
}

// NewIntakeDraft returns an empty draft with the default unit.
func NewIntakeDraft() IntakeDraft {
	return IntakeDraft{Unit: DefaultUnit}
}

// Validate is the local gate applied before a draft may be submitted.
func (d IntakeDraft) Validate() error {
	if strings.TrimSpace(d.Code) == "" {
		return &ValidationError{Field: "code", Message: "Informe o código da peça."}
	}
	if strings.TrimSpace(d.Description) == "" {
		return &ValidationError{Field: "description", Message: "Informe a descrição."}
	}
	if d.IncomingQuantity <= 0 {
		return &ValidationError{Field: "incoming_quantity", Message: "A quantidade deve ser um número inteiro maior que zero."}
	}
	if d.UnitCost.IsNegative() {
		return &ValidationError{Field: "unit_cost", Message: "O preço de custo não pode ser negativo."}
	}
	return nil
}

// StockItem converts the draft into a new, not yet persisted item.
func (d IntakeDraft) StockItem() StockItem {
	unit := strings.TrimSpace(d.Unit)
	if unit == "" {
		unit = DefaultUnit
	}
	return StockItem{
		Code:            strings.TrimSpace(d.Code),
		Description:     strings.TrimSpace(d.Description),
		Brand:           strings.TrimSpace(d.Brand),
		CurrentQuantity: d.IncomingQuantity,
		UnitCost:        d.UnitCost,
		Unit:            unit,
	}
}
