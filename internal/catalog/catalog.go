// Package catalog holds pure helpers over an in-memory list of stock items.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/erazemk/oficina/internal/model"
)

// DefaultLowStockThreshold is the quantity below which an item counts as
// running low.
const DefaultLowStockThreshold = 5

// Normalize trims and case-folds s for comparison.
func Normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// FindByCode returns the item whose code matches code, ignoring case and
// surrounding whitespace. A blank code never matches.
func FindByCode(items []model.StockItem, code string) (model.StockItem, bool) {
	want := Normalize(code)
	if want == "" {
		return model.StockItem{}, false
	}
	for _, item := range items {
		if Normalize(item.Code) == want {
			return item, true
		}
	}
	return model.StockItem{}, false
}

// Filter returns the items whose code, description or brand contain query.
// An empty query returns items unchanged.
func Filter(items []model.StockItem, query string) []model.StockItem {
	q := Normalize(query)
	if q == "" {
		return items
	}
	var out []model.StockItem
	for _, item := range items {
		if strings.Contains(Normalize(item.Code), q) ||
			strings.Contains(Normalize(item.Description), q) ||
			strings.Contains(Normalize(item.Brand), q) {
			out = append(out, item)
		}
	}
	return out
}

// IsLowStock reports whether the item is below threshold.
func IsLowStock(item model.StockItem, threshold int64) bool {
	return item.CurrentQuantity < threshold
}

// Summary aggregates a catalog for the dashboard cards.
type Summary struct {
	Count      int             `json:"count"`
	TotalValue decimal.Decimal `json:"total_value"`
	LowStock   int             `json:"low_stock"`
}

// Summarize computes the item count, the total stock value and how many
// items are below threshold.
func Summarize(items []model.StockItem, threshold int64) Summary {
	s := Summary{Count: len(items), TotalValue: decimal.Zero}
	for _, item := range items {
		s.TotalValue = s.TotalValue.Add(item.TotalValue())
		if IsLowStock(item, threshold) {
			s.LowStock++
		}
	}
	return s
}
