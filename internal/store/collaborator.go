package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/oficina/internal/model"
)

// StockItems exposes the stock item table as the CRUD collaborator the
// inventory workflow consumes when running against a local database.
type StockItems struct {
	DB *sql.DB
}

// List returns the full catalog.
func (s *StockItems) List(ctx context.Context) ([]model.StockItem, error) {
	items, err := ListStockItems(ctx, s.DB)
	if err != nil {
		return nil, &model.TransientError{Err: err}
	}
	return items, nil
}

// Create persists a new stock item.
func (s *StockItems) Create(ctx context.Context, item model.StockItem) (*model.StockItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	created, err := CreateStockItem(ctx, s.DB, item)
	return created, classify(err)
}

// Update overwrites the stock item with the given id.
func (s *StockItems) Update(ctx context.Context, id int64, item model.StockItem) (*model.StockItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	updated, err := UpdateStockItem(ctx, s.DB, id, item)
	return updated, classify(err)
}

// Delete permanently removes the stock item with the given id.
func (s *StockItems) Delete(ctx context.Context, id int64) error {
	return classify(DeleteStockItem(ctx, s.DB, id))
}

// classify passes domain errors through and marks everything else as
// transient so callers may retry.
func classify(err error) error {
	switch err.(type) {
	case nil:
		return nil
	case *model.ConflictError, *model.NotFoundError, *model.ValidationError:
		return err
	default:
		return &model.TransientError{Err: err}
	}
}
