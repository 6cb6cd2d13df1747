package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/oficina/internal/db"
	"github.com/erazemk/oficina/internal/model"
)

func TestStockItemsCollaborator(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	c := &StockItems{DB: database}

	created, err := c.Create(ctx, newItem("FIL-2024", "Filtro", 10, "42.90"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = c.Create(ctx, newItem("FIL-2024", "Filtro", 1, "1"))
	var conflict *model.ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("expected ConflictError, got %v", err)
	}

	_, err = c.Create(ctx, newItem("", "Sem código", 1, "1"))
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for blank code, got %v", err)
	}

	created.CurrentQuantity = 20
	if _, err := c.Update(ctx, created.ID, *created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	items, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].CurrentQuantity != 20 {
		t.Errorf("unexpected catalog %+v", items)
	}

	if err := c.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var nf *model.NotFoundError
	if err := c.Delete(ctx, created.ID); !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestStockItemsCollaboratorTransient(t *testing.T) {
	database := db.NewTestDB(t)
	c := &StockItems{DB: database}
	database.Close()

	_, err := c.List(context.Background())
	var transient *model.TransientError
	if !errors.As(err, &transient) {
		t.Errorf("expected TransientError on closed database, got %v", err)
	}
}
