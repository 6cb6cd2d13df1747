package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/erazemk/oficina/internal/db"
	"github.com/erazemk/oficina/internal/model"
)

func TestServiceOrderItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateStockItem(ctx, database, newItem("PAS-01", "Pastilha de freio", 8, "80"))
	order, _ := CreateServiceOrder(ctx, database, "João", "Volvo FH")
	if order.Status != model.ServiceOrderOpen {
		t.Fatalf("expected open order, got %q", order.Status)
	}

	added, err := AddServiceOrderItem(ctx, database, order.ID, item.ID, 2, decimal.RequireFromString("120"))
	if err != nil {
		t.Fatalf("AddServiceOrderItem: %v", err)
	}
	if !added.Subtotal().Equal(decimal.NewFromInt(240)) {
		t.Errorf("expected subtotal 240, got %s", added.Subtotal())
	}

	items, err := ListServiceOrderItems(ctx, database, order.ID)
	if err != nil {
		t.Fatalf("ListServiceOrderItems: %v", err)
	}
	if len(items) != 1 || items[0].Code != "PAS-01" {
		t.Errorf("unexpected items %+v", items)
	}
}

func TestAddServiceOrderItemRules(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateStockItem(ctx, database, newItem("PAS-01", "Pastilha", 8, "80"))
	order, _ := CreateServiceOrder(ctx, database, "João", "")

	_, err := AddServiceOrderItem(ctx, database, order.ID, item.ID, 0, decimal.Zero)
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for zero quantity, got %v", err)
	}

	_, err = AddServiceOrderItem(ctx, database, order.ID, 999, 1, decimal.Zero)
	var nf *model.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError for unknown stock item, got %v", err)
	}

	FinishServiceOrder(ctx, database, order.ID)
	_, err = AddServiceOrderItem(ctx, database, order.ID, item.ID, 1, decimal.Zero)
	var conflict *model.ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("expected ConflictError for finished order, got %v", err)
	}
}
