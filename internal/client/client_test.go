package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/oficina/internal/api"
	"github.com/erazemk/oficina/internal/auth"
	"github.com/erazemk/oficina/internal/db"
	"github.com/erazemk/oficina/internal/model"
	"github.com/erazemk/oficina/internal/store"
	"github.com/erazemk/oficina/internal/workflow"
)

const secret = "client-test-secret"

var _ workflow.Collaborator = (*Client)(nil)

func setup(t *testing.T) (*Client, *httptest.Server) {
	t.Helper()
	database := db.NewTestDB(t)
	server := httptest.NewServer(api.NewRouter(database, secret, 5))
	t.Cleanup(server.Close)

	token, err := auth.GenerateToken(secret, "test", false, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	c := New(server.URL+"/", token, 5*time.Second)

	// Seed a finished service order referencing a stock item through the store.
	item, _ := store.CreateStockItem(context.Background(), database, model.StockItem{
		Code: "PAS-01", Description: "Pastilha", CurrentQuantity: 4, UnitCost: decimal.NewFromInt(80),
	})
	order, _ := store.CreateServiceOrder(context.Background(), database, "João", "")
	store.AddServiceOrderItem(context.Background(), database, order.ID, item.ID, 1, decimal.NewFromInt(120))
	return c, server
}

func TestClientCRUD(t *testing.T) {
	c, _ := setup(t)
	ctx := context.Background()

	created, err := c.Create(ctx, model.StockItem{
		Code: "FIL-2024", Description: "Filtro", CurrentQuantity: 10, UnitCost: decimal.RequireFromString("42.90"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 || created.Unit != model.DefaultUnit {
		t.Errorf("unexpected created item %+v", created)
	}

	_, err = c.Create(ctx, model.StockItem{Code: "fil-2024", Description: "Outro", CurrentQuantity: 1})
	var conflict *model.ConflictError
	if !errors.As(err, &conflict) || conflict.Message == "" {
		t.Errorf("expected ConflictError with message, got %v", err)
	}

	created.CurrentQuantity = 15
	updated, err := c.Update(ctx, created.ID, *created)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.CurrentQuantity != 15 {
		t.Errorf("expected 15, got %d", updated.CurrentQuantity)
	}

	_, err = c.Update(ctx, 999, *created)
	var nf *model.NotFoundError
	if !errors.As(err, &nf) || nf.ID != 999 {
		t.Errorf("expected NotFoundError for 999, got %v", err)
	}

	items, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}

	if err := c.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestClientDeleteConflictMessageVerbatim(t *testing.T) {
	c, _ := setup(t)
	ctx := context.Background()

	items, _ := c.List(ctx)
	err := c.Delete(ctx, items[0].ID)

	var conflict *model.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Message != "Item vinculado à OS #1, que ainda está aberta." {
		t.Errorf("unexpected message %q", conflict.Message)
	}
	if workflow.DeleteMessage(err) != conflict.Message {
		t.Error("expected the workflow to surface the message verbatim")
	}
}

func TestClientValidationFromServer(t *testing.T) {
	c, _ := setup(t)

	_, err := c.Create(context.Background(), model.StockItem{Code: "X", CurrentQuantity: 1})
	var verr *model.ValidationError
	if !errors.As(err, &verr) || verr.Message != "Informe a descrição." {
		t.Errorf("expected server validation message, got %v", err)
	}
}

func TestClientTransientErrors(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusBadGateway)
	}))
	defer failing.Close()

	var transient *model.TransientError
	c := New(failing.URL, "t", time.Second)
	if _, err := c.List(context.Background()); !errors.As(err, &transient) {
		t.Errorf("expected TransientError for 502, got %v", err)
	}

	failing.Close()
	if _, err := c.List(context.Background()); !errors.As(err, &transient) {
		t.Errorf("expected TransientError for closed server, got %v", err)
	}
}

func TestClientRejectsInvalidRecords(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"code":"","description":"sem código","current_quantity":1,"unit_cost":"1"}]`))
	}))
	defer bad.Close()

	_, err := New(bad.URL, "t", time.Second).List(context.Background())
	var transient *model.TransientError
	if !errors.As(err, &transient) {
		t.Errorf("expected invalid record to be rejected, got %v", err)
	}
}

func TestClientDrivesWorkflow(t *testing.T) {
	c, _ := setup(t)
	ctx := context.Background()
	ctrl := workflow.New(c, workflow.Options{})

	if err := ctrl.Dispatch(ctx, workflow.Refresh{}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	ctrl.Dispatch(ctx, workflow.OpenIntake{})
	draft := model.IntakeDraft{Code: "pas-01", Description: "Pastilha cerâmica", IncomingQuantity: 6, UnitCost: decimal.NewFromInt(85)}
	ctrl.Dispatch(ctx, workflow.SubmitIntake{Draft: &draft})
	if err := ctrl.Dispatch(ctx, workflow.ConfirmMerge{}); err != nil {
		t.Fatalf("ConfirmMerge: %v", err)
	}

	s := ctrl.Snapshot()
	if len(s.Catalog) != 1 || s.Catalog[0].CurrentQuantity != 10 {
		t.Errorf("expected merged quantity 10, got %+v", s.Catalog)
	}
	fresh, _ := c.List(ctx)
	if !fresh[0].UpdatedAt.Equal(s.Catalog[0].UpdatedAt) || fresh[0].Description != s.Catalog[0].Description {
		t.Error("expected catalog to match a fresh list")
	}
}
