package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Action("submit", "created")
	m.Action("submit", "created")
	m.Action("delete", "conflict")
	m.Call("create", nil, 10*time.Millisecond)
	m.Call("create", errors.New("boom"), 10*time.Millisecond)
	m.CatalogSize(7)
	m.Request("GET", 200, time.Millisecond)

	if got := testutil.ToFloat64(m.WorkflowActions.WithLabelValues("submit", "created")); got != 2 {
		t.Errorf("expected 2 created submits, got %v", got)
	}
	if got := testutil.ToFloat64(m.WorkflowActions.WithLabelValues("delete", "conflict")); got != 1 {
		t.Errorf("expected 1 delete conflict, got %v", got)
	}
	if got := testutil.ToFloat64(m.CatalogItems); got != 7 {
		t.Errorf("expected catalog gauge 7, got %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "200")); got != 1 {
		t.Errorf("expected 1 request, got %v", got)
	}
	if n := testutil.CollectAndCount(m.CollaboratorCalls); n != 2 {
		t.Errorf("expected 2 collaborator call series, got %d", n)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.Action("submit", "created")
	m.Call("list", nil, time.Second)
	m.CatalogSize(1)
	m.Request("GET", 200, time.Second)
}
