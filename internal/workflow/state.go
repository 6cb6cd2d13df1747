// Package workflow implements the inventory intake, merge and guarded
// deletion workflow of the stock screen.
//
// The workflow is an explicit State advanced by the pure Transition function.
// Transition never talks to the backend; it returns the Effects to perform,
// and the Controller runs them against a Collaborator and feeds the results
// back in as events.
package workflow

import (
	"context"

	"github.com/erazemk/oficina/internal/model"
)

// Collaborator is the stock item backend the workflow depends on.
type Collaborator interface {
	List(ctx context.Context) ([]model.StockItem, error)
	Create(ctx context.Context, item model.StockItem) (*model.StockItem, error)
	Update(ctx context.Context, id int64, item model.StockItem) (*model.StockItem, error)
	Delete(ctx context.Context, id int64) error
}

// Stage is the position of the deletion guard.
type Stage int

const (
	Closed Stage = iota
	AwaitingInitialConfirm
	AwaitingTypedConfirm
)

func (s Stage) String() string {
	switch s {
	case Closed:
		return "closed"
	case AwaitingInitialConfirm:
		return "awaiting_initial_confirm"
	case AwaitingTypedConfirm:
		return "awaiting_typed_confirm"
	default:
		return "unknown"
	}
}

// State is everything the stock screen renders.
type State struct {
	Catalog []model.StockItem
	Intake  Intake
	Merge   *MergeStage
	Delete  DeletionGuard

	// Error holds the last catalog refresh failure.
	Error string

	InFlight InFlight

	refreshSeq uint64
}

// Intake is the new-entry form.
type Intake struct {
	Open           bool
	Draft          model.IntakeDraft
	FeedbackActive bool
	Error          string

	feedbackSeq uint64
}

// MergeStage is shown when a submitted draft matches an existing code.
type MergeStage struct {
	Existing model.StockItem
	Incoming model.IntakeDraft
	Error    string
}

// NewQuantity is the stock level after the merge.
func (m MergeStage) NewQuantity() int64 {
	return m.Existing.CurrentQuantity + m.Incoming.IncomingQuantity
}

// Merged is the record sent to the backend on confirmation. Quantity is
// added; cost, description and brand take the incoming values.
func (m MergeStage) Merged() model.StockItem {
	item := m.Existing
	incoming := m.Incoming.StockItem()
	item.CurrentQuantity = m.NewQuantity()
	item.UnitCost = incoming.UnitCost
	item.Description = incoming.Description
	item.Brand = incoming.Brand
	return item
}

// DeletionGuard is the two-stage, retype-to-confirm delete dialog.
type DeletionGuard struct {
	Stage     Stage
	Target    *model.StockItem
	TypedText string
	Error     string
}

// CanConfirm reports whether the typed text matches the target description
// byte for byte.
func (g DeletionGuard) CanConfirm() bool {
	return g.Stage == AwaitingTypedConfirm && g.Target != nil && g.TypedText == g.Target.Description
}

// InFlight marks actions whose backend call is outstanding.
type InFlight struct {
	Submit  bool
	Merge   bool
	Delete  bool
	Refresh bool
}

// Clone returns a copy of s that shares no mutable memory with it.
func (s State) Clone() State {
	out := s
	if s.Catalog != nil {
		out.Catalog = make([]model.StockItem, len(s.Catalog))
		copy(out.Catalog, s.Catalog)
	}
	if s.Merge != nil {
		m := *s.Merge
		out.Merge = &m
	}
	if s.Delete.Target != nil {
		t := *s.Delete.Target
		out.Delete.Target = &t
	}
	return out
}
