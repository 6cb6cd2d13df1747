package workflow

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/erazemk/oficina/internal/model"
)

func filter() model.StockItem {
	return model.StockItem{
		ID:              1,
		Code:            "FIL-2024",
		Description:     "Filtro de Óleo Scania Série 5",
		Brand:           "Mann",
		CurrentQuantity: 10,
		UnitCost:        decimal.RequireFromString("42.90"),
		Unit:            "UN",
	}
}

func mustTransition(t *testing.T, s State, ev Event) (State, []Effect) {
	t.Helper()
	next, effects, err := Transition(s, ev)
	if err != nil {
		t.Fatalf("%T: unexpected error: %v", ev, err)
	}
	return next, effects
}

func withCatalog(items ...model.StockItem) State {
	return State{Catalog: items}
}

func TestCodeBlurAutoFillKeepsQuantity(t *testing.T) {
	s, _ := mustTransition(t, withCatalog(filter()), OpenIntake{})
	s, _ = mustTransition(t, s, SetDraftField{Field: "incoming_quantity", Value: "5"})

	s, effects := mustTransition(t, s, CodeBlur{Code: "fil-2024"})

	if s.Intake.Draft.IncomingQuantity != 5 {
		t.Errorf("expected incoming quantity 5, got %d", s.Intake.Draft.IncomingQuantity)
	}
	if s.Intake.Draft.Description != "Filtro de Óleo Scania Série 5" {
		t.Errorf("expected auto-filled description, got %q", s.Intake.Draft.Description)
	}
	if !s.Intake.Draft.UnitCost.Equal(decimal.RequireFromString("42.90")) {
		t.Errorf("expected auto-filled cost, got %s", s.Intake.Draft.UnitCost)
	}
	if !s.Intake.FeedbackActive {
		t.Error("expected feedback flag after a match")
	}
	if len(effects) != 1 {
		t.Fatalf("expected a feedback timer effect, got %v", effects)
	}
	fb, ok := effects[0].(StartFeedback)
	if !ok {
		t.Fatalf("expected StartFeedback, got %T", effects[0])
	}

	s, _ = mustTransition(t, s, FeedbackExpired{Seq: fb.Seq})
	if s.Intake.FeedbackActive {
		t.Error("expected feedback flag to clear")
	}
}

func TestCodeBlurNoMatch(t *testing.T) {
	s, _ := mustTransition(t, withCatalog(filter()), OpenIntake{})
	s, _ = mustTransition(t, s, SetDraftField{Field: "description", Value: "Correia"})

	s, effects := mustTransition(t, s, CodeBlur{Code: "COR-1"})
	if len(effects) != 0 {
		t.Errorf("expected no effects, got %v", effects)
	}
	if s.Intake.Draft.Description != "Correia" || s.Intake.FeedbackActive {
		t.Errorf("unexpected draft after miss: %+v", s.Intake)
	}
}

func TestStaleFeedbackTimerIgnored(t *testing.T) {
	s, _ := mustTransition(t, withCatalog(filter()), OpenIntake{})
	s, first := mustTransition(t, s, CodeBlur{Code: "FIL-2024"})
	s, _ = mustTransition(t, s, CodeBlur{Code: "FIL-2024"})

	s, _ = mustTransition(t, s, FeedbackExpired{Seq: first[0].(StartFeedback).Seq})
	if !s.Intake.FeedbackActive {
		t.Error("an older timer must not clear a newer acknowledgment")
	}
}

func TestSubmitValidationMakesNoCall(t *testing.T) {
	tests := []struct {
		name  string
		draft model.IntakeDraft
		field string
	}{
		{"missing code", model.IntakeDraft{Description: "x", IncomingQuantity: 1}, "code"},
		{"missing description", model.IntakeDraft{Code: "x", IncomingQuantity: 1}, "description"},
		{"zero quantity", model.IntakeDraft{Code: "x", Description: "x"}, "incoming_quantity"},
		{"negative cost", model.IntakeDraft{Code: "x", Description: "x", IncomingQuantity: 1, UnitCost: decimal.NewFromInt(-1)}, "unit_cost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := mustTransition(t, State{}, OpenIntake{})
			draft := tt.draft
			next, effects, err := Transition(s, SubmitIntake{Draft: &draft})

			var verr *model.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
			if len(effects) != 0 {
				t.Errorf("expected no effects, got %v", effects)
			}
			if !next.Intake.Open || next.Intake.Draft != draft {
				t.Error("expected the form to stay open with the draft")
			}
			if next.InFlight.Submit {
				t.Error("expected no submit in flight")
			}
		})
	}
}

func TestSubmitNewItemCreates(t *testing.T) {
	s, _ := mustTransition(t, withCatalog(filter()), OpenIntake{})
	draft := model.IntakeDraft{Code: " COR-1 ", Description: "Correia", IncomingQuantity: 3, UnitCost: decimal.NewFromInt(55)}

	s, effects := mustTransition(t, s, SubmitIntake{Draft: &draft})

	if len(effects) != 1 {
		t.Fatalf("expected one effect, got %v", effects)
	}
	create, ok := effects[0].(CreateItem)
	if !ok {
		t.Fatalf("expected CreateItem, got %T", effects[0])
	}
	if create.Item.Code != "COR-1" || create.Item.CurrentQuantity != 3 || create.Item.Unit != model.DefaultUnit {
		t.Errorf("unexpected item %+v", create.Item)
	}
	if !s.InFlight.Submit {
		t.Error("expected submit in flight")
	}

	if _, _, err := Transition(s, SubmitIntake{}); !errors.Is(err, ErrInFlight) {
		t.Errorf("expected ErrInFlight on re-entry, got %v", err)
	}
}

func TestCreateFailureKeepsDraft(t *testing.T) {
	s, _ := mustTransition(t, State{}, OpenIntake{})
	draft := model.IntakeDraft{Code: "COR-1", Description: "Correia", IncomingQuantity: 3}
	s, _ = mustTransition(t, s, SubmitIntake{Draft: &draft})

	s, effects := mustTransition(t, s, Created{Err: &model.ConflictError{Message: "Já existe um item com o código COR-1."}})

	if len(effects) != 0 {
		t.Errorf("expected no refresh after failure, got %v", effects)
	}
	if !s.Intake.Open || s.Intake.Draft != draft {
		t.Error("expected form open with draft intact")
	}
	if s.Intake.Error != "Já existe um item com o código COR-1." {
		t.Errorf("unexpected error message %q", s.Intake.Error)
	}
	if s.InFlight.Submit {
		t.Error("expected submit no longer in flight")
	}
}

func TestCreateSuccessClosesAndRefreshes(t *testing.T) {
	s, _ := mustTransition(t, State{}, OpenIntake{})
	draft := model.IntakeDraft{Code: "COR-1", Description: "Correia", IncomingQuantity: 3}
	s, _ = mustTransition(t, s, SubmitIntake{Draft: &draft})

	s, effects := mustTransition(t, s, Created{Item: &model.StockItem{ID: 7}})

	if s.Intake.Open || s.Intake.Draft != (model.IntakeDraft{}) {
		t.Errorf("expected closed form and cleared draft, got %+v", s.Intake)
	}
	if len(effects) != 1 {
		t.Fatalf("expected a refresh, got %v", effects)
	}
	if _, ok := effects[0].(ListItems); !ok {
		t.Errorf("expected ListItems, got %T", effects[0])
	}
}

func TestSubmitDuplicateOpensMerge(t *testing.T) {
	s, _ := mustTransition(t, withCatalog(filter()), OpenIntake{})
	draft := model.IntakeDraft{Code: "fil-2024", Description: "Filtro novo", Brand: "Fram", IncomingQuantity: 5, UnitCost: decimal.NewFromInt(45)}

	s, effects := mustTransition(t, s, SubmitIntake{Draft: &draft})

	if len(effects) != 0 {
		t.Errorf("a duplicate must not create, got %v", effects)
	}
	if s.Merge == nil {
		t.Fatal("expected merge stage")
	}
	if s.Merge.NewQuantity() != 15 {
		t.Errorf("expected new quantity 15, got %d", s.Merge.NewQuantity())
	}

	s, effects = mustTransition(t, s, ConfirmMerge{})
	if len(effects) != 1 {
		t.Fatalf("expected one effect, got %v", effects)
	}
	update, ok := effects[0].(UpdateItem)
	if !ok {
		t.Fatalf("expected UpdateItem, got %T", effects[0])
	}
	if update.ID != 1 {
		t.Errorf("expected update of id 1, got %d", update.ID)
	}
	if update.Item.CurrentQuantity != 15 {
		t.Errorf("expected quantity 15, got %d", update.Item.CurrentQuantity)
	}
	if update.Item.Description != "Filtro novo" || update.Item.Brand != "Fram" || !update.Item.UnitCost.Equal(decimal.NewFromInt(45)) {
		t.Errorf("expected latest descriptive data, got %+v", update.Item)
	}
	if update.Item.Code != "FIL-2024" {
		t.Errorf("expected the existing code to be kept, got %q", update.Item.Code)
	}

	if _, _, err := Transition(s, CancelMerge{}); !errors.Is(err, ErrInFlight) {
		t.Errorf("expected cancel to be refused while merging, got %v", err)
	}
}

func TestCancelMergePreservesDraft(t *testing.T) {
	s, _ := mustTransition(t, withCatalog(filter()), OpenIntake{})
	draft := model.IntakeDraft{Code: "FIL-2024", Description: "Filtro", IncomingQuantity: 5, Unit: "UN"}
	s, _ = mustTransition(t, s, SubmitIntake{Draft: &draft})

	s, _ = mustTransition(t, s, CancelMerge{})

	if s.Merge != nil {
		t.Error("expected merge stage discarded")
	}
	if !s.Intake.Open {
		t.Error("expected intake form to stay open")
	}
	if s.Intake.Draft != draft {
		t.Errorf("expected draft unchanged, got %+v", s.Intake.Draft)
	}
}

func TestMergeFailureKeepsStage(t *testing.T) {
	s, _ := mustTransition(t, withCatalog(filter()), OpenIntake{})
	draft := model.IntakeDraft{Code: "FIL-2024", Description: "Filtro", IncomingQuantity: 5}
	s, _ = mustTransition(t, s, SubmitIntake{Draft: &draft})
	s, _ = mustTransition(t, s, ConfirmMerge{})

	s, _ = mustTransition(t, s, Updated{Err: &model.TransientError{Err: errors.New("timeout")}})

	if s.Merge == nil {
		t.Fatal("expected merge stage to stay open")
	}
	if s.Merge.Error == "" {
		t.Error("expected an error message on the merge stage")
	}
	if s.InFlight.Merge {
		t.Error("expected merge no longer in flight")
	}
	if _, _, err := Transition(s, ConfirmMerge{}); err != nil {
		t.Errorf("expected retry to be accepted, got %v", err)
	}
}

func TestDeletionGuardStages(t *testing.T) {
	item := filter()
	s := withCatalog(item)

	if _, _, err := Transition(s, ProceedDelete{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected proceed from closed to be invalid, got %v", err)
	}

	s, _ = mustTransition(t, s, OpenDelete{Target: item})
	if s.Delete.Stage != AwaitingInitialConfirm || s.Delete.TypedText != "" {
		t.Fatalf("unexpected guard %+v", s.Delete)
	}
	if _, _, err := Transition(s, ConfirmDelete{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected confirm before proceed to be invalid, got %v", err)
	}

	cancelled, _ := mustTransition(t, s, CancelDelete{})
	if cancelled.Delete.Stage != Closed || cancelled.Delete.Target != nil {
		t.Errorf("expected closed guard after cancel, got %+v", cancelled.Delete)
	}

	s, _ = mustTransition(t, s, ProceedDelete{})
	if s.Delete.Stage != AwaitingTypedConfirm {
		t.Fatalf("expected typed stage, got %s", s.Delete.Stage)
	}
	s, _ = mustTransition(t, s, SetTypedText{Text: "Filtro"})
	s, _ = mustTransition(t, s, SetTypedText{Text: "Filtro de Óleo"})
	if s.Delete.TypedText != "Filtro de Óleo" {
		t.Errorf("expected text to be replaced, got %q", s.Delete.TypedText)
	}

	cancelled, _ = mustTransition(t, s, CancelDelete{})
	if cancelled.Delete != (DeletionGuard{}) {
		t.Errorf("expected everything discarded, got %+v", cancelled.Delete)
	}
}

func TestDeletionGateExactness(t *testing.T) {
	item := filter()
	s, _ := mustTransition(t, withCatalog(item), OpenDelete{Target: item})
	s, _ = mustTransition(t, s, ProceedDelete{})

	for _, typed := range []string{
		"Filtro de oleo scania serie 5",
		"filtro de óleo scania série 5",
		"Filtro de Óleo Scania Série 5 ",
		"",
	} {
		s, _ = mustTransition(t, s, SetTypedText{Text: typed})
		if s.Delete.CanConfirm() {
			t.Errorf("%q: expected gate closed", typed)
		}
		next, effects, err := Transition(s, ConfirmDelete{})
		var verr *model.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%q: expected ValidationError, got %v", typed, err)
		}
		if len(effects) != 0 || next.InFlight.Delete || next.Delete.Stage != AwaitingTypedConfirm {
			t.Errorf("%q: expected no call and unchanged stage", typed)
		}
	}

	s, _ = mustTransition(t, s, SetTypedText{Text: "Filtro de Óleo Scania Série 5"})
	if !s.Delete.CanConfirm() {
		t.Fatal("expected gate open on exact text")
	}
	_, effects := mustTransition(t, s, ConfirmDelete{})
	if len(effects) != 1 || effects[0] != (DeleteItem{ID: 1}) {
		t.Errorf("expected DeleteItem{1}, got %v", effects)
	}
}

func TestDeleteFailureKeepsStage(t *testing.T) {
	item := filter()
	s, _ := mustTransition(t, withCatalog(item), OpenDelete{Target: item})
	s, _ = mustTransition(t, s, ProceedDelete{})
	s, _ = mustTransition(t, s, SetTypedText{Text: item.Description})
	s, _ = mustTransition(t, s, ConfirmDelete{})

	s, effects := mustTransition(t, s, Deleted{Err: &model.ConflictError{Message: "Item vinculado à OS #12, que ainda está aberta."}})

	if len(effects) != 0 {
		t.Errorf("expected no refresh after failure, got %v", effects)
	}
	if s.Delete.Stage != AwaitingTypedConfirm {
		t.Errorf("expected typed stage, got %s", s.Delete.Stage)
	}
	if s.Delete.Error != "Item vinculado à OS #12, que ainda está aberta." {
		t.Errorf("expected verbatim message, got %q", s.Delete.Error)
	}
	if s.Delete.TypedText != item.Description {
		t.Errorf("expected typed text preserved, got %q", s.Delete.TypedText)
	}

	s, _ = mustTransition(t, s, ConfirmDelete{})
	s, _ = mustTransition(t, s, Deleted{Err: &model.TransientError{Err: errors.New("connection reset")}})
	if s.Delete.Error != "Não foi possível excluir o item." {
		t.Errorf("expected generic message, got %q", s.Delete.Error)
	}
}

func TestOpenDeleteRequiresPersistedTarget(t *testing.T) {
	if _, _, err := Transition(State{}, OpenDelete{Target: model.StockItem{Code: "X"}}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected invalid transition, got %v", err)
	}
}

func TestStaleListIgnored(t *testing.T) {
	s, first := mustTransition(t, State{}, Refresh{})
	// A mutation finishing meanwhile requests a newer list.
	s.InFlight.Submit = true
	s, second := mustTransition(t, s, Created{Item: &model.StockItem{ID: 2}})

	fresh := []model.StockItem{{ID: 1}, {ID: 2}}
	s, _ = mustTransition(t, s, Listed{Seq: second[0].(ListItems).Seq, Items: fresh})
	s, _ = mustTransition(t, s, Listed{Seq: first[0].(ListItems).Seq, Items: []model.StockItem{{ID: 1}}})

	if len(s.Catalog) != 2 {
		t.Errorf("expected the newest list to win, got %d items", len(s.Catalog))
	}
	if s.InFlight.Refresh {
		t.Error("expected refresh no longer in flight")
	}
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	s, _ := mustTransition(t, withCatalog(filter()), OpenIntake{})
	draft := model.IntakeDraft{Code: "FIL-2024", Description: "Filtro", IncomingQuantity: 5}
	s, _ = mustTransition(t, s, SubmitIntake{Draft: &draft})

	mustTransition(t, s, ConfirmMerge{})
	if s.InFlight.Merge || s.Merge.Error != "" {
		t.Error("Transition modified its input state")
	}
}

func TestParseCost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"42.90", "42.9"},
		{"42,90", "42.9"},
		{"R$ 1.234,56", "1234.56"},
		{"", "0"},
	}
	for _, tt := range tests {
		got, err := ParseCost(tt.in)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.in, tt.want, got)
		}
	}

	if _, err := ParseCost("abc"); err == nil {
		t.Error("expected error for non-numeric cost")
	}
	if _, err := ParseQuantity("2.5"); err == nil {
		t.Error("expected error for fractional quantity")
	}
}
