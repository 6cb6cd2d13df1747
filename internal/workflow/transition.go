package workflow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/erazemk/oficina/internal/catalog"
	"github.com/erazemk/oficina/internal/model"
)

var (
	// ErrInFlight is returned when an action is dispatched while its own
	// backend call is still outstanding.
	ErrInFlight = errors.New("action already in progress")

	// ErrInvalidTransition is returned when an event does not apply to the
	// current state.
	ErrInvalidTransition = errors.New("invalid transition")
)

// Transition applies ev to s. It never performs I/O: backend calls and
// timers are returned as effects. When it returns an error the returned
// state is still the one to keep.
func Transition(s State, ev Event) (State, []Effect, error) {
	next := s.Clone()

	switch ev := ev.(type) {
	case OpenIntake:
		if next.Intake.Open {
			return next, nil, nil
		}
		next.Intake = Intake{Open: true, Draft: model.NewIntakeDraft(), feedbackSeq: next.Intake.feedbackSeq}
		return next, nil, nil

	case CloseIntake:
		if next.InFlight.Submit || next.InFlight.Merge {
			return s, nil, ErrInFlight
		}
		next.Intake = Intake{feedbackSeq: next.Intake.feedbackSeq}
		next.Merge = nil
		return next, nil, nil

	case SetDraftField:
		if !next.Intake.Open || next.Merge != nil {
			return s, nil, invalid(ev)
		}
		if err := setField(&next.Intake.Draft, ev.Field, ev.Value); err != nil {
			return s, nil, err
		}
		return next, nil, nil

	case CodeBlur:
		if !next.Intake.Open || next.Merge != nil {
			return s, nil, invalid(ev)
		}
		next.Intake.Draft.Code = ev.Code
		match, ok := catalog.FindByCode(next.Catalog, ev.Code)
		if !ok {
			return next, nil, nil
		}
		next.Intake.Draft.Description = match.Description
		next.Intake.Draft.Brand = match.Brand
		next.Intake.Draft.UnitCost = match.UnitCost
		next.Intake.FeedbackActive = true
		next.Intake.feedbackSeq++
		return next, []Effect{StartFeedback{Seq: next.Intake.feedbackSeq}}, nil

	case FeedbackExpired:
		if ev.Seq == next.Intake.feedbackSeq {
			next.Intake.FeedbackActive = false
		}
		return next, nil, nil

	case SubmitIntake:
		if !next.Intake.Open || next.Merge != nil {
			return s, nil, invalid(ev)
		}
		if next.InFlight.Submit {
			return s, nil, ErrInFlight
		}
		if ev.Draft != nil {
			next.Intake.Draft = *ev.Draft
		}
		if err := next.Intake.Draft.Validate(); err != nil {
			next.Intake.Error = UserMessage(err)
			return next, nil, err
		}
		next.Intake.Error = ""

		// Looked up again here since the code may have changed after blur.
		if match, ok := catalog.FindByCode(next.Catalog, next.Intake.Draft.Code); ok {
			next.Merge = &MergeStage{Existing: match, Incoming: next.Intake.Draft}
			return next, nil, nil
		}
		next.InFlight.Submit = true
		return next, []Effect{CreateItem{Item: next.Intake.Draft.StockItem()}}, nil

	case Created:
		next.InFlight.Submit = false
		if ev.Err != nil {
			next.Intake.Error = UserMessage(ev.Err)
			return next, nil, nil
		}
		next.Intake = Intake{feedbackSeq: next.Intake.feedbackSeq}
		return refresh(next)

	case ConfirmMerge:
		if next.Merge == nil {
			return s, nil, invalid(ev)
		}
		if next.InFlight.Merge {
			return s, nil, ErrInFlight
		}
		next.InFlight.Merge = true
		next.Merge.Error = ""
		return next, []Effect{UpdateItem{ID: next.Merge.Existing.ID, Item: next.Merge.Merged()}}, nil

	case Updated:
		next.InFlight.Merge = false
		if ev.Err != nil {
			if next.Merge != nil {
				next.Merge.Error = UserMessage(ev.Err)
			}
			return next, nil, nil
		}
		next.Merge = nil
		next.Intake = Intake{feedbackSeq: next.Intake.feedbackSeq}
		return refresh(next)

	case CancelMerge:
		if next.Merge == nil {
			return s, nil, invalid(ev)
		}
		if next.InFlight.Merge {
			return s, nil, ErrInFlight
		}
		next.Merge = nil
		return next, nil, nil

	case OpenDelete:
		if next.Delete.Stage != Closed || !ev.Target.Persisted() {
			return s, nil, invalid(ev)
		}
		target := ev.Target
		next.Delete = DeletionGuard{Stage: AwaitingInitialConfirm, Target: &target}
		return next, nil, nil

	case ProceedDelete:
		if next.Delete.Stage != AwaitingInitialConfirm {
			return s, nil, invalid(ev)
		}
		next.Delete.Stage = AwaitingTypedConfirm
		return next, nil, nil

	case SetTypedText:
		if next.Delete.Stage != AwaitingTypedConfirm {
			return s, nil, invalid(ev)
		}
		next.Delete.TypedText = ev.Text
		return next, nil, nil

	case ConfirmDelete:
		if next.Delete.Stage != AwaitingTypedConfirm {
			return s, nil, invalid(ev)
		}
		if next.InFlight.Delete {
			return s, nil, ErrInFlight
		}
		if !next.Delete.CanConfirm() {
			return s, nil, &model.ValidationError{Field: "typed_text", Message: "O texto digitado não confere com a descrição do item."}
		}
		next.InFlight.Delete = true
		next.Delete.Error = ""
		return next, []Effect{DeleteItem{ID: next.Delete.Target.ID}}, nil

	case Deleted:
		next.InFlight.Delete = false
		if ev.Err != nil {
			next.Delete.Error = DeleteMessage(ev.Err)
			return next, nil, nil
		}
		next.Delete = DeletionGuard{}
		return refresh(next)

	case CancelDelete:
		if next.Delete.Stage == Closed {
			return s, nil, invalid(ev)
		}
		if next.InFlight.Delete {
			return s, nil, ErrInFlight
		}
		next.Delete = DeletionGuard{}
		return next, nil, nil

	case Refresh:
		if next.InFlight.Refresh {
			return s, nil, ErrInFlight
		}
		return refresh(next)

	case Listed:
		// Only the latest requested list may replace the catalog.
		if ev.Seq != next.refreshSeq {
			return next, nil, nil
		}
		next.InFlight.Refresh = false
		if ev.Err != nil {
			next.Error = UserMessage(ev.Err)
			return next, nil, nil
		}
		next.Catalog = ev.Items
		next.Error = ""
		return next, nil, nil
	}

	return s, nil, invalid(ev)
}

func refresh(s State) (State, []Effect, error) {
	s.refreshSeq++
	s.InFlight.Refresh = true
	return s, []Effect{ListItems{Seq: s.refreshSeq}}, nil
}

func invalid(ev Event) error {
	return fmt.Errorf("%w: %T", ErrInvalidTransition, ev)
}

// setField parses a form value into the named draft field.
func setField(d *model.IntakeDraft, field, value string) error {
	switch field {
	case "code":
		d.Code = value
	case "description":
		d.Description = value
	case "brand":
		d.Brand = value
	case "unit":
		d.Unit = value
	case "incoming_quantity":
		q, err := ParseQuantity(value)
		if err != nil {
			return err
		}
		d.IncomingQuantity = q
	case "unit_cost":
		c, err := ParseCost(value)
		if err != nil {
			return err
		}
		d.UnitCost = c
	default:
		return &model.ValidationError{Field: field, Message: "Campo desconhecido."}
	}
	return nil
}

// ParseQuantity parses a whole quantity. Blank input is zero.
func ParseQuantity(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	q, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &model.ValidationError{Field: "incoming_quantity", Message: "A quantidade deve ser um número inteiro maior que zero."}
	}
	return q, nil
}

// ParseCost parses a currency amount written with either a decimal comma
// or a decimal point. Blank input is zero.
func ParseCost(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "R$")
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(value, ",") {
		value = strings.ReplaceAll(value, ".", "")
		value = strings.ReplaceAll(value, ",", ".")
	}
	c, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &model.ValidationError{Field: "unit_cost", Message: "Informe um preço de custo válido."}
	}
	return c, nil
}
