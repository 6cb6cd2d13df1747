package workflow

import "github.com/erazemk/oficina/internal/model"

// Event is an operator intent or a backend result fed into Transition.
type Event interface {
	event()
}

// Operator intents.
type (
	OpenIntake  struct{}
	CloseIntake struct{}

	// SetDraftField updates one draft field from its form value.
	SetDraftField struct {
		Field string
		Value string
	}

	// CodeBlur runs auto-fill for the code the operator just left.
	CodeBlur struct {
		Code string
	}

	// SubmitIntake submits Draft, or the current draft when nil.
	SubmitIntake struct {
		Draft *model.IntakeDraft
	}

	ConfirmMerge struct{}
	CancelMerge  struct{}

	OpenDelete struct {
		Target model.StockItem
	}
	ProceedDelete struct{}
	SetTypedText  struct {
		Text string
	}
	ConfirmDelete struct{}
	CancelDelete  struct{}

	Refresh struct{}
)

// Backend results and timers, produced by the Controller.
type (
	Created struct {
		Item *model.StockItem
		Err  error
	}
	Updated struct {
		Item *model.StockItem
		Err  error
	}
	Deleted struct {
		Err error
	}
	Listed struct {
		Seq   uint64
		Items []model.StockItem
		Err   error
	}
	FeedbackExpired struct {
		Seq uint64
	}
)

func (OpenIntake) event()      {}
func (CloseIntake) event()     {}
func (SetDraftField) event()   {}
func (CodeBlur) event()        {}
func (SubmitIntake) event()    {}
func (ConfirmMerge) event()    {}
func (CancelMerge) event()     {}
func (OpenDelete) event()      {}
func (ProceedDelete) event()   {}
func (SetTypedText) event()    {}
func (ConfirmDelete) event()   {}
func (CancelDelete) event()    {}
func (Refresh) event()         {}
func (Created) event()         {}
func (Updated) event()         {}
func (Deleted) event()         {}
func (Listed) event()          {}
func (FeedbackExpired) event() {}

// Effect is a side effect requested by Transition.
type Effect interface {
	effect()
}

type (
	CreateItem struct {
		Item model.StockItem
	}
	UpdateItem struct {
		ID   int64
		Item model.StockItem
	}
	DeleteItem struct {
		ID int64
	}
	ListItems struct {
		Seq uint64
	}
	StartFeedback struct {
		Seq uint64
	}
)

func (CreateItem) effect()    {}
func (UpdateItem) effect()    {}
func (DeleteItem) effect()    {}
func (ListItems) effect()     {}
func (StartFeedback) effect() {}
