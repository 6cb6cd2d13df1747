package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/erazemk/oficina/internal/metrics"
	"github.com/erazemk/oficina/internal/model"
)

// Default timings.
const (
	DefaultFeedbackDelay = 3 * time.Second
	DefaultCallTimeout   = 15 * time.Second
)

// Options configures a Controller.
type Options struct {
	// FeedbackDelay is how long the auto-fill acknowledgment stays visible.
	FeedbackDelay time.Duration
	// CallTimeout bounds every backend call.
	CallTimeout time.Duration
	Metrics     *metrics.Metrics
}

// Controller owns the workflow state of one operator screen. The lock is
// held only while applying a transition, so other intents are accepted
// while a backend call is outstanding.
type Controller struct {
	collab Collaborator
	opts   Options

	mu    sync.Mutex
	state State
}

// New creates a Controller with an empty catalog. Call Dispatch(ctx,
// Refresh{}) to load it.
func New(collab Collaborator, opts Options) *Controller {
	if opts.FeedbackDelay <= 0 {
		opts.FeedbackDelay = DefaultFeedbackDelay
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	return &Controller{collab: collab, opts: opts}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Dispatch applies ev and runs the resulting effects until the workflow is
// idle again. It returns the local rejection of ev, or the first backend
// failure met while running its effects. Backend calls are not cancelled
// when ctx is.
func (c *Controller) Dispatch(ctx context.Context, ev Event) error {
	effects, err := c.apply(ev)
	if err != nil {
		c.record(ev, err)
		return err
	}

	var failure error
	for len(effects) > 0 {
		eff := effects[0]
		effects = effects[1:]

		result := c.run(ctx, eff)
		if result == nil {
			continue
		}
		if err := resultErr(result); err != nil && failure == nil {
			failure = err
		}
		more, _ := c.apply(result)
		effects = append(effects, more...)
	}

	c.record(ev, failure)
	return failure
}

func (c *Controller) apply(ev Event) ([]Effect, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, effects, err := Transition(c.state, ev)
	c.state = next
	return effects, err
}

// run performs one effect and returns the result event, if any.
func (c *Controller) run(ctx context.Context, eff Effect) Event {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.CallTimeout)
	defer cancel()

	start := time.Now()
	switch eff := eff.(type) {
	case CreateItem:
		item, err := c.collab.Create(ctx, eff.Item)
		c.opts.Metrics.Call("create", err, time.Since(start))
		if err == nil {
			slog.Info("stock item created", "id", item.ID, "code", item.Code)
		}
		return Created{Item: item, Err: err}

	case UpdateItem:
		item, err := c.collab.Update(ctx, eff.ID, eff.Item)
		c.opts.Metrics.Call("update", err, time.Since(start))
		if err == nil {
			slog.Info("stock item merged", "id", eff.ID, "quantity", eff.Item.CurrentQuantity)
		}
		return Updated{Item: item, Err: err}

	case DeleteItem:
		err := c.collab.Delete(ctx, eff.ID)
		c.opts.Metrics.Call("delete", err, time.Since(start))
		if err == nil {
			slog.Info("stock item deleted", "id", eff.ID)
		}
		return Deleted{Err: err}

	case ListItems:
		items, err := c.collab.List(ctx)
		c.opts.Metrics.Call("list", err, time.Since(start))
		if err == nil {
			c.opts.Metrics.CatalogSize(len(items))
		}
		return Listed{Seq: eff.Seq, Items: items, Err: err}

	case StartFeedback:
		time.AfterFunc(c.opts.FeedbackDelay, func() {
			c.apply(FeedbackExpired{Seq: eff.Seq})
		})
		return nil
	}
	return nil
}

func resultErr(ev Event) error {
	switch ev := ev.(type) {
	case Created:
		return ev.Err
	case Updated:
		return ev.Err
	case Deleted:
		return ev.Err
	case Listed:
		return ev.Err
	}
	return nil
}

// record logs and counts the outcome of a mutating intent.
func (c *Controller) record(ev Event, err error) {
	var action string
	switch ev.(type) {
	case SubmitIntake:
		action = "submit"
	case ConfirmMerge:
		action = "merge"
	case ConfirmDelete:
		action = "delete"
	case Refresh:
		action = "refresh"
	default:
		return
	}

	outcome := outcomeOf(err)
	c.opts.Metrics.Action(action, outcome)
	switch outcome {
	case "ok", "validation", "in_flight":
	case "transient", "error":
		slog.Error("inventory action failed", "action", action, "error", err)
	default:
		slog.Warn("inventory action rejected", "action", action, "outcome", outcome, "error", err)
	}
}

func outcomeOf(err error) string {
	var (
		verr      *model.ValidationError
		conflict  *model.ConflictError
		notFound  *model.NotFoundError
		transient *model.TransientError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "validation"
	case errors.As(err, &conflict):
		return "conflict"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &transient):
		return "transient"
	case errors.Is(err, ErrInFlight):
		return "in_flight"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid"
	default:
		return "error"
	}
}
