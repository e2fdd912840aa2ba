// Package mutation applies user operations to a list optimistically: the
// store changes first, one remote call per item runs in parallel, and each
// failed item is rolled back once every call has settled.
package mutation

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/lherron/listsync/internal/apperr"
	"github.com/lherron/listsync/internal/bulk"
	"github.com/lherron/listsync/internal/dedup"
	"github.com/lherron/listsync/internal/domain"
	"github.com/lherron/listsync/internal/notify"
	"github.com/lherron/listsync/internal/service"
	"github.com/lherron/listsync/internal/store"
)

// Op names a coordinator operation.
type Op string

const (
	OpComplete Op = "complete"
	OpDelete   Op = "delete"
	OpRefresh  Op = "refresh"
	OpToggle   Op = "toggle"
)

// Past returns the verb used in success notices.
func (o Op) Past() string {
	switch o {
	case OpComplete:
		return "completed"
	case OpDelete:
		return "deleted"
	case OpRefresh:
		return "refreshed"
	default:
		return "updated"
	}
}

// Infinitive returns the verb used in failure notices.
func (o Op) Infinitive() string {
	if o == OpToggle {
		return "update"
	}
	return string(o)
}

// Deps are the collaborators of a Coordinator.
type Deps struct {
	Service  service.Service
	Store    *store.Store
	Notifier notify.Notifier
	List     domain.List
	Dedup    *dedup.Deduplicator
	Logger   *slog.Logger

	// Jobs bounds concurrent remote calls per operation. 0 issues every
	// call at once.
	Jobs int
}

// Report describes how an operation settled.
type Report struct {
	Op        Op
	Outcome   bulk.Outcome
	Succeeded int
	Failed    int

	// Err is the error of one failed item, nil when everything succeeded.
	Err error

	// FailedIDs maps each failed item id to its error.
	FailedIDs map[string]error
}

// ExitCode maps the outcome onto a process exit code: 0 when everything
// succeeded, 5 on partial failure and 1 when nothing succeeded.
func (r Report) ExitCode() int {
	res := bulk.Result{TotalItems: r.Succeeded + r.Failed, Succeeded: r.Succeeded, Failed: r.Failed}
	return res.ExitCode()
}

// Option configures a single operation.
type Option func(*options)

type options struct {
	redirect func(path string)
}

// WithRedirect sets the navigation callback used on authentication failures.
func WithRedirect(fn func(path string)) Option {
	return func(o *options) {
		o.redirect = fn
	}
}

// Coordinator runs mutations against one list.
type Coordinator struct {
	deps    Deps
	pending atomic.Int64
	tempID  func() string
}

// New creates a Coordinator.
func New(deps Deps) *Coordinator {
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Dedup == nil {
		deps.Dedup = dedup.New()
	}
	return &Coordinator{
		deps: deps,
		tempID: func() string {
			return "optimistic-" + uuid.NewString()
		},
	}
}

// Pending reports whether any operation is between its optimistic apply
// and its settle.
func (c *Coordinator) Pending() bool {
	return c.pending.Load() > 0
}

func (c *Coordinator) begin() func() {
	c.pending.Add(1)
	return func() { c.pending.Add(-1) }
}

func (c *Coordinator) bulkOp() bulk.Operation {
	return bulk.Operation{Jobs: c.deps.Jobs, ContinueOnError: true}
}

func (c *Coordinator) handler(o options) apperr.Handler {
	return apperr.Handler{
		Notifier:    c.deps.Notifier,
		Redirect:    o.redirect,
		Conjunction: c.deps.List.Type.Conjunction(),
	}
}

// settle turns a bulk result into a report and the matching notice.
func (c *Coordinator) settle(op Op, result *bulk.Result, opts []Option) Report {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	rep := Report{
		Op:        op,
		Outcome:   result.Outcome(),
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Err:       result.FirstError(),
		FailedIDs: result.FailedKeys(),
	}

	for id, err := range rep.FailedIDs {
		c.deps.Logger.Warn("item mutation failed", "op", string(op), "list_id", c.deps.List.ID, "item_id", id, "error", err)
	}

	noun := c.deps.List.Type.Noun()
	switch rep.Outcome {
	case bulk.AllSucceeded:
		if rep.Succeeded > 0 {
			notify.Infof(c.deps.Notifier, "%s successfully %s.", notify.Pluralize(rep.Succeeded, noun), op.Past())
		}
	case bulk.PartiallyFailed:
		notify.Warnf(c.deps.Notifier, "%s successfully %s. %s failed to %s.",
			notify.Pluralize(rep.Succeeded, noun), op.Past(),
			notify.Pluralize(rep.Failed, noun), op.Infinitive())
		if o.redirect != nil && anyUnauthorized(rep.FailedIDs) {
			o.redirect(apperr.SignInPath)
		}
	case bulk.AllFailed:
		c.handler(o).Handle(rep.Err)
	}

	c.deps.Logger.Debug("mutation settled", "op", string(op), "list_id", c.deps.List.ID,
		"outcome", rep.Outcome.String(), "succeeded", rep.Succeeded, "failed", rep.Failed)
	return rep
}

func anyUnauthorized(failed map[string]error) bool {
	for _, err := range failed {
		var respErr *service.ResponseError
		if errors.As(err, &respErr) && respErr.Status == 401 {
			return true
		}
	}
	return false
}

func itemKey(item domain.Item) string {
	return item.ID
}

func ids(items []domain.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

// failedOnly keeps the removal records of items that failed remotely.
func failedOnly(removed []store.Removed, failed map[string]error) []store.Removed {
	var out []store.Removed
	for _, r := range removed {
		if _, ok := failed[r.Item.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// run executes fn for every item and reports the settled result.
func (c *Coordinator) run(ctx context.Context, items []domain.Item, fn bulk.ItemFunc[domain.Item]) *bulk.Result {
	return bulk.Execute(ctx, c.bulkOp(), items, itemKey, fn)
}
