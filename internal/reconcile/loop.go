// Package reconcile keeps the store in step with the server. A timer and
// focus/visibility triggers fetch the authoritative snapshot, and only the
// facets that actually changed are written to the store.
package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lherron/listsync/internal/apperr"
	"github.com/lherron/listsync/internal/changecache"
	"github.com/lherron/listsync/internal/dedup"
	"github.com/lherron/listsync/internal/domain"
	"github.com/lherron/listsync/internal/notify"
	"github.com/lherron/listsync/internal/service"
	"github.com/lherron/listsync/internal/sortcache"
	"github.com/lherron/listsync/internal/store"
)

// DefaultInterval is the timer period used when none is configured.
const DefaultInterval = 10 * time.Second

// Messages for failed timer fetches.
const (
	MsgOffline      = "You may not be connected to the internet. Please check your connection."
	MsgIncomplete   = "Something went wrong. Data may be incomplete and user actions may not persist."
	MsgListNotFound = "List not found"
)

// Trigger names what started a reconciliation.
type Trigger string

const (
	TriggerPrefetch Trigger = "prefetch"
	TriggerTimer    Trigger = "timer"
	TriggerFocus    Trigger = "focus"
)

// Config controls the loop triggers.
type Config struct {
	// Interval is the timer period. Zero means DefaultInterval.
	Interval time.Duration

	// Polling enables the timer trigger.
	Polling bool

	// Prefetch runs one reconciliation as soon as Run starts.
	Prefetch bool
}

// Change describes one facet written to the store.
type Change struct {
	Trigger Trigger
	Facet   string
	Key     string
	Result  changecache.Result
}

// Deps are the collaborators of a Loop.
type Deps struct {
	Service  service.Service
	Store    *store.Store
	Changes  *changecache.Cache
	Dedup    *dedup.Deduplicator
	Sorter   *sortcache.Cache
	Notifier notify.Notifier
	List     domain.List
	Logger   *slog.Logger

	// Redirect navigates on authentication failures. Nil reports them as
	// notices.
	Redirect func(path string)

	// OnChange, when set, is called for every facet applied to the store.
	OnChange func(Change)
}

// Loop reconciles one list.
type Loop struct {
	deps Deps
	cfg  Config

	wg    sync.WaitGroup
	focus chan struct{}

	mu      sync.Mutex
	visible bool
}

// New creates a Loop. Missing caches are created.
func New(deps Deps, cfg Config) *Loop {
	if deps.Changes == nil {
		deps.Changes = changecache.New(deps.Logger)
	}
	if deps.Dedup == nil {
		deps.Dedup = dedup.New()
	}
	if deps.Sorter == nil {
		deps.Sorter = sortcache.New(sortcache.DefaultCapacity)
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Loop{
		deps:    deps,
		cfg:     cfg,
		focus:   make(chan struct{}, 1),
		visible: true,
	}
}

// Run drives the triggers until ctx is done, then waits for in-flight
// reconciliations. Reconciliations started by Run stop applying results
// once ctx is done.
func (l *Loop) Run(ctx context.Context) {
	log := l.deps.Logger.With("list_id", l.deps.List.ID)
	log.Debug("reconcile loop started", "interval", l.cfg.Interval, "polling", l.cfg.Polling, "prefetch", l.cfg.Prefetch)
	defer log.Debug("reconcile loop stopped")
	defer l.Wait()

	if l.cfg.Prefetch {
		l.dispatch(ctx, TriggerPrefetch)
	}

	var tick <-chan time.Time
	if l.cfg.Polling {
		ticker := time.NewTicker(l.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			l.dispatch(ctx, TriggerTimer)
		case <-l.focus:
			l.dispatch(ctx, TriggerFocus)
		}
	}
}

// Focus signals that the view regained focus. Signals arriving while one is
// already queued collapse into it.
func (l *Loop) Focus() {
	select {
	case l.focus <- struct{}{}:
	default:
	}
}

// SetVisible records view visibility. Becoming visible after being hidden
// fires a focus trigger.
func (l *Loop) SetVisible(visible bool) {
	l.mu.Lock()
	wasHidden := !l.visible
	l.visible = visible
	l.mu.Unlock()

	if wasHidden && visible {
		l.Focus()
	}
}

// Wait blocks until every reconciliation started by Run has finished.
func (l *Loop) Wait() {
	l.wg.Wait()
}

func (l *Loop) dispatch(ctx context.Context, trigger Trigger) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		_ = l.Sync(ctx, trigger)
	}()
}

// FetchKey returns the deduplication key for a trigger. Focus fetches never
// join a timer fetch, only other focus fetches.
func FetchKey(listID string, trigger Trigger) string {
	if trigger == TriggerFocus {
		return "list-" + listID + "-focus"
	}
	return "list-" + listID
}

// Sync runs one reconciliation and returns the fetch error, if any. Errors
// are also reported to the user unless trigger is TriggerFocus.
func (l *Loop) Sync(ctx context.Context, trigger Trigger) error {
	listID := l.deps.List.ID
	snap, err := dedup.Do(ctx, l.deps.Dedup, FetchKey(listID, trigger), func() (domain.Snapshot, error) {
		return l.deps.Service.GetListItems(ctx, listID)
	})
	if err != nil {
		l.fail(trigger, err)
		return err
	}
	if err := ctx.Err(); err != nil {
		l.deps.Logger.Debug("dropping snapshot of abandoned fetch", "list_id", listID, "trigger", string(trigger))
		return err
	}

	l.apply(trigger, snap)
	return nil
}

func (l *Loop) apply(trigger Trigger, snap domain.Snapshot) {
	listID := l.deps.List.ID
	notCompleted := l.deps.Sorter.Sort(snap.NotCompletedItems)
	completed := l.deps.Sorter.Sort(snap.CompletedItems)

	facets := []struct {
		name  string
		value any
		write func()
	}{
		{changecache.FacetNotCompleted, notCompleted, func() { l.deps.Store.SetNotCompleted(notCompleted) }},
		{changecache.FacetCompleted, completed, func() { l.deps.Store.SetCompleted(completed) }},
		{changecache.FacetCategories, snap.Categories, func() { l.deps.Store.SetCategories(snap.Categories) }},
	}

	for _, facet := range facets {
		key := changecache.Key(listID, facet.name)
		res, err := l.deps.Changes.Get(key, facet.value)
		if err != nil {
			l.deps.Logger.Warn("change detection failed", "key", key, "error", err)
		}
		if !res.HasChanged {
			continue
		}

		facet.write()
		l.deps.Logger.Debug("facet applied", "list_id", listID, "trigger", string(trigger), "key", key)
		if l.deps.OnChange != nil {
			l.deps.OnChange(Change{Trigger: trigger, Facet: facet.name, Key: key, Result: res})
		}
	}
}

func (l *Loop) fail(trigger Trigger, err error) {
	f := apperr.Classify(err, l.deps.List.Type.Conjunction())
	if f.Kind == apperr.KindCanceled {
		return
	}

	if trigger == TriggerFocus {
		l.deps.Logger.Debug("focus sync failed", "list_id", l.deps.List.ID, "error", err)
		return
	}

	l.deps.Logger.Warn("sync failed", "list_id", l.deps.List.ID, "trigger", string(trigger),
		"kind", f.Kind.String(), "error", err)
	apperr.Handler{
		Notifier:    l.deps.Notifier,
		Redirect:    l.deps.Redirect,
		Conjunction: l.deps.List.Type.Conjunction(),
		NotFound:    MsgListNotFound,
		Network:     MsgOffline,
		Server:      MsgIncomplete,
	}.Report(f)
}
