// Package session wires one list's store, caches, mutation coordinator and
// reconciliation loop together and exposes them to a presentation layer.
package session

import (
	"context"
	"log/slog"

	"github.com/lherron/listsync/internal/changecache"
	"github.com/lherron/listsync/internal/dedup"
	"github.com/lherron/listsync/internal/domain"
	"github.com/lherron/listsync/internal/mutation"
	"github.com/lherron/listsync/internal/notify"
	"github.com/lherron/listsync/internal/reconcile"
	"github.com/lherron/listsync/internal/service"
	"github.com/lherron/listsync/internal/sortcache"
	"github.com/lherron/listsync/internal/store"
)

// Deps configure a Session.
type Deps struct {
	Service  service.Service
	List     domain.List
	Notifier notify.Notifier
	Logger   *slog.Logger
	Config   reconcile.Config

	// Redirect navigates to a route on authentication failures.
	Redirect func(path string)

	// OnChange receives every facet the loop writes to the store.
	OnChange func(reconcile.Change)

	// Jobs bounds concurrent remote calls per mutation. 0 is unbounded.
	Jobs int
}

// Session owns the state of one list view.
type Session struct {
	List  domain.List
	Store *store.Store
	Loop  *reconcile.Loop

	coordinator *mutation.Coordinator
	changes     *changecache.Cache
	dedup       *dedup.Deduplicator
	sorter      *sortcache.Cache
	redirect    func(path string)
}

// New builds a session with fresh caches.
func New(deps Deps) *Session {
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	logger := deps.Logger.With("list_id", deps.List.ID)

	s := &Session{
		List:     deps.List,
		Store:    store.New(),
		changes:  changecache.New(logger),
		dedup:    dedup.New(),
		sorter:   sortcache.New(sortcache.DefaultCapacity),
		redirect: deps.Redirect,
	}

	s.coordinator = mutation.New(mutation.Deps{
		Service:  deps.Service,
		Store:    s.Store,
		Notifier: deps.Notifier,
		List:     deps.List,
		Dedup:    s.dedup,
		Logger:   logger,
		Jobs:     deps.Jobs,
	})

	s.Loop = reconcile.New(reconcile.Deps{
		Service:  deps.Service,
		Store:    s.Store,
		Changes:  s.changes,
		Dedup:    s.dedup,
		Sorter:   s.sorter,
		Notifier: deps.Notifier,
		List:     deps.List,
		Logger:   logger,
		Redirect: deps.Redirect,
		OnChange: deps.OnChange,
	}, deps.Config)

	return s
}

// Run drives the reconciliation loop until ctx is done.
func (s *Session) Run(ctx context.Context) {
	s.Loop.Run(ctx)
}

// Sync runs one reconciliation outside the loop.
func (s *Session) Sync(ctx context.Context) error {
	return s.Loop.Sync(ctx, reconcile.TriggerTimer)
}

// View returns the current state for rendering.
func (s *Session) View() store.View {
	return s.Store.View()
}

// Pending reports whether a mutation is in flight.
func (s *Session) Pending() bool {
	return s.coordinator.Pending()
}

// HandleComplete completes items, or the selection when none are given.
func (s *Session) HandleComplete(ctx context.Context, items ...domain.Item) mutation.Report {
	return s.coordinator.Complete(ctx, s.targets(items), s.options()...)
}

// HandleDelete deletes items, or the selection when none are given.
func (s *Session) HandleDelete(ctx context.Context, items ...domain.Item) mutation.Report {
	return s.coordinator.Delete(ctx, s.targets(items), s.options()...)
}

// HandleRefresh refreshes items, or the selection when none are given.
func (s *Session) HandleRefresh(ctx context.Context, items ...domain.Item) mutation.Report {
	return s.coordinator.Refresh(ctx, s.targets(items), s.options()...)
}

// HandleToggleField toggles the boolean field label on items, or on the
// selection when none are given.
func (s *Session) HandleToggleField(ctx context.Context, label string, items ...domain.Item) mutation.Report {
	return s.coordinator.ToggleField(ctx, s.targets(items), label, s.options()...)
}

// Clear resets every cache. Used when switching lists.
func (s *Session) Clear() {
	s.changes.Clear()
	s.dedup.Clear()
	s.sorter.Clear()
}

func (s *Session) targets(items []domain.Item) []domain.Item {
	if len(items) > 0 {
		return items
	}
	return s.Store.SelectedItems()
}

func (s *Session) options() []mutation.Option {
	if s.redirect == nil {
		return nil
	}
	return []mutation.Option{mutation.WithRedirect(s.redirect)}
}
