package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lherron/listsync/internal/changecache"
	"github.com/lherron/listsync/internal/cli/appctx"
	"github.com/lherron/listsync/internal/domain"
	"github.com/lherron/listsync/internal/notify"
	"github.com/lherron/listsync/internal/reconcile"
	"github.com/lherron/listsync/internal/render"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch LIST",
	Short: "Keep a list in sync and print what changes",
	Long: `Runs the reconciliation loop for a list and prints every part of the list
(not completed items, completed items, categories) that changed on the server.

Sending SIGUSR1 triggers an immediate sync, the way regaining focus does in
an interactive client. SIGINT or SIGTERM stops watching.

Examples:
  listsync watch 42
  listsync watch 42 --diff
  listsync watch 42 --interval 30s -o json`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runWatch),
}

var (
	watchList     listFlags
	watchDiff     bool
	watchInterval time.Duration
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchList.register(watchCmd)
	watchCmd.Flags().BoolVar(&watchDiff, "diff", false, "Print a unified diff of each change")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Polling interval (overrides LISTSYNC_POLL_INTERVAL)")
}

// watchEvent is the structured form of one applied change.
type watchEvent struct {
	Time    time.Time `json:"time" yaml:"time"`
	Trigger string    `json:"trigger" yaml:"trigger"`
	Facet   string    `json:"facet" yaml:"facet"`
	Key     string    `json:"key" yaml:"key"`
	Diff    string    `json:"diff,omitempty" yaml:"diff,omitempty"`
}

func runWatch(app *appctx.App, cmd *cobra.Command, args []string) error {
	list, err := watchList.list(args[0])
	if err != nil {
		return err
	}
	if watchInterval < 0 {
		return fmt.Errorf("--interval must be positive")
	}
	if watchInterval > 0 {
		app.Config.PollInterval = watchInterval
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer := &changePrinter{out: cmd.OutOrStdout(), renderer: app.Renderer, diff: watchDiff}
	s := newSession(app, list, 0, printer.print)

	if sigs := focusSignals(); len(sigs) > 0 {
		focus := make(chan os.Signal, 1)
		signal.Notify(focus, sigs...)
		defer signal.Stop(focus)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-focus:
					s.Loop.Focus()
				}
			}
		}()
	}

	app.Logger.Info("watching list", "list_id", list.ID, "interval", app.Config.PollInterval)
	s.Run(ctx)
	return nil
}

// changePrinter writes applied changes. The loop calls it from concurrent
// reconciliations.
type changePrinter struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *render.Renderer
	diff     bool
	now      func() time.Time
}

func (p *changePrinter) print(c reconcile.Change) {
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	ev := watchEvent{
		Time:    now().UTC(),
		Trigger: string(c.Trigger),
		Facet:   c.Facet,
		Key:     c.Key,
	}
	if p.diff {
		ev.Diff = c.Result.Diff(c.Key)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.renderer.Format() {
	case render.FormatTable:
		fmt.Fprintf(p.out, "%s  %-8s  %s changed (%s)\n", ev.Time.Format(time.TimeOnly), ev.Trigger, ev.Facet, describe(c.Result))
		if ev.Diff != "" {
			fmt.Fprint(p.out, ev.Diff)
		}
	case render.FormatYAML:
		fmt.Fprintln(p.out, "---")
		_ = p.renderer.RenderYAML(ev)
	default:
		_ = p.renderer.RenderJSON(ev)
	}
}

// describe summarizes a changed facet value, e.g. "3 items".
func describe(r changecache.Result) string {
	switch v := r.Value.(type) {
	case []domain.Item:
		return notify.Pluralize(len(v), "item")
	case []string:
		if len(v) == 1 {
			return "1 category"
		}
		return fmt.Sprintf("%d categories", len(v))
	default:
		return "updated"
	}
}
