package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/lherron/listsync/internal/cli/appctx"
	"github.com/lherron/listsync/internal/domain"
	"github.com/lherron/listsync/internal/mutation"
	"github.com/lherron/listsync/internal/render"
	"github.com/lherron/listsync/internal/session"
	"github.com/spf13/cobra"
)

// mutateFlags are shared by every command that changes items.
type mutateFlags struct {
	list listFlags
	jobs int
}

func (f *mutateFlags) register(cmd *cobra.Command) {
	f.list.register(cmd)
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "Maximum concurrent API calls (0 = unbounded)")
}

// mutateFunc applies one operation to items of a loaded session.
type mutateFunc func(ctx context.Context, s *session.Session, items []domain.Item) mutation.Report

var completeCmd = &cobra.Command{
	Use:   "complete LIST ITEM...",
	Short: "Mark items completed",
	Long: `Marks items completed. Items move to the completed list immediately and
move back if the server rejects the change.

Exit codes: 0 when every item succeeded, 5 on partial failure, 1 when every
item failed.`,
	Args: cobra.MinimumNArgs(2),
	RunE: appctx.WithApp(appctx.DefaultOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		return runMutation(app, cmd, args, &completeFlags, func(ctx context.Context, s *session.Session, items []domain.Item) mutation.Report {
			return s.HandleComplete(ctx, items...)
		})
	}),
}

var deleteCmd = &cobra.Command{
	Use:     "delete LIST ITEM...",
	Aliases: []string{"rm"},
	Short:   "Delete items",
	Long: `Deletes items. Items disappear immediately and are restored in place if
the server rejects the delete.

Exit codes: 0 when every item succeeded, 5 on partial failure, 1 when every
item failed.`,
	Args: cobra.MinimumNArgs(2),
	RunE: appctx.WithApp(appctx.DefaultOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		return runMutation(app, cmd, args, &deleteFlags, func(ctx context.Context, s *session.Session, items []domain.Item) mutation.Report {
			return s.HandleDelete(ctx, items...)
		})
	}),
}

var refreshCmd = &cobra.Command{
	Use:   "refresh LIST ITEM...",
	Short: "Copy completed items back onto the list",
	Long: `Creates a fresh, not completed copy of each item with the same fields and
marks the original as refreshed.

Exit codes: 0 when every item succeeded, 5 on partial failure, 1 when every
item failed.`,
	Args: cobra.MinimumNArgs(2),
	RunE: appctx.WithApp(appctx.DefaultOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		return runMutation(app, cmd, args, &refreshFlags, func(ctx context.Context, s *session.Session, items []domain.Item) mutation.Report {
			return s.HandleRefresh(ctx, items...)
		})
	}),
}

var toggleCmd = &cobra.Command{
	Use:   "toggle LIST ITEM...",
	Short: "Flip a true/false field on items",
	Long: `Flips a boolean field (read, by default) on every item. Items without the
field get it created, which needs --list-config. One failure rolls back every
item.

Examples:
  listsync toggle 42 7 8 --list-type BookList --list-config 3
  listsync toggle 42 7 --label read`,
	Args: cobra.MinimumNArgs(2),
	RunE: appctx.WithApp(appctx.DefaultOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		return runMutation(app, cmd, args, &toggleFlags, func(ctx context.Context, s *session.Session, items []domain.Item) mutation.Report {
			return s.HandleToggleField(ctx, toggleLabel, items...)
		})
	}),
}

var (
	completeFlags mutateFlags
	deleteFlags   mutateFlags
	refreshFlags  mutateFlags
	toggleFlags   mutateFlags
	toggleLabel   string
)

func init() {
	rootCmd.AddCommand(completeCmd, deleteCmd, refreshCmd, toggleCmd)

	completeFlags.register(completeCmd)
	deleteFlags.register(deleteCmd)
	refreshFlags.register(refreshCmd)
	toggleFlags.register(toggleCmd)
	toggleCmd.Flags().StringVar(&toggleLabel, "label", domain.LabelRead, "Label of the field to flip")
}

func runMutation(app *appctx.App, cmd *cobra.Command, args []string, flags *mutateFlags, fn mutateFunc) error {
	list, err := flags.list.list(args[0])
	if err != nil {
		return err
	}
	if flags.jobs < 0 {
		return fmt.Errorf("--jobs must not be negative")
	}

	s, err := loadSession(cmd, app, list, flags.jobs)
	if err != nil {
		return err
	}

	items, err := findItems(s, args[1:])
	if err != nil {
		return exitError(1, err)
	}

	report := fn(cmd.Context(), s, items)

	if app.Renderer.Format() != render.FormatTable {
		if err := app.Renderer.Render(newReportDoc(report), nil, nil); err != nil {
			return err
		}
	}

	if code := report.ExitCode(); code != 0 {
		return reportedError(code, fmt.Errorf("%d of %d %s failed to %s",
			report.Failed, report.Succeeded+report.Failed, plural(report.Succeeded+report.Failed, list.Type.Noun()), report.Op.Infinitive()))
	}
	return nil
}

// findItems looks ids up in the loaded list, in argument order. Repeated ids
// are used once.
func findItems(s *session.Session, ids []string) ([]domain.Item, error) {
	seen := make(map[string]bool, len(ids))
	var items []domain.Item
	var missing []string
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		item, _, ok := s.Store.Find(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		items = append(items, item)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("not found in list %s: %s", s.List.ID, strings.Join(missing, ", "))
	}
	return items, nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
