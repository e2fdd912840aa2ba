package cli

import (
	"github.com/lherron/listsync/internal/cli/appctx"
	"github.com/lherron/listsync/internal/notify"
	"github.com/lherron/listsync/internal/render"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show LIST",
	Short: "Show the items of a list",
	Long: `Fetches a list once and prints its items. Not completed items are grouped
by category and followed by completed items.

Examples:
  listsync show 42
  listsync show 42 --category produce
  listsync show 42 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runShow),
}

var (
	showList     listFlags
	showCategory string
)

func init() {
	rootCmd.AddCommand(showCmd)
	showList.register(showCmd)
	showCmd.Flags().StringVar(&showCategory, "category", "", "Only show not completed items in this category (\"uncategorized\" for items without one)")
}

func runShow(app *appctx.App, cmd *cobra.Command, args []string) error {
	list, err := showList.list(args[0])
	if err != nil {
		return err
	}
	s, err := loadSession(cmd, app, list, 0)
	if err != nil {
		return err
	}

	if showCategory != "" {
		s.Store.SetFilter(showCategory)
	}
	v := s.View()
	if v.FilterMissing {
		notify.Warnf(app.Notifier, "No %s is in category %q", list.Type.Noun(), showCategory)
	}

	return app.Renderer.Render(render.NewViewDoc(list, v), render.ItemHeaders, render.ViewRows(v))
}
