package cli

import (
	"github.com/lherron/listsync/internal/cli/appctx"
	"github.com/lherron/listsync/internal/render"
	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories LIST",
	Short: "List the categories of a list",
	Long: `Prints the categories of a list in the order the server reports them.`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runCategories),
}

var categoriesList listFlags

func init() {
	rootCmd.AddCommand(categoriesCmd)
	categoriesList.register(categoriesCmd)
}

func runCategories(app *appctx.App, cmd *cobra.Command, args []string) error {
	list, err := categoriesList.list(args[0])
	if err != nil {
		return err
	}
	s, err := loadSession(cmd, app, list, 0)
	if err != nil {
		return err
	}

	categories := s.View().Categories
	if categories == nil {
		categories = []string{}
	}
	if app.Renderer.Format() == render.FormatTable {
		return app.Renderer.RenderList(categories)
	}
	return app.Renderer.Render(categories, nil, nil)
}
