package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "listsync",
	Short: "Optimistic sync client for shared lists",
	Long: `listsync keeps a local copy of a shared list (grocery, to-do, book or
music) in step with the list server. Mutations apply locally first and are
rolled back when the server rejects them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("api-url", "", "List API base URL (overrides LISTSYNC_API_URL)")
	rootCmd.PersistentFlags().String("token", "", "API bearer token (overrides LISTSYNC_TOKEN)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format: table, json or yaml (overrides LISTSYNC_OUTPUT)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("porcelain", false, "Stable machine-readable output (tab-separated tables, compact JSON, unstyled notices)")
}
