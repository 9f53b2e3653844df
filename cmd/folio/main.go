package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/folio/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "folio: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var prefsPath string

	root := &cobra.Command{
		Use:   "folio",
		Short: "Browse and curate an image gallery from the terminal",
		Long: strings.TrimSpace(`
folio browses image categories served by a gallery API, lets you add, edit and
delete images, and keeps a wishlist of favorites on disk. When the API cannot be
reached it keeps working with built-in fallback data.
`),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: configPath(cmd),
				PrefsPath:  prefsPath,
			})
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (default ~/.config/folio/config.toml)")
	root.Flags().StringVar(&prefsPath, "prefs", "", "preferences file (default ~/.config/folio/prefs.toml)")

	root.AddCommand(newServeCmd(), newWishlistCmd(), newLoginCmd(), newLogoutCmd(), newWhoamiCmd(), newLogsCmd())
	return root
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}
