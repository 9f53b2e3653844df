package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/folio/internal/app"
)

func newServeCmd() *cobra.Command {
	var opts app.ServeOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gallery API server",
		Long:  "Serve the gallery API on top of the configured media backend (memory or minio).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = configPath(cmd)
			return app.Serve(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Addr, "addr", "a", "", "listen address (default :<server.port>)")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "run gin in debug mode")
	return cmd
}
