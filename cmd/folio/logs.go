package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/five82/folio/internal/config"
	"github.com/five82/folio/internal/logtail"
)

func newLogsCmd() *cobra.Command {
	var (
		lines int
		level string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of the client log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath(cmd))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out, err := logtail.Read(cfg.LogFile, lines)
			if err != nil {
				return err
			}
			if level != "" {
				threshold, err := logrus.ParseLevel(level)
				if err != nil {
					return fmt.Errorf("invalid --level: %w", err)
				}
				out = logtail.Filter(out, threshold)
			}

			w := cmd.OutOrStdout()
			if len(out) == 0 {
				fmt.Fprintf(w, "no log entries in %s\n", cfg.LogFile)
				return nil
			}
			for _, line := range out {
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 200, "number of lines to read from the end (0 for all)")
	cmd.Flags().StringVar(&level, "level", "", "only show entries at this level or above (debug, info, warn, error)")
	return cmd
}
