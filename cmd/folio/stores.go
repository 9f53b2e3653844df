package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/five82/folio/internal/app"
	"github.com/five82/folio/internal/config"
	"github.com/five82/folio/internal/gallery"
)

// withStores loads the config, opens the local stores for the duration of fn
// and closes them afterwards.
func withStores(cmd *cobra.Command, fn func(*app.Stores) error) error {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logrus.WarnLevel)

	stores, err := app.OpenStores(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = stores.Close() }()
	return fn(stores)
}

func newWishlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Inspect or clear the saved wishlist",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print wishlisted images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd, func(s *app.Stores) error {
				printImages(cmd.OutOrStdout(), s.Wishlist.List())
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every wishlisted image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd, func(s *app.Stores) error {
				if err := s.Wishlist.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "wishlist cleared")
				return nil
			})
		},
	}

	cmd.AddCommand(listCmd, clearCmd)
	return cmd
}

func printImages(w io.Writer, images []gallery.Image) {
	if len(images) == 0 {
		fmt.Fprintln(w, "wishlist is empty")
		return
	}
	for _, img := range images {
		fmt.Fprintf(w, "%s\t%s\t%s\n", img.ID, img.Title, img.URL)
	}
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Remember the signed-in user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd, func(s *app.Stores) error {
				if err := s.Session.SignIn(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", args[0])
				return nil
			})
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd, func(s *app.Stores) error {
				if err := s.Session.SignOut(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			})
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd, func(s *app.Stores) error {
				email, ok := s.Session.Current()
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), email)
				return nil
			})
		},
	}
}
