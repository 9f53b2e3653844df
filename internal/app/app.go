package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/five82/folio/internal/catalog"
	"github.com/five82/folio/internal/config"
	"github.com/five82/folio/internal/galleryapi"
	"github.com/five82/folio/internal/logging"
	"github.com/five82/folio/internal/prefs"
	"github.com/five82/folio/internal/state"
	"github.com/five82/folio/internal/ui"
)

// Options configure the folio client.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/folio/prefs.toml
}

// Run boots the folio TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	stores, err := OpenStores(cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	// Wishlist edits from `folio wishlist` or a second TUI show up here too.
	if err := stores.Wishlist.Follow(ctx, stores.KV); err != nil {
		logger.WithError(err).Warn("cannot watch for wishlist changes from other processes")
	}

	userPrefs, err := prefs.Open(opts.PrefsPath)
	if err != nil {
		return err
	}

	gallery, err := NewCatalog(cfg, logger)
	if err != nil {
		return err
	}

	StartRevalidator(ctx, gallery, cfg.RevalidateEvery, logger)

	user, _ := stores.Session.Current()
	logger.WithFields(logrus.Fields{
		"api":     cfg.APIURL,
		"offline": cfg.OfflineFallback,
		"user":    user,
	}).Info("folio starting")

	return ui.Run(ui.Options{
		Context:  ctx,
		Gallery:  gallery,
		Store:    state.NewStore(state.Reducer{}),
		Wishlist: stores.Wishlist,
		Prefs:    userPrefs,
		User:     user,
		Logger:   logger,
	})
}

// NewCatalog builds the data access layer over the configured gallery API.
func NewCatalog(cfg config.Config, logger logrus.FieldLogger) (*catalog.Catalog, error) {
	client, err := galleryapi.NewClient(cfg.APIURL, cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("init gallery client: %w", err)
	}
	return catalog.New(catalog.Options{
		Remote:   client,
		PageSize: cfg.PageSize,
		Strict:   !cfg.OfflineFallback,
		Logger:   logger,
	}), nil
}
