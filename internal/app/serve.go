package app

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/five82/folio/internal/catalog"
	"github.com/five82/folio/internal/config"
	"github.com/five82/folio/internal/logging"
	"github.com/five82/folio/internal/media"
	"github.com/five82/folio/internal/server"
)

// ServeOptions configure the gallery server.
type ServeOptions struct {
	ConfigPath string
	Addr       string // empty uses ":" + server.port
	Debug      bool
}

// Serve runs the gallery HTTP server until the context is cancelled.
func Serve(ctx context.Context, opts ServeOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	backend, err := NewBackend(cfg, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Backend:      backend,
		AllowOrigins: cfg.Server.AllowOrigins,
		Logger:       logger,
		Debug:        opts.Debug,
	})
	if err != nil {
		return err
	}

	addr := opts.Addr
	if addr == "" {
		addr = ":" + cfg.Server.Port
	}
	logger.WithFields(logrus.Fields{"backend": cfg.Server.Backend, "addr": addr}).Info("starting gallery server")
	return srv.Run(ctx, addr)
}

// NewBackend returns the media backend selected by cfg.Server.Backend.
func NewBackend(cfg config.Config, logger logrus.FieldLogger) (media.Backend, error) {
	switch cfg.Server.Backend {
	case config.BackendMinio:
		backend, err := media.NewMinio(media.MinioOptions{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			UseSSL:    cfg.S3.UseSSL,
			Folders:   catalog.DefaultCategories,
			Logger:    logger,
		})
		if err != nil {
			return nil, fmt.Errorf("init minio backend: %w", err)
		}
		return backend, nil
	case config.BackendMemory, "":
		return media.NewMemory(catalog.DefaultCategories...), nil
	default:
		return nil, fmt.Errorf("unknown server backend %q", cfg.Server.Backend)
	}
}
