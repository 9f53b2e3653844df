// Package app is the composition root of folio.
//
// # Overview
//
// Run wires configuration, logging, the local stores, the data access layer
// and the terminal UI. Serve wires the gallery HTTP server and its media
// backend. Neither contains business logic; that lives in the domain
// packages (state, catalog, wishlist, session, media).
//
// # Client
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()         TOML file + FOLIO_* environment
//	       ├─────> logging.OpenFile()    logrus to <data_dir>/folio.log
//	       ├─────> OpenStores()          badger: wishlist + session
//	       ├─────> NewCatalog()          gallery API client + cache
//	       ├─────> StartRevalidator()    retry categories served offline
//	       └─────> ui.Run()              Start TUI (blocks)
//
// The terminal belongs to the UI while it runs, so the client never logs to
// stderr. Its log file is read back with `folio logs`.
//
// # Revalidation
//
// With offline_fallback enabled the catalog caches fallback data when the
// gallery API is unreachable. The revalidator evicts those entries every
// revalidate_every so the next page load retries the API. Rounds that find
// nothing to evict double the wait, capped at five minutes.
//
// # Server
//
// Serve loads the same config, logs to stderr and picks the media backend
// from server.backend: "memory" for development or "minio" for any
// S3-compatible store.
package app
