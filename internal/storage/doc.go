// Package storage is folio's persistent key/value layer, the on-disk stand-in
// for browser local storage. The wishlist and the session keep their data
// under fixed keys here.
//
// BadgerDB locks its directory for the lifetime of a handle. The client uses
// SharedKV, which opens the database for a single transaction and retries
// while another process holds the lock, so the TUI and CLI commands can run
// side by side. Each write also replaces a marker file named after the key
// in "<dir>.changes"; Watch follows that directory with fsnotify and reports
// writes made by other processes.
package storage
