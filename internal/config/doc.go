// Package config loads folio's configuration.
//
// # Resolution Order
//
//  1. Built-in defaults (Default)
//  2. The TOML file at the given path, or ~/.config/folio/config.toml
//  3. FOLIO_* environment variables
//  4. Trimming; empty values fall back to defaults, paths get ~ expanded
//
// A missing config file is not an error. A file that does not parse is.
//
// # File Format
//
//	api_url          = "http://localhost:5000/api/gallery"
//	data_dir         = "~/.local/share/folio"
//	page_size        = 9
//	request_timeout  = "5s"
//	offline_fallback = true
//	revalidate_every = "30s"
//	log_level        = "info"
//	log_format       = "text"    # or "json"
//	log_file         = ""        # defaults to <data_dir>/folio.log
//
//	[server]
//	port          = "5000"
//	allow_origins = ["*"]
//	backend       = "memory"     # or "minio"
//
//	[s3]
//	endpoint   = "localhost:9000"
//	access_key = ""
//	secret_key = ""
//	bucket     = "gallery"
//	use_ssl    = false
//
// # Environment
//
// Top-level keys map to FOLIO_<KEY> (FOLIO_API_URL, FOLIO_OFFLINE_FALLBACK,
// ...), [server] keys to FOLIO_SERVER_<KEY> and [s3] keys to FOLIO_S3_<KEY>.
// FOLIO_SERVER_ALLOW_ORIGINS is comma separated.
//
// offline_fallback selects the catalog failure policy: true serves fallback
// data and keeps writes locally when the gallery service is down, false
// reports every remote failure.
package config
