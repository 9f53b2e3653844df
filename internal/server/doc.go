// Package server exposes a media.Backend over the gallery HTTP API that the
// folio client consumes:
//
//	GET    /api/gallery/categories  category names
//	GET    /api/gallery/:folder     images of a folder, newest first
//	POST   /api/gallery/:folder     store an image fetched from a URL
//	DELETE /api/gallery/:id         remove an image by its percent-encoded id
//	GET    /health                  liveness
//
// The static categories route wins over /:folder, so "categories" is not a
// usable folder name and uploads to it are rejected with 400.
package server
