// Package gallery defines the image record shared by every folio component:
// the collection store, the catalog, the wishlist and the proxy server.
//
// Records are identified by an opaque string id. Ids assigned locally come from
// NewID (random UUIDs); ids assigned by the server are passed through unchanged.
// Validate is the single place where "title and url are required, url must
// parse" is enforced, so the UI form and the server reject the same payloads.
package gallery
