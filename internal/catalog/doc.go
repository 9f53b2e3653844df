// Package catalog is folio's data access layer: it fetches whole categories
// from the gallery service, caches them, and pages over the cached list.
//
// The gallery service has no pagination endpoint, so a category is fetched
// once and FetchPage slices [(page-1)*size, page*size) out of the cache. A
// short page (fewer than size images) is the last one.
//
// # Cache invalidation
//
//   - CreateImage evicts the category it wrote to.
//   - DeleteImage evicts every category; the category of an id is not known.
//   - EvictFallbacks evicts categories that were filled from fallback data.
//
// An epoch counter guards against a fetch that was in flight during an
// invalidation writing its (now stale) result back into the cache. Concurrent
// fetches of the same uncached category share one remote call.
//
// # Degraded mode
//
// By default remote failures never reach the caller. A failed fetch serves
// (and caches) the fallback dataset for the category, a failed create keeps a
// locally generated record at the head of the cached category, and a failed
// delete removes the id from the cache and reports success. Options.Strict
// turns all three into returned errors; the policy is uniform across
// operations. Invalid create payloads always fail with ErrValidation.
package catalog
