// Package ui is folio's terminal gallery, built on Bubble Tea.
//
// The Model is the page controller. It owns no image data of its own: the
// loaded images live in a state.Store and every change goes through
// Dispatch. Remote work (loading pages, creating and deleting images) runs
// as tea.Cmds against a Gallery, usually a *catalog.Catalog, and comes back
// as messages.
//
// # Views
//
//   - Gallery: category tabs over a paginated list. Moving past the last row
//     loads the next page while the previous page was full.
//   - Wishlist: the saved favorites. The view is refreshed whenever the
//     wishlist store notifies its subscribers.
//
// # Forms
//
// Add and edit share one form with title, URL and description inputs.
// Validation errors are shown inline and nothing is dispatched until the
// payload is valid. Edits are local to the loaded collection.
//
// # Status line
//
// The footer shows loading state, an "offline data" marker when the current
// category was served from fallback data, and a banner when an operation
// failed.
package ui
