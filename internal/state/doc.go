// Package state holds the gallery collection state and the reducer that
// transitions it.
//
// # Reducer
//
// Reducer.Reduce is a total function of (state, action): every action type is
// handled, unknown actions return the state unchanged, and nothing panics. The
// input state is never modified; a transition that changes the image list
// always allocates a new slice, so snapshots handed out earlier stay valid.
//
//	Init{Images}      replace the list (nil becomes empty)
//	Add{Image}        prepend; fill ID (NewID) and CreatedAt (Now) when missing
//	Update{Patch}     merge into the matching record, same position
//	Delete{ID}        drop the matching record
//	SetMode{Mode}     add or edit
//	SetSelected{Img}  select a record or clear the selection
//
// Update and Delete with an unknown id are no-ops. Store.Contains lets a caller
// find out beforehand when it needs to report a stale id.
//
// # Store
//
// Store wraps one CollectionState behind a mutex. The terminal UI dispatches
// from its update loop while catalog results arrive from command goroutines,
// so Dispatch and Snapshot are safe for concurrent use. Snapshot returns a
// defensive copy, the same way the reducer never shares backing arrays.
//
// The zero Store is usable and starts from Initial().
package state
