package state

import (
	"sync"

	"github.com/five82/folio/internal/gallery"
)

// Store serializes actions against a single CollectionState. Actions are
// applied in dispatch order.
type Store struct {
	mu      sync.RWMutex
	reducer Reducer
	state   CollectionState
	started bool
}

// NewStore returns a store using the given reducer.
func NewStore(r Reducer) *Store {
	return &Store{reducer: r, state: Initial(), started: true}
}

// Dispatch applies the actions in order and returns the resulting snapshot.
func (s *Store) Dispatch(actions ...Action) CollectionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.state = Initial()
		s.started = true
	}
	for _, a := range actions {
		s.state = s.reducer.Reduce(s.state, a)
	}
	return cloneState(s.state)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() CollectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return Initial()
	}
	return cloneState(s.state)
}

// Contains reports whether a record with id is present. Update and Delete are
// silent no-ops for unknown ids, so callers that care check first.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.state.Images, id) >= 0
}

func cloneState(in CollectionState) CollectionState {
	out := in
	out.Images = cloneImages(in.Images)
	if in.Selected != nil {
		sel := *in.Selected
		out.Selected = &sel
	}
	return out
}

func cloneImages(images []gallery.Image) []gallery.Image {
	dup := make([]gallery.Image, len(images))
	copy(dup, images)
	return dup
}
