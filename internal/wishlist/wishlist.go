// Package wishlist keeps the user's favorited images in persistent storage
// and notifies subscribers whenever the set changes.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/five82/folio/internal/gallery"
	"github.com/five82/folio/internal/storage"
)

// StorageKey is the key the wishlist is persisted under.
const StorageKey = "wishlist"

// Store is the persisted wishlist. The stored set is the source of truth;
// every read goes back to storage, so views in other processes stay
// consistent once Follow reports their writes.
type Store struct {
	kv  storage.KV
	log logrus.FieldLogger

	mu     sync.Mutex
	subsMu sync.Mutex
	subs   map[int]func()
	nextID int
}

// New returns a wishlist backed by kv.
func New(kv storage.KV, logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{
		kv:   kv,
		log:  logger.WithField("component", "wishlist"),
		subs: make(map[int]func()),
	}
}

// Toggle adds img when its id is not wishlisted and removes it otherwise. The
// full record is stored, not just the id. It returns the new membership.
func (s *Store) Toggle(img gallery.Image) (bool, error) {
	var added bool
	s.mu.Lock()
	err := s.kv.Update(StorageKey, func(old []byte) ([]byte, error) {
		items := s.decode(old)
		idx := -1
		for i := range items {
			if items[i].ID == img.ID {
				idx = i
				break
			}
		}
		added = idx < 0
		if added {
			items = append(items, img)
		} else {
			items = append(items[:idx], items[idx+1:]...)
		}
		return json.Marshal(items)
	})
	s.mu.Unlock()

	if err != nil {
		return false, fmt.Errorf("save wishlist: %w", err)
	}
	s.log.WithFields(logrus.Fields{"id": img.ID, "added": added}).Debug("wishlist toggled")
	s.notify()
	return added, nil
}

// IsWishlisted reports whether a record with id is in the persisted set.
func (s *Store) IsWishlisted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, img := range s.load() {
		if img.ID == id {
			return true
		}
	}
	return false
}

// List returns the persisted set in insertion order.
func (s *Store) List() []gallery.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Clear empties the set.
func (s *Store) Clear() error {
	s.mu.Lock()
	err := s.save(nil)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Subscribe registers fn to run after every change. Listeners receive no
// payload and should call List. The returned func unsubscribes.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// Follow notifies subscribers when another process sharing the storage
// changes the wishlist. It stops when ctx is done.
func (s *Store) Follow(ctx context.Context, w storage.Watcher) error {
	return w.Watch(ctx, func(key string) {
		if key != StorageKey {
			return
		}
		s.log.Debug("wishlist changed by another process")
		s.notify()
	})
}

func (s *Store) notify() {
	s.subsMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// load reads the stored set. A missing or unreadable value is an empty set.
func (s *Store) load() []gallery.Image {
	raw, err := s.kv.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.WithError(err).Warn("read wishlist failed")
		}
		return []gallery.Image{}
	}
	return s.decode(raw)
}

func (s *Store) decode(raw []byte) []gallery.Image {
	if raw == nil {
		return []gallery.Image{}
	}
	var items []gallery.Image
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.WithError(err).Warn("stored wishlist is corrupt, treating as empty")
		return []gallery.Image{}
	}
	if items == nil {
		items = []gallery.Image{}
	}
	return items
}

func (s *Store) save(items []gallery.Image) error {
	if items == nil {
		items = []gallery.Image{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal wishlist: %w", err)
	}
	if err := s.kv.Set(StorageKey, raw); err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}
	return nil
}
