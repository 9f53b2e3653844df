// Package session persists the signed-in flag and email of the local user.
// It performs no credential checks.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/five82/folio/internal/storage"
)

// Storage keys.
const (
	AuthKey  = "isAuthenticated"
	EmailKey = "userEmail"
)

// Store reads and writes the session keys.
type Store struct {
	kv storage.KV
}

// New returns a session store backed by kv.
func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// SignIn marks the user as authenticated.
func (s *Store) SignIn(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if err := s.kv.Set(EmailKey, []byte(email)); err != nil {
		return fmt.Errorf("store email: %w", err)
	}
	if err := s.kv.Set(AuthKey, []byte("true")); err != nil {
		return fmt.Errorf("store auth flag: %w", err)
	}
	return nil
}

// SignOut clears both session keys.
func (s *Store) SignOut() error {
	return errors.Join(s.kv.Delete(AuthKey), s.kv.Delete(EmailKey))
}

// Current returns the signed-in email, if any.
func (s *Store) Current() (string, bool) {
	flag, err := s.kv.Get(AuthKey)
	if err != nil || string(flag) != "true" {
		return "", false
	}
	email, err := s.kv.Get(EmailKey)
	if err != nil {
		return "", false
	}
	return string(email), true
}
