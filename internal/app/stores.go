package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/five82/folio/internal/config"
	"github.com/five82/folio/internal/session"
	"github.com/five82/folio/internal/storage"
	"github.com/five82/folio/internal/wishlist"
)

// Stores are the persistent client-side stores sharing one key/value database.
// The database is opened per operation, so any number of folio processes can
// hold Stores at the same time.
type Stores struct {
	KV       *storage.SharedKV
	Wishlist *wishlist.Store
	Session  *session.Store
}

// OpenStores opens the database under cfg.StorePath().
func OpenStores(cfg config.Config, logger logrus.FieldLogger) (*Stores, error) {
	kv, err := storage.OpenShared(storage.SharedOptions{Dir: cfg.StorePath(), Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &Stores{
		KV:       kv,
		Wishlist: wishlist.New(kv, logger),
		Session:  session.New(kv),
	}, nil
}

// Close closes the database.
func (s *Stores) Close() error {
	return s.KV.Close()
}
