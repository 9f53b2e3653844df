package storage

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/sirupsen/logrus"
)

// BadgerKV implements KV on top of BadgerDB.
type BadgerKV struct {
	db  *badger.DB
	log logrus.FieldLogger
}

var _ KV = (*BadgerKV)(nil)

// Open opens (or creates) a badger database in dir and holds it, and its
// directory lock, until Close. Use OpenShared when other processes need the
// same database.
func Open(dir string, logger logrus.FieldLogger) (*BadgerKV, error) {
	return open(diskOptions(dir), logger, dir)
}

// diskOptions keeps the footprint of an open small. folio stores a handful of
// keys and shared databases are opened once per operation.
func diskOptions(dir string) badger.Options {
	return badger.DefaultOptions(dir).
		WithMemTableSize(8 << 20).
		WithValueLogFileSize(16 << 20).
		WithNumMemtables(1).
		WithNumCompactors(2).
		WithCompression(options.None).
		WithBlockCacheSize(0)
}

// OpenInMemory opens a badger database that never touches disk.
func OpenInMemory(logger logrus.FieldLogger) (*BadgerKV, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	return open(opts, logger, ":memory:")
}

func open(opts badger.Options, logger logrus.FieldLogger, where string) (*BadgerKV, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	opts = opts.WithLogger(&badgerLogger{logger.WithField("component", "badgerdb")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db at %s: %w", where, err)
	}
	log := logger.WithField("component", "storage")
	log.WithField("path", where).Debug("badger opened")
	return &BadgerKV{db: db, log: log}, nil
}

// Get returns a copy of the value stored under key.
func (s *BadgerKV) Get(key string) ([]byte, error) {
	return getDB(s.db, key)
}

// Set stores value under key, replacing any previous value.
func (s *BadgerKV) Set(key string, value []byte) error {
	if err := setDB(s.db, key, value); err != nil {
		s.log.WithError(err).WithField("key", key).Error("set failed")
		return err
	}
	return nil
}

// Update implements KV. Transaction conflicts are retried.
func (s *BadgerKV) Update(key string, fn func(old []byte) ([]byte, error)) error {
	if err := updateDB(s.db, key, fn); err != nil {
		s.log.WithError(err).WithField("key", key).Error("update failed")
		return err
	}
	return nil
}

func updateDB(db *badger.DB, key string, fn func(old []byte) ([]byte, error)) error {
	for attempt := 0; ; attempt++ {
		err := db.Update(func(txn *badger.Txn) error {
			var old []byte
			item, err := txn.Get([]byte(key))
			switch {
			case err == nil:
				if old, err = item.ValueCopy(nil); err != nil {
					return err
				}
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}
			value, err := fn(old)
			if err != nil {
				return err
			}
			return txn.Set([]byte(key), value)
		})
		if errors.Is(err, badger.ErrConflict) && attempt < 3 {
			continue
		}
		if err != nil {
			return fmt.Errorf("update %q: %w", key, err)
		}
		return nil
	}
}

// Delete removes key. Deleting a missing key is not an error.
func (s *BadgerKV) Delete(key string) error {
	if err := deleteDB(s.db, key); err != nil {
		s.log.WithError(err).WithField("key", key).Error("delete failed")
		return err
	}
	return nil
}

func getDB(db *badger.DB, key string) ([]byte, error) {
	var out []byte
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return out, nil
}

func setDB(db *badger.DB, key string, value []byte) error {
	err := db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func deleteDB(db *badger.DB, key string) error {
	err := db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Close flushes and closes the database.
func (s *BadgerKV) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger db: %w", err)
	}
	return nil
}

// badgerLogger adapts logrus to badger's logger interface. Badger is chatty at
// info level, so its info output is demoted to debug.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{})   { l.logger.Errorf(f, v...) }
func (l *badgerLogger) Warningf(f string, v ...interface{}) { l.logger.Warningf(f, v...) }
func (l *badgerLogger) Infof(f string, v ...interface{})    { l.logger.Debugf(f, v...) }
func (l *badgerLogger) Debugf(f string, v ...interface{})   { l.logger.Debugf(f, v...) }
