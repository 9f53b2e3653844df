package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultLockWait bounds how long an operation waits for another process to
// release the database.
const DefaultLockWait = 5 * time.Second

// SharedOptions configure OpenShared.
type SharedOptions struct {
	Dir      string
	LockWait time.Duration
	Logger   logrus.FieldLogger
}

// SharedKV implements KV for a database that several folio processes use at
// the same time. Every operation opens the database, runs one transaction and
// closes it, so the directory lock is only held for the duration of a call.
// Writes touch a per-key marker file that Watch reports to other processes.
type SharedKV struct {
	dir     string
	markers string
	token   string
	wait    time.Duration
	opts    badger.Options
	log     logrus.FieldLogger

	mu sync.Mutex
}

var (
	_ KV      = (*SharedKV)(nil)
	_ Watcher = (*SharedKV)(nil)
)

// OpenShared prepares the database in opts.Dir and checks that it opens.
func OpenShared(opts SharedOptions) (*SharedKV, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, fmt.Errorf("shared store needs a directory")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	wait := opts.LockWait
	if wait <= 0 {
		wait = DefaultLockWait
	}

	dir := filepath.Clean(opts.Dir)
	markers := dir + ".changes"
	for _, d := range []string{dir, markers} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", d, err)
		}
	}

	s := &SharedKV{
		dir:     dir,
		markers: markers,
		token:   uuid.NewString(),
		wait:    wait,
		opts:    diskOptions(dir).WithLogger(&badgerLogger{logger.WithField("component", "badgerdb")}),
		log:     logger.WithField("component", "storage"),
	}
	if err := s.withDB(func(*badger.DB) error { return nil }); err != nil {
		return nil, err
	}
	s.log.WithField("path", dir).Debug("shared store ready")
	return s, nil
}

// Get implements KV.
func (s *SharedKV) Get(key string) ([]byte, error) {
	var out []byte
	err := s.withDB(func(db *badger.DB) error {
		var err error
		out, err = getDB(db, key)
		return err
	})
	return out, err
}

// Set implements KV.
func (s *SharedKV) Set(key string, value []byte) error {
	return s.write(key, func(db *badger.DB) error { return setDB(db, key, value) })
}

// Delete implements KV.
func (s *SharedKV) Delete(key string) error {
	return s.write(key, func(db *badger.DB) error { return deleteDB(db, key) })
}

// Update implements KV. The whole read-modify-write runs while this process
// holds the directory lock, so it is atomic across processes.
func (s *SharedKV) Update(key string, fn func(old []byte) ([]byte, error)) error {
	return s.write(key, func(db *badger.DB) error { return updateDB(db, key, fn) })
}

// Close implements KV. Nothing stays open between operations.
func (s *SharedKV) Close() error { return nil }

// Watch implements Watcher. Writes made through this SharedKV are not
// reported back to it.
func (s *SharedKV) Watch(ctx context.Context, fn func(key string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.markers); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", s.markers, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				name := filepath.Base(event.Name)
				if strings.HasPrefix(name, ".") {
					continue
				}
				key, err := url.PathUnescape(name)
				if err != nil {
					continue
				}
				if raw, err := os.ReadFile(event.Name); err == nil && string(raw) == s.token {
					continue
				}
				fn(key)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.WithError(err).Warn("change watcher error")
			}
		}
	}()
	return nil
}

func (s *SharedKV) write(key string, fn func(*badger.DB) error) error {
	if err := s.withDB(fn); err != nil {
		s.log.WithError(err).WithField("key", key).Error("write failed")
		return err
	}
	s.touch(key)
	return nil
}

// touch replaces the key's marker atomically so watchers never read a
// partial token.
func (s *SharedKV) touch(key string) {
	tmp, err := os.CreateTemp(s.markers, ".touch-*")
	if err != nil {
		s.log.WithError(err).Warn("write change marker failed")
		return
	}
	_, werr := tmp.WriteString(s.token)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmp.Name())
		s.log.WithField("key", key).Warn("write change marker failed")
		return
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.markers, url.PathEscape(key))); err != nil {
		os.Remove(tmp.Name())
		s.log.WithError(err).Warn("write change marker failed")
	}
}

func (s *SharedKV) withDB(fn func(*badger.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := time.Now().Add(s.wait)
	delay := 10 * time.Millisecond
	for {
		db, err := badger.Open(s.opts)
		if err == nil {
			ferr := fn(db)
			cerr := db.Close()
			if ferr != nil {
				return ferr
			}
			if cerr != nil {
				return fmt.Errorf("close badger db: %w", cerr)
			}
			return nil
		}
		if !isLocked(err) {
			return fmt.Errorf("open badger db at %s: %w", s.dir, err)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s is locked by another process", ErrBusy, s.dir)
		}
		time.Sleep(delay)
		delay = min(delay*2, 200*time.Millisecond)
	}
}

// isLocked reports badger's directory lock failure. Badger formats the cause
// into the message instead of wrapping it.
func isLocked(err error) bool {
	return strings.Contains(err.Error(), "Cannot acquire directory lock")
}
