// Package prefs persists folio's UI preferences in ~/.config/folio/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences.
type Prefs struct {
	Theme        string `toml:"theme"`
	LastCategory string `toml:"last_category"`
}

const (
	defaultPrefsPath = "~/.config/folio/prefs.toml"

	// DefaultTheme is used when no theme has been saved.
	DefaultTheme = "Nord"
)

// File is a preferences file. Reads never fail: a missing or unreadable file
// yields defaults.
type File struct {
	mu   sync.Mutex
	path string
}

// Open resolves path (the default location when empty). The file itself is
// not touched until Load or Update.
func Open(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve prefs path: %w", err)
	}
	return &File{path: resolved}, nil
}

// Path returns the resolved file path.
func (f *File) Path() string { return f.path }

// Load returns the stored preferences with defaults filled in.
func (f *File) Load() Prefs {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

// Update applies fn to the current preferences and writes the result.
func (f *File) Update(fn func(*Prefs)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := f.read()
	fn(&p)
	return f.write(p)
}

func (f *File) read() Prefs {
	p := Prefs{}
	if bytes, err := os.ReadFile(f.path); err == nil {
		if err := toml.Unmarshal(bytes, &p); err != nil {
			p = Prefs{}
		}
	}
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = DefaultTheme
	}
	p.LastCategory = strings.TrimSpace(p.LastCategory)
	return p
}

// write replaces the file via a temp file so a crash never leaves it torn.
func (f *File) write(p Prefs) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(bytes); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
