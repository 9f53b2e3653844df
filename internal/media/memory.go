package media

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/five82/folio/internal/gallery"
)

// Memory keeps images in process. Uploads store the source URL as-is.
type Memory struct {
	mu      sync.Mutex
	folders map[string][]gallery.Image
	order   []string
	now     func() time.Time
}

var _ Backend = (*Memory)(nil)

// NewMemory returns an empty store that already knows the given folders.
func NewMemory(folders ...string) *Memory {
	m := &Memory{folders: make(map[string][]gallery.Image), now: time.Now}
	for _, f := range folders {
		m.ensure(f)
	}
	return m
}

func (m *Memory) ensure(folder string) {
	if _, ok := m.folders[folder]; !ok {
		m.folders[folder] = nil
		m.order = append(m.order, folder)
	}
}

// List implements Backend.
func (m *Memory) List(_ context.Context, folder string) ([]gallery.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	images := m.folders[folder]
	out := make([]gallery.Image, len(images))
	copy(out, images)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Upload implements Backend.
func (m *Memory) Upload(_ context.Context, folder string, fields gallery.Fields) (gallery.Image, error) {
	if err := gallery.ValidateCategory(folder); err != nil {
		return gallery.Image{}, err
	}
	if err := gallery.Validate(fields); err != nil {
		return gallery.Image{}, err
	}
	fields = fields.Normalize()
	img := gallery.Image{
		ID:          folderPrefix(folder) + gallery.NewID(),
		Title:       fields.Title,
		URL:         fields.URL,
		Description: fields.Description,
		CreatedAt:   m.now(),
		Category:    folder,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(folder)
	m.folders[folder] = append([]gallery.Image{img}, m.folders[folder]...)
	return img, nil
}

// Delete implements Backend.
func (m *Memory) Delete(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	folder := folderOf(id)

	m.mu.Lock()
	defer m.mu.Unlock()
	images := m.folders[folder]
	for i := range images {
		if images[i].ID == id {
			m.folders[folder] = append(images[:i:i], images[i+1:]...)
			break
		}
	}
	return nil
}

// Categories implements Backend.
func (m *Memory) Categories(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...), nil
}
