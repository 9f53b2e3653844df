package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/five82/folio/internal/gallery"
	"github.com/five82/folio/internal/galleryapi"
)

// ErrValidation wraps payloads rejected before any remote call.
var ErrValidation = errors.New("invalid image")

// errFetchAbandoned marks a fetch cut short by its caller's context. It is
// never cached as fallback data.
var errFetchAbandoned = errors.New("fetch abandoned")

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 9

// Options configure a Catalog.
type Options struct {
	Remote galleryapi.Remote

	// Fallback is served when the remote cannot be reached. Nil uses
	// DefaultFallback; an empty map disables fallback data.
	Fallback   map[string][]gallery.Image
	Categories []string

	PageSize int

	// Strict returns remote failures to the caller instead of degrading to
	// fallback data, local records and optimistic deletes.
	Strict bool

	Logger logrus.FieldLogger
	Now    func() time.Time
	NewID  func() string
}

// Page is one slice of a category.
type Page struct {
	Images   []gallery.Image
	Number   int
	Size     int
	Total    int
	Fallback bool
}

// Last reports whether no further page follows this one.
func (p Page) Last() bool {
	return len(p.Images) < p.Size
}

type entry struct {
	images   []gallery.Image
	fallback bool
}

// Catalog caches whole categories and pages over them.
type Catalog struct {
	remote     galleryapi.Remote
	fallback   map[string][]gallery.Image
	categories []string
	pageSize   int
	strict     bool
	log        logrus.FieldLogger
	now        func() time.Time
	newID      func() string

	mu    sync.Mutex
	cache map[string]entry
	epoch uint64
	group singleflight.Group
}

// New returns a Catalog.
func New(opts Options) *Catalog {
	fallback := opts.Fallback
	if fallback == nil {
		fallback = DefaultFallback()
	}
	categories := opts.Categories
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = gallery.NewID
	}
	return &Catalog{
		remote:     opts.Remote,
		fallback:   fallback,
		categories: append([]string(nil), categories...),
		pageSize:   pageSize,
		strict:     opts.Strict,
		log:        logger.WithField("component", "catalog"),
		now:        now,
		newID:      newID,
		cache:      make(map[string]entry),
	}
}

// PageSize returns the default page size.
func (c *Catalog) PageSize() int { return c.pageSize }

// FetchPage returns page number page (1-based) of category.
func (c *Catalog) FetchPage(ctx context.Context, category string, page, size int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = c.pageSize
	}
	e, err := c.load(ctx, category)
	if err != nil {
		return Page{Number: page, Size: size}, err
	}

	total := len(e.images)
	images := []gallery.Image{}
	// skip <= total/size keeps skip*size <= total, so nothing overflows.
	if skip := page - 1; skip <= total/size && skip*size < total {
		start := skip * size
		end := start + min(size, total-start)
		images = make([]gallery.Image, end-start)
		copy(images, e.images[start:end])
	}

	c.log.WithFields(logrus.Fields{
		"category": category,
		"page":     page,
		"returned": len(images),
		"total":    total,
	}).Debug("page served")
	return Page{Images: images, Number: page, Size: size, Total: total, Fallback: e.fallback}, nil
}

func (c *Catalog) load(ctx context.Context, category string) (entry, error) {
	for {
		e, err := c.loadShared(ctx, category)
		// A waiter can inherit the cancellation of the caller that started
		// the shared fetch. Retry while our own context is still live.
		if errors.Is(err, errFetchAbandoned) && ctx.Err() == nil {
			continue
		}
		return e, err
	}
}

func (c *Catalog) loadShared(ctx context.Context, category string) (entry, error) {
	if e, ok := c.lookup(category); ok {
		return e, nil
	}
	v, err, _ := c.group.Do(category, func() (any, error) {
		if e, ok := c.lookup(category); ok {
			return e, nil
		}
		c.mu.Lock()
		epoch := c.epoch
		c.mu.Unlock()

		images, err := c.remote.FetchCategory(ctx, category)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("fetch %s: %w: %w", category, errFetchAbandoned, ctx.Err())
			}
			if c.strict {
				return nil, fmt.Errorf("fetch %s: %w", category, err)
			}
			c.log.WithError(err).WithField("category", category).Warn("gallery service unavailable, using fallback data")
			e := entry{images: c.fallbackFor(category), fallback: true}
			c.storeIf(epoch, category, e)
			return e, nil
		}
		e := entry{images: images}
		c.storeIf(epoch, category, e)
		c.log.WithFields(logrus.Fields{"category": category, "count": len(images)}).Info("category cached")
		return e, nil
	})
	if err != nil {
		return entry{}, err
	}
	return v.(entry), nil
}

// CreateImage validates fields and stores a new image in category.
func (c *Catalog) CreateImage(ctx context.Context, category string, fields gallery.Fields) (gallery.Image, error) {
	if err := gallery.ValidateCategory(category); err != nil {
		return gallery.Image{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	fields = fields.Normalize()
	if err := gallery.Validate(fields); err != nil {
		return gallery.Image{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	img, err := c.remote.CreateImage(ctx, category, fields)
	if err == nil {
		if img.CreatedAt.IsZero() {
			img.CreatedAt = c.now()
		}
		c.Invalidate(category)
		return img, nil
	}
	if c.strict {
		return gallery.Image{}, fmt.Errorf("create image in %s: %w", category, err)
	}

	img = gallery.Image{
		ID:          c.newID(),
		Title:       fields.Title,
		URL:         fields.URL,
		Description: fields.Description,
		CreatedAt:   c.now(),
		Category:    category,
	}
	c.mu.Lock()
	e, ok := c.cache[category]
	if !ok {
		e = entry{images: c.fallbackFor(category), fallback: true}
	}
	images := make([]gallery.Image, 0, len(e.images)+1)
	images = append(images, img)
	images = append(images, e.images...)
	e.images = images
	c.cache[category] = e
	c.epoch++
	c.mu.Unlock()
	c.group.Forget(category)

	c.log.WithError(err).WithFields(logrus.Fields{"category": category, "id": img.ID}).Warn("gallery service unavailable, image kept locally")
	return img, nil
}

// DeleteImage removes the image with id. The category of an id is unknown
// here, so a confirmed delete flushes every cached category.
func (c *Catalog) DeleteImage(ctx context.Context, id string) error {
	ok, err := c.remote.DeleteImage(ctx, id)
	if err == nil && !ok {
		err = errors.New("gallery service reported failure")
	}
	if err == nil {
		c.Flush()
		return nil
	}
	if c.strict {
		return fmt.Errorf("delete image %s: %w", id, err)
	}

	c.mu.Lock()
	for category, e := range c.cache {
		kept := make([]gallery.Image, 0, len(e.images))
		for _, img := range e.images {
			if img.ID != id {
				kept = append(kept, img)
			}
		}
		e.images = kept
		c.cache[category] = e
	}
	c.epoch++
	c.mu.Unlock()

	c.log.WithError(err).WithField("id", id).Warn("gallery service unavailable, delete applied locally")
	return nil
}

// Categories returns the category names, falling back to the built-in list.
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	names, err := c.remote.FetchCategories(ctx)
	if err == nil && len(names) > 0 {
		return names, nil
	}
	if err != nil && c.strict {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	if err != nil {
		c.log.WithError(err).Warn("gallery service unavailable, using default categories")
	}
	return append([]string(nil), c.categories...), nil
}

// Invalidate evicts one category.
func (c *Catalog) Invalidate(category string) {
	c.mu.Lock()
	delete(c.cache, category)
	c.epoch++
	c.mu.Unlock()
	c.group.Forget(category)
}

// Flush evicts every category.
func (c *Catalog) Flush() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.cache))
	for category := range c.cache {
		keys = append(keys, category)
	}
	c.cache = make(map[string]entry)
	c.epoch++
	c.mu.Unlock()
	for _, category := range keys {
		c.group.Forget(category)
	}
}

// EvictFallbacks evicts categories that are currently served from fallback
// data so the next fetch retries the remote. It returns how many were evicted.
func (c *Catalog) EvictFallbacks() int {
	c.mu.Lock()
	var evicted []string
	for category, e := range c.cache {
		if e.fallback {
			delete(c.cache, category)
			evicted = append(evicted, category)
		}
	}
	if len(evicted) > 0 {
		c.epoch++
	}
	c.mu.Unlock()
	for _, category := range evicted {
		c.group.Forget(category)
	}
	return len(evicted)
}

// IsFallback reports whether category is cached from fallback data.
func (c *Catalog) IsFallback(category string) bool {
	e, ok := c.lookup(category)
	return ok && e.fallback
}

func (c *Catalog) lookup(category string) (entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.cache[category]
	return e, ok
}

// storeIf caches e unless the cache was invalidated since epoch was read.
func (c *Catalog) storeIf(epoch uint64, category string, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return
	}
	c.cache[category] = e
}

func (c *Catalog) fallbackFor(category string) []gallery.Image {
	src := c.fallback[category]
	out := make([]gallery.Image, len(src))
	copy(out, src)
	return out
}
