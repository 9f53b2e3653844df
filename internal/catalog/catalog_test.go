package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/folio/internal/gallery"
)

type fakeRemote struct {
	mu        sync.Mutex
	images    map[string][]gallery.Image
	down      bool
	fetches   atomic.Int32
	deleted   []string
	release   chan struct{}
	nextID    int
	deleteNak bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{images: make(map[string][]gallery.Image)}
}

func (f *fakeRemote) FetchCategory(ctx context.Context, category string) ([]gallery.Image, error) {
	f.fetches.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errors.New("connection refused")
	}
	out := make([]gallery.Image, len(f.images[category]))
	copy(out, f.images[category])
	return out, nil
}

func (f *fakeRemote) FetchCategories(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errors.New("connection refused")
	}
	return []string{"remote-only"}, nil
}

func (f *fakeRemote) CreateImage(ctx context.Context, category string, fields gallery.Fields) (gallery.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return gallery.Image{}, errors.New("connection refused")
	}
	f.nextID++
	img := gallery.Image{ID: fmt.Sprintf("srv-%d", f.nextID), Title: fields.Title, URL: fields.URL, Category: category}
	f.images[category] = append([]gallery.Image{img}, f.images[category]...)
	return img, nil
}

func (f *fakeRemote) DeleteImage(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return false, errors.New("connection refused")
	}
	f.deleted = append(f.deleted, id)
	return !f.deleteNak, nil
}

func (f *fakeRemote) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func numbered(category string, n int) []gallery.Image {
	out := make([]gallery.Image, n)
	for i := range out {
		out[i] = gallery.Image{ID: fmt.Sprintf("%s-%d", category, i), Title: fmt.Sprintf("T%d", i), URL: "https://e.com/x", Category: category}
	}
	return out
}

func TestFetchPage_SlicesCachedCategory(t *testing.T) {
	remote := newFakeRemote()
	remote.images["anime"] = numbered("anime", 25)
	c := New(Options{Remote: remote, Logger: quiet()})
	ctx := context.Background()

	p1, err := c.FetchPage(ctx, "anime", 1, 9)
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if len(p1.Images) != 9 || p1.Images[0].ID != "anime-0" || p1.Images[8].ID != "anime-8" {
		t.Fatalf("page 1 = %d images starting %q, want anime-0..anime-8", len(p1.Images), p1.Images[0].ID)
	}
	if p1.Last() {
		t.Fatalf("page 1 Last() = true, want false")
	}

	p3, err := c.FetchPage(ctx, "anime", 3, 9)
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if len(p3.Images) != 7 || p3.Images[0].ID != "anime-18" || p3.Images[6].ID != "anime-24" {
		t.Fatalf("page 3 = %#v, want anime-18..anime-24", p3.Images)
	}
	if !p3.Last() || p3.Total != 25 {
		t.Fatalf("page 3 Last/Total = %v/%d, want true/25", p3.Last(), p3.Total)
	}

	p9, err := c.FetchPage(ctx, "anime", 9, 9)
	if err != nil || len(p9.Images) != 0 {
		t.Fatalf("out of range page = %#v, %v; want empty", p9.Images, err)
	}

	if got := remote.fetches.Load(); got != 1 {
		t.Fatalf("remote fetches = %d, want 1 (cached)", got)
	}
}

func TestFetchPage_DefaultsForBadArguments(t *testing.T) {
	remote := newFakeRemote()
	remote.images["city"] = numbered("city", 12)
	c := New(Options{Remote: remote, Logger: quiet(), PageSize: 5})

	p, err := c.FetchPage(context.Background(), "city", 0, 0)
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if p.Number != 1 || p.Size != 5 || len(p.Images) != 5 {
		t.Fatalf("page = number %d size %d len %d, want 1/5/5", p.Number, p.Size, len(p.Images))
	}
}

func TestFetchPage_FallbackWhenRemoteDown(t *testing.T) {
	remote := newFakeRemote()
	remote.down = true
	c := New(Options{Remote: remote, Logger: quiet()})

	p, err := c.FetchPage(context.Background(), "anime", 1, 9)
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if len(p.Images) != 9 || p.Images[0].ID != "1" || !p.Fallback {
		t.Fatalf("page = %#v, want fallback anime dataset", p)
	}
	if !c.IsFallback("anime") {
		t.Fatalf("IsFallback(anime) = false, want true")
	}

	p, err = c.FetchPage(context.Background(), "unknown", 1, 9)
	if err != nil || len(p.Images) != 0 {
		t.Fatalf("unknown category = %#v, %v; want empty page", p.Images, err)
	}
}

func TestFetchPage_StrictReturnsError(t *testing.T) {
	remote := newFakeRemote()
	remote.down = true
	c := New(Options{Remote: remote, Logger: quiet(), Strict: true})

	if _, err := c.FetchPage(context.Background(), "anime", 1, 9); err == nil {
		t.Fatalf("FetchPage returned nil error in strict mode")
	}
	if c.IsFallback("anime") {
		t.Fatalf("strict mode cached fallback data")
	}
}

func TestCreateImage_InvalidatesCategory(t *testing.T) {
	remote := newFakeRemote()
	remote.images["anime"] = numbered("anime", 3)
	c := New(Options{Remote: remote, Logger: quiet()})
	ctx := context.Background()

	if _, err := c.FetchPage(ctx, "anime", 1, 9); err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	created, err := c.CreateImage(ctx, "anime", gallery.Fields{Title: " New ", URL: "https://e.com/new"})
	if err != nil {
		t.Fatalf("CreateImage returned error: %v", err)
	}
	if created.Title != "New" || created.CreatedAt.IsZero() {
		t.Fatalf("created = %#v, want trimmed title and CreatedAt set", created)
	}

	p, err := c.FetchPage(ctx, "anime", 1, 9)
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if len(p.Images) != 4 || p.Images[0].ID != created.ID {
		t.Fatalf("page after create = %#v, want new record first", p.Images)
	}
	if got := remote.fetches.Load(); got != 2 {
		t.Fatalf("remote fetches = %d, want 2 (re-fetched after create)", got)
	}
}

func TestCreateImage_RejectsInvalidFields(t *testing.T) {
	c := New(Options{Remote: newFakeRemote(), Logger: quiet()})
	_, err := c.CreateImage(context.Background(), "anime", gallery.Fields{Title: "x", URL: "nope"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("CreateImage error = %v, want ErrValidation", err)
	}
	var verr *gallery.ValidationError
	if !errors.As(err, &verr) || verr.Field != "url" {
		t.Fatalf("CreateImage error = %v, want url ValidationError", err)
	}
}

func TestCreateImage_RejectsReservedCategory(t *testing.T) {
	remote := newFakeRemote()
	remote.down = true
	c := New(Options{Remote: remote, Logger: quiet()})
	_, err := c.CreateImage(context.Background(), gallery.ReservedCategory, gallery.Fields{Title: "x", URL: "https://e.com/x"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("CreateImage error = %v, want ErrValidation", err)
	}
	if _, ok := c.lookup(gallery.ReservedCategory); ok {
		t.Fatalf("reserved category was cached")
	}
}

func TestCreateImage_OfflineKeepsLocalRecord(t *testing.T) {
	remote := newFakeRemote()
	remote.down = true
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(Options{
		Remote: remote,
		Logger: quiet(),
		Now:    func() time.Time { return now },
		NewID:  func() string { return "local-1" },
	})
	ctx := context.Background()

	img, err := c.CreateImage(ctx, "anime", gallery.Fields{Title: "Offline", URL: "https://e.com/o"})
	if err != nil {
		t.Fatalf("CreateImage returned error: %v", err)
	}
	if img.ID != "local-1" || !img.CreatedAt.Equal(now) || img.Category != "anime" {
		t.Fatalf("local record = %#v", img)
	}

	p, err := c.FetchPage(ctx, "anime", 1, 20)
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if len(p.Images) != 10 || p.Images[0].ID != "local-1" || p.Images[1].ID != "1" {
		t.Fatalf("page = %#v, want local record ahead of fallback data", p.Images)
	}
	if got := remote.fetches.Load(); got != 0 {
		t.Fatalf("remote fetches = %d, want 0 (served from cache)", got)
	}
}

func TestCreateImage_StrictReturnsError(t *testing.T) {
	remote := newFakeRemote()
	remote.down = true
	c := New(Options{Remote: remote, Logger: quiet(), Strict: true})
	if _, err := c.CreateImage(context.Background(), "anime", gallery.Fields{Title: "x", URL: "https://e.com"}); err == nil {
		t.Fatalf("CreateImage returned nil error in strict mode")
	}
}

func TestDeleteImage_FlushesAllCategories(t *testing.T) {
	remote := newFakeRemote()
	remote.images["anime"] = numbered("anime", 2)
	remote.images["city"] = numbered("city", 2)
	c := New(Options{Remote: remote, Logger: quiet()})
	ctx := context.Background()

	for _, cat := range []string{"anime", "city"} {
		if _, err := c.FetchPage(ctx, cat, 1, 9); err != nil {
			t.Fatalf("FetchPage(%s) returned error: %v", cat, err)
		}
	}
	if err := c.DeleteImage(ctx, "gallery/anime/a b"); err != nil {
		t.Fatalf("DeleteImage returned error: %v", err)
	}
	if len(remote.deleted) != 1 || remote.deleted[0] != "gallery/anime/a b" {
		t.Fatalf("remote deleted = %v", remote.deleted)
	}

	for _, cat := range []string{"anime", "city"} {
		if _, err := c.FetchPage(ctx, cat, 1, 9); err != nil {
			t.Fatalf("FetchPage(%s) returned error: %v", cat, err)
		}
	}
	if got := remote.fetches.Load(); got != 4 {
		t.Fatalf("remote fetches = %d, want 4 (both categories re-fetched)", got)
	}
}

func TestDeleteImage_OfflineIsOptimistic(t *testing.T) {
	remote := newFakeRemote()
	remote.down = true
	c := New(Options{Remote: remote, Logger: quiet()})
	ctx := context.Background()

	if _, err := c.FetchPage(ctx, "anime", 1, 9); err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if err := c.DeleteImage(ctx, "3"); err != nil {
		t.Fatalf("DeleteImage returned error: %v, want optimistic success", err)
	}
	p, _ := c.FetchPage(ctx, "anime", 1, 9)
	for _, img := range p.Images {
		if img.ID == "3" {
			t.Fatalf("deleted id still served from cache")
		}
	}
	if len(p.Images) != 8 {
		t.Fatalf("len = %d, want 8", len(p.Images))
	}
}

func TestDeleteImage_StrictPropagatesFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.deleteNak = true
	c := New(Options{Remote: remote, Logger: quiet(), Strict: true})
	if err := c.DeleteImage(context.Background(), "x"); err == nil {
		t.Fatalf("DeleteImage returned nil error for {success:false} in strict mode")
	}
}

func TestCategories_FallbackList(t *testing.T) {
	remote := newFakeRemote()
	c := New(Options{Remote: remote, Logger: quiet()})

	got, err := c.Categories(context.Background())
	if err != nil || len(got) != 1 || got[0] != "remote-only" {
		t.Fatalf("Categories = %v, %v; want remote list", got, err)
	}

	remote.setDown(true)
	got, err = c.Categories(context.Background())
	if err != nil || len(got) != 3 || got[0] != "anime" {
		t.Fatalf("Categories = %v, %v; want default list", got, err)
	}
}

func TestEvictFallbacks_RetriesRemote(t *testing.T) {
	remote := newFakeRemote()
	remote.down = true
	remote.images["anime"] = numbered("anime", 2)
	c := New(Options{Remote: remote, Logger: quiet()})
	ctx := context.Background()

	if _, err := c.FetchPage(ctx, "anime", 1, 9); err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	remote.setDown(false)
	if n := c.EvictFallbacks(); n != 1 {
		t.Fatalf("EvictFallbacks = %d, want 1", n)
	}
	p, err := c.FetchPage(ctx, "anime", 1, 9)
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if p.Fallback || len(p.Images) != 2 {
		t.Fatalf("page after recovery = %#v, want remote data", p)
	}
	if n := c.EvictFallbacks(); n != 0 {
		t.Fatalf("EvictFallbacks = %d, want 0 once recovered", n)
	}
}

func TestFetchPage_ConcurrentMissesShareOneFetch(t *testing.T) {
	remote := newFakeRemote()
	remote.images["city"] = numbered("city", 4)
	remote.release = make(chan struct{})
	c := New(Options{Remote: remote, Logger: quiet()})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.FetchPage(context.Background(), "city", 1, 9); err != nil {
				t.Errorf("FetchPage returned error: %v", err)
			}
		}()
	}
	for remote.fetches.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(remote.release)
	wg.Wait()

	if got := remote.fetches.Load(); got != 1 {
		t.Fatalf("remote fetches = %d, want 1", got)
	}
}

func TestInvalidate_DropsInFlightResult(t *testing.T) {
	remote := newFakeRemote()
	remote.images["city"] = numbered("city", 1)
	remote.release = make(chan struct{})
	c := New(Options{Remote: remote, Logger: quiet()})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.FetchPage(context.Background(), "city", 1, 9)
	}()
	for remote.fetches.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	c.Invalidate("city")
	close(remote.release)
	<-done

	if _, ok := c.lookup("city"); ok {
		t.Fatalf("stale in-flight result was cached after invalidation")
	}
}

func TestFetchPage_HugeArgumentsReturnEmptyPage(t *testing.T) {
	remote := newFakeRemote()
	remote.images["anime"] = numbered("anime", 9)
	c := New(Options{Remote: remote, Logger: quiet()})
	ctx := context.Background()
	if _, err := c.FetchPage(ctx, "anime", 1, 9); err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}

	cases := []struct {
		page, size int
		want       int
	}{
		{math.MaxInt/9 + 2, 9, 0},
		{math.MaxInt / 2, 3, 0},
		{math.MaxInt, math.MaxInt, 0},
		{2, math.MaxInt, 0},
		{1, math.MaxInt, 9},
		{4, 3, 0},
		{3, 4, 1},
	}
	for _, tc := range cases {
		p, err := c.FetchPage(ctx, "anime", tc.page, tc.size)
		if err != nil {
			t.Fatalf("FetchPage(%d, %d) returned error: %v", tc.page, tc.size, err)
		}
		if len(p.Images) != tc.want {
			t.Fatalf("FetchPage(%d, %d) len = %d, want %d", tc.page, tc.size, len(p.Images), tc.want)
		}
		if p.Images == nil {
			t.Fatalf("FetchPage(%d, %d) returned nil images, want empty slice", tc.page, tc.size)
		}
	}
}

func TestFetchPage_CancelledCallerDoesNotCacheFallback(t *testing.T) {
	remote := newFakeRemote()
	remote.images["city"] = numbered("city", 2)
	remote.release = make(chan struct{})
	c := New(Options{Remote: remote, Logger: quiet()})

	ctx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := c.FetchPage(ctx, "city", 1, 9)
		leaderErr <- err
	}()
	for remote.fetches.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	type result struct {
		page Page
		err  error
	}
	waiter := make(chan result, 1)
	go func() {
		p, err := c.FetchPage(context.Background(), "city", 1, 9)
		waiter <- result{p, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	if err := <-leaderErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled FetchPage err = %v, want context.Canceled", err)
	}
	if c.IsFallback("city") {
		t.Fatalf("cancellation cached fallback data")
	}

	close(remote.release)
	got := <-waiter
	if got.err != nil {
		t.Fatalf("waiting FetchPage returned error: %v", got.err)
	}
	if got.page.Fallback || len(got.page.Images) != 2 {
		t.Fatalf("waiting FetchPage = %+v, want 2 remote images", got.page)
	}
}
