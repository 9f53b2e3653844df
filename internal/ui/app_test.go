package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/five82/folio/internal/catalog"
	"github.com/five82/folio/internal/gallery"
	"github.com/five82/folio/internal/prefs"
	"github.com/five82/folio/internal/state"
)

type fakeGallery struct {
	images      map[string][]gallery.Image
	pageSize    int
	fallback    bool
	createErr   error
	deleteErr   error
	invalidated []string
	deleted     []string
}

func newFakeGallery() *fakeGallery {
	g := &fakeGallery{images: make(map[string][]gallery.Image), pageSize: 3}
	for _, cat := range []string{"anime", "music"} {
		for i := 1; i <= 5; i++ {
			g.images[cat] = append(g.images[cat], gallery.Image{
				ID:    fmt.Sprintf("%s-%d", cat, i),
				Title: fmt.Sprintf("%s %d", cat, i),
				URL:   fmt.Sprintf("https://example.com/%s/%d.jpg", cat, i),
			})
		}
	}
	return g
}

func (g *fakeGallery) FetchPage(_ context.Context, category string, page, size int) (catalog.Page, error) {
	all := g.images[category]
	start := (page - 1) * size
	end := start + size
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}
	return catalog.Page{Images: all[start:end], Number: page, Size: size, Total: len(all), Fallback: g.fallback}, nil
}

func (g *fakeGallery) CreateImage(_ context.Context, category string, fields gallery.Fields) (gallery.Image, error) {
	if g.createErr != nil {
		return gallery.Image{}, g.createErr
	}
	return gallery.Image{ID: "new", Title: fields.Title, URL: fields.URL, Description: fields.Description, Category: category}, nil
}

func (g *fakeGallery) DeleteImage(_ context.Context, id string) error {
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.deleted = append(g.deleted, id)
	return nil
}

func (g *fakeGallery) Categories(context.Context) ([]string, error) {
	return []string{"anime", "music"}, nil
}

func (g *fakeGallery) Invalidate(category string) { g.invalidated = append(g.invalidated, category) }

func (g *fakeGallery) PageSize() int { return g.pageSize }

type fakeWishlist struct {
	items []gallery.Image
	lists int
}

func (w *fakeWishlist) Toggle(img gallery.Image) (bool, error) {
	for i, it := range w.items {
		if it.ID == img.ID {
			w.items = append(w.items[:i], w.items[i+1:]...)
			return false, nil
		}
	}
	w.items = append(w.items, img)
	return true, nil
}

func (w *fakeWishlist) IsWishlisted(id string) bool {
	for _, it := range w.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

func (w *fakeWishlist) List() []gallery.Image {
	w.lists++
	return append([]gallery.Image(nil), w.items...)
}

func (w *fakeWishlist) Clear() error {
	w.items = nil
	return nil
}

func (w *fakeWishlist) Subscribe(func()) func() { return func() {} }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type harness struct {
	gallery  *fakeGallery
	wishlist *fakeWishlist
	store    *state.Store
	prefs    *prefs.File
}

func newHarness(t *testing.T) (Model, *harness) {
	t.Helper()
	p, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.toml"))
	if err != nil {
		t.Fatalf("prefs.Open: %v", err)
	}
	h := &harness{
		gallery:  newFakeGallery(),
		wishlist: &fakeWishlist{},
		store:    state.NewStore(state.Reducer{}),
		prefs:    p,
	}
	m := New(Options{
		Gallery:  h.gallery,
		Store:    h.store,
		Wishlist: h.wishlist,
		Prefs:    p,
		Logger:   quietLogger(),
	})
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, h
}

// run executes cmd and feeds its message back, following chained commands.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return m
		}
		next, nextCmd := m.Update(msg)
		m = next.(Model)
		cmd = nextCmd
	}
	return m
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends a key and returns the resulting model and command unexecuted.
func press(m Model, k string) (Model, tea.Cmd) {
	next, cmd := m.Update(keyMsg(k))
	return next.(Model), cmd
}

func started(t *testing.T) (Model, *harness) {
	t.Helper()
	m, h := newHarness(t)
	return run(t, m, m.Init()), h
}

func ids(images []gallery.Image) []string {
	out := make([]string, len(images))
	for i, img := range images {
		out[i] = img.ID
	}
	return out
}

func TestStartupLoadsFirstPage(t *testing.T) {
	m, h := started(t)

	if got := m.category(); got != "anime" {
		t.Fatalf("category = %q, want anime", got)
	}
	images := h.store.Snapshot().Images
	if len(images) != 3 || images[0].ID != "anime-1" {
		t.Fatalf("images = %v, want first page of anime", ids(images))
	}
	if m.loading || m.lastPage {
		t.Fatalf("loading=%v lastPage=%v, want false/false", m.loading, m.lastPage)
	}
}

func TestStartupRestoresLastCategory(t *testing.T) {
	m, h := newHarness(t)
	if err := h.prefs.Update(func(p *prefs.Prefs) { p.LastCategory = "music" }); err != nil {
		t.Fatalf("prefs.Update: %v", err)
	}
	m = New(Options{Gallery: h.gallery, Store: h.store, Wishlist: h.wishlist, Prefs: h.prefs, Logger: quietLogger()})
	m = run(t, m, m.Init())

	if got := m.category(); got != "music" {
		t.Fatalf("category = %q, want music", got)
	}
}

func TestLoadMoreAppendsUntilLastPage(t *testing.T) {
	m, h := started(t)

	for i := 0; i < 2; i++ {
		m, _ = press(m, "j")
	}
	if m.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", m.cursor)
	}
	m, cmd := press(m, "j")
	if cmd == nil {
		t.Fatalf("moving past the last row should load the next page")
	}
	m = run(t, m, cmd)

	images := h.store.Snapshot().Images
	if len(images) != 5 {
		t.Fatalf("images = %v, want all 5", ids(images))
	}
	if !m.lastPage {
		t.Fatalf("lastPage = false, want true after a short page")
	}

	for i := 0; i < 5; i++ {
		m, _ = press(m, "j")
	}
	if _, cmd := press(m, "j"); cmd != nil {
		t.Fatalf("no load expected after the last page")
	}
}

func TestSwitchCategoryIgnoresStalePages(t *testing.T) {
	m, h := started(t)

	m, cmd := press(m, "tab")
	if got := m.category(); got != "music" {
		t.Fatalf("category = %q, want music", got)
	}
	if got := len(h.store.Snapshot().Images); got != 0 {
		t.Fatalf("images after switch = %d, want 0 until the page arrives", got)
	}

	stale, _ := h.gallery.FetchPage(context.Background(), "anime", 2, 3)
	m = step(t, m, pageMsg{category: "anime", number: 2, page: stale})
	if got := len(h.store.Snapshot().Images); got != 0 {
		t.Fatalf("stale page was applied: %d images", got)
	}

	m = run(t, m, cmd)
	if images := h.store.Snapshot().Images; images[0].ID != "music-1" {
		t.Fatalf("images = %v, want music first page", ids(images))
	}
	if got := h.prefs.Load().LastCategory; got != "music" {
		t.Fatalf("saved last category = %q, want music", got)
	}
}

func TestAddFormValidatesInline(t *testing.T) {
	m, h := started(t)
	before := h.store.Snapshot()

	m, _ = press(m, "a")
	if m.form == nil {
		t.Fatalf("form not opened")
	}
	m, _ = press(m, "Kitten")
	m, _ = press(m, "enter")
	m, _ = press(m, "not a url")
	m, _ = press(m, "enter")
	m, cmd := press(m, "enter")

	if m.form == nil || m.form.err == "" {
		t.Fatalf("expected inline validation error, form=%v", m.form)
	}
	if cmd != nil {
		t.Fatalf("invalid form must not issue a command")
	}
	if got := h.store.Snapshot().Images; len(got) != len(before.Images) {
		t.Fatalf("store changed on invalid submit")
	}
}

func TestAddPrependsCreatedImage(t *testing.T) {
	m, h := started(t)

	m, _ = press(m, "a")
	if h.store.Snapshot().Mode != state.ModeAdd {
		t.Fatalf("mode = %q, want add", h.store.Snapshot().Mode)
	}
	m, _ = press(m, "Kitten")
	m, _ = press(m, "tab")
	m, _ = press(m, "https://example.com/kitten.jpg")
	m, _ = press(m, "tab")
	m, cmd := press(m, "enter")
	if m.form != nil || cmd == nil {
		t.Fatalf("valid form should close and create, form=%v", m.form)
	}
	m = run(t, m, cmd)

	images := h.store.Snapshot().Images
	if images[0].ID != "new" || images[0].Title != "Kitten" {
		t.Fatalf("head = %+v, want created image", images[0])
	}
	if m.statusLevel != statusSuccess {
		t.Fatalf("status = %q, want success", m.status)
	}
}

func TestAddFailureShowsBanner(t *testing.T) {
	m, h := started(t)
	h.gallery.createErr = errors.New("connection refused")
	before := len(h.store.Snapshot().Images)

	m = step(t, m, createdMsg{category: "anime", err: h.gallery.createErr})
	if m.statusLevel != statusError || m.status != "Failed to add image, please try again" {
		t.Fatalf("status = %q (%d), want failure banner", m.status, m.statusLevel)
	}
	if got := len(h.store.Snapshot().Images); got != before {
		t.Fatalf("images = %d, want %d", got, before)
	}
}

func TestEditUpdatesInPlace(t *testing.T) {
	m, h := started(t)
	m, _ = press(m, "j")

	m, _ = press(m, "e")
	snap := h.store.Snapshot()
	if snap.Mode != state.ModeEdit || snap.Selected == nil || snap.Selected.ID != "anime-2" {
		t.Fatalf("edit did not select anime-2: %+v", snap)
	}
	if got := m.form.inputs[fieldTitle].Value(); got != "anime 2" {
		t.Fatalf("title input = %q, want prefilled", got)
	}

	m, _ = press(m, "!")
	m, _ = press(m, "tab")
	m, _ = press(m, "tab")
	m, cmd := press(m, "enter")
	if cmd != nil {
		t.Fatalf("edits are local, got a command")
	}

	snap = h.store.Snapshot()
	if snap.Images[1].ID != "anime-2" || snap.Images[1].Title != "anime 2!" {
		t.Fatalf("images[1] = %+v, want edited anime-2 in place", snap.Images[1])
	}
	if snap.Mode != state.ModeAdd || snap.Selected != nil {
		t.Fatalf("mode/selection not reset: %+v", snap)
	}
}

func TestEditOfRemovedImageReportsError(t *testing.T) {
	m, h := started(t)
	m, _ = press(m, "e")
	h.store.Dispatch(state.Delete{ID: "anime-1"})

	m, _ = press(m, "tab")
	m, _ = press(m, "tab")
	m, _ = press(m, "enter")
	if m.statusLevel != statusError {
		t.Fatalf("status = %q, want error for stale edit", m.status)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m, h := started(t)

	m, _ = press(m, "d")
	m, cmd := press(m, "n")
	if cmd != nil || len(h.gallery.deleted) != 0 {
		t.Fatalf("delete ran without confirmation")
	}

	m, _ = press(m, "d")
	m, cmd = press(m, "y")
	m = run(t, m, cmd)
	if len(h.gallery.deleted) != 1 || h.gallery.deleted[0] != "anime-1" {
		t.Fatalf("deleted = %v, want [anime-1]", h.gallery.deleted)
	}
	if h.store.Contains("anime-1") {
		t.Fatalf("anime-1 still in store")
	}
}

func TestDeleteFailureKeepsImage(t *testing.T) {
	m, h := started(t)
	h.gallery.deleteErr = errors.New("boom")

	m, _ = press(m, "d")
	m, cmd := press(m, "y")
	m = run(t, m, cmd)
	if !h.store.Contains("anime-1") {
		t.Fatalf("image removed despite failed delete")
	}
	if m.status != "Failed to delete image, please try again" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestReloadInvalidatesCategory(t *testing.T) {
	m, h := started(t)
	m, cmd := press(m, "r")
	if len(h.gallery.invalidated) != 1 || h.gallery.invalidated[0] != "anime" {
		t.Fatalf("invalidated = %v, want [anime]", h.gallery.invalidated)
	}
	_ = run(t, m, cmd)
}

func TestOfflineMarker(t *testing.T) {
	m, h := newHarness(t)
	h.gallery.fallback = true
	m = run(t, m, m.Init())
	if !m.offline {
		t.Fatalf("offline = false, want true for fallback pages")
	}
}

func TestWishlistToggleAndView(t *testing.T) {
	m, h := started(t)

	m, _ = press(m, "w")
	if !h.wishlist.IsWishlisted("anime-1") {
		t.Fatalf("anime-1 not wishlisted")
	}
	m = step(t, m, wishlistChangedMsg{})
	if len(m.wishItems) != 1 {
		t.Fatalf("wishItems = %d, want 1", len(m.wishItems))
	}

	m, _ = press(m, "W")
	if m.currentView != ViewWishlist {
		t.Fatalf("view = %v, want wishlist", m.currentView)
	}
	m, _ = press(m, "x")
	m = step(t, m, wishlistChangedMsg{})
	if len(m.wishItems) != 0 || len(h.wishlist.items) != 0 {
		t.Fatalf("wishlist not cleared")
	}
}

func TestRenderDoesNotReadWishlist(t *testing.T) {
	m, h := started(t)
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})

	m, _ = press(m, "w")
	m = step(t, m, wishlistChangedMsg{})

	h.wishlist.lists = 0
	var out string
	for i := 0; i < 3; i++ {
		out = m.View()
	}
	if h.wishlist.lists != 0 {
		t.Fatalf("View read the wishlist %d times, want 0", h.wishlist.lists)
	}
	if !strings.Contains(out, "♥") {
		t.Fatalf("View() missing wishlist marker:\n%s", out)
	}
}

func TestThemeCycleSavesPrefs(t *testing.T) {
	m, h := started(t)
	m, _ = press(m, "T")
	if m.theme.Name != "Gruvbox" {
		t.Fatalf("theme = %q, want Gruvbox", m.theme.Name)
	}
	if got := h.prefs.Load().Theme; got != "Gruvbox" {
		t.Fatalf("saved theme = %q, want Gruvbox", got)
	}
}

func TestViewRenders(t *testing.T) {
	m, _ := started(t)
	if out := m.View(); out == "" {
		t.Fatalf("View() returned empty output")
	}
	m, _ = press(m, "?")
	if out := m.View(); out == "" {
		t.Fatalf("help View() returned empty output")
	}
}
