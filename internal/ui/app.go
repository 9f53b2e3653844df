package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/five82/folio/internal/catalog"
	"github.com/five82/folio/internal/gallery"
	"github.com/five82/folio/internal/prefs"
	"github.com/five82/folio/internal/state"
)

// Gallery is the data access the page controller needs. *catalog.Catalog
// satisfies it.
type Gallery interface {
	FetchPage(ctx context.Context, category string, page, size int) (catalog.Page, error)
	CreateImage(ctx context.Context, category string, fields gallery.Fields) (gallery.Image, error)
	DeleteImage(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
	Invalidate(category string)
	PageSize() int
}

// Wishlist is the favorites store. *wishlist.Store satisfies it.
type Wishlist interface {
	Toggle(img gallery.Image) (bool, error)
	List() []gallery.Image
	Clear() error
	Subscribe(fn func()) (unsubscribe func())
}

// View represents the current active view.
type View int

const (
	ViewGallery View = iota
	ViewWishlist
)

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusSuccess
	statusError
)

// Options configures the UI.
type Options struct {
	Context  context.Context
	Gallery  Gallery
	Store    *state.Store
	Wishlist Wishlist
	Prefs    *prefs.File
	User     string // signed-in email shown in the header
	Logger   logrus.FieldLogger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx      context.Context
	gallery  Gallery
	store    *state.Store
	wishlist Wishlist
	prefs    *prefs.File
	user     string
	log      logrus.FieldLogger
	keys     keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	// Category state
	categories []string
	catIndex   int
	preferred  string

	// Paging state
	page     int
	lastPage bool
	loading  bool
	offline  bool
	total    int

	// Selection
	cursor     int
	wishCursor int
	wishItems  []gallery.Image
	wishIDs    map[string]struct{}

	// Modals and prompts
	form          *imageForm
	pendingDelete *gallery.Image

	status      string
	statusLevel statusLevel
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	store := opts.Store
	if store == nil {
		store = state.NewStore(state.Reducer{})
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	p := prefs.Prefs{Theme: prefs.DefaultTheme}
	if opts.Prefs != nil {
		p = opts.Prefs.Load()
	}

	m := Model{
		ctx:       ctx,
		gallery:   opts.Gallery,
		store:     store,
		wishlist:  opts.Wishlist,
		prefs:     opts.Prefs,
		user:      opts.User,
		log:       logger.WithField("component", "ui"),
		keys:      DefaultKeyMap(),
		theme:     GetTheme(p.Theme),
		preferred: p.LastCategory,
		loading:   true,
	}
	m.refreshWishlist()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.gallery == nil {
		return nil
	}
	return loadCategoriesCmd(m.ctx, m.gallery)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case categoriesMsg:
		return m.handleCategories(msg)

	case pageMsg:
		return m.handlePage(msg)

	case createdMsg:
		return m.handleCreated(msg)

	case deletedMsg:
		return m.handleDeleted(msg)

	case wishlistChangedMsg:
		m.refreshWishlist()
		m.wishCursor = clamp(m.wishCursor, len(m.wishItems))
		return m, nil
	}

	if m.form != nil {
		// Cursor blink and other input messages.
		var cmd tea.Cmd
		f := *m.form
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
		m.form = &f
		return m, cmd
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.form != nil {
		return m.handleFormKey(msg)
	}

	if m.pendingDelete != nil {
		return m.handleDeletePrompt(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs(func(p *prefs.Prefs) { p.Theme = m.theme.Name })
		return m, nil
	case key.Matches(msg, m.keys.ViewWishlist):
		if m.currentView == ViewWishlist {
			m.currentView = ViewGallery
		} else {
			m.currentView = ViewWishlist
		}
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewGallery
		return m, nil
	}

	if m.currentView == ViewWishlist {
		return m.handleWishlistKey(msg)
	}
	return m.handleGalleryKey(msg)
}

func (m Model) handleGalleryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	images := m.store.Snapshot().Images

	switch {
	case key.Matches(msg, m.keys.NextCategory):
		return m.switchCategory(m.catIndex + 1)
	case key.Matches(msg, m.keys.PrevCategory):
		return m.switchCategory(m.catIndex - 1)
	case key.Matches(msg, m.keys.Reload):
		if cat := m.category(); cat != "" && m.gallery != nil {
			m.gallery.Invalidate(cat)
			return m.startLoad()
		}
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(images)-1 {
			m.cursor++
			return m, nil
		}
		return m.loadMore()
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = clamp(len(images)-1, len(images))
		return m, nil
	case key.Matches(msg, m.keys.Add):
		return m.openForm(state.ModeAdd, nil)
	}

	selected, ok := m.selectedImage(images)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Edit):
		return m.openForm(state.ModeEdit, &selected)
	case key.Matches(msg, m.keys.Delete):
		m.pendingDelete = &selected
		m.setStatus(statusInfo, fmt.Sprintf("Delete %q? press y to confirm", selected.Title))
		return m, nil
	case key.Matches(msg, m.keys.ToggleWishlist):
		m.toggleWishlist(selected)
		return m, nil
	}
	return m, nil
}

func (m Model) handleWishlistKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.wishCursor > 0 {
			m.wishCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.wishCursor < len(m.wishItems)-1 {
			m.wishCursor++
		}
	case key.Matches(msg, m.keys.Top):
		m.wishCursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.wishCursor = clamp(len(m.wishItems)-1, len(m.wishItems))
	case key.Matches(msg, m.keys.ToggleWishlist):
		if m.wishCursor < len(m.wishItems) {
			m.toggleWishlist(m.wishItems[m.wishCursor])
		}
	case key.Matches(msg, m.keys.ClearWishlist):
		if m.wishlist == nil {
			return m, nil
		}
		if err := m.wishlist.Clear(); err != nil {
			m.log.WithError(err).Warn("clear wishlist failed")
			m.setStatus(statusError, "Failed to clear wishlist, please try again")
			return m, nil
		}
		m.setStatus(statusSuccess, "Wishlist cleared")
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f, result, cmd := m.form.Update(msg, m.keys)
	switch result {
	case formCancelled:
		m.form = nil
		m.store.Dispatch(state.SetMode{Mode: state.ModeAdd}, state.SetSelected{})
		return m, nil
	case formSubmitted:
		m.form = nil
		return m.submitForm(f)
	}
	m.form = &f
	return m, cmd
}

func (m Model) submitForm(f imageForm) (tea.Model, tea.Cmd) {
	fields := f.fields()
	if f.mode == state.ModeEdit {
		if !m.store.Contains(f.id) {
			m.store.Dispatch(state.SetMode{Mode: state.ModeAdd}, state.SetSelected{})
			m.setStatus(statusError, "Image no longer exists")
			return m, nil
		}
		m.store.Dispatch(
			state.Update{Patch: gallery.PatchFrom(f.id, fields)},
			state.SetMode{Mode: state.ModeAdd},
			state.SetSelected{},
		)
		m.setStatus(statusSuccess, "Image updated")
		return m, nil
	}

	cat := m.category()
	if cat == "" || m.gallery == nil {
		m.setStatus(statusError, "No category selected")
		return m, nil
	}
	m.setStatus(statusInfo, "Saving image...")
	return m, createImageCmd(m.ctx, m.gallery, cat, fields)
}

func (m Model) handleDeletePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	target := m.pendingDelete
	m.pendingDelete = nil
	if !key.Matches(msg, m.keys.Confirm) || m.gallery == nil {
		m.setStatus(statusInfo, "Delete cancelled")
		return m, nil
	}
	m.setStatus(statusInfo, "Deleting image...")
	return m, deleteImageCmd(m.ctx, m.gallery, target.ID)
}

func (m Model) handleCategories(msg categoriesMsg) (tea.Model, tea.Cmd) {
	names := msg.names
	if msg.err != nil {
		m.log.WithError(msg.err).Warn("load categories failed")
		m.setStatus(statusError, "Failed to load categories, please try again")
	}
	if len(names) == 0 {
		names = catalog.DefaultCategories
	}
	m.categories = append([]string(nil), names...)
	m.catIndex = 0
	for i, name := range m.categories {
		if name == m.preferred {
			m.catIndex = i
			break
		}
	}
	return m.startLoad()
}

func (m Model) handlePage(msg pageMsg) (tea.Model, tea.Cmd) {
	if msg.category != m.category() {
		// Stale response for a category the user already left.
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.log.WithError(msg.err).WithField("category", msg.category).Warn("load page failed")
		m.setStatus(statusError, "Failed to load images, please try again")
		return m, nil
	}

	images := msg.page.Images
	if msg.number > 1 {
		images = appendNew(m.store.Snapshot().Images, images)
	} else {
		m.cursor = 0
	}
	m.store.Dispatch(state.Init{Images: images})

	m.page = msg.number
	m.lastPage = msg.page.Last()
	m.offline = msg.page.Fallback
	m.total = msg.page.Total
	if m.statusLevel != statusError {
		m.status = ""
	}
	return m, nil
}

func (m Model) handleCreated(msg createdMsg) (tea.Model, tea.Cmd) {
	m.store.Dispatch(state.SetMode{Mode: state.ModeAdd}, state.SetSelected{})
	if msg.err != nil {
		m.log.WithError(msg.err).Warn("create image failed")
		if errors.Is(msg.err, catalog.ErrValidation) {
			m.setStatus(statusError, validationText(msg.err))
		} else {
			m.setStatus(statusError, "Failed to add image, please try again")
		}
		return m, nil
	}
	if msg.category == m.category() {
		m.store.Dispatch(state.Add{Image: msg.image})
		m.cursor = 0
		m.total++
	}
	m.setStatus(statusSuccess, "Image added")
	return m, nil
}

func (m Model) handleDeleted(msg deletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.WithError(msg.err).WithField("id", msg.id).Warn("delete image failed")
		m.setStatus(statusError, "Failed to delete image, please try again")
		return m, nil
	}
	if m.store.Contains(msg.id) {
		m.total--
	}
	next := m.store.Dispatch(state.Delete{ID: msg.id})
	m.cursor = clamp(m.cursor, len(next.Images))
	m.setStatus(statusSuccess, "Image deleted")
	return m, nil
}

func (m Model) openForm(mode state.Mode, img *gallery.Image) (tea.Model, tea.Cmd) {
	m.store.Dispatch(state.SetMode{Mode: mode}, state.SetSelected{Image: img})
	f := newImageForm(mode, img)
	m.form = &f
	return m, textinput.Blink
}

func (m Model) switchCategory(index int) (tea.Model, tea.Cmd) {
	if len(m.categories) == 0 {
		return m, nil
	}
	m.catIndex = (index + len(m.categories)) % len(m.categories)
	cat := m.category()
	m.preferred = cat
	m.savePrefs(func(p *prefs.Prefs) { p.LastCategory = cat })
	m.store.Dispatch(state.Init{})
	m.status = ""
	return m.startLoad()
}

func (m Model) startLoad() (tea.Model, tea.Cmd) {
	cat := m.category()
	if cat == "" || m.gallery == nil {
		return m, nil
	}
	m.loading = true
	m.page = 0
	m.lastPage = false
	return m, loadPageCmd(m.ctx, m.gallery, cat, 1, m.gallery.PageSize())
}

func (m Model) loadMore() (tea.Model, tea.Cmd) {
	cat := m.category()
	if m.loading || m.lastPage || m.page == 0 || cat == "" || m.gallery == nil {
		return m, nil
	}
	m.loading = true
	return m, loadPageCmd(m.ctx, m.gallery, cat, m.page+1, m.gallery.PageSize())
}

// refreshWishlist re-reads the wishlist once so rendering never hits storage.
func (m *Model) refreshWishlist() {
	if m.wishlist == nil {
		return
	}
	m.wishItems = m.wishlist.List()
	m.wishIDs = make(map[string]struct{}, len(m.wishItems))
	for _, img := range m.wishItems {
		m.wishIDs[img.ID] = struct{}{}
	}
}

func (m *Model) toggleWishlist(img gallery.Image) {
	if m.wishlist == nil {
		return
	}
	added, err := m.wishlist.Toggle(img)
	if err != nil {
		m.log.WithError(err).Warn("toggle wishlist failed")
		m.setStatus(statusError, "Failed to update wishlist, please try again")
		return
	}
	if added {
		m.setStatus(statusSuccess, fmt.Sprintf("Added %q to wishlist", img.Title))
	} else {
		m.setStatus(statusSuccess, fmt.Sprintf("Removed %q from wishlist", img.Title))
	}
}

func (m *Model) savePrefs(fn func(*prefs.Prefs)) {
	if m.prefs == nil {
		return
	}
	if err := m.prefs.Update(fn); err != nil {
		m.log.WithError(err).Warn("save prefs failed")
	}
}

func (m *Model) setStatus(level statusLevel, text string) {
	m.statusLevel = level
	m.status = text
}

func (m Model) category() string {
	if m.catIndex < 0 || m.catIndex >= len(m.categories) {
		return ""
	}
	return m.categories[m.catIndex]
}

func (m Model) selectedImage(images []gallery.Image) (gallery.Image, bool) {
	if m.cursor < 0 || m.cursor >= len(images) {
		return gallery.Image{}, false
	}
	return images[m.cursor], true
}

// appendNew returns existing followed by the images of next it does not
// already contain.
func appendNew(existing, next []gallery.Image) []gallery.Image {
	seen := make(map[string]bool, len(existing))
	out := make([]gallery.Image, 0, len(existing)+len(next))
	for _, img := range existing {
		seen[img.ID] = true
		out = append(out, img)
	}
	for _, img := range next {
		if !seen[img.ID] {
			seen[img.ID] = true
			out = append(out, img)
		}
	}
	return out
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	if m.wishlist != nil {
		unsubscribe := m.wishlist.Subscribe(func() { go p.Send(wishlistChangedMsg{}) })
		defer unsubscribe()
	}
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
