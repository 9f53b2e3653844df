package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/folio/internal/gallery"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading gallery..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.form != nil {
		return centered(m.width, m.height, m.theme, m.form.View(m.theme))
	}
	return m.renderMain()
}

func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	bodyHeight := m.height - 3
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	var body string
	if m.currentView == ViewWishlist {
		body = m.renderWishlist(bodyHeight)
	} else {
		body = m.renderGallery(bodyHeight)
	}
	b.WriteString(lipgloss.NewStyle().Height(bodyHeight).Render(body))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	parts := []string{styles.Logo.Render("folio")}

	if m.currentView == ViewWishlist {
		parts = append(parts, styles.ActiveTab.Render(fmt.Sprintf("wishlist (%d)", len(m.wishItems))))
	} else {
		for i, name := range m.categories {
			if i == m.catIndex {
				parts = append(parts, styles.ActiveTab.Render(name))
			} else {
				parts = append(parts, styles.Tab.Render(name))
			}
		}
	}
	if m.user != "" {
		parts = append(parts, styles.MutedText.Render(m.user))
	}
	return styles.Header.Width(m.width).Render(strings.Join(parts, " "))
}

func (m Model) renderGallery(height int) string {
	styles := m.theme.Styles()
	images := m.store.Snapshot().Images

	if len(images) == 0 {
		if m.loading {
			return styles.MutedText.Render("Loading gallery...")
		}
		return styles.MutedText.Render("No images yet. Press a to add one.")
	}

	start, end := window(m.cursor, len(images), height)
	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(images[i], i == m.cursor))
	}
	switch {
	case m.loading:
		lines = append(lines, styles.FaintText.Render("loading more..."))
	case !m.lastPage && end == len(images):
		lines = append(lines, styles.FaintText.Render("j to load more"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderWishlist(height int) string {
	styles := m.theme.Styles()
	if len(m.wishItems) == 0 {
		return styles.MutedText.Render("Your wishlist is empty. Press w on an image to save it.")
	}
	start, end := window(m.wishCursor, len(m.wishItems), height)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(m.wishItems[i], i == m.wishCursor))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(img gallery.Image, selected bool) string {
	styles := m.theme.Styles()

	marker := "  "
	if _, ok := m.wishIDs[img.ID]; ok {
		marker = styles.Heart.Render("♥") + " "
	}
	title := truncate(img.Title, 32)
	link := truncate(img.URL, 48)

	if selected {
		line := fmt.Sprintf("%-32s  %s", title, link)
		return marker + styles.Selected.Render(line)
	}
	line := styles.Text.Render(fmt.Sprintf("%-32s", title)) + "  " + styles.MutedText.Render(link)
	if img.Description != "" {
		line += "  " + styles.FaintText.Render(truncate(img.Description, 40))
	}
	return marker + line
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	var parts []string

	if m.currentView == ViewGallery && len(m.categories) > 0 {
		count := fmt.Sprintf("%d/%d", len(m.store.Snapshot().Images), m.total)
		parts = append(parts, styles.MutedText.Render(count))
		if m.offline {
			parts = append(parts, styles.WarningText.Render("offline data"))
		}
	}
	if m.loading {
		parts = append(parts, styles.AccentText.Render("loading"))
	}
	switch {
	case m.status == "":
		parts = append(parts, styles.FaintText.Render("? help"))
	case m.statusLevel == statusError:
		parts = append(parts, styles.DangerText.Render(m.status))
	case m.statusLevel == statusSuccess:
		parts = append(parts, styles.SuccessText.Render(m.status))
	default:
		parts = append(parts, styles.Text.Render(m.status))
	}
	return styles.Footer.Width(m.width).Render(strings.Join(parts, "  "))
}

// window returns the visible [start, end) range that keeps cursor on screen.
func window(cursor, total, height int) (int, int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > total {
		start = total - height
	}
	return start, start + height
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}
