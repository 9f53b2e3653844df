package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/folio/internal/catalog"
	"github.com/five82/folio/internal/gallery"
)

// Messages

type categoriesMsg struct {
	names []string
	err   error
}

type pageMsg struct {
	category string
	number   int
	page     catalog.Page
	err      error
}

type createdMsg struct {
	category string
	image    gallery.Image
	err      error
}

type deletedMsg struct {
	id  string
	err error
}

// wishlistChangedMsg is sent by the wishlist subscription.
type wishlistChangedMsg struct{}

// Commands

func loadCategoriesCmd(ctx context.Context, g Gallery) tea.Cmd {
	return func() tea.Msg {
		names, err := g.Categories(ctx)
		return categoriesMsg{names: names, err: err}
	}
}

func loadPageCmd(ctx context.Context, g Gallery, category string, number, size int) tea.Cmd {
	return func() tea.Msg {
		page, err := g.FetchPage(ctx, category, number, size)
		return pageMsg{category: category, number: number, page: page, err: err}
	}
}

func createImageCmd(ctx context.Context, g Gallery, category string, fields gallery.Fields) tea.Cmd {
	return func() tea.Msg {
		img, err := g.CreateImage(ctx, category, fields)
		return createdMsg{category: category, image: img, err: err}
	}
}

func deleteImageCmd(ctx context.Context, g Gallery, id string) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{id: id, err: g.DeleteImage(ctx, id)}
	}
}
