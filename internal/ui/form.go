package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/folio/internal/gallery"
	"github.com/five82/folio/internal/state"
)

const (
	fieldTitle = iota
	fieldURL
	fieldDescription
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "URL", "Description"}

type formResult int

const (
	formOpen formResult = iota
	formSubmitted
	formCancelled
)

// imageForm is the add/edit modal.
type imageForm struct {
	mode   state.Mode
	id     string
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

// newImageForm returns a form for mode. In edit mode the inputs start with
// the fields of img.
func newImageForm(mode state.Mode, img *gallery.Image) imageForm {
	f := imageForm{mode: mode}
	placeholders := [fieldCount]string{"Sunset over the bay", "https://example.com/image.jpg", "optional"}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 512
		in.Width = 48
		f.inputs[i] = in
	}
	if mode == state.ModeEdit && img != nil {
		f.id = img.ID
		f.inputs[fieldTitle].SetValue(img.Title)
		f.inputs[fieldURL].SetValue(img.URL)
		f.inputs[fieldDescription].SetValue(img.Description)
	}
	f.inputs[fieldTitle].Focus()
	return f
}

func (f imageForm) fields() gallery.Fields {
	return gallery.Fields{
		Title:       f.inputs[fieldTitle].Value(),
		URL:         f.inputs[fieldURL].Value(),
		Description: f.inputs[fieldDescription].Value(),
	}.Normalize()
}

func (f *imageForm) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = (i + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

// Update handles a key while the form is open. The form only reports
// formSubmitted once its fields validate.
func (f imageForm) Update(msg tea.KeyMsg, keys keyMap) (imageForm, formResult, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		return f, formCancelled, nil
	case key.Matches(msg, keys.Accept):
		if f.focus < fieldCount-1 {
			f.setFocus(f.focus + 1)
			return f, formOpen, nil
		}
		if err := gallery.Validate(f.fields()); err != nil {
			f.err = validationText(err)
			return f, formOpen, nil
		}
		f.err = ""
		return f, formSubmitted, nil
	case key.Matches(msg, keys.NextField):
		f.setFocus(f.focus + 1)
		return f, formOpen, nil
	case key.Matches(msg, keys.PrevField):
		f.setFocus(f.focus - 1)
		return f, formOpen, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	f.err = ""
	return f, formOpen, cmd
}

func validationText(err error) string {
	var verr *gallery.ValidationError
	if errors.As(err, &verr) {
		return strings.ToUpper(verr.Field[:1]) + verr.Field[1:] + " " + verr.Reason
	}
	return err.Error()
}

func (f imageForm) View(theme Theme) string {
	styles := theme.Styles()
	var b strings.Builder

	title := "Add Image"
	if f.mode == state.ModeEdit {
		title = "Edit Image"
	}
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n\n")

	for i, in := range f.inputs {
		label := styles.MutedText
		if i == f.focus {
			label = styles.AccentText
		}
		b.WriteString(label.Render(fieldLabels[i]))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}

	if f.err != "" {
		b.WriteString(styles.DangerText.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("enter next/submit  tab switch field  esc cancel"))

	return styles.Modal.Width(56).Render(b.String())
}

func centered(width, height int, theme Theme, content string) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		content,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
