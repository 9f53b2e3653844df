package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the palette of the UI.
type Theme struct {
	Name string

	Background string
	Surface    string
	SurfaceAlt string

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Header    lipgloss.Style
	Footer    lipgloss.Style
	Logo      lipgloss.Style
	Selected  lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Modal     lipgloss.Style
	Heart     lipgloss.Style
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		MutedText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		FaintText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint)),
		AccentText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
		SuccessText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
		WarningText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		DangerText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),
		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),
		Tab: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SurfaceAlt)).
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true).
			Padding(0, 1),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.BorderFocus)).
			Padding(1, 2),
		Heart: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)),
	}
}

var themes = map[string]Theme{
	"Nord":      nordTheme(),
	"Gruvbox":   gruvboxTheme(),
	"Rose Pine": rosePineTheme(),
}

var themeOrder = []string{"Nord", "Gruvbox", "Rose Pine"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nordTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func nordTheme() Theme {
	// Nord palette: https://www.nordtheme.com/docs/colors-and-palettes
	return Theme{
		Name: "Nord",

		Background: "#2e3440", // nord0
		Surface:    "#3b4252", // nord1
		SurfaceAlt: "#434c5e", // nord2

		SelectionBg:   "#5e81ac", // nord10
		SelectionText: "#eceff4", // nord6

		Border:      "#4c566a", // nord3
		BorderFocus: "#88c0d0", // nord8

		Text:    "#e5e9f0", // nord5
		Muted:   "#d8dee9", // nord4
		Faint:   "#4c566a", // nord3
		Accent:  "#88c0d0", // nord8
		Success: "#a3be8c", // nord14
		Warning: "#ebcb8b", // nord13
		Danger:  "#bf616a", // nord11
		Info:    "#81a1c1", // nord9
	}
}

func gruvboxTheme() Theme {
	// Gruvbox dark palette: https://github.com/morhetz/gruvbox
	return Theme{
		Name: "Gruvbox",

		Background: "#1d2021", // bg0_h
		Surface:    "#282828", // bg0
		SurfaceAlt: "#3c3836", // bg1

		SelectionBg:   "#458588", // blue
		SelectionText: "#fbf1c7", // fg0

		Border:      "#504945", // bg2
		BorderFocus: "#fabd2f", // yellow

		Text:    "#ebdbb2", // fg
		Muted:   "#bdae93", // fg3
		Faint:   "#7c6f64", // bg4
		Accent:  "#fabd2f", // yellow
		Success: "#b8bb26", // green
		Warning: "#fe8019", // orange
		Danger:  "#fb4934", // red
		Info:    "#83a598", // aqua-blue
	}
}

func rosePineTheme() Theme {
	// Rosé Pine palette: https://rosepinetheme.com/palette
	return Theme{
		Name: "Rose Pine",

		Background: "#191724", // base
		Surface:    "#1f1d2e", // surface
		SurfaceAlt: "#26233a", // overlay

		SelectionBg:   "#403d52", // highlight med
		SelectionText: "#e0def4", // text

		Border:      "#524f67", // highlight high
		BorderFocus: "#ebbcba", // rose

		Text:    "#e0def4", // text
		Muted:   "#908caa", // subtle
		Faint:   "#6e6a86", // muted
		Accent:  "#ebbcba", // rose
		Success: "#9ccfd8", // foam
		Warning: "#f6c177", // gold
		Danger:  "#eb6f92", // love
		Info:    "#c4a7e7", // iris
	}
}
