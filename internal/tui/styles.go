// Package tui provides the terminal user interface of the RPKI validator
// console.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rpkiconsole/rpkiconsole/internal/config"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/components"
)

// Theme contains the application chrome styles plus the styles handed to
// screens.
type Theme struct {
	Palette components.Palette

	Header    lipgloss.Style
	Footer    lipgloss.Style
	Title     lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
	Box       lipgloss.Style
	Alert     lipgloss.Style
	AlertWarn lipgloss.Style
	AlertCrit lipgloss.Style

	StatusBar     lipgloss.Style
	StatusKey     lipgloss.Style
	StatusDivider lipgloss.Style

	Components components.Styles
}

// NewTheme creates a theme for the configured color scheme.
func NewTheme(scheme config.ColorScheme) *Theme {
	switch scheme {
	case config.ColorSchemeAmber:
		return buildTheme(components.Palette{
			Primary:    lipgloss.Color("#FFAA00"),
			Secondary:  lipgloss.Color("#AA7700"),
			Accent:     lipgloss.Color("#FFCC66"),
			Background: lipgloss.Color("#000000"),
			Muted:      lipgloss.Color("#664400"),
			Error:      lipgloss.Color("#FF4444"),
			Warning:    lipgloss.Color("#FFFF00"),
			Success:    lipgloss.Color("#FFAA00"),
		})
	case config.ColorSchemeWhite:
		return buildTheme(components.Palette{
			Primary:    lipgloss.Color("#FFFFFF"),
			Secondary:  lipgloss.Color("#AAAAAA"),
			Accent:     lipgloss.Color("#FFFFFF"),
			Background: lipgloss.Color("#000000"),
			Muted:      lipgloss.Color("#666666"),
			Error:      lipgloss.Color("#FF4444"),
			Warning:    lipgloss.Color("#FFAA00"),
			Success:    lipgloss.Color("#00FF00"),
		})
	default:
		return buildTheme(components.GreenPhosphor)
	}
}

func buildTheme(p components.Palette) *Theme {
	t := &Theme{Palette: p, Components: components.NewStyles(p)}

	t.Header = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true).
		Padding(0, 1)

	t.Footer = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Padding(0, 1)

	t.Title = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true).
		Padding(0, 1)

	t.Muted = lipgloss.NewStyle().Foreground(p.Muted)
	t.Accent = lipgloss.NewStyle().Foreground(p.Accent)

	t.Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Secondary).
		Padding(0, 1)

	t.Alert = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)

	t.AlertWarn = lipgloss.NewStyle().
		Foreground(p.Warning).
		Bold(true)

	t.AlertCrit = lipgloss.NewStyle().
		Foreground(p.Error).
		Bold(true).
		Blink(true)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Padding(0, 1)

	t.StatusKey = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	t.StatusDivider = lipgloss.NewStyle().
		Foreground(p.Muted).
		SetString(" │ ")

	return t
}

// DoubleLine draws a double horizontal rule.
func (t *Theme) DoubleLine(width int) string {
	return lipgloss.NewStyle().Foreground(t.Palette.Primary).Render(strings.Repeat("═", max(width, 0)))
}
