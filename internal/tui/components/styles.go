package components

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colors a theme is built from.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Muted      lipgloss.Color
	Error      lipgloss.Color
	Warning    lipgloss.Color
	Success    lipgloss.Color
}

// GreenPhosphor is the classic green terminal palette.
var GreenPhosphor = Palette{
	Primary:    lipgloss.Color("#00FF00"),
	Secondary:  lipgloss.Color("#00AA00"),
	Accent:     lipgloss.Color("#66FF66"),
	Background: lipgloss.Color("#000000"),
	Muted:      lipgloss.Color("#006600"),
	Error:      lipgloss.Color("#FF4444"),
	Warning:    lipgloss.Color("#FFAA00"),
	Success:    lipgloss.Color("#00FF00"),
}

// Styles is the subset of the application theme that components and views
// render with.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Accent   lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Success  lipgloss.Style

	Header   lipgloss.Style
	Row      lipgloss.Style
	RowAlt   lipgloss.Style
	Selected lipgloss.Style
	Border   lipgloss.Style
	Panel    lipgloss.Style
}

// NewStyles builds component styles from p.
func NewStyles(p Palette) Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Subtitle: lipgloss.NewStyle().Foreground(p.Primary),
		Label:    lipgloss.NewStyle().Foreground(p.Secondary),
		Value:    lipgloss.NewStyle().Foreground(p.Primary),
		Accent:   lipgloss.NewStyle().Foreground(p.Accent),
		Muted:    lipgloss.NewStyle().Foreground(p.Muted),
		Error:    lipgloss.NewStyle().Foreground(p.Error),
		Warning:  lipgloss.NewStyle().Foreground(p.Warning),
		Success:  lipgloss.NewStyle().Foreground(p.Success),
		Header:   lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Row:      lipgloss.NewStyle().Foreground(p.Primary),
		RowAlt:   lipgloss.NewStyle().Foreground(p.Secondary),
		Selected: lipgloss.NewStyle().Foreground(p.Background).Background(p.Primary).Bold(true),
		Border:   lipgloss.NewStyle().Foreground(p.Secondary),
		Panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Secondary).Padding(0, 1),
	}
}

// DefaultStyles returns green phosphor styles.
func DefaultStyles() Styles {
	return NewStyles(GreenPhosphor)
}
