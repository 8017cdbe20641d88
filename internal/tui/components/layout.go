package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ColumnSpec sizes one table column.
type ColumnSpec struct {
	// MinWidth is the smallest width a weighted column is given.
	MinWidth int
	// Weight is the proportional share of the width left after fixed columns.
	Weight float64
	// Fixed is a fixed width and overrides Weight when positive.
	Fixed int
	// Priority decides which columns are dropped first on narrow terminals
	// (lowest first).
	Priority int
}

// CalculateColumnWidths distributes availableWidth among columns. Columns
// that do not fit are dropped by ascending priority and get width 0.
// separator is the width of the gap between two columns.
func CalculateColumnWidths(specs []ColumnSpec, availableWidth, separator int) []int {
	widths := make([]int, len(specs))
	visible := make([]bool, len(specs))
	for i := range visible {
		visible[i] = true
	}

	remaining := func() int {
		fixed, count := 0, 0
		for i, s := range specs {
			if !visible[i] {
				continue
			}
			count++
			if s.Fixed > 0 {
				fixed += s.Fixed
			} else {
				fixed += s.MinWidth
			}
		}
		gaps := 0
		if count > 1 {
			gaps = (count - 1) * separator
		}
		return availableWidth - fixed - gaps - 2
	}

	for visibleCount := len(specs); remaining() < 0 && visibleCount > 1; visibleCount-- {
		drop := -1
		for i, s := range specs {
			if visible[i] && (drop < 0 || s.Priority < specs[drop].Priority) {
				drop = i
			}
		}
		visible[drop] = false
	}

	spare := max(remaining(), 0)
	totalWeight := 0.0
	for i, s := range specs {
		if visible[i] && s.Fixed == 0 {
			totalWeight += s.Weight
		}
	}

	for i, s := range specs {
		switch {
		case !visible[i]:
			widths[i] = 0
		case s.Fixed > 0:
			widths[i] = s.Fixed
		case totalWeight > 0:
			widths[i] = s.MinWidth + int(float64(spare)*s.Weight/totalWeight)
		default:
			widths[i] = s.MinWidth
		}
	}
	return widths
}

// Truncate shortens s to maxWidth cells, ending in an ellipsis when cut.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	if maxWidth == 1 {
		return string(runes[:1])
	}
	if len(runes) > maxWidth-1 {
		runes = runes[:maxWidth-1]
	}
	return string(runes) + "…"
}

// Align pads s to width cells.
func Align(s string, width int, pos lipgloss.Position) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	switch pos {
	case lipgloss.Right:
		return strings.Repeat(" ", gap) + s
	case lipgloss.Center:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

// Panel renders content in a rounded box with title set into the top border.
func Panel(st Styles, title, content string, width int) string {
	if title == "" {
		return st.Panel.Width(max(width-2, 1)).Render(content)
	}

	box := st.Panel.BorderTop(false).Width(max(width-2, 1)).Render(content)
	boxWidth := lipgloss.Width(box)
	label := Truncate(" "+title+" ", max(boxWidth-3, 0))
	fill := max(boxWidth-3-lipgloss.Width(label), 0)

	top := st.Border.Render("╭─") + st.Title.Render(label) + st.Border.Render(strings.Repeat("─", fill)+"╮")
	return top + "\n" + box
}

// SideBySide joins two blocks horizontally when they fit in totalWidth and
// stacks them otherwise.
func SideBySide(left, right string, totalWidth, gap int) string {
	if lipgloss.Width(left)+lipgloss.Width(right)+gap > totalWidth {
		return left + "\n\n" + right
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", gap), right)
}

// ProgressBar renders value/total as a text bar colored by how full it is.
func ProgressBar(st Styles, value, total, width int) string {
	ratio := 0.0
	if total > 0 {
		ratio = min(max(float64(value)/float64(total), 0), 1)
	}

	barWidth := max(width-2, 4)
	filled := int(ratio * float64(barWidth))
	bar := "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "]"

	switch {
	case ratio > 0.6:
		return st.Success.Render(bar)
	case ratio > 0.3:
		return st.Warning.Render(bar)
	default:
		return st.Error.Render(bar)
	}
}
