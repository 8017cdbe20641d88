package tui

// LayoutBreakpoint defines terminal width thresholds for responsive layout.
type LayoutBreakpoint int

const (
	// BreakpointNarrow is for terminals under 80 columns.
	BreakpointNarrow LayoutBreakpoint = 80
	// BreakpointMedium is for terminals between 80 and 120 columns.
	BreakpointMedium LayoutBreakpoint = 120
	// BreakpointWide is for terminals of 120 columns and more.
	BreakpointWide LayoutBreakpoint = 160
)

// MaxContentWidth caps the width screens render into.
const MaxContentWidth = 160

// GetBreakpoint returns the layout breakpoint for the given width.
func GetBreakpoint(width int) LayoutBreakpoint {
	switch {
	case width < int(BreakpointNarrow):
		return BreakpointNarrow
	case width < int(BreakpointMedium):
		return BreakpointMedium
	default:
		return BreakpointWide
	}
}

// ContentWidth returns the usable content width, capped between min and max.
func ContentWidth(termWidth, minWidth, maxWidth int) int {
	w := max(termWidth, minWidth)
	if maxWidth > 0 && w > maxWidth {
		w = maxWidth
	}
	return w
}

// ContentHeight returns the usable content height after subtracting chrome.
// chromeLines is the total lines used by header, footer, alert bar and
// separators.
func ContentHeight(termHeight, chromeLines int) int {
	return max(termHeight-chromeLines, 5)
}
