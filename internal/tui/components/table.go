// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rpkiconsole/rpkiconsole/internal/table"
)

// Column defines a table column.
type Column struct {
	Title string
	// SortKey is the column name sent to the backend; empty when the column
	// cannot be sorted.
	SortKey string
	Align   lipgloss.Position
	ColumnSpec
}

// Table renders one page of rows with a row cursor and sort indicators.
// Paging itself belongs to the table controller.
type Table struct {
	columns     []Column
	rows        [][]string
	selected    int
	offset      int
	visibleRows int
	focused     bool
	emptyText   string
	sort        table.Sort
	styles      Styles
}

// NewTable creates a new table with the given columns.
func NewTable(columns []Column, styles Styles) *Table {
	return &Table{
		columns:     columns,
		visibleRows: 10,
		emptyText:   "No matching records found",
		styles:      styles,
	}
}

// SetRows replaces the rows and keeps the cursor within bounds.
func (t *Table) SetRows(rows [][]string) {
	t.rows = rows
	if t.selected >= len(rows) {
		t.selected = max(len(rows)-1, 0)
	}
	t.clampOffset()
}

// SetSort sets the sort shown in the header.
func (t *Table) SetSort(s table.Sort) {
	t.sort = s
}

// SetEmptyText sets the text shown when there are no rows.
func (t *Table) SetEmptyText(s string) {
	t.emptyText = s
}

// SetVisibleRows sets the number of rows rendered at once.
func (t *Table) SetVisibleRows(n int) {
	t.visibleRows = max(n, 1)
	t.clampOffset()
}

// Focus sets the table focus state. The cursor is only highlighted when
// focused.
func (t *Table) Focus(focused bool) {
	t.focused = focused
}

// Focused reports the focus state.
func (t *Table) Focused() bool {
	return t.focused
}

// Selected returns the cursor row index.
func (t *Table) Selected() int {
	return t.selected
}

// SortKeys returns the sort keys of the sortable columns in display order.
func (t *Table) SortKeys() []string {
	var keys []string
	for _, c := range t.columns {
		if c.SortKey != "" {
			keys = append(keys, c.SortKey)
		}
	}
	return keys
}

// MoveUp moves the cursor up.
func (t *Table) MoveUp() {
	if t.selected > 0 {
		t.selected--
		t.clampOffset()
	}
}

// MoveDown moves the cursor down.
func (t *Table) MoveDown() {
	if t.selected < len(t.rows)-1 {
		t.selected++
		t.clampOffset()
	}
}

// GoToTop moves the cursor to the first row.
func (t *Table) GoToTop() {
	t.selected = 0
	t.offset = 0
}

func (t *Table) clampOffset() {
	if t.selected < t.offset {
		t.offset = t.selected
	}
	if t.selected >= t.offset+t.visibleRows {
		t.offset = t.selected - t.visibleRows + 1
	}
	t.offset = max(min(t.offset, len(t.rows)-t.visibleRows), 0)
}

// Empty returns true if the table has no rows.
func (t *Table) Empty() bool {
	return len(t.rows) == 0
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// Render renders the header, the visible rows and a closing rule.
func (t *Table) Render(width int) string {
	specs := make([]ColumnSpec, len(t.columns))
	for i, c := range t.columns {
		specs[i] = c.ColumnSpec
	}
	widths := CalculateColumnWidths(specs, width, 3)

	ruleWidth := 1
	for _, w := range widths {
		if w > 0 {
			ruleWidth += w + 3
		}
	}
	rule := t.styles.Border.Render(strings.Repeat("─", max(ruleWidth-2, 0)))

	var b strings.Builder
	b.WriteString(t.renderRow(t.headers(), widths, t.styles.Header))
	b.WriteString("\n")
	b.WriteString(rule)
	b.WriteString("\n")

	if len(t.rows) == 0 {
		b.WriteString(" " + t.styles.Muted.Render(t.emptyText))
		b.WriteString("\n")
	}

	end := min(t.offset+t.visibleRows, len(t.rows))
	for i := t.offset; i < end; i++ {
		style := t.styles.Row
		switch {
		case i == t.selected && t.focused:
			style = t.styles.Selected
		case (i-t.offset)%2 == 1:
			style = t.styles.RowAlt
		}
		b.WriteString(t.renderRow(t.rows[i], widths, style))
		b.WriteString("\n")
	}

	b.WriteString(rule)
	return b.String()
}

// headers appends the sort indicator and, for sortable columns, the digit
// that toggles them.
func (t *Table) headers() []string {
	headers := make([]string, len(t.columns))
	n := 0
	for i, c := range t.columns {
		title := c.Title
		if c.SortKey != "" {
			n++
			if n <= 9 {
				title = string(rune('0'+n)) + ":" + title
			}
			if dir, ok := t.sort.Indicator(c.SortKey); ok {
				if dir == table.Desc {
					title += " ▼"
				} else {
					title += " ▲"
				}
			}
		}
		headers[i] = title
	}
	return headers
}

func (t *Table) renderRow(cells []string, widths []int, style lipgloss.Style) string {
	var parts []string
	for i, c := range t.columns {
		if widths[i] == 0 {
			continue
		}
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts = append(parts, style.Render(Align(Truncate(cell, widths[i]), widths[i], c.Align)))
	}
	return " " + strings.Join(parts, t.styles.Border.Render(" │ ")) + " "
}

// RenderPager renders the status line with previous/next controls. The
// status text is omitted while it is not visible.
func RenderPager(st Styles, status table.Status, page, pageCount int) string {
	prev := st.Accent.Render("‹ Prev")
	if status.PrevDisabled {
		prev = st.Muted.Render("‹ Prev")
	}
	next := st.Accent.Render("Next ›")
	if status.NextDisabled {
		next = st.Muted.Render("Next ›")
	}

	pager := prev + st.Label.Render(" │ ") + next
	if !status.Visible {
		return pager
	}
	return st.Label.Render(status.Text) + "   " +
		st.Value.Render(pageLabel(page, pageCount)) + "   " + pager
}

func pageLabel(page, pageCount int) string {
	return fmt.Sprintf("Page %d/%d", page, max(pageCount, 1))
}
