// Package views holds what the console screens share.
package views

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rpkiconsole/rpkiconsole/internal/models"
	"github.com/rpkiconsole/rpkiconsole/internal/table"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/components"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views/listview"
	"github.com/rpkiconsole/rpkiconsole/internal/validator"
)

// Screen is one console module.
type Screen interface {
	Init() tea.Cmd
	// Update receives every message; screens ignore what is not theirs.
	Update(msg tea.Msg) tea.Cmd
	// HandleKey returns false when the key is not bound by the screen.
	HandleKey(msg tea.KeyMsg) (tea.Cmd, bool)
	// Capturing reports whether text input has focus, in which case the
	// screen sees keys before the global bindings.
	Capturing() bool
	SetSize(width, height int)
	View() string
	// Help is the key hint line for the footer.
	Help() string
	Close()
}

// Env carries the dependencies and settings screens are built from.
type Env struct {
	Client *validator.Client
	// Prefs may be nil.
	Prefs  listview.Preferences
	Styles components.Styles

	PageSize  int
	PageSizes []int
	Debounce  time.Duration
	// DateTimeFormat is the Go layout used for timestamps.
	DateTimeFormat string

	Context context.Context
	Logger  *slog.Logger
}

// Options returns controller defaults sorted on column.
func (e Env) Options(column string, dir table.Direction) table.Options {
	return table.Options{
		PageSize:      e.PageSize,
		SortColumn:    column,
		SortDirection: dir,
		Debounce:      e.Debounce,
		Context:       e.Context,
		Logger:        e.Logger,
	}
}

// NewList builds a list view with the environment's settings.
func NewList[T any](e Env, id models.ViewID, title string, cols []listview.Column[T], fetch table.FetchFunc[T], opts table.Options) *listview.View[T] {
	return listview.New(listview.Config[T]{
		View:      id,
		Title:     title,
		Columns:   cols,
		Fetch:     fetch,
		Options:   opts,
		PageSizes: e.PageSizes,
		Prefs:     e.Prefs,
		Styles:    e.Styles,
		Logger:    e.Logger,
	})
}

// FormatTime renders an RFC 3339 timestamp with the configured layout.
// Unparseable input is returned unchanged.
func (e Env) FormatTime(s string) string {
	if s == "" {
		return "-"
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	layout := e.DateTimeFormat
	if layout == "" {
		layout = time.DateTime
	}
	return t.Local().Format(layout)
}

// Col is shorthand for a list column.
func Col[T any](title, sortKey string, spec components.ColumnSpec, cell func(T) string) listview.Column[T] {
	return listview.Column[T]{
		Column: components.Column{Title: title, SortKey: sortKey, ColumnSpec: spec},
		Cell:   cell,
	}
}
