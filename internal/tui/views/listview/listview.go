// Package listview binds a table controller to a rendered table with a
// search box, pager and loading spinner. Every list in the console is a
// View.
package listview

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rpkiconsole/rpkiconsole/internal/models"
	"github.com/rpkiconsole/rpkiconsole/internal/repository"
	"github.com/rpkiconsole/rpkiconsole/internal/table"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/components"
)

// Column is a table column with the cell renderer for a row.
type Column[T any] struct {
	components.Column
	Cell func(row T) string
}

// Preferences loads and stores per-view table setup.
type Preferences interface {
	Get(ctx context.Context, view models.ViewID) (*models.ViewPreference, error)
	Save(ctx context.Context, tx *sql.Tx, p *models.ViewPreference) error
}

// Config describes a list view.
type Config[T any] struct {
	View    models.ViewID
	Title   string
	Columns []Column[T]
	Fetch   table.FetchFunc[T]

	// Options are the controller defaults; a stored preference overrides
	// page size and sort.
	Options   table.Options
	PageSizes []int

	// Prefs may be nil.
	Prefs     Preferences
	Styles    components.Styles
	EmptyText string
	Logger    *slog.Logger
}

// View is a paged, sortable, searchable list.
type View[T any] struct {
	id        models.ViewID
	title     string
	columns   []Column[T]
	ctrl      *table.Controller[T]
	table     *components.Table
	search    textinput.Model
	searching bool
	spinner   spinner.Model
	pageSizes []int
	prefs     Preferences
	styles    components.Styles
	width     int
	logger    *slog.Logger
}

// New creates a list view. The stored preference for cfg.View, if any, is
// read synchronously.
func New[T any](cfg Config[T]) *View[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := cfg.Options
	opts.Name = string(cfg.View)
	opts.Logger = logger
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	pageSizes := cfg.PageSizes
	if len(pageSizes) == 0 {
		pageSizes = []int{10, 25, 50, 100}
	}

	if cfg.Prefs != nil {
		pref, err := cfg.Prefs.Get(opts.Context, cfg.View)
		switch {
		case err == nil:
			opts = pref.Apply(opts, pageSizes)
		case !errors.Is(err, repository.ErrNotFound):
			logger.Warn("loading view preference", "view", cfg.View, "error", err)
		}
	}

	cols := make([]components.Column, len(cfg.Columns))
	for i, c := range cfg.Columns {
		cols[i] = c.Column
	}
	tbl := components.NewTable(cols, cfg.Styles)
	tbl.Focus(true)
	if cfg.EmptyText != "" {
		tbl.SetEmptyText(cfg.EmptyText)
	}

	search := textinput.New()
	search.Prompt = ""
	search.Placeholder = "type to filter"
	search.CharLimit = 200
	search.Width = 40
	search.Cursor.SetMode(cursor.CursorStatic)
	search.SetValue(opts.SearchTerm)

	ctrl := table.New(cfg.Fetch, opts)
	tbl.SetSort(ctrl.Sort())

	return &View[T]{
		id:        cfg.View,
		title:     cfg.Title,
		columns:   cfg.Columns,
		ctrl:      ctrl,
		table:     tbl,
		search:    search,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(cfg.Styles.Accent)),
		pageSizes: pageSizes,
		prefs:     cfg.Prefs,
		styles:    cfg.Styles,
		width:     80,
		logger:    logger,
	}
}

// Init issues the first load.
func (v *View[T]) Init() tea.Cmd {
	return tea.Batch(v.ctrl.Init(), v.spinner.Tick)
}

// Controller returns the underlying controller.
func (v *View[T]) Controller() *table.Controller[T] { return v.ctrl }

// ID returns the view id.
func (v *View[T]) ID() models.ViewID { return v.id }

// Searching reports whether the search box has focus. Keys should then be
// sent to HandleKey before any global binding.
func (v *View[T]) Searching() bool { return v.searching }

// Refresh reloads after the backing data was changed.
func (v *View[T]) Refresh() tea.Cmd { return v.ctrl.Refresh() }

// Close stops the controller.
func (v *View[T]) Close() { v.ctrl.Close() }

// Focus sets whether the row cursor is highlighted.
func (v *View[T]) Focus(focused bool) { v.table.Focus(focused) }

// SetSize sets the space the view renders into.
func (v *View[T]) SetSize(width, height int) {
	v.width = width
	// title, search, header, rules, pager, error
	v.table.SetVisibleRows(height - 8)
}

// Selected returns the row under the cursor.
func (v *View[T]) Selected() (T, bool) {
	rows := v.ctrl.Rows()
	i := v.table.Selected()
	if i < 0 || i >= len(rows) {
		var zero T
		return zero, false
	}
	return rows[i], true
}

// Update routes controller messages and keeps the rendered rows in sync.
// Messages for other views are ignored.
func (v *View[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return cmd

	case table.LoadedMsg:
		if msg.ControllerID == v.ctrl.ID() {
			v.table.GoToTop()
		}
		return nil

	case table.ChangedMsg:
		if msg.ControllerID != v.ctrl.ID() {
			return nil
		}
		if msg.Event == table.EventPageSizeChanged || msg.Event == table.EventSortChanged {
			return v.savePreference()
		}
		return nil
	}

	cmd := v.ctrl.Update(msg)
	v.sync()
	return cmd
}

// HandleKey applies a list key. It returns false when the key is not a
// list binding.
func (v *View[T]) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if v.searching {
		return v.handleSearchKey(msg), true
	}

	var cmd tea.Cmd
	switch key := msg.String(); key {
	case "up", "k":
		v.table.MoveUp()
	case "down", "j":
		v.table.MoveDown()
	case "left", "pgup", "h":
		cmd = v.ctrl.PrevPage()
	case "right", "pgdown", "l":
		cmd = v.ctrl.NextPage()
	case "home", "g":
		cmd = v.ctrl.FirstPage()
	case "end", "G":
		cmd = v.ctrl.LastPage()
	case "z":
		cmd = v.ctrl.SetPageSize(v.nextPageSize())
	case "/":
		v.searching = true
		cmd = v.search.Focus()
	case "r":
		cmd = v.ctrl.Reload()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		keys := v.table.SortKeys()
		n := int(key[0] - '0')
		if n > len(keys) {
			return nil, true
		}
		cmd = v.ctrl.ToggleSort(keys[n-1])
	default:
		return nil, false
	}
	v.sync()
	return cmd, true
}

func (v *View[T]) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc":
		v.searching = false
		v.search.Blur()
		return nil
	}

	before := v.search.Value()
	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	if after := v.search.Value(); after != before {
		return tea.Batch(cmd, v.ctrl.SetSearchTerm(after))
	}
	return cmd
}

func (v *View[T]) nextPageSize() int {
	i := slices.Index(v.pageSizes, v.ctrl.Paging().PageSize())
	return v.pageSizes[(i+1)%len(v.pageSizes)]
}

func (v *View[T]) sync() {
	rows := v.ctrl.Rows()
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(v.columns))
		for j, c := range v.columns {
			cells[i][j] = c.Cell(row)
		}
	}
	v.table.SetRows(cells)
	v.table.SetSort(v.ctrl.Sort())
}

func (v *View[T]) savePreference() tea.Cmd {
	if v.prefs == nil {
		return nil
	}

	s := v.ctrl.Sort()
	pref := &models.ViewPreference{
		View:          v.id,
		PageSize:      v.ctrl.Paging().PageSize(),
		SortColumn:    s.Column(),
		SortDirection: s.Direction(),
	}
	prefs, logger := v.prefs, v.logger
	return func() tea.Msg {
		if err := prefs.Save(context.Background(), nil, pref); err != nil {
			logger.Warn("saving view preference", "view", pref.View, "error", err)
		}
		return nil
	}
}

// View renders the title, search box, table, inline error and pager.
func (v *View[T]) View() string {
	var b strings.Builder

	if v.title != "" {
		b.WriteString(v.styles.Title.Render("═══ " + v.title + " ═══"))
		b.WriteString("\n")
	}

	label := v.styles.Label.Render("Search: ")
	if v.searching {
		label = v.styles.Accent.Render("Search: ")
	}
	b.WriteString(label + v.search.View())
	b.WriteString("\n")

	b.WriteString(v.table.Render(v.width))
	b.WriteString("\n")

	state := v.ctrl.State()
	if state.Error != "" {
		b.WriteString(v.styles.Error.Render(state.Error + " (r to retry)"))
		b.WriteString("\n")
	}

	if state.Loading {
		b.WriteString(v.spinner.View() + " ")
	}
	b.WriteString(components.RenderPager(v.styles, table.Project(state), state.Page, state.PageCount))
	b.WriteString(v.styles.Muted.Render("   " + pageSizeLabel(state.PageSize)))

	return b.String()
}

func pageSizeLabel(n int) string {
	return fmt.Sprintf("z:%d per page", n)
}
