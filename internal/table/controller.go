package table

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// LoadErrorMessage is the generic text shown when a page fails to load.
const LoadErrorMessage = "Unable to load data"

// Event identifies a query change made through the controller.
type Event int

const (
	EventPageChanged Event = iota + 1
	EventPageSizeChanged
	EventSortChanged
	EventSearchChanged
)

func (e Event) String() string {
	switch e {
	case EventPageChanged:
		return "page-changed"
	case EventPageSizeChanged:
		return "page-size-changed"
	case EventSortChanged:
		return "column-sorted"
	case EventSearchChanged:
		return "search-changed"
	default:
		return "unknown"
	}
}

// ChangedMsg is emitted after a page, page-size, sort or search change.
// A reload is always issued alongside it.
type ChangedMsg struct {
	ControllerID uint64
	Event        Event
	Query        Query
}

// LoadedMsg is emitted after a non-stale page has been applied.
type LoadedMsg struct {
	ControllerID uint64
	Query        Query
	RowCount     int
	TotalCount   int
}

type searchSettledMsg struct {
	id  uint64
	tag uint64
}

type pageLoadedMsg[T any] struct {
	id    uint64
	seq   uint64
	query Query
	page  Page[T]
	err   error
}

var controllerIDs atomic.Uint64

// Options configures a Controller. Zero values select defaults.
type Options struct {
	// Name labels log records.
	Name string

	PageSize      int
	SortColumn    string
	SortDirection Direction
	// SearchTerm is applied to the first load without debouncing.
	SearchTerm string
	Debounce   time.Duration

	// Context is the parent of every fetch context.
	Context context.Context
	Logger  *slog.Logger
}

// Controller coordinates paging, sorting and search for one list view.
// It is not safe for concurrent use; call it from the update loop only.
type Controller[T any] struct {
	id    uint64
	name  string
	fetch FetchFunc[T]

	paging Paging
	sort   Sort
	search Search

	// seq is incremented for every request; only a result carrying the
	// current seq is applied.
	seq    uint64
	cancel context.CancelFunc

	rows []T
	// shown and shownTerm describe the result rows came from; a failed
	// load rolls paging back to it.
	shown     Paging
	shownTerm string

	loading bool
	err     error
	closed  bool

	ctx    context.Context
	logger *slog.Logger
}

// New creates a controller around fetch. Nothing is loaded until Init or
// Reload is called.
func New[T any](fetch FetchFunc[T], opts Options) *Controller[T] {
	if opts.PageSize < 1 {
		opts.PageSize = 10
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	paging := NewPaging(opts.PageSize)
	return &Controller[T]{
		id:     controllerIDs.Add(1),
		name:   opts.Name,
		fetch:  fetch,
		paging: paging,
		shown:  paging,
		sort:   NewSort(opts.SortColumn, opts.SortDirection),
		search: NewSearch(opts.Debounce, opts.SearchTerm),
		ctx:    opts.Context,
		logger: opts.Logger,
	}
}

// ID identifies the controller in the messages it emits.
func (c *Controller[T]) ID() uint64 { return c.id }

// Init issues the first load.
func (c *Controller[T]) Init() tea.Cmd {
	return c.Reload()
}

// Query returns the query the current state maps to.
func (c *Controller[T]) Query() Query {
	return Query{
		FirstItemIndex: c.paging.FirstItemIndex(),
		PageSize:       c.paging.PageSize(),
		SearchTerm:     c.search.Term(),
		SortColumn:     c.sort.Column(),
		SortDirection:  c.sort.Direction(),
	}
}

// Reload fetches the page for the current state. Any outstanding request is
// superseded: its context is cancelled and its result will be discarded.
func (c *Controller[T]) Reload() tea.Cmd {
	if c.closed {
		return nil
	}

	c.seq++
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.loading = true

	// A term that has not produced rows yet always starts on page 1, also
	// when retrying after a failed search.
	if c.search.Term() != c.shownTerm {
		c.paging.SetPage(1)
	}

	id, seq, q, fetch := c.id, c.seq, c.Query(), c.fetch
	return func() tea.Msg {
		page, err := fetch(ctx, q)
		return pageLoadedMsg[T]{id: id, seq: seq, query: q, page: page, err: err}
	}
}

// Refresh reloads after the underlying data was changed. The cached
// unfiltered total stays until the next unfiltered load replaces it, so an
// active search keeps its "filtered from" count.
func (c *Controller[T]) Refresh() tea.Cmd {
	return c.Reload()
}

// SetPage moves to page n; it returns nil when n is the current page.
func (c *Controller[T]) SetPage(n int) tea.Cmd {
	if c.closed || !c.paging.SetPage(n) {
		return nil
	}
	return c.changed(EventPageChanged)
}

// NextPage moves forward one page unless on the last page.
func (c *Controller[T]) NextPage() tea.Cmd {
	if c.paging.IsLastPage() {
		return nil
	}
	return c.SetPage(c.paging.Page() + 1)
}

// PrevPage moves back one page unless on the first page.
func (c *Controller[T]) PrevPage() tea.Cmd {
	return c.SetPage(c.paging.Page() - 1)
}

// FirstPage moves to page 1.
func (c *Controller[T]) FirstPage() tea.Cmd {
	return c.SetPage(1)
}

// LastPage moves to the last known page.
func (c *Controller[T]) LastPage() tea.Cmd {
	return c.SetPage(c.paging.PageCount())
}

// SetPageSize changes the page size, staying near the first visible row.
func (c *Controller[T]) SetPageSize(size int) tea.Cmd {
	if c.closed || !c.paging.SetPageSize(size) {
		return nil
	}
	return c.changed(EventPageSizeChanged)
}

// ToggleSort toggles sorting on column.
func (c *Controller[T]) ToggleSort(column string) tea.Cmd {
	if c.closed || column == "" {
		return nil
	}
	c.sort.Toggle(column)
	return c.changed(EventSortChanged)
}

// SetSearchTerm records raw input and schedules propagation after the
// debounce window. Each call supersedes the previous schedule.
func (c *Controller[T]) SetSearchTerm(raw string) tea.Cmd {
	if c.closed {
		return nil
	}
	id, tag := c.id, c.search.SetTerm(raw)
	return tea.Tick(c.search.Window(), func(time.Time) tea.Msg {
		return searchSettledMsg{id: id, tag: tag}
	})
}

// Update handles the controller's own messages and ignores everything else,
// including messages addressed to other controllers.
func (c *Controller[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case searchSettledMsg:
		if msg.id != c.id || c.closed {
			return nil
		}
		if !c.search.Settle(msg.tag) {
			return nil
		}
		c.paging.Reset()
		return c.changed(EventSearchChanged)

	case pageLoadedMsg[T]:
		if msg.id != c.id {
			return nil
		}
		return c.applyLoaded(msg)
	}
	return nil
}

// Close cancels the pending search propagation and the in-flight request.
// Messages arriving afterwards are ignored.
func (c *Controller[T]) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.search.Cancel()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.loading = false
}

// Rows returns the rows of the last successful load.
func (c *Controller[T]) Rows() []T { return c.rows }

// Loading reports whether a request is outstanding.
func (c *Controller[T]) Loading() bool { return c.loading }

// Err returns the error of the last load, or nil.
func (c *Controller[T]) Err() error { return c.err }

// Paging returns a copy of the paging state.
func (c *Controller[T]) Paging() Paging { return c.paging }

// Sort returns a copy of the sort state.
func (c *Controller[T]) Sort() Sort { return c.sort }

// Search returns a copy of the search state.
func (c *Controller[T]) Search() Search { return c.search }

// State derives the view state.
func (c *Controller[T]) State() ViewState {
	absolute, _ := c.paging.AbsoluteCount()
	s := ViewState{
		Page:             c.paging.Page(),
		PageCount:        c.paging.PageCount(),
		PageSize:         c.paging.PageSize(),
		FirstItemInTable: c.paging.FirstItemIndex(),
		LastItemInTable:  c.paging.LastItemIndex(),
		TotalCount:       c.paging.TotalCount(),
		AbsoluteCount:    absolute,
		Loading:          c.loading,
		IsFiltered:       c.paging.IsFiltered(),
		IsEmpty:          c.paging.TotalCount() == 0,
		IsFirstPage:      c.paging.IsFirstPage(),
		IsLastPage:       c.paging.IsLastPage(),
		SearchTerm:       c.search.Term(),
		SortColumn:       c.sort.Column(),
		SortDirection:    c.sort.Direction(),
	}
	if c.err != nil {
		s.Error = LoadErrorMessage
	}
	return s
}

// Status projects the current view state to the status line.
func (c *Controller[T]) Status() Status {
	return Project(c.State())
}

func (c *Controller[T]) changed(ev Event) tea.Cmd {
	msg := ChangedMsg{ControllerID: c.id, Event: ev, Query: c.Query()}
	c.logger.Debug("table query changed",
		"table", c.name,
		"event", ev.String(),
		"start_from", msg.Query.FirstItemIndex,
		"page_size", msg.Query.PageSize,
		"search", msg.Query.SearchTerm,
		"sort_by", msg.Query.SortColumn,
		"sort_direction", msg.Query.SortDirection,
	)
	return tea.Batch(
		func() tea.Msg { return msg },
		c.Reload(),
	)
}

func (c *Controller[T]) applyLoaded(msg pageLoadedMsg[T]) tea.Cmd {
	if c.closed {
		return nil
	}
	if msg.seq != c.seq {
		c.logger.Debug("discarding stale page",
			"table", c.name,
			"seq", msg.seq,
			"current_seq", c.seq,
		)
		return nil
	}

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.loading = false

	if msg.err != nil {
		c.err = msg.err
		c.paging.RestorePosition(c.shown)
		c.logger.Warn("loading page failed",
			"table", c.name,
			"start_from", msg.query.FirstItemIndex,
			"page_size", msg.query.PageSize,
			"error", msg.err,
		)
		return nil
	}

	c.err = nil
	c.paging.ApplyResult(len(msg.page.Rows), msg.page.TotalCount, msg.query.SearchTerm != "")
	if msg.page.AbsoluteKnown {
		c.paging.SetAbsoluteCount(msg.page.AbsoluteCount)
	}

	// Rows vanished under us; step back to the last page that has data.
	if len(msg.page.Rows) == 0 && msg.page.TotalCount > 0 && c.paging.Page() > c.paging.PageCount() {
		c.paging.SetPage(c.paging.PageCount())
		return c.Reload()
	}

	c.rows = msg.page.Rows
	c.shown = c.paging
	c.shownTerm = msg.query.SearchTerm

	loaded := LoadedMsg{
		ControllerID: c.id,
		Query:        msg.query,
		RowCount:     len(msg.page.Rows),
		TotalCount:   msg.page.TotalCount,
	}
	return func() tea.Msg { return loaded }
}
