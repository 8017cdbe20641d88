package listview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rpkiconsole/rpkiconsole/internal/database"
	"github.com/rpkiconsole/rpkiconsole/internal/models"
	"github.com/rpkiconsole/rpkiconsole/internal/repository"
	"github.com/rpkiconsole/rpkiconsole/internal/table"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/components"
)

type item struct {
	Name string
	N    int
}

func items(n int) []item {
	out := make([]item, n)
	for i := range out {
		out[i] = item{Name: fmt.Sprintf("item-%02d", i+1), N: i + 1}
	}
	return out
}

func source(rows []item) table.LocalSource[item] {
	return table.LocalSource[item]{
		Load: func(context.Context) ([]item, error) { return rows, nil },
		Match: func(r item, term string) bool {
			return table.ContainsFold(term, r.Name)
		},
		Compare: map[string]func(a, b item) int{
			"name": func(a, b item) int { return strings.Compare(a.Name, b.Name) },
			"n":    func(a, b item) int { return a.N - b.N },
		},
	}
}

func newTestView(t *testing.T, fetch table.FetchFunc[item], prefs Preferences) *View[item] {
	t.Helper()

	v := New(Config[item]{
		View:  models.ViewRoas,
		Title: "ITEMS",
		Columns: []Column[item]{
			{
				Column: components.Column{Title: "Name", SortKey: "name", ColumnSpec: components.ColumnSpec{MinWidth: 10, Weight: 1, Priority: 2}},
				Cell:   func(r item) string { return r.Name },
			},
			{
				Column: components.Column{Title: "N", SortKey: "n", ColumnSpec: components.ColumnSpec{Fixed: 4, Priority: 1}},
				Cell:   func(r item) string { return fmt.Sprint(r.N) },
			},
		},
		Fetch:     fetch,
		Options:   table.Options{PageSize: 10, SortColumn: "name", SortDirection: table.Asc, Debounce: time.Millisecond},
		PageSizes: []int{10, 25, 50},
		Prefs:     prefs,
		Styles:    components.DefaultStyles(),
	})
	v.SetSize(100, 30)
	t.Cleanup(v.Close)
	return v
}

// drain runs cmd and feeds every resulting message back into v. Spinner
// ticks are dropped so the loop terminates.
func drain(v *View[item], cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			queue = append(queue, v.Update(msg))
		}
	}
}

func press(v *View[item], key string) {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "end":
		msg = tea.KeyMsg{Type: tea.KeyEnd}
	case "home":
		msg = tea.KeyMsg{Type: tea.KeyHome}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	cmd, _ := v.HandleKey(msg)
	drain(v, cmd)
}

func newPrefs(t *testing.T) *repository.PreferencesRepository {
	t.Helper()

	db, err := database.NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return repository.NewPreferencesRepository(db.DB)
}

func TestView_LoadsAndRenders(t *testing.T) {
	v := newTestView(t, source(items(30)).Fetch, nil)
	drain(v, v.Init())

	out := v.View()
	for _, want := range []string{"ITEMS", "Search:", "1:Name ▲", "item-01", "item-10", "Showing 1 to 10 of 30 entries", "Page 1/3", "z:10 per page"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in view:\n%s", want, out)
		}
	}
	if strings.Contains(out, "item-11") {
		t.Error("Second page rows should not be rendered")
	}
}

func TestView_PagingKeys(t *testing.T) {
	v := newTestView(t, source(items(30)).Fetch, nil)
	drain(v, v.Init())

	press(v, "right")
	if got := v.Controller().Paging().Page(); got != 2 {
		t.Fatalf("Expected page 2, got %d", got)
	}
	if row, _ := v.Selected(); row.Name != "item-11" {
		t.Errorf("Expected cursor on item-11, got %s", row.Name)
	}

	press(v, "end")
	if got := v.Controller().Paging().Page(); got != 3 {
		t.Errorf("Expected page 3, got %d", got)
	}
	press(v, "right")
	if got := v.Controller().Paging().Page(); got != 3 {
		t.Errorf("Next on the last page should stay, got %d", got)
	}

	press(v, "home")
	if got := v.Controller().Paging().Page(); got != 1 {
		t.Errorf("Expected page 1, got %d", got)
	}
	press(v, "left")
	if got := v.Controller().Paging().Page(); got != 1 {
		t.Errorf("Prev on the first page should stay, got %d", got)
	}
}

func TestView_CursorResetsOnLoad(t *testing.T) {
	v := newTestView(t, source(items(30)).Fetch, nil)
	drain(v, v.Init())

	press(v, "down")
	press(v, "down")
	if row, _ := v.Selected(); row.Name != "item-03" {
		t.Fatalf("Expected item-03, got %s", row.Name)
	}

	press(v, "right")
	if row, _ := v.Selected(); row.Name != "item-11" {
		t.Errorf("Expected the cursor at the top of the new page, got %s", row.Name)
	}
}

func TestView_SortKeysAndPreference(t *testing.T) {
	prefs := newPrefs(t)
	v := newTestView(t, source(items(30)).Fetch, prefs)
	drain(v, v.Init())

	press(v, "2")
	press(v, "2")

	if row, _ := v.Selected(); row.N != 30 {
		t.Errorf("Expected N descending, first row %d", row.N)
	}
	if !strings.Contains(v.View(), "2:N ▼") {
		t.Errorf("Expected descending indicator:\n%s", v.View())
	}

	pref, err := prefs.Get(context.Background(), models.ViewRoas)
	if err != nil {
		t.Fatalf("Expected a stored preference: %v", err)
	}
	if pref.SortColumn != "n" || pref.SortDirection != table.Desc {
		t.Errorf("Expected n desc stored, got %s %s", pref.SortColumn, pref.SortDirection)
	}

	restored := newTestView(t, source(items(30)).Fetch, prefs)
	if s := restored.Controller().Sort(); s.Column() != "n" || s.Direction() != table.Desc {
		t.Errorf("Expected restored sort n desc, got %s %s", s.Column(), s.Direction())
	}
}

func TestView_SortKeyOutOfRange(t *testing.T) {
	v := newTestView(t, source(items(30)).Fetch, nil)
	drain(v, v.Init())

	cmd, handled := v.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("7")})
	if !handled || cmd != nil {
		t.Error("Digit without a column should be swallowed without a reload")
	}
}

func TestView_PageSizeCycle(t *testing.T) {
	prefs := newPrefs(t)
	v := newTestView(t, source(items(30)).Fetch, prefs)
	drain(v, v.Init())

	press(v, "z")
	if got := v.Controller().Paging().PageSize(); got != 25 {
		t.Fatalf("Expected 25, got %d", got)
	}
	press(v, "z")
	press(v, "z")
	if got := v.Controller().Paging().PageSize(); got != 10 {
		t.Errorf("Expected the cycle to wrap to 10, got %d", got)
	}

	pref, err := prefs.Get(context.Background(), models.ViewRoas)
	if err != nil {
		t.Fatalf("Expected a stored preference: %v", err)
	}
	if pref.PageSize != 10 {
		t.Errorf("Expected stored page size 10, got %d", pref.PageSize)
	}
}

func TestView_Search(t *testing.T) {
	v := newTestView(t, source(items(30)).Fetch, nil)
	drain(v, v.Init())

	press(v, "/")
	if !v.Searching() {
		t.Fatal("Expected search mode")
	}
	for _, r := range "item-1" {
		press(v, string(r))
	}

	state := v.Controller().State()
	if state.TotalCount != 10 || state.SearchTerm != "item-1" {
		t.Errorf("Expected 10 matches for item-1, got %d for %q", state.TotalCount, state.SearchTerm)
	}
	if !strings.Contains(v.View(), "(filtered from 30 total entries)") {
		t.Errorf("Expected filtered status:\n%s", v.View())
	}

	// Digits go to the search box, not the sort.
	press(v, "9")
	if v.Controller().Sort().Column() != "name" {
		t.Error("Typing a digit while searching should not sort")
	}

	press(v, "enter")
	if v.Searching() {
		t.Error("Enter should leave search mode")
	}
	if _, handled := v.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); handled {
		t.Error("Unbound key should not be handled outside search mode")
	}
}

func TestView_ErrorInline(t *testing.T) {
	fail := true
	fetch := func(ctx context.Context, q table.Query) (table.Page[item], error) {
		if fail {
			return table.Page[item]{}, errors.New("connection refused")
		}
		return source(items(5)).Fetch(ctx, q)
	}

	v := newTestView(t, fetch, nil)
	drain(v, v.Init())

	out := v.View()
	if !strings.Contains(out, table.LoadErrorMessage) {
		t.Errorf("Expected the generic error:\n%s", out)
	}
	if strings.Contains(out, "connection refused") {
		t.Error("Backend detail should not be shown")
	}

	fail = false
	press(v, "r")
	if strings.Contains(v.View(), table.LoadErrorMessage) {
		t.Error("Retry should clear the error")
	}
	if len(v.Controller().Rows()) != 5 {
		t.Errorf("Expected 5 rows after retry, got %d", len(v.Controller().Rows()))
	}
}

func TestView_RetryDuringSearchKeepsFilteredCount(t *testing.T) {
	// Like the validator endpoints, report only the filtered total.
	fetch := func(ctx context.Context, q table.Query) (table.Page[item], error) {
		page, err := source(items(30)).Fetch(ctx, q)
		page.AbsoluteKnown = false
		page.AbsoluteCount = 0
		return page, err
	}

	v := newTestView(t, fetch, nil)
	drain(v, v.Init())

	press(v, "/")
	for _, r := range "item-1" {
		press(v, string(r))
	}
	press(v, "enter")
	press(v, "r")

	if !v.Controller().State().IsFiltered {
		t.Error("Retry during a search should keep the filtered state")
	}
	if !strings.Contains(v.View(), "Showing 1 to 10 of 10 entries (filtered from 30 total entries)") {
		t.Errorf("Expected filtered status after retry:\n%s", v.View())
	}
}

func TestView_IgnoresOtherControllers(t *testing.T) {
	a := newTestView(t, source(items(30)).Fetch, nil)
	b := newTestView(t, source(items(3)).Fetch, nil)
	drain(a, a.Init())

	cmd := b.Update(table.LoadedMsg{ControllerID: a.Controller().ID()})
	if cmd != nil {
		t.Error("Foreign LoadedMsg should be ignored")
	}
	if len(b.Controller().Rows()) != 0 {
		t.Error("View b should not have loaded")
	}
}
