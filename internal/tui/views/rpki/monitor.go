package rpki

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rpkiconsole/rpkiconsole/internal/models"
	"github.com/rpkiconsole/rpkiconsole/internal/table"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/components"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views/listview"
	"github.com/rpkiconsole/rpkiconsole/internal/validator"
)

type trustAnchorMsg struct {
	id  int64
	ta  validator.TrustAnchor
	err error
}

type repositoryStatusesMsg struct {
	id       int64
	statuses validator.RepositoryStatuses
	err      error
}

const (
	focusRepositories = iota
	focusChecks
)

// MonitorView shows one trust anchor: its details, repository download
// summary, repositories and the checks of the latest validation run.
type MonitorView struct {
	env  views.Env
	taID int64

	ta       validator.TrustAnchor
	taLoaded bool
	notFound bool
	taErr    string

	statuses    validator.RepositoryStatuses
	statusesErr bool

	repos  *listview.View[validator.Repository]
	checks *listview.View[validator.ValidationCheck]
	focus  int
	width  int
}

// NewMonitorView creates the monitor of trust anchor taID.
func NewMonitorView(env views.Env, taID int64) *MonitorView {
	repoCols := []listview.Column[validator.Repository]{
		views.Col("Type", "type", components.ColumnSpec{Fixed: 8, Priority: 3},
			func(r validator.Repository) string { return r.Type }),
		views.Col("Location", "location", components.ColumnSpec{MinWidth: 24, Weight: 3, Priority: 4},
			func(r validator.Repository) string { return r.Location }),
		views.Col("Status", "status", components.ColumnSpec{Fixed: 12, Priority: 2},
			func(r validator.Repository) string { return r.Status }),
		views.Col("Last downloaded", "lastDownloadedAt", components.ColumnSpec{MinWidth: 19, Weight: 1, Priority: 1},
			func(r validator.Repository) string { return env.FormatTime(r.LastDownload) }),
	}
	checkCols := []listview.Column[validator.ValidationCheck]{
		views.Col("Location", "location", components.ColumnSpec{MinWidth: 24, Weight: 2, Priority: 2},
			func(c validator.ValidationCheck) string { return c.Location }),
		views.Col("Status", "status", components.ColumnSpec{Fixed: 9, Priority: 1},
			func(c validator.ValidationCheck) string { return c.Status }),
		views.Col("Message", "", components.ColumnSpec{MinWidth: 20, Weight: 3, Priority: 3},
			func(c validator.ValidationCheck) string { return c.FormattedMessage }),
	}

	client := env.Client
	repos := views.NewList(env, models.ViewRepositories, "", repoCols,
		func(ctx context.Context, q table.Query) (table.Page[validator.Repository], error) {
			return client.Repositories(ctx, taID, q)
		}, env.Options("location", table.Asc))
	checks := views.NewList(env, models.ViewValidationChecks, "", checkCols,
		func(ctx context.Context, q table.Query) (table.Page[validator.ValidationCheck], error) {
			return client.ValidationChecks(ctx, taID, q)
		}, env.Options("location", table.Asc))
	checks.Focus(false)

	return &MonitorView{
		env:    env,
		taID:   taID,
		repos:  repos,
		checks: checks,
		width:  80,
	}
}

// TrustAnchorID returns the monitored trust anchor.
func (v *MonitorView) TrustAnchorID() int64 { return v.taID }

// Init implements views.Screen.
func (v *MonitorView) Init() tea.Cmd {
	client, ctx, id := v.env.Client, v.env.Context, v.taID
	return tea.Batch(
		v.repos.Init(),
		v.checks.Init(),
		func() tea.Msg {
			ta, err := client.TrustAnchor(ctx, id)
			return trustAnchorMsg{id: id, ta: ta, err: err}
		},
		v.loadStatuses(),
	)
}

func (v *MonitorView) loadStatuses() tea.Cmd {
	client, ctx, id := v.env.Client, v.env.Context, v.taID
	return func() tea.Msg {
		s, err := client.RepositoryStatuses(ctx, id)
		return repositoryStatusesMsg{id: id, statuses: s, err: err}
	}
}

// Update implements views.Screen. The summary is reloaded whenever the
// repository list is.
func (v *MonitorView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case trustAnchorMsg:
		if msg.id != v.taID {
			return nil
		}
		v.taLoaded = true
		switch {
		case errors.Is(msg.err, validator.ErrNotFound):
			v.notFound = true
			v.taErr = fmt.Sprintf("Trust anchor %d not found", v.taID)
		case msg.err != nil:
			v.taErr = table.LoadErrorMessage
			v.env.Logger.Warn("loading trust anchor", "id", v.taID, "error", msg.err)
		default:
			v.ta = msg.ta
			v.taErr = ""
		}
		return nil

	case repositoryStatusesMsg:
		if msg.id != v.taID {
			return nil
		}
		v.statusesErr = msg.err != nil
		if msg.err == nil {
			v.statuses = msg.statuses
		}
		return nil

	case table.LoadedMsg:
		cmds := []tea.Cmd{v.repos.Update(msg), v.checks.Update(msg)}
		if msg.ControllerID == v.repos.Controller().ID() {
			cmds = append(cmds, v.loadStatuses())
		}
		return tea.Batch(cmds...)
	}

	return tea.Batch(v.repos.Update(msg), v.checks.Update(msg))
}

// Focused returns which list has the key focus: 0 for repositories, 1 for
// validation checks.
func (v *MonitorView) Focused() int { return v.focus }

// HandleKey implements views.Screen.
func (v *MonitorView) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "tab" && !v.Capturing() {
		v.focus = (v.focus + 1) % 2
		v.repos.Focus(v.focus == focusRepositories)
		v.checks.Focus(v.focus == focusChecks)
		return nil, true
	}
	if v.focus == focusChecks {
		return v.checks.HandleKey(msg)
	}
	return v.repos.HandleKey(msg)
}

// Capturing implements views.Screen.
func (v *MonitorView) Capturing() bool {
	return v.repos.Searching() || v.checks.Searching()
}

// SetSize implements views.Screen.
func (v *MonitorView) SetSize(width, height int) {
	v.width = width
	// details panel, two list headings
	rest := max(height-10, 16)
	v.repos.SetSize(width, rest/2)
	v.checks.SetSize(width, rest-rest/2)
}

// View implements views.Screen.
func (v *MonitorView) View() string {
	st := v.env.Styles

	if v.notFound {
		return st.Title.Render("═══ TRUST ANCHOR MONITOR ═══") + "\n\n" + st.Error.Render(v.taErr)
	}

	var b strings.Builder
	title := "TRUST ANCHOR MONITOR"
	if v.ta.Name != "" {
		title += ": " + strings.ToUpper(v.ta.Name)
	}
	b.WriteString(st.Title.Render("═══ " + title + " ═══"))
	b.WriteString("\n")

	half := max(v.width/2-1, 30)
	b.WriteString(components.SideBySide(
		components.Panel(st, "Trust anchor", v.detailsView(), half),
		components.Panel(st, "Repositories", v.summaryView(), half),
		v.width, 2))
	b.WriteString("\n")

	b.WriteString(v.sectionTitle("Repositories", focusRepositories))
	b.WriteString("\n")
	b.WriteString(v.repos.View())
	b.WriteString("\n")
	b.WriteString(v.sectionTitle("Validation checks", focusChecks))
	b.WriteString("\n")
	b.WriteString(v.checks.View())
	return b.String()
}

func (v *MonitorView) sectionTitle(title string, focus int) string {
	if v.focus == focus {
		return v.env.Styles.Accent.Render("▸ " + title)
	}
	return v.env.Styles.Muted.Render("  " + title)
}

func (v *MonitorView) detailsView() string {
	st := v.env.Styles
	if !v.taLoaded {
		return st.Muted.Render("Loading...")
	}
	if v.taErr != "" {
		return st.Error.Render(v.taErr)
	}

	initial := st.Success.Render("completed")
	if !v.ta.InitialValidationDone {
		initial = st.Warning.Render("running")
	}
	lines := []string{
		st.Label.Render("Name: ") + st.Value.Render(v.ta.Name),
		st.Label.Render("Locations: ") + st.Value.Render(strings.Join(v.ta.Locations, ", ")),
		st.Label.Render("Initial validation: ") + initial,
	}
	if v.ta.Preconfigured {
		lines = append(lines, st.Muted.Render("Preconfigured"))
	}
	return strings.Join(lines, "\n")
}

func (v *MonitorView) summaryView() string {
	st := v.env.Styles
	if v.statusesErr {
		return st.Error.Render(table.LoadErrorMessage)
	}
	s := v.statuses
	failed := st.Value.Render(fmt.Sprint(s.Failed))
	if s.Failed > 0 {
		failed = st.Error.Render(fmt.Sprint(s.Failed))
	}
	return strings.Join([]string{
		st.Label.Render("Downloaded: ") + st.Value.Render(fmt.Sprint(s.Downloaded)),
		st.Label.Render("Pending: ") + st.Value.Render(fmt.Sprint(s.Pending)),
		st.Label.Render("Failed: ") + failed,
		st.Label.Render("Total: ") + st.Value.Render(fmt.Sprint(s.Total())),
		components.ProgressBar(st, s.Downloaded, s.Total(), 30),
	}, "\n")
}

// Summary returns the last loaded repository counts.
func (v *MonitorView) Summary() validator.RepositoryStatuses { return v.statuses }

// Help implements views.Screen.
func (v *MonitorView) Help() string {
	return "Tab:Switch list  ←/→:Page  1-4:Sort  /:Search  r:Refresh  Esc:Back"
}

// Close implements views.Screen.
func (v *MonitorView) Close() {
	v.repos.Close()
	v.checks.Close()
}
