package rpki

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rpkiconsole/rpkiconsole/internal/models"
	"github.com/rpkiconsole/rpkiconsole/internal/table"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/components"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views/listview"
	"github.com/rpkiconsole/rpkiconsole/internal/validator"
)

type pendingTrustAnchorsMsg struct {
	names []string
	err   error
}

// RoasView lists validated ROA prefixes and warns about trust anchors
// whose first validation run has not finished.
type RoasView struct {
	env     views.Env
	list    *listview.View[validator.Roa]
	pending []string
}

// NewRoasView creates the ROAs screen, sorted by ASN.
func NewRoasView(env views.Env) *RoasView {
	cols := []listview.Column[validator.Roa]{
		views.Col("ASN", "asn", components.ColumnSpec{Fixed: 12, Priority: 5},
			func(r validator.Roa) string { return string(r.ASN) }),
		views.Col("Prefix", "prefix", components.ColumnSpec{MinWidth: 18, Weight: 1, Priority: 4},
			func(r validator.Roa) string { return r.Prefix }),
		views.Col("Max length", "length", components.ColumnSpec{Fixed: 14, Priority: 3},
			func(r validator.Roa) string { return strconv.Itoa(r.Length) }),
		views.Col("Trust anchor", "ta", components.ColumnSpec{MinWidth: 14, Weight: 1, Priority: 2},
			func(r validator.Roa) string { return r.TrustAnchor }),
		views.Col("URI", "", components.ColumnSpec{MinWidth: 20, Weight: 2, Priority: 1},
			func(r validator.Roa) string { return r.URI }),
	}

	return &RoasView{
		env:  env,
		list: views.NewList(env, models.ViewRoas, "VALIDATED ROAS", cols, env.Client.Roas, env.Options("asn", table.Asc)),
	}
}

// Init loads the first page and the trust anchor completion state.
func (v *RoasView) Init() tea.Cmd {
	client, ctx := v.env.Client, v.env.Context
	return tea.Batch(v.list.Init(), func() tea.Msg {
		tas, err := client.TrustAnchors(ctx)
		if err != nil {
			return pendingTrustAnchorsMsg{err: err}
		}
		var names []string
		for _, ta := range tas {
			if !ta.InitialValidationDone {
				names = append(names, ta.Name)
			}
		}
		return pendingTrustAnchorsMsg{names: names}
	})
}

// Update implements views.Screen.
func (v *RoasView) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(pendingTrustAnchorsMsg); ok {
		if msg.err != nil {
			v.env.Logger.Warn("loading trust anchors", "error", msg.err)
			return nil
		}
		v.pending = msg.names
		return nil
	}
	return v.list.Update(msg)
}

// Pending returns the trust anchors still in their first validation run.
func (v *RoasView) Pending() []string { return v.pending }

// HandleKey implements views.Screen.
func (v *RoasView) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) { return v.list.HandleKey(msg) }

// Capturing implements views.Screen.
func (v *RoasView) Capturing() bool { return v.list.Searching() }

// SetSize implements views.Screen.
func (v *RoasView) SetSize(width, height int) { v.list.SetSize(width, height-1) }

// View implements views.Screen.
func (v *RoasView) View() string {
	if len(v.pending) == 0 {
		return v.list.View()
	}
	alert := v.env.Styles.Warning.Render(
		"Initial validation still running for: " + strings.Join(v.pending, ", ") + ". Their ROAs are not listed yet.")
	return alert + "\n" + v.list.View()
}

// Help implements views.Screen.
func (v *RoasView) Help() string {
	return "←/→:Page  Home/End:First/Last  1-4:Sort  /:Search  z:Page size  r:Refresh"
}

// Close implements views.Screen.
func (v *RoasView) Close() { v.list.Close() }
