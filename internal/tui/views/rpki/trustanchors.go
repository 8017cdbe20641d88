// Package rpki provides the validated-output screens: trust anchors, the
// trust anchor monitor, ROAs and the BGP preview.
package rpki

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rpkiconsole/rpkiconsole/internal/models"
	"github.com/rpkiconsole/rpkiconsole/internal/table"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/components"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views/listview"
	"github.com/rpkiconsole/rpkiconsole/internal/validator"
)

// OpenMonitorMsg asks the application to open the monitor of a trust
// anchor.
type OpenMonitorMsg struct {
	TrustAnchorID int64
}

// TrustAnchorsView lists trust anchors with their latest validation counts.
type TrustAnchorsView struct {
	list *listview.View[validator.TrustAnchorStatus]
}

// NewTrustAnchorsView creates the trust anchors screen.
func NewTrustAnchorsView(env views.Env) *TrustAnchorsView {
	cols := []listview.Column[validator.TrustAnchorStatus]{
		views.Col("Trust anchor", "ta", components.ColumnSpec{MinWidth: 16, Weight: 2, Priority: 5},
			func(s validator.TrustAnchorStatus) string { return s.Name }),
		views.Col("Errors", "errors", components.ColumnSpec{Fixed: 10, Priority: 4},
			func(s validator.TrustAnchorStatus) string { return strconv.Itoa(s.Errors) }),
		views.Col("Warnings", "warnings", components.ColumnSpec{Fixed: 12, Priority: 3},
			func(s validator.TrustAnchorStatus) string { return strconv.Itoa(s.Warnings) }),
		views.Col("Successful", "successful", components.ColumnSpec{Fixed: 14, Priority: 2},
			func(s validator.TrustAnchorStatus) string { return strconv.Itoa(s.Successful) }),
		views.Col("Last updated", "lastUpdated", components.ColumnSpec{MinWidth: 19, Weight: 1, Priority: 1},
			func(s validator.TrustAnchorStatus) string { return env.FormatTime(s.LastUpdated) }),
	}

	return &TrustAnchorsView{
		list: views.NewList(env, models.ViewTrustAnchors, "TRUST ANCHORS", cols,
			env.Client.TrustAnchorStatusSource().Fetch, env.Options("ta", table.Asc)),
	}
}

// Init implements views.Screen.
func (v *TrustAnchorsView) Init() tea.Cmd { return v.list.Init() }

// Update implements views.Screen.
func (v *TrustAnchorsView) Update(msg tea.Msg) tea.Cmd { return v.list.Update(msg) }

// HandleKey opens the monitor on Enter and otherwise drives the list.
func (v *TrustAnchorsView) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "enter" && !v.list.Searching() {
		ta, ok := v.list.Selected()
		if !ok {
			return nil, true
		}
		return func() tea.Msg { return OpenMonitorMsg{TrustAnchorID: ta.ID} }, true
	}
	return v.list.HandleKey(msg)
}

// Capturing implements views.Screen.
func (v *TrustAnchorsView) Capturing() bool { return v.list.Searching() }

// SetSize implements views.Screen.
func (v *TrustAnchorsView) SetSize(width, height int) { v.list.SetSize(width, height) }

// View implements views.Screen.
func (v *TrustAnchorsView) View() string { return v.list.View() }

// Help implements views.Screen.
func (v *TrustAnchorsView) Help() string {
	return "Enter:Monitor  ←/→:Page  1-5:Sort  /:Search  z:Page size  r:Refresh"
}

// Close implements views.Screen.
func (v *TrustAnchorsView) Close() { v.list.Close() }
