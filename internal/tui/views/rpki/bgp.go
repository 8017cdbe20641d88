package rpki

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rpkiconsole/rpkiconsole/internal/models"
	"github.com/rpkiconsole/rpkiconsole/internal/table"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/components"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views/listview"
	"github.com/rpkiconsole/rpkiconsole/internal/validator"
)

type validityMsg struct {
	validity validator.BgpValidity
	err      error
}

// BgpView lists announcements from the BGP preview and explains the
// validity of the selected one.
type BgpView struct {
	env  views.Env
	list *listview.View[validator.BgpAnnouncement]

	detailOpen    bool
	detailLoading bool
	detailErr     string
	detail        validator.BgpValidity
	roas          *components.Table
	width         int
}

// NewBgpView creates the BGP preview screen. search pre-fills the filter,
// which is how other screens link to an announcement.
func NewBgpView(env views.Env, search string) *BgpView {
	cols := []listview.Column[validator.BgpAnnouncement]{
		views.Col("ASN", "asn", components.ColumnSpec{Fixed: 12, Priority: 3},
			func(a validator.BgpAnnouncement) string { return string(a.ASN) }),
		views.Col("Prefix", "prefix", components.ColumnSpec{MinWidth: 18, Weight: 2, Priority: 2},
			func(a validator.BgpAnnouncement) string { return a.Prefix }),
		views.Col("Validity", "validity", components.ColumnSpec{MinWidth: 14, Weight: 1, Priority: 1},
			func(a validator.BgpAnnouncement) string { return a.Validity }),
	}

	opts := env.Options("asn", table.Asc)
	opts.SearchTerm = search

	roas := components.NewTable([]components.Column{
		{Title: "Origin", ColumnSpec: components.ColumnSpec{Fixed: 12, Priority: 4}},
		{Title: "Prefix", ColumnSpec: components.ColumnSpec{MinWidth: 18, Weight: 1, Priority: 3}},
		{Title: "Max length", ColumnSpec: components.ColumnSpec{Fixed: 12, Priority: 2}},
		{Title: "Source", ColumnSpec: components.ColumnSpec{MinWidth: 14, Weight: 1, Priority: 1}},
	}, env.Styles)
	roas.SetEmptyText("No validating ROAs")
	roas.Focus(true)

	return &BgpView{
		env:   env,
		list:  views.NewList(env, models.ViewBgp, "BGP PREVIEW", cols, env.Client.Bgp, opts),
		roas:  roas,
		width: 80,
	}
}

// Init implements views.Screen.
func (v *BgpView) Init() tea.Cmd { return v.list.Init() }

// Update implements views.Screen.
func (v *BgpView) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(validityMsg); ok {
		v.detailLoading = false
		if msg.err != nil {
			v.detailErr = "Unable to load announcement details"
			if errors.Is(msg.err, validator.ErrNotFound) {
				v.detailErr = "Announcement is no longer in the BGP preview"
			}
			v.env.Logger.Warn("loading announcement validity", "error", msg.err)
			return nil
		}
		v.detail = msg.validity
		v.setDetailRows()
		return nil
	}
	return v.list.Update(msg)
}

func (v *BgpView) setDetailRows() {
	all := append(append([]validator.ValidatingRoa{}, v.detail.ValidatingRoas...), v.detail.FilteredRoas...)
	rows := make([][]string, len(all))
	for i, r := range all {
		rows[i] = []string{string(r.Origin), r.Prefix, strconv.Itoa(r.MaxLength), r.Source}
	}
	v.roas.SetRows(rows)
	v.roas.GoToTop()
}

// DetailOpen reports whether the validity detail is shown.
func (v *BgpView) DetailOpen() bool { return v.detailOpen }

// Detail returns the validity shown in the detail.
func (v *BgpView) Detail() validator.BgpValidity { return v.detail }

// HandleKey implements views.Screen.
func (v *BgpView) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if v.detailOpen {
		switch msg.String() {
		case "esc", "backspace":
			v.detailOpen = false
		case "up", "k":
			v.roas.MoveUp()
		case "down", "j":
			v.roas.MoveDown()
		default:
			return nil, false
		}
		return nil, true
	}

	if msg.String() == "enter" && !v.list.Searching() {
		a, ok := v.list.Selected()
		if !ok {
			return nil, true
		}
		v.detailOpen = true
		v.detailLoading = true
		v.detailErr = ""
		v.detail = validator.BgpValidity{Origin: a.ASN, Prefix: a.Prefix, Validity: a.Validity}
		v.roas.SetRows(nil)

		client, ctx := v.env.Client, v.env.Context
		asn, prefix := string(a.ASN), a.Prefix
		return func() tea.Msg {
			validity, err := client.AnnouncementValidity(ctx, asn, prefix)
			return validityMsg{validity: validity, err: err}
		}, true
	}
	return v.list.HandleKey(msg)
}

// Capturing implements views.Screen.
func (v *BgpView) Capturing() bool { return v.list.Searching() }

// SetSize implements views.Screen.
func (v *BgpView) SetSize(width, height int) {
	v.width = width
	v.list.SetSize(width, height)
	v.roas.SetVisibleRows(height - 8)
}

// View implements views.Screen.
func (v *BgpView) View() string {
	if !v.detailOpen {
		return v.list.View()
	}

	st := v.env.Styles
	var b strings.Builder
	b.WriteString(st.Title.Render("═══ ANNOUNCEMENT ═══"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n",
		st.Label.Render("Origin:"), st.Value.Render(string(v.detail.Origin)),
		st.Label.Render("Prefix:"), st.Value.Render(v.detail.Prefix),
		st.Label.Render("Validity:"), validityStyle(st, v.detail.Validity).Render(v.detail.Validity))
	b.WriteString("\n")

	switch {
	case v.detailLoading:
		b.WriteString(st.Muted.Render("Loading validating ROAs..."))
	case v.detailErr != "":
		b.WriteString(st.Error.Render(v.detailErr))
	default:
		b.WriteString(st.Subtitle.Render("Validating ROAs"))
		b.WriteString("\n")
		b.WriteString(v.roas.Render(v.width))
	}
	return b.String()
}

func validityStyle(st components.Styles, validity string) lipgloss.Style {
	switch {
	case validity == "VALID":
		return st.Success
	case strings.HasPrefix(validity, "INVALID"):
		return st.Error
	default:
		return st.Warning
	}
}

// Help implements views.Screen.
func (v *BgpView) Help() string {
	if v.detailOpen {
		return "↑/↓:Move  Esc:Back"
	}
	return "Enter:Details  ←/→:Page  1-3:Sort  /:Search  z:Page size  r:Refresh"
}

// Close implements views.Screen.
func (v *BgpView) Close() { v.list.Close() }
