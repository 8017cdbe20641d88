// Package slurm provides the screens for local exceptions to the validated
// output: ignore filters and whitelist entries.
package slurm

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rpkiconsole/rpkiconsole/internal/models"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/components"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views/listview"
)

type mutation int

const (
	mutationAdd mutation = iota
	mutationDelete
)

type mutatedMsg struct {
	view models.ViewID
	op   mutation
	what string
	err  error
}

// editor is a list with an add form and a confirmed delete. The whitelist
// and ignore filter screens differ only in columns, form and client calls.
type editor[T any] struct {
	env  views.Env
	id   models.ViewID
	noun string
	list *listview.View[T]

	newForm  func() *components.Form
	create   func(ctx context.Context, form *components.Form) (string, error)
	remove   func(ctx context.Context, row T) error
	describe func(row T) string

	form     *components.Form
	deleting *T
	busy     bool
}

func (e *editor[T]) Init() tea.Cmd { return e.list.Init() }

func (e *editor[T]) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(mutatedMsg)
	if !ok {
		if e.form != nil {
			// Forward non-key messages such as cursor blinks.
			if _, isKey := msg.(tea.KeyMsg); !isKey {
				return tea.Batch(e.form.Update(msg), e.list.Update(msg))
			}
		}
		return e.list.Update(msg)
	}
	if m.view != e.id {
		return nil
	}
	e.busy = false

	if m.err != nil {
		e.env.Logger.Warn("changing "+e.noun, "op", m.op, "error", m.err)
		text := "Unable to delete " + e.noun + " " + m.what
		if m.op == mutationAdd {
			text = "Unable to add " + e.noun
			if e.form != nil {
				e.form.SetError(errorText(m.err))
			}
		}
		return components.Alert(components.AlertWarning, text)
	}

	e.form = nil
	verb := "deleted"
	if m.op == mutationAdd {
		verb = "added"
	}
	return tea.Batch(
		e.list.Refresh(),
		components.Alert(components.AlertInfo, capitalize(e.noun)+" "+m.what+" "+verb),
	)
}

func (e *editor[T]) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if e.form != nil {
		return e.handleFormKey(msg), true
	}

	if e.deleting != nil {
		switch msg.String() {
		case "y", "Y":
			row := *e.deleting
			e.deleting = nil
			return e.run(mutationDelete, e.describe(row), func(ctx context.Context) (string, error) {
				return e.describe(row), e.remove(ctx, row)
			}), true
		case "n", "N", "esc":
			e.deleting = nil
		}
		return nil, true
	}

	if e.list.Searching() {
		return e.list.HandleKey(msg)
	}

	switch msg.String() {
	case "a", "n":
		e.form = e.newForm()
		return nil, true
	case "d", "delete":
		if row, ok := e.list.Selected(); ok {
			e.deleting = &row
		}
		return nil, true
	}
	return e.list.HandleKey(msg)
}

func (e *editor[T]) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	if e.busy {
		return nil
	}
	cmd := e.form.Update(msg)
	switch {
	case e.form.IsCancelled():
		e.form = nil
		return nil
	case e.form.IsSubmitted():
		form := e.form
		return tea.Batch(cmd, e.run(mutationAdd, "", func(ctx context.Context) (string, error) {
			return e.create(ctx, form)
		}))
	}
	return cmd
}

func (e *editor[T]) run(op mutation, what string, call func(ctx context.Context) (string, error)) tea.Cmd {
	e.busy = true
	ctx, id := e.env.Context, e.id
	return func() tea.Msg {
		got, err := call(ctx)
		if got == "" {
			got = what
		}
		return mutatedMsg{view: id, op: op, what: got, err: err}
	}
}

// Capturing is true while a form, a confirmation or the search box owns
// the keyboard.
func (e *editor[T]) Capturing() bool {
	return e.form != nil || e.deleting != nil || e.list.Searching()
}

// Editing reports whether the add form is open.
func (e *editor[T]) Editing() bool { return e.form != nil }

// Confirming reports whether a delete waits for confirmation.
func (e *editor[T]) Confirming() bool { return e.deleting != nil }

func (e *editor[T]) SetSize(width, height int) { e.list.SetSize(width, height-2) }

func (e *editor[T]) View() string {
	if e.form != nil {
		return e.form.View()
	}

	out := e.list.View()
	if e.deleting != nil {
		prompt := "Delete " + e.noun + " " + e.describe(*e.deleting) + "?  [Y]es  [N]o"
		out += "\n\n" + e.env.Styles.Warning.Render(prompt)
	}
	return out
}

func (e *editor[T]) Help() string {
	switch {
	case e.form != nil:
		return "Tab:Next  Enter:Save  Esc:Cancel"
	case e.deleting != nil:
		return "Y:Delete  N:Keep"
	}
	return "a:Add  d:Delete  ←/→:Page  /:Search  z:Page size  r:Refresh"
}

func (e *editor[T]) Close() { e.list.Close() }

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
