package table

import "fmt"

// ViewState is the derived state a renderer binds to. It is recomputed from
// the controller after every change.
type ViewState struct {
	Page      int
	PageCount int
	PageSize  int

	FirstItemInTable int
	LastItemInTable  int
	TotalCount       int
	AbsoluteCount    int

	Loading     bool
	IsFiltered  bool
	IsEmpty     bool
	IsFirstPage bool
	IsLastPage  bool

	SearchTerm    string
	SortColumn    string
	SortDirection Direction

	// Error is a generic message set when the last load failed.
	Error string
}

// Status is the user-facing summary line and pager state.
type Status struct {
	// Visible is false while loading; the label is hidden rather than
	// showing stale counts.
	Visible bool
	Text    string

	PrevDisabled bool
	NextDisabled bool
}

// Project derives the status line from view state.
func Project(s ViewState) Status {
	st := Status{
		PrevDisabled: s.Loading || s.IsEmpty || s.IsFirstPage,
		NextDisabled: s.Loading || s.IsEmpty || s.IsLastPage,
	}
	if s.Loading {
		return st
	}
	st.Visible = true

	if s.TotalCount == 0 {
		st.Text = "Showing 0 entries"
	} else {
		st.Text = fmt.Sprintf("Showing %d to %d of %d entries",
			s.FirstItemInTable+1, s.LastItemInTable, s.TotalCount)
	}
	if s.IsFiltered {
		st.Text += fmt.Sprintf(" (filtered from %d total entries)", s.AbsoluteCount)
	}
	return st
}
