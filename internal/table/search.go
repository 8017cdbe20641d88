package table

import (
	"strings"
	"time"
)

// DefaultDebounce is the search debounce window used when none is configured.
const DefaultDebounce = 400 * time.Millisecond

// Search holds the free-text filter. The raw value is what the user typed
// and is kept verbatim for display; the applied value is the trimmed term
// the last settled propagation sent to the backend.
type Search struct {
	raw     string
	applied string

	// tag identifies the most recent keystroke; a settle carrying an older
	// tag has been superseded.
	tag     uint64
	pending bool

	window time.Duration
}

// NewSearch returns a search with the given debounce window and an
// initial, already applied term.
func NewSearch(window time.Duration, initial string) Search {
	if window <= 0 {
		window = DefaultDebounce
	}
	return Search{
		raw:     initial,
		applied: strings.TrimSpace(initial),
		window:  window,
	}
}

// Raw returns the term exactly as typed.
func (s Search) Raw() string { return s.raw }

// Term returns the applied, trimmed term sent to the backend.
func (s Search) Term() string { return s.applied }

// Active reports whether a non-empty term is applied.
func (s Search) Active() bool { return s.applied != "" }

// Pending reports whether a propagation is scheduled.
func (s Search) Pending() bool { return s.pending }

// Window returns the debounce window.
func (s Search) Window() time.Duration { return s.window }

// SetTerm stores raw and restarts the debounce window. The returned tag must
// be passed to Settle when the window elapses.
func (s *Search) SetTerm(raw string) uint64 {
	s.raw = raw
	s.tag++
	s.pending = true
	return s.tag
}

// Settle applies the raw term if tag still identifies the latest keystroke.
// It returns true when the applied term changed and a reload is due.
func (s *Search) Settle(tag uint64) bool {
	if !s.pending || tag != s.tag {
		return false
	}
	s.pending = false
	term := strings.TrimSpace(s.raw)
	if term == s.applied {
		return false
	}
	s.applied = term
	return true
}

// Cancel drops any scheduled propagation.
func (s *Search) Cancel() {
	s.tag++
	s.pending = false
}
