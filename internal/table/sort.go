package table

import "strings"

// Direction is a sort direction as understood by the validator API.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection parses "asc"/"desc" case-insensitively, defaulting to Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// Sort holds the single active sort column. An empty column means the
// server's default order.
type Sort struct {
	column    string
	direction Direction
}

// NewSort returns a sort on column in the given direction.
func NewSort(column string, dir Direction) Sort {
	if dir != Desc {
		dir = Asc
	}
	return Sort{column: column, direction: dir}
}

// Column returns the active sort column, or "" when unsorted.
func (s Sort) Column() string { return s.column }

// Direction returns the active direction.
func (s Sort) Direction() Direction {
	if s.direction == "" {
		return Asc
	}
	return s.direction
}

// IsSorted reports whether a column is active.
func (s Sort) IsSorted() bool { return s.column != "" }

// Toggle flips the direction when column is already active, otherwise makes
// column the only active sort in ascending order.
func (s *Sort) Toggle(column string) {
	if column == s.column {
		s.direction = s.Direction().Flip()
		return
	}
	s.column = column
	s.direction = Asc
}

// Indicator returns the direction shown on column's header, and false when
// column is not the active sort.
func (s Sort) Indicator(column string) (Direction, bool) {
	if column == "" || column != s.column {
		return "", false
	}
	return s.Direction(), true
}
