package table

import (
	"context"
	"slices"
	"strings"
)

// LocalSource pages, sorts and filters a list the backend only returns
// whole. Load is called once per query.
type LocalSource[T any] struct {
	Load func(ctx context.Context) ([]T, error)

	// Match reports whether row matches a non-empty search term. A nil Match
	// matches everything.
	Match func(row T, term string) bool

	// Compare holds a comparator per sortable column. Unknown columns keep
	// the loaded order.
	Compare map[string]func(a, b T) int
}

// Fetch implements FetchFunc.
func (s LocalSource[T]) Fetch(ctx context.Context, q Query) (Page[T], error) {
	all, err := s.Load(ctx)
	if err != nil {
		return Page[T]{}, err
	}
	if err := ctx.Err(); err != nil {
		return Page[T]{}, err
	}

	rows := make([]T, 0, len(all))
	for _, row := range all {
		if q.SearchTerm == "" || s.Match == nil || s.Match(row, q.SearchTerm) {
			rows = append(rows, row)
		}
	}

	if cmp, ok := s.Compare[q.SortColumn]; ok && cmp != nil {
		if q.SortDirection == Desc {
			slices.SortStableFunc(rows, func(a, b T) int { return cmp(b, a) })
		} else {
			slices.SortStableFunc(rows, cmp)
		}
	}

	start := min(max(q.FirstItemIndex, 0), len(rows))
	end := len(rows)
	if q.PageSize > 0 {
		end = min(start+q.PageSize, len(rows))
	}

	return Page[T]{
		Rows:          slices.Clone(rows[start:end]),
		TotalCount:    len(rows),
		AbsoluteCount: len(all),
		AbsoluteKnown: true,
	}, nil
}

// ContainsFold reports whether any field contains term, ignoring case.
func ContainsFold(term string, fields ...string) bool {
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
