// Package table implements the paging, sorting and debounced search state
// shared by every list view of the console, and the coordinator that turns
// that state into backend queries.
//
// A Controller is driven from a Bubble Tea update loop: every mutation
// returns a tea.Cmd that performs the fetch, and the resulting message is
// fed back through Update. Responses to superseded requests are dropped by
// sequence number.
package table

import "context"

// Query is the request for one page of a list. It is rebuilt from the
// controller state for every request.
type Query struct {
	// FirstItemIndex is the zero-based offset of the first row, always
	// (page-1) * PageSize.
	FirstItemIndex int
	PageSize       int
	// SearchTerm is trimmed; empty means no filter.
	SearchTerm    string
	SortColumn    string
	SortDirection Direction
}

// Page is one page of rows returned by a fetcher.
type Page[T any] struct {
	Rows []T
	// TotalCount is the number of rows matching the query's search term.
	TotalCount int

	// AbsoluteCount is the unfiltered total, when the fetcher knows it.
	AbsoluteCount int
	AbsoluteKnown bool
}

// FetchFunc loads one page. Implementations must honour ctx cancellation;
// the controller cancels requests that have been superseded.
type FetchFunc[T any] func(ctx context.Context, q Query) (Page[T], error)
