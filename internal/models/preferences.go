// Package models defines the console's locally stored data.
package models

import (
	"fmt"
	"time"

	"github.com/rpkiconsole/rpkiconsole/internal/table"
)

// ViewID names a list view.
type ViewID string

const (
	ViewTrustAnchors     ViewID = "trust-anchors"
	ViewRoas             ViewID = "roas"
	ViewBgp              ViewID = "bgp"
	ViewIgnoreFilters    ViewID = "ignore-filters"
	ViewWhitelist        ViewID = "whitelist"
	ViewRepositories     ViewID = "ta-repositories"
	ViewValidationChecks ViewID = "ta-validation-checks"
)

// Valid returns true if the view is known.
func (v ViewID) Valid() bool {
	switch v {
	case ViewTrustAnchors, ViewRoas, ViewBgp, ViewIgnoreFilters, ViewWhitelist,
		ViewRepositories, ViewValidationChecks:
		return true
	default:
		return false
	}
}

// ViewPreference is the remembered table setup of one view.
type ViewPreference struct {
	View          ViewID
	PageSize      int
	SortColumn    string
	SortDirection table.Direction
	UpdatedAt     time.Time
}

// Validate checks the preference before it is stored.
func (p *ViewPreference) Validate() error {
	if !p.View.Valid() {
		return fmt.Errorf("invalid view: %q", p.View)
	}
	if p.PageSize < 1 {
		return fmt.Errorf("page_size must be positive, got %d", p.PageSize)
	}
	if p.SortDirection != table.Asc && p.SortDirection != table.Desc {
		return fmt.Errorf("invalid sort_direction: %q", p.SortDirection)
	}
	return nil
}

// Apply seeds controller options with the stored preference. A stored page
// size that is not offered any more is ignored.
func (p *ViewPreference) Apply(opts table.Options, pageSizes []int) table.Options {
	for _, n := range pageSizes {
		if n == p.PageSize {
			opts.PageSize = n
			break
		}
	}
	if p.SortColumn != "" {
		opts.SortColumn = p.SortColumn
		opts.SortDirection = p.SortDirection
	}
	return opts
}
