package table

// Paging tracks the current page of a remote list and the counts reported
// for it. The zero value is not usable; create one with NewPaging.
type Paging struct {
	page      int
	pageSize  int
	firstItem int
	lastItem  int

	totalCount int

	// total number of items before any search filter
	absoluteCount int
	absoluteKnown bool

	loaded bool
}

// NewPaging returns paging positioned on page 1.
func NewPaging(pageSize int) Paging {
	if pageSize < 1 {
		pageSize = 1
	}
	return Paging{page: 1, pageSize: pageSize}
}

// Page returns the 1-based current page.
func (p Paging) Page() int { return p.page }

// PageSize returns the number of rows requested per page.
func (p Paging) PageSize() int { return p.pageSize }

// FirstItemIndex returns the zero-based offset of the first row on the page.
func (p Paging) FirstItemIndex() int { return p.firstItem }

// LastItemIndex returns the exclusive end of the rows shown on the page.
func (p Paging) LastItemIndex() int { return p.lastItem }

// TotalCount returns the number of rows matching the current filter.
func (p Paging) TotalCount() int { return p.totalCount }

// AbsoluteCount returns the unfiltered row count and whether it is known yet.
func (p Paging) AbsoluteCount() (int, bool) { return p.absoluteCount, p.absoluteKnown }

// Loaded reports whether at least one result has been applied.
func (p Paging) Loaded() bool { return p.loaded }

// PageCount returns the number of pages for the current total, at least 1.
func (p Paging) PageCount() int {
	pages := p.totalCount / p.pageSize
	if p.totalCount%p.pageSize > 0 {
		pages++
	}
	if pages < 1 {
		return 1
	}
	return pages
}

// IsFirstPage reports whether there is no previous page.
func (p Paging) IsFirstPage() bool { return p.page <= 1 }

// IsLastPage reports whether there is no next page.
func (p Paging) IsLastPage() bool {
	if !p.loaded {
		return true
	}
	return p.firstItem+p.pageSize >= p.totalCount
}

// IsFiltered reports whether the filtered total differs from the known
// absolute total.
func (p Paging) IsFiltered() bool {
	return p.absoluteKnown && p.absoluteCount != p.totalCount
}

// SetPage moves to page n. It returns false when nothing changed, in which
// case no reload is needed. Pages below 1 clamp to 1, and once the page
// count is known pages past the end clamp to the last page.
func (p *Paging) SetPage(n int) bool {
	if n < 1 {
		n = 1
	}
	if p.loaded && n > p.PageCount() {
		n = p.PageCount()
	}
	if n == p.page {
		return false
	}
	p.page = n
	p.syncFirstItem()
	return true
}

// SetPageSize changes the page size, keeping the first visible row on the
// new page: page = floor(firstItem/size) + 1.
func (p *Paging) SetPageSize(size int) bool {
	if size < 1 {
		size = 1
	}
	if size == p.pageSize {
		return false
	}
	p.page = p.firstItem/size + 1
	p.pageSize = size
	p.syncFirstItem()
	return true
}

// Reset returns to the first page. Used when the search term changes.
func (p *Paging) Reset() {
	p.page = 1
	p.firstItem = 0
	p.lastItem = 0
}

// ApplyResult records a loaded page. filtered tells whether a search term
// was applied to the query. Every unfiltered load replaces the absolute
// count; filtered loads never touch it.
func (p *Paging) ApplyResult(rowCount, totalCount int, filtered bool) {
	if totalCount < 0 {
		totalCount = 0
	}
	p.totalCount = totalCount
	p.lastItem = p.firstItem + rowCount
	p.loaded = true
	if !filtered {
		p.SetAbsoluteCount(totalCount)
	}
}

// SetAbsoluteCount records an unfiltered total reported by the backend.
func (p *Paging) SetAbsoluteCount(n int) {
	if n < 0 {
		n = 0
	}
	p.absoluteCount = n
	p.absoluteKnown = true
}

// RestorePosition moves back to the page, size and totals of shown, the
// paging of the last result that was applied. The absolute count is kept.
func (p *Paging) RestorePosition(shown Paging) {
	p.page = shown.page
	p.pageSize = shown.pageSize
	p.firstItem = shown.firstItem
	p.lastItem = shown.lastItem
	p.totalCount = shown.totalCount
	p.loaded = shown.loaded
}

func (p *Paging) syncFirstItem() {
	p.firstItem = (p.page - 1) * p.pageSize
}
