// Package pagination holds the pure page arithmetic used by the browser.
//
// All functions are total for non-negative inputs and never panic: out of
// range pages are clamped, and next/previous saturate at the boundaries.
package pagination

// TotalPages returns ceil(totalCount / itemsPerPage), or 0 when there is nothing to show.
func TotalPages(totalCount, itemsPerPage int) int {
	if totalCount <= 0 || itemsPerPage <= 0 {
		return 0
	}
	return (totalCount + itemsPerPage - 1) / itemsPerPage
}

// Clamp forces page into [1, max(totalPages, 1)].
func Clamp(page, totalPages int) int {
	upper := max(totalPages, 1)
	return min(max(page, 1), upper)
}

// Next advances one page, staying put on the last page.
func Next(page, totalPages int) int {
	if page < totalPages {
		return page + 1
	}
	return page
}

// Prev goes back one page, staying put on the first page.
func Prev(page, totalPages int) int {
	if page > 1 {
		return Clamp(page-1, totalPages)
	}
	return 1
}

// Offset is the zero-based index of the first record on page.
func Offset(page, itemsPerPage int) int {
	if page <= 1 || itemsPerPage <= 0 {
		return 0
	}
	return (page - 1) * itemsPerPage
}

// State is the pagination view of one result set.
type State struct {
	CurrentPage  int
	ItemsPerPage int
	TotalCount   int
}

// TotalPages derives the page count for the state.
func (s State) TotalPages() int {
	return TotalPages(s.TotalCount, s.ItemsPerPage)
}

// Normalize returns the state with CurrentPage clamped into range.
func (s State) Normalize() State {
	s.CurrentPage = Clamp(s.CurrentPage, s.TotalPages())
	return s
}

// HasNext reports whether Next would move.
func (s State) HasNext() bool {
	return s.CurrentPage < s.TotalPages()
}

// HasPrev reports whether Prev would move.
func (s State) HasPrev() bool {
	return s.CurrentPage > 1
}
