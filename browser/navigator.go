package browser

import (
	"github.com/goliatone/go-catalog-browser/catalog"
	"github.com/goliatone/go-catalog-browser/pagination"
)

// Navigator owns the active filter and the current page.
// It is not safe for concurrent use; Browser serializes access to it.
type Navigator struct {
	filter catalog.Filter
	state  pagination.State
}

// NewNavigator starts on page 1 of the default filter.
func NewNavigator(itemsPerPage int) *Navigator {
	return &Navigator{
		filter: catalog.DefaultFilter(),
		state:  pagination.State{CurrentPage: 1, ItemsPerPage: itemsPerPage},
	}
}

func (n *Navigator) Filter() catalog.Filter {
	return n.filter
}

func (n *Navigator) State() pagination.State {
	return n.state
}

func (n *Navigator) TotalPages() int {
	return n.state.TotalPages()
}

// SelectCategory replaces the filter and resets to page 1.
func (n *Navigator) SelectCategory(id string) {
	n.selectFilter(catalog.CategoryFilter(id))
}

// SelectTag replaces the filter and resets to page 1.
func (n *Navigator) SelectTag(tag string) {
	n.selectFilter(catalog.TagFilter(tag))
}

func (n *Navigator) selectFilter(f catalog.Filter) {
	n.filter = f
	n.state.CurrentPage = 1
}

// Next moves forward one page and reports whether the page changed.
func (n *Navigator) Next() bool {
	return n.moveTo(pagination.Next(n.state.CurrentPage, n.TotalPages()))
}

// Prev moves back one page and reports whether the page changed.
func (n *Navigator) Prev() bool {
	return n.moveTo(pagination.Prev(n.state.CurrentPage, n.TotalPages()))
}

// GoTo moves to page, clamped to the known range, and reports whether the page changed.
func (n *Navigator) GoTo(page int) bool {
	return n.moveTo(pagination.Clamp(page, n.TotalPages()))
}

func (n *Navigator) moveTo(page int) bool {
	if page == n.state.CurrentPage {
		return false
	}
	n.state.CurrentPage = page
	return true
}

// SetTotal records the authoritative total for the active filter. The current
// page is left alone; OutOfRange reports whether it needs clamping.
func (n *Navigator) SetTotal(total int) {
	n.state.TotalCount = max(total, 0)
}

// OutOfRange reports whether the current page lies past the last page.
func (n *Navigator) OutOfRange() bool {
	return n.state.Normalize().CurrentPage != n.state.CurrentPage
}

// Clamp forces the current page back into range and reports whether it moved.
func (n *Navigator) Clamp() bool {
	return n.moveTo(n.state.Normalize().CurrentPage)
}
