package catalog

import (
	"fmt"
	"strings"
)

// AllCategories is the category value meaning "no category restriction".
const AllCategories = "all"

// FilterKind selects which dimension a Filter restricts.
type FilterKind string

const (
	KindCategory FilterKind = "category"
	KindTag      FilterKind = "tag"
)

// Filter is the single active category-or-tag restriction.
// Exactly one kind is active at a time; a Filter is replaced wholesale, never edited.
type Filter struct {
	Kind  FilterKind `json:"kind"`
	Value string     `json:"value"`
}

// CategoryFilter restricts results to one category. An empty id means AllCategories.
func CategoryFilter(id string) Filter {
	if id == "" {
		id = AllCategories
	}
	return Filter{Kind: KindCategory, Value: id}
}

// TagFilter restricts results to records carrying tag.
func TagFilter(tag string) Filter {
	return Filter{Kind: KindTag, Value: tag}
}

// DefaultFilter is the filter a fresh browsing session starts with.
func DefaultFilter() Filter {
	return CategoryFilter(AllCategories)
}

// IsAll reports whether the filter places no restriction at all.
func (f Filter) IsAll() bool {
	return f.Kind == KindCategory && (f.Value == AllCategories || f.Value == "")
}

// Filters converts the tagged filter into the query shape understood by a QueryService.
func (f Filter) Filters() Filters {
	switch f.Kind {
	case KindTag:
		return Filters{Tag: f.Value}
	default:
		if f.IsAll() {
			return Filters{}
		}
		return Filters{Category: f.Value}
	}
}

func (f Filter) String() string {
	return fmt.Sprintf("%s=%s", f.Kind, f.Value)
}

// Filters is the optional-field filter shape accepted by a QueryService.
type Filters struct {
	Category string `json:"category,omitempty"`
	Tag      string `json:"tag,omitempty"`
	Search   string `json:"search,omitempty"`
}

// Normalized trims the search term and drops the "all" category sentinel.
func (f Filters) Normalized() Filters {
	out := f
	if out.Category == AllCategories {
		out.Category = ""
	}
	out.Search = strings.ToLower(strings.TrimSpace(out.Search))
	return out
}

// Matches reports whether r satisfies every set field of the filter.
func (f Filters) Matches(r Resource) bool {
	n := f.Normalized()
	if n.Category != "" && r.Category != n.Category {
		return false
	}
	if n.Tag != "" && !r.HasTag(n.Tag) {
		return false
	}
	if n.Search != "" {
		title := strings.ToLower(r.Title)
		desc := strings.ToLower(r.Description)
		if !strings.Contains(title, n.Search) && !strings.Contains(desc, n.Search) {
			return false
		}
	}
	return true
}
