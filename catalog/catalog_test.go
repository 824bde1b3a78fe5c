package catalog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Filters(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   Filters
	}{
		{name: "all categories", filter: DefaultFilter(), want: Filters{}},
		{name: "empty category", filter: CategoryFilter(""), want: Filters{}},
		{name: "category", filter: CategoryFilter("ai"), want: Filters{Category: "ai"}},
		{name: "tag", filter: TagFilter("openSource"), want: Filters{Tag: "openSource"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Filters())
		})
	}
}

func TestFilters_Matches(t *testing.T) {
	r := Resource{
		Title:       "Go Concurrency Patterns",
		Description: "Talks and notes",
		Category:    "dev",
		Tags:        []string{"trending", "openSource"},
	}

	assert.True(t, Filters{}.Matches(r))
	assert.True(t, Filters{Category: AllCategories}.Matches(r))
	assert.True(t, Filters{Category: "dev", Tag: "trending"}.Matches(r))
	assert.True(t, Filters{Search: "  CONCURRENCY "}.Matches(r))
	assert.True(t, Filters{Search: "notes"}.Matches(r))
	assert.False(t, Filters{Category: "ai"}.Matches(r))
	assert.False(t, Filters{Tag: "mac"}.Matches(r))
	assert.False(t, Filters{Search: "rust"}.Matches(r))
}

func TestResource_Validate(t *testing.T) {
	valid := Resource{Title: "Bun", URL: "https://bun.uptrace.dev", Category: "tools", Rating: 4.5}
	require.NoError(t, valid.Validate())

	missingURL := valid
	missingURL.URL = ""
	assert.Error(t, missingURL.Validate())

	badURL := valid
	badURL.URL = "not a url"
	assert.Error(t, badURL.Validate())

	sentinel := valid
	sentinel.Category = AllCategories
	assert.Error(t, sentinel.Validate())

	rating := valid
	rating.Rating = 7
	assert.Error(t, rating.Validate())
}

func TestQuery_Validate(t *testing.T) {
	assert.NoError(t, Query{Page: 1, PageSize: 10}.Validate())
	assert.Error(t, Query{Page: 0, PageSize: 10}.Validate())
	assert.Error(t, Query{Page: 1, PageSize: 0}.Validate())
	assert.Error(t, Query{Page: -2, PageSize: 10}.Validate())
}

func TestRangeTotal(t *testing.T) {
	total, known, ok := RangeTotal(NewRangeError(4, 25))
	assert.True(t, ok)
	assert.True(t, known)
	assert.Equal(t, 25, total)

	wrapped := fmt.Errorf("fetch page: %w", NewRangeError(9, UnknownTotal))
	_, known, ok = RangeTotal(wrapped)
	assert.True(t, ok)
	assert.False(t, known)

	_, _, ok = RangeTotal(ErrRangeNotSatisfiable)
	assert.True(t, ok)

	_, _, ok = RangeTotal(errors.New("boom"))
	assert.False(t, ok)

	assert.True(t, errors.Is(NewRangeError(2, 0), ErrRangeNotSatisfiable))
}
