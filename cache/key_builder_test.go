package cache

import (
	"strings"
	"testing"

	"github.com/goliatone/go-catalog-browser/catalog"
)

func joinWithSeparator(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

func TestDefaultKeyBuilder_Layout(t *testing.T) {
	keys := NewDefaultKeyBuilder()

	tests := []struct {
		name   string
		page   int
		filter catalog.Filter
		want   string
	}{
		{
			name:   "all categories",
			page:   1,
			filter: catalog.DefaultFilter(),
			want:   joinWithSeparator("page", "1", "category", "all"),
		},
		{
			name:   "empty category normalizes to all",
			page:   1,
			filter: catalog.Filter{Kind: catalog.KindCategory},
			want:   joinWithSeparator("page", "1", "category", "all"),
		},
		{
			name:   "zero filter normalizes to all categories",
			page:   3,
			filter: catalog.Filter{},
			want:   joinWithSeparator("page", "3", "category", "all"),
		},
		{
			name:   "category",
			page:   2,
			filter: catalog.CategoryFilter("ai"),
			want:   joinWithSeparator("page", "2", "category", "ai"),
		},
		{
			name:   "tag",
			page:   4,
			filter: catalog.TagFilter("openSource"),
			want:   joinWithSeparator("page", "4", "tag", "openSource"),
		},
		{
			name:   "separator in value is escaped",
			page:   1,
			filter: catalog.TagFilter("a::b"),
			want:   joinWithSeparator("page", "1", "tag", "a%3A%3Ab"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keys.BuildKey(tt.page, tt.filter)
			if got.String() != tt.want {
				t.Errorf("BuildKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultKeyBuilder_Deterministic(t *testing.T) {
	keys := NewDefaultKeyBuilder()
	other := NewDefaultKeyBuilder()

	f := catalog.CategoryFilter("design")
	if keys.BuildKey(5, f) != keys.BuildKey(5, catalog.CategoryFilter("design")) {
		t.Error("equal arguments must produce equal keys")
	}
	if keys.BuildKey(5, f) != other.BuildKey(5, f) {
		t.Error("keys must not depend on the builder instance")
	}
}

func TestDefaultKeyBuilder_DistinctInputs(t *testing.T) {
	keys := NewDefaultKeyBuilder()

	inputs := []struct {
		page   int
		filter catalog.Filter
	}{
		{1, catalog.CategoryFilter("ai")},
		{2, catalog.CategoryFilter("ai")},
		{1, catalog.TagFilter("ai")},
		{1, catalog.CategoryFilter("dev")},
		{1, catalog.TagFilter("a::tag::b")},
		{1, catalog.TagFilter("a")},
		{12, catalog.CategoryFilter("ai")},
		{1, catalog.CategoryFilter("2::category::ai")},
	}

	seen := make(map[Key]int)
	for i, in := range inputs {
		key := keys.BuildKey(in.page, in.filter)
		if j, dup := seen[key]; dup {
			t.Errorf("inputs %d and %d collide on key %s", j, i, key)
		}
		seen[key] = i
	}
}

func TestPrefixedKeyBuilder(t *testing.T) {
	keys := NewPrefixedKeyBuilder("all")
	got := keys.BuildKey(0, catalog.TagFilter("mac"))
	want := joinWithSeparator("all", "0", "tag", "mac")
	if got.String() != want {
		t.Errorf("BuildKey() = %v, want %v", got, want)
	}

	if NewPrefixedKeyBuilder("").BuildKey(1, catalog.DefaultFilter()) != NewDefaultKeyBuilder().BuildKey(1, catalog.DefaultFilter()) {
		t.Error("empty prefix should fall back to the default prefix")
	}
}
