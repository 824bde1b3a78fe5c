package cache

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-catalog-browser/catalog"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// Key identifies one memoized page of a filtered result set.
// Two keys built from equal (page, filter) pairs are equal strings.
type Key string

func (k Key) String() string {
	return string(k)
}

// KeyBuilder derives the composite cache key for a page under a filter.
// Implementations must be pure: equal arguments yield equal keys.
type KeyBuilder interface {
	BuildKey(page int, filter catalog.Filter) Key
}

// defaultKeyBuilder lays keys out as "page::<n>::<kind>::<value>".
// Filter values are query-escaped so a value containing the separator cannot
// collide with a different (kind, value) pair.
type defaultKeyBuilder struct {
	prefix string
}

// NewDefaultKeyBuilder creates the default key builder.
func NewDefaultKeyBuilder() KeyBuilder {
	return &defaultKeyBuilder{prefix: "page"}
}

// NewPrefixedKeyBuilder creates a key builder with a custom leading segment,
// useful when several key spaces share one Store.
func NewPrefixedKeyBuilder(prefix string) KeyBuilder {
	if prefix == "" {
		prefix = "page"
	}
	return &defaultKeyBuilder{prefix: prefix}
}

// BuildKey implements KeyBuilder.
func (b *defaultKeyBuilder) BuildKey(page int, filter catalog.Filter) Key {
	kind := string(filter.Kind)
	if kind == "" {
		kind = string(catalog.KindCategory)
	}
	value := filter.Value
	if filter.Kind != catalog.KindTag && value == "" {
		value = catalog.AllCategories
	}

	parts := []string{
		b.prefix,
		strconv.Itoa(page),
		kind,
		url.QueryEscape(value),
	}
	return Key(strings.Join(parts, KeySeparator))
}
