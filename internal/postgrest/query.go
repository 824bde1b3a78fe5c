package postgrest

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-catalog-browser/catalog"
)

// filterParams renders filters as PostgREST horizontal filters.
func filterParams(filters catalog.Filters) url.Values {
	f := filters.Normalized()
	v := url.Values{}
	if f.Category != "" {
		v.Set("category", "eq."+f.Category)
	}
	if f.Tag != "" {
		v.Set("tags", "cs.{"+quote(f.Tag)+"}")
	}
	if f.Search != "" {
		pattern := quote(likePattern(f.Search))
		v.Set("or", "(title.ilike."+pattern+",description.ilike."+pattern+")")
	}
	return v
}

// likePattern wraps term in PostgREST wildcards. Literal * cannot be expressed
// and is dropped.
func likePattern(term string) string {
	return "*" + strings.ReplaceAll(term, "*", "") + "*"
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quote double-quotes a value so reserved characters (, . : ( ) {}) are literal.
func quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}

// parseContentRange reads the total from a Content-Range header such as
// "0-9/25" or "*/25". An "*" total or a malformed header is reported as unknown.
func parseContentRange(h string) (total int, known bool) {
	_, after, ok := strings.Cut(strings.TrimSpace(h), "/")
	if !ok || after == "*" {
		return 0, false
	}
	n, err := strconv.Atoi(after)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
