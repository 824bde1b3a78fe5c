package catalog

import (
	"slices"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Resource is a single curated link in the catalog.
// Records are treated as immutable values once returned by a QueryService.
type Resource struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Rating      float64   `json:"rating"`
	Reviews     int       `json:"reviews"`
	Cover       string    `json:"cover,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasTag reports whether the resource is labelled with tag.
func (r Resource) HasTag(tag string) bool {
	return slices.Contains(r.Tags, tag)
}

// Validate checks the fields required before a resource can be written.
func (r Resource) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.URL, validation.Required, is.URL),
		validation.Field(&r.Category, validation.Required, validation.NotIn(AllCategories)),
		validation.Field(&r.Rating, validation.Min(0.0), validation.Max(5.0)),
		validation.Field(&r.Reviews, validation.Min(0)),
	)
}
