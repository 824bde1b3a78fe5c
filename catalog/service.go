package catalog

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultSuggestionLimit is used when Suggest is called with a non-positive limit.
const DefaultSuggestionLimit = 5

// Query describes one paginated request against a QueryService.
type Query struct {
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
	Filters  Filters `json:"filters"`
}

// Validate checks that page and page size are usable.
func (q Query) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Page, validation.Required, validation.Min(1)),
		validation.Field(&q.PageSize, validation.Required, validation.Min(1)),
	)
}

// Page is one page of records plus the total number of records matching the filters.
type Page struct {
	Records    []Resource `json:"records"`
	TotalCount int        `json:"total_count"`
}

// QueryService is the remote read side of the catalog.
//
// Fetch must either return an empty page for an out of range request or fail
// with an error matching ErrRangeNotSatisfiable.
type QueryService interface {
	Fetch(ctx context.Context, q Query) (Page, error)
	FetchAll(ctx context.Context, filters Filters) ([]Resource, error)
}

// Mutator is the remote write side of the catalog.
type Mutator interface {
	Create(ctx context.Context, r Resource) (Resource, error)
	Update(ctx context.Context, id string, r Resource) (Resource, error)
	Delete(ctx context.Context, id string) error
}

// Suggester returns record titles matching a search term, newest first.
type Suggester interface {
	Suggest(ctx context.Context, term string, limit int) ([]string, error)
}

// Service bundles every capability a catalog backend exposes.
type Service interface {
	QueryService
	Mutator
	Suggester
}
