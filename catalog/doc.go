// Package catalog defines the data model and backend contracts of the resource catalog.
//
// A Resource is a curated link filed under one category and any number of tags.
// Browsing narrows the catalog with a Filter, a tagged variant holding either a
// category or a tag. The "all" category is the sentinel for "no restriction".
//
// Backends implement QueryService for reads and Mutator for writes. A backend
// signals a request for a page past the end of the result set either by returning
// an empty Page or by failing with an error that matches ErrRangeNotSatisfiable:
//
//	page, err := svc.Fetch(ctx, catalog.Query{Page: 4, PageSize: 10, Filters: f})
//	if total, known, ok := catalog.RangeTotal(err); ok {
//		// treat as an empty page; total is authoritative when known
//	}
package catalog
