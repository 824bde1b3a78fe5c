// Package postgrest implements catalog.Service against a PostgREST endpoint
// (for example a Supabase project's /rest/v1).
//
// Pages are requested with Range headers and Prefer: count=exact; the total
// is read back from Content-Range. An HTTP 416 or a PGRST103 error body is
// reported as a *catalog.RangeError rather than a failure.
package postgrest
