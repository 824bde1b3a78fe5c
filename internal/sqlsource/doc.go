// Package sqlsource implements catalog.Service over a SQL database.
//
// Rows live in a single resources table managed by a go-repository-bun
// repository. Tags are stored as one delimited column (",ai,mac,") and matched
// with LIKE, so the same queries run on sqlite3 and postgres.
package sqlsource
