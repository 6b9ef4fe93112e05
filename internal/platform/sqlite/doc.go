// Package sqlite implements the store interfaces on an embedded SQLite
// database (modernc.org/sqlite, no cgo). Timestamps are stored as RFC 3339
// text in UTC and block documents as JSON text.
package sqlite
