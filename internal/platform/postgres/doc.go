// Package postgres implements the store interfaces on PostgreSQL through
// the pgx database/sql driver. Block documents are stored as JSONB.
package postgres
