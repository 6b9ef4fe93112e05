// Package store defines the persistence interfaces for memories. The
// interfaces keep the service layer independent of the database in use;
// internal/platform/postgres and internal/platform/sqlite implement them.
package store
