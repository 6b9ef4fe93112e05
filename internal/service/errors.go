package service

import "errors"

// Sentinel errors shared by the service implementations.
//
// Service methods return these for expected conditions; unexpected errors are
// wrapped in a *MemoryServiceError that still unwraps to the cause.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrBlockNotFound indicates that a memory has no block with the requested ID.
	// API layer should map this to HTTP 404 Not Found.
	ErrBlockNotFound = errors.New("block not found in memory")
)
