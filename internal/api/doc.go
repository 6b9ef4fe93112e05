// Package api handles incoming HTTP requests, request validation and
// response formatting. It adapts HTTP to the block engine (registry,
// factory, validation and placement through editor sessions), the memory
// service and the read-only viewer.
package api
