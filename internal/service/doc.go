// Package service contains the application use cases for memories. It
// coordinates domain objects, repositories (defined in internal/store) and
// event emission, and applies transactional boundaries and ownership rules.
//
// Services receive their dependencies through constructor injection and never
// depend on a concrete database implementation. Expected failures are reported
// as sentinel errors (ErrNotOwned, ErrBlockNotFound) or wrapped domain and
// store errors that callers inspect with errors.Is and errors.As; the API
// layer maps them to HTTP status codes.
package service
