package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/memoryblocks/internal/api/shared"
	"github.com/phrazzld/memoryblocks/internal/domain"
	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/domain/richtext"
	"github.com/phrazzld/memoryblocks/internal/editor"
	"github.com/phrazzld/memoryblocks/internal/service"
	"github.com/phrazzld/memoryblocks/internal/service/auth"
	"github.com/phrazzld/memoryblocks/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, service.ErrBlockNotFound),
		errors.Is(err, editor.ErrBlockNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, editor.ErrTypeUnavailable),
		errors.Is(err, editor.ErrSessionClosed):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, block.ErrUnknownBlockType),
		errors.Is(err, block.ErrBlockValidation),
		errors.Is(err, block.ErrInvalidContent),
		errors.Is(err, richtext.ErrInvalidRange),
		errors.Is(err, richtext.ErrInvalidCommand),
		errors.Is(err, editor.ErrWrongBlockType),
		errors.Is(err, editor.ErrIndexOutOfRange),
		errors.Is(err, editor.ErrInvalidValue),
		errors.Is(err, editor.ErrFileValidation):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"
	case errors.Is(err, domain.ErrUnauthorized):
		return "User ID not found or invalid"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this memory"

	case errors.Is(err, store.ErrMemoryNotFound):
		return "Memory not found"
	case errors.Is(err, service.ErrBlockNotFound),
		errors.Is(err, editor.ErrBlockNotFound):
		return "Block not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrDuplicate):
		return "Memory already exists"
	case errors.Is(err, editor.ErrTypeUnavailable):
		return "Block type cannot be added to this document"
	case errors.Is(err, editor.ErrSessionClosed):
		return "Document can no longer be edited"

	case errors.Is(err, block.ErrUnknownBlockType):
		return "Unknown block type"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, block.ErrBlockValidation):
		return "Validation failed"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, block.ErrInvalidContent),
		errors.Is(err, editor.ErrWrongBlockType):
		return "Invalid block content"
	case errors.Is(err, richtext.ErrInvalidRange),
		errors.Is(err, richtext.ErrInvalidCommand),
		errors.Is(err, editor.ErrIndexOutOfRange),
		errors.Is(err, editor.ErrInvalidValue):
		return "Invalid edit"
	case errors.Is(err, editor.ErrFileValidation):
		return "Invalid file"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from request validation
// errors and returns a user-friendly message naming the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// FieldErrorResponse is one invalid field in an error's details.
type FieldErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// BlockErrorsResponse lists the problems of one block, by document position.
type BlockErrorsResponse struct {
	Index  int                  `json:"index"`
	Errors []FieldErrorResponse `json:"errors"`
}

// ValidationDetails is the details payload of a failed memory validation.
type ValidationDetails struct {
	Fields []FieldErrorResponse  `json:"fields,omitempty"`
	Blocks []BlockErrorsResponse `json:"blocks,omitempty"`
}

// blockErrorsToResponse converts per-block rule violations.
func blockErrorsToResponse(errs []error) []FieldErrorResponse {
	out := make([]FieldErrorResponse, 0, len(errs))
	for _, err := range errs {
		var vErr *block.ValidationError
		var typeErr *block.UnknownTypeError
		switch {
		case errors.As(err, &vErr):
			out = append(out, FieldErrorResponse{Field: vErr.Field, Message: vErr.Message})
		case errors.As(err, &typeErr):
			out = append(out, FieldErrorResponse{Field: "type", Message: typeErr.Error()})
		default:
			out = append(out, FieldErrorResponse{Field: "block", Message: err.Error()})
		}
	}
	return out
}

// validationDetails flattens a *domain.DocumentErrors, or returns nil when
// err carries none.
func validationDetails(err error) *ValidationDetails {
	var docErrs *domain.DocumentErrors
	if !errors.As(err, &docErrs) || docErrs.Empty() {
		return nil
	}
	details := &ValidationDetails{}
	for _, f := range docErrs.Fields {
		details.Fields = append(details.Fields, FieldErrorResponse{Field: f.Field, Message: f.Message})
	}
	for _, i := range docErrs.BlockIndexes() {
		details.Blocks = append(details.Blocks, BlockErrorsResponse{
			Index:  i,
			Errors: blockErrorsToResponse(docErrs.Blocks[i]),
		})
	}
	return details
}

// HandleAPIError writes the status and safe message for err. defaultMsg
// replaces the generic message of unexpected (5xx) errors. Document
// validation problems are attached as details.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}

	var opts []shared.ResponseOption
	if details := validationDetails(err); details != nil {
		opts = append(opts, shared.WithDetails(details))
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// HandleValidationError writes a 400 response for a request that failed
// struct validation.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
}

// isFormPost reports whether r was submitted by an HTML form rather than
// a JSON client.
func isFormPost(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}
