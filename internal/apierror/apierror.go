// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Error   string         `json:"error"`
	Details []FieldMessage `json:"details,omitempty"`
}

// FieldMessage is one field-level validation failure.
type FieldMessage struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func New(msg string) *APIError {
	return &APIError{Error: msg}
}

// NewValidation wraps multiple field errors.
func NewValidation(fields []FieldMessage) *APIError {
	return &APIError{Error: "Validation failed", Details: fields}
}
