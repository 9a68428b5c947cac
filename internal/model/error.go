package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body used for unresolved product identifiers.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorKind classifies a domain error into one HTTP-facing category.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindConflict     ErrorKind = "conflict"
	KindUnauthorized ErrorKind = "unauthorized"
	KindNotFound     ErrorKind = "not_found"
	KindInternal     ErrorKind = "internal"
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeInvalidField       = "INVALID_FIELD"
	ErrCodeInvalidQuery       = "INVALID_QUERY"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeLegacyIDTaken      = "LEGACY_ID_TAKEN"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeUsernameTaken      = "USERNAME_TAKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a classified business error.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

func NewConflictError(code, message string) *DomainError {
	return NewDomainError(KindConflict, code, message)
}

// Common domain errors
var (
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("record not found")

	ErrProductNotFound    = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Not found")
	ErrLegacyIDTaken      = NewConflictError(ErrCodeLegacyIDTaken, "Product id already in use")
	ErrEmailTaken         = NewConflictError(ErrCodeEmailTaken, "Email already registered")
	ErrUsernameTaken      = NewConflictError(ErrCodeUsernameTaken, "Username already taken")
	ErrInvalidCredentials = NewDomainError(KindUnauthorized, ErrCodeInvalidCredentials, "Invalid credentials")
	ErrUnauthorised       = NewDomainError(KindUnauthorized, ErrCodeUnauthorised, "Unauthorized")
)

// KindOf reports the category of err, defaulting to KindInternal.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	return KindInternal
}
