package errors

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrTransactionNotFound is returned when a transaction id does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrNotOwner is returned when a transaction exists but belongs to another user.
	ErrNotOwner = errors.New("transaction belongs to another user")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrProfileNotFound is returned when a profile is not found.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrImageProcessing is returned when the avatar thumbnail step fails after
	// the profile row was already persisted.
	ErrImageProcessing = errors.New("image processing failed")
	// ErrInvalidCredentials is returned when login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserAlreadyExists is returned when registering a taken username or email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidSession is returned when a refresh token is invalid or expired.
	ErrInvalidSession = errors.New("invalid or expired session")
	// ErrAuthenticationRequired is returned when a protected operation has no principal.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrAdminOnly is returned when a non-admin calls an admin operation.
	ErrAdminOnly = errors.New("admin privileges required")
)

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level messages for malformed input.
// No mutation is performed when one is returned.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a field message and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// HasErrors reports whether any field message was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Code   string       `json:"code"`
	Fields []FieldError `json:"fields,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     []FieldError
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:  e.Message,
		Code:   e.Code,
		Fields: e.Fields,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Not-found and not-owner
// stay distinguishable (404 vs 403); collapsing the forbidden case to 404
// would be a one-line change here if existence disclosure becomes a concern.
func MapErrorToHTTP(err error) *HTTPError {
	if ve, ok := AsValidation(err); ok {
		he := NewHTTPError(http.StatusBadRequest, "validation failed", "VALIDATION_FAILED")
		he.Fields = ve.Fields
		return he
	}

	switch {
	case errors.Is(err, ErrTransactionNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "TRANSACTION_NOT_FOUND")
	case errors.Is(err, ErrNotOwner):
		return NewHTTPError(http.StatusForbidden, err.Error(), "NOT_OWNER")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrProfileNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PROFILE_NOT_FOUND")
	case errors.Is(err, ErrImageProcessing):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "IMAGE_PROCESSING_FAILED")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrInvalidSession):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_SESSION")
	case errors.Is(err, ErrAuthenticationRequired):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "AUTHENTICATION_REQUIRED")
	case errors.Is(err, ErrAdminOnly):
		return NewHTTPError(http.StatusForbidden, err.Error(), "ADMIN_ONLY")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
