package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"transaction not found", ErrTransactionNotFound, http.StatusNotFound, "TRANSACTION_NOT_FOUND"},
		{"not owner is forbidden, not not-found", ErrNotOwner, http.StatusForbidden, "NOT_OWNER"},
		{"user not found", ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"image processing", ErrImageProcessing, http.StatusUnprocessableEntity, "IMAGE_PROCESSING_FAILED"},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"authentication required", ErrAuthenticationRequired, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED"},
		{"admin only", ErrAdminOnly, http.StatusForbidden, "ADMIN_ONLY"},
		{"wrapped errors unwrap", fmt.Errorf("context: %w", ErrNotOwner), http.StatusForbidden, "NOT_OWNER"},
		{"unknown error is internal", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapValidationError(t *testing.T) {
	ve := (&ValidationError{}).Add("name", "name is required").Add("value", "value is out of range")

	httpErr := MapErrorToHTTP(ve)

	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", httpErr.Code)
	require.Len(t, httpErr.Fields, 2)
	assert.Equal(t, "name", httpErr.Fields[0].Field)

	resp := httpErr.ToErrorResponse()
	assert.Len(t, resp.Fields, 2)
}

func TestNotFoundAndForbiddenStayDistinct(t *testing.T) {
	// The service layer relies on these being different outcomes.
	assert.NotErrorIs(t, ErrNotOwner, ErrTransactionNotFound)
	assert.NotEqual(t,
		MapErrorToHTTP(ErrNotOwner).StatusCode,
		MapErrorToHTTP(ErrTransactionNotFound).StatusCode)
}
