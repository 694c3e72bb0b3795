package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"fintrack/internal/auth"
	apperrors "fintrack/internal/errors"
)

// principalKey is where the JWT middleware stores the authenticated claims.
const principalKey = "user"

// principal returns the authenticated claims or a 401 challenge.
func principal(c echo.Context) (*auth.Claims, error) {
	claims, ok := c.Get(principalKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: apperrors.ErrAuthenticationRequired.Error(),
			Code:  "AUTHENTICATION_REQUIRED",
		})
	}
	return claims, nil
}

// bearerToken extracts the raw access token from the Authorization header.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// domainError converts a service error into an echo HTTP error with the
// standard response body.
func domainError(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
