package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"fintrack/internal/auth"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/service"
)

// OAuthHandler handles delegated-login endpoints.
type OAuthHandler struct {
	registry     *auth.OAuthRegistry
	authService  service.AuthService
	sessionStore auth.SessionStoreInterface
}

// NewOAuthHandler creates a new delegated-login handler.
func NewOAuthHandler(registry *auth.OAuthRegistry, authService service.AuthService, sessionStore auth.SessionStoreInterface) *OAuthHandler {
	return &OAuthHandler{
		registry:     registry,
		authService:  authService,
		sessionStore: sessionStore,
	}
}

// Start godoc
// @Summary Begin delegated login with a provider
// @Tags auth
// @Param provider path string true "Provider name (github or google)"
// @Success 302
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/oauth/{provider} [get]
func (h *OAuthHandler) Start(c echo.Context) error {
	provider, err := h.registry.Provider(c.Param("provider"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, apperrors.ErrorResponse{
			Error: err.Error(),
			Code:  "UNKNOWN_PROVIDER",
		})
	}

	state := uuid.New().String()
	if err := h.sessionStore.StoreOAuthState(c.Request().Context(), state, c.Param("provider")); err != nil {
		return domainError(err)
	}

	return c.Redirect(http.StatusFound, provider.AuthURL(state))
}

// Callback godoc
// @Summary Complete delegated login
// @Tags auth
// @Produce json
// @Param provider path string true "Provider name"
// @Param code query string true "Authorization code"
// @Param state query string true "State nonce"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/oauth/{provider}/callback [get]
func (h *OAuthHandler) Callback(c echo.Context) error {
	providerName := c.Param("provider")
	provider, err := h.registry.Provider(providerName)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, apperrors.ErrorResponse{
			Error: err.Error(),
			Code:  "UNKNOWN_PROVIDER",
		})
	}

	state := c.QueryParam("state")
	code := c.QueryParam("code")
	if state == "" || code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing state or code")
	}

	// The nonce is single use and bound to the provider it was issued for.
	issuedFor, err := h.sessionStore.ConsumeOAuthState(c.Request().Context(), state)
	if err != nil || issuedFor != providerName {
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: "invalid oauth state",
			Code:  "INVALID_OAUTH_STATE",
		})
	}

	ctx := c.Request().Context()
	token, err := provider.Exchange(ctx, code)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: "code exchange failed",
			Code:  "OAUTH_EXCHANGE_FAILED",
		})
	}

	identity, err := provider.Identity(ctx, token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: "identity lookup failed",
			Code:  "OAUTH_IDENTITY_FAILED",
		})
	}

	pair, user, err := h.authService.LoginWithIdentity(ctx, identity)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	})
}
