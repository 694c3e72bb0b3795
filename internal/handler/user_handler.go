package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"fintrack/internal/service"
)

// UserHandler bundles the current-user and administrative endpoints.
type UserHandler struct {
	users service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me godoc
// @Summary The authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	claims, err := principal(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetUser(c.Request().Context(), claims.UserID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsers godoc
// @Summary List all users (admin)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// DeleteUser godoc
// @Summary Delete a user and everything they own (admin)
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204 {object} nil
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.users.DeleteUser(c.Request().Context(), uint(id)); err != nil {
		return domainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
