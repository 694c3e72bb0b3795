package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/service"
)

// ProfileHandler handles the caller's profile endpoints.
type ProfileHandler struct {
	profiles  service.ProfileService
	uploadDir string
}

// NewProfileHandler creates a new profile handler. uploadDir is where avatar
// files are written before the service normalizes them.
func NewProfileHandler(profiles service.ProfileService, uploadDir string) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, uploadDir: uploadDir}
}

var allowedAvatarExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// Get godoc
// @Summary The caller's profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Profile
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	claims, err := principal(c)
	if err != nil {
		return err
	}

	profile, err := h.profiles.Get(c.Request().Context(), claims.UserID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// Update godoc
// @Summary Update bio and avatar
// @Tags profile
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param bio formData string false "Biography"
// @Param avatar formData file false "Avatar image (png, jpg, gif)"
// @Success 200 {object} model.Profile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	claims, err := principal(c)
	if err != nil {
		return err
	}

	bio := c.FormValue("bio")

	avatarFile := ""
	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		avatarFile, err = h.storeUpload(file)
		if err != nil {
			return err
		}
	}

	profile, err := h.profiles.Save(c.Request().Context(), claims.UserID, bio, avatarFile)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// storeUpload writes the uploaded avatar under a fresh UUID filename and
// returns the stored name.
func (h *ProfileHandler) storeUpload(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAvatarExtensions[ext] {
		ve := (&apperrors.ValidationError{}).Add("avatar", "unsupported image type")
		return "", domainError(ve)
	}

	src, err := file.Open()
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "cannot read upload")
	}
	defer src.Close()

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "cannot store upload")
	}

	stored := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(h.uploadDir, stored))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "cannot store upload")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "cannot store upload")
	}
	return stored, nil
}
