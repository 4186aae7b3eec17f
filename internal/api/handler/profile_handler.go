package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keralahub/culturalhub/internal/core/ports"
)

// maxAvatarBytes caps avatar uploads at 5 MiB.
const maxAvatarBytes = 5 << 20

// ProfileHandler serves the signed-in user's profile.
type ProfileHandler struct {
	profiles ports.ProfileService
}

func NewProfileHandler(profiles ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
	Phone       string `json:"phone"`
	Bio         string `json:"bio"`
}

// Me returns the caller's profile.
//
// @Summary      Get my profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.UserProfile
// @Failure      404  {object}  map[string]string
// @Router       /v1/me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	profile, err := h.profiles.Fetch(c.Request().Context(), userIDFrom(c))
	if err != nil {
		return err
	}
	if profile == nil {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	return c.JSON(http.StatusOK, profile)
}

// Update mutates the caller's profile fields.
//
// @Summary      Update my profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  domain.UserProfile
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/me [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile, err := h.profiles.Update(c.Request().Context(), ports.UpdateProfileInput{
		UserID:      userIDFrom(c),
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Bio:         req.Bio,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// UploadAvatar stores the multipart "avatar" file and records its URL.
//
// @Summary      Upload my avatar
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Image file"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /v1/me/avatar [post]
func (h *ProfileHandler) UploadAvatar(c echo.Context) error {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "avatar file is required")
	}
	if fh.Size > maxAvatarBytes {
		return echo.NewHTTPError(http.StatusBadRequest, "avatar exceeds 5 MiB")
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read avatar file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxAvatarBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read avatar file")
	}
	if len(data) > maxAvatarBytes {
		return echo.NewHTTPError(http.StatusBadRequest, "avatar exceeds 5 MiB")
	}

	url, err := h.profiles.SetAvatar(
		c.Request().Context(),
		userIDFrom(c),
		fh.Filename,
		fh.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"avatar_url": url})
}
