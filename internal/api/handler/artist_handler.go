package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keralahub/culturalhub/internal/core/ports"
)

// ArtistHandler serves the public artist directory.
type ArtistHandler struct {
	artists ports.ArtistService
}

func NewArtistHandler(artists ports.ArtistService) *ArtistHandler {
	return &ArtistHandler{artists: artists}
}

// List returns artists, optionally filtered by art form.
//
// @Summary      List artists
// @Tags         artists
// @Produce      json
// @Param        art_form  query  string  false  "Art form filter (e.g. kathakali)"
// @Success      200  {array}  domain.Artist
// @Router       /v1/artists [get]
func (h *ArtistHandler) List(c echo.Context) error {
	artists, err := h.artists.List(c.Request().Context(), c.QueryParam("art_form"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, artists)
}

// Get returns one artist by id.
//
// @Summary      Get an artist
// @Tags         artists
// @Produce      json
// @Param        id  path  string  true  "Artist id"
// @Success      200  {object}  domain.Artist
// @Failure      404  {object}  map[string]string
// @Router       /v1/artists/{id} [get]
func (h *ArtistHandler) Get(c echo.Context) error {
	artist, err := h.artists.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, artist)
}

// ListByEvent returns the artists billed on one event.
//
// @Summary      List artists for an event
// @Tags         artists
// @Produce      json
// @Param        id  path  string  true  "Event id"
// @Success      200  {array}  domain.Artist
// @Router       /v1/events/{id}/artists [get]
func (h *ArtistHandler) ListByEvent(c echo.Context) error {
	artists, err := h.artists.ListByEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, artists)
}
