package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keralahub/culturalhub/internal/core/ports"
)

// ContentHandler serves the editorial cultural-content pages.
type ContentHandler struct {
	content ports.ContentService
}

func NewContentHandler(content ports.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// List returns published articles, optionally filtered by category.
//
// @Summary      List cultural content
// @Tags         content
// @Produce      json
// @Param        category  query  string  false  "Category filter"
// @Success      200  {array}  domain.CulturalContent
// @Router       /v1/content [get]
func (h *ContentHandler) List(c echo.Context) error {
	items, err := h.content.List(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns one article by slug.
//
// @Summary      Get a cultural-content article
// @Tags         content
// @Produce      json
// @Param        slug  path  string  true  "Article slug"
// @Success      200  {object}  domain.CulturalContent
// @Failure      404  {object}  map[string]string
// @Router       /v1/content/{slug} [get]
func (h *ContentHandler) Get(c echo.Context) error {
	item, err := h.content.Get(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}
