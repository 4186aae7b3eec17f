package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keralahub/culturalhub/internal/core/domain"
	"github.com/keralahub/culturalhub/internal/core/ports"
)

// EventHandler handles HTTP requests for event operations.
type EventHandler struct {
	events ports.EventService
}

func NewEventHandler(events ports.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// List serves the public event listing. Only published events are returned;
// organizers use ListMine for their drafts.
//
// @Summary      List published events
// @Tags         events
// @Produce      json
// @Param        category  query  string  false  "Category filter"
// @Param        city      query  string  false  "City filter"
// @Param        q         query  string  false  "Search on title or venue"
// @Param        from      query  string  false  "RFC 3339 lower bound on starts_at"
// @Param        to        query  string  false  "RFC 3339 upper bound on starts_at"
// @Param        page      query  int     false  "Page number (1-based)"
// @Param        limit     query  int     false  "Page size, max 100"
// @Success      200  {object}  listEventsResponse
// @Router       /v1/events [get]
func (h *EventHandler) List(c echo.Context) error {
	filter, err := listFilterFromQuery(c)
	if err != nil {
		return err
	}
	filter.OnlyPublished = true

	return h.list(c, filter)
}

// ListMine serves the organizer dashboard listing: the caller's own events,
// drafts included.
//
// @Summary      List my events
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page number (1-based)"
// @Param        limit  query  int  false  "Page size, max 100"
// @Success      200  {object}  listEventsResponse
// @Router       /v1/events/mine [get]
func (h *EventHandler) ListMine(c echo.Context) error {
	filter, err := listFilterFromQuery(c)
	if err != nil {
		return err
	}
	filter.OrganizerID = userIDFrom(c)
	if filter.OrganizerID == "" {
		// Demo dashboards scope to the demo identity's id: an empty
		// organizer filter would leak every organizer's drafts.
		if id := identityFrom(c); id.Demo != nil {
			filter.OrganizerID = id.Demo.ID
		}
	}

	return h.list(c, filter)
}

func (h *EventHandler) list(c echo.Context, filter ports.ListEventsFilter) error {
	result, err := h.events.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	items := make([]eventResponse, 0, len(result.Items))
	for _, e := range result.Items {
		items = append(items, toEventResponse(e))
	}
	return c.JSON(http.StatusOK, listEventsResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// Get returns one event by id.
//
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        id  path  string  true  "Event id"
// @Success      200  {object}  eventResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/events/{id} [get]
func (h *EventHandler) Get(c echo.Context) error {
	event, err := h.events.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(event))
}

// Create registers a new unpublished event owned by the caller.
//
// @Summary      Create an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createEventRequest  true  "Event details"
// @Success      201   {object}  eventResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /v1/events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	event, err := h.events.Create(c.Request().Context(), ports.CreateEventInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Venue:        req.Venue,
		City:         req.City,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		UnitPrice:    req.UnitPrice,
		Currency:     req.Currency,
		TotalTickets: req.TotalTickets,
		OrganizerID:  userIDFrom(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toEventResponse(event))
}

// Update mutates an event's fields. Organizers may only touch their own
// events; admins may touch any.
//
// @Summary      Update an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Event id"
// @Param        body  body      updateEventRequest  true  "Event fields"
// @Success      200   {object}  eventResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	var req updateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, _ := identityFrom(c).EffectiveRole()
	event, err := h.events.Update(c.Request().Context(), ports.UpdateEventInput{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Venue:       req.Venue,
		City:        req.City,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		UnitPrice:   req.UnitPrice,
		ActorRole:   role,
		ActorUserID: userIDFrom(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(event))
}

// Publish toggles an event's published flag.
//
// @Summary      Publish or unpublish an event
// @Tags         events
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string               true  "Event id"
// @Param        body  body  publishEventRequest  true  "Published flag"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/events/{id}/publish [put]
func (h *EventHandler) Publish(c echo.Context) error {
	var req publishEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	role, _ := identityFrom(c).EffectiveRole()
	if err := h.events.SetPublished(c.Request().Context(), c.Param("id"), req.Published, role, userIDFrom(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// LinkArtist attaches an artist to an event's billing.
//
// @Summary      Link an artist to an event
// @Tags         events
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string             true  "Event id"
// @Param        body  body  linkArtistRequest  true  "Artist link"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/events/{id}/artists [post]
func (h *EventHandler) LinkArtist(c echo.Context) error {
	var req linkArtistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.events.LinkArtist(c.Request().Context(), c.Param("id"), req.ArtistID, req.Billing); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UnlinkArtist removes an artist from an event's billing.
//
// @Summary      Unlink an artist from an event
// @Tags         events
// @Security     BearerAuth
// @Param        id         path  string  true  "Event id"
// @Param        artist_id  path  string  true  "Artist id"
// @Success      204
// @Router       /v1/events/{id}/artists/{artist_id} [delete]
func (h *EventHandler) UnlinkArtist(c echo.Context) error {
	if err := h.events.UnlinkArtist(c.Request().Context(), c.Param("id"), c.Param("artist_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// listFilterFromQuery parses the shared listing query parameters.
func listFilterFromQuery(c echo.Context) (ports.ListEventsFilter, error) {
	filter := ports.ListEventsFilter{
		Category: c.QueryParam("category"),
		City:     c.QueryParam("city"),
		Search:   c.QueryParam("q"),
	}

	if raw := c.QueryParam("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "from must be RFC 3339")
		}
		filter.From = t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "to must be RFC 3339")
		}
		filter.To = t
	}
	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "page must be an integer")
		}
		filter.Page = n
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		filter.Limit = n
	}

	return filter, nil
}
