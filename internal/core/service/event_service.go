package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/keralahub/culturalhub/internal/core/domain"
	"github.com/keralahub/culturalhub/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// EventService implements event listing and organizer management.
type EventService struct {
	events  ports.EventRepository
	artists ports.ArtistRepository
	log     zerolog.Logger
}

func NewEventService(events ports.EventRepository, artists ports.ArtistRepository, log zerolog.Logger) *EventService {
	return &EventService{events: events, artists: artists, log: log}
}

// Create registers a new, unpublished event owned by the organizer.
func (s *EventService) Create(ctx context.Context, in ports.CreateEventInput) (*domain.Event, error) {
	if in.TotalTickets < 0 {
		return nil, fmt.Errorf("total_tickets must not be negative")
	}
	currency := in.Currency
	if currency == "" {
		currency = "inr"
	}

	now := time.Now().UTC()
	event := &domain.Event{
		ID:               uuid.NewString(),
		Title:            in.Title,
		Description:      in.Description,
		Category:         in.Category,
		Venue:            in.Venue,
		City:             in.City,
		StartsAt:         in.StartsAt,
		EndsAt:           in.EndsAt,
		UnitPrice:        in.UnitPrice,
		Currency:         currency,
		TotalTickets:     in.TotalTickets,
		AvailableTickets: in.TotalTickets,
		Published:        false,
		OrganizerID:      in.OrganizerID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.events.Create(ctx, event); err != nil {
		s.log.Error().Err(err).Str("title", in.Title).Msg("failed to create event")
		return nil, err
	}

	s.log.Info().Str("event_id", event.ID).Str("organizer_id", in.OrganizerID).Msg("event created")
	return event, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	return s.events.FindByID(ctx, id)
}

// Update mutates event details. Organizers may only touch their own events;
// admins may touch any.
func (s *EventService) Update(ctx context.Context, in ports.UpdateEventInput) (*domain.Event, error) {
	event, err := s.events.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(event, in.ActorRole, in.ActorUserID); err != nil {
		return nil, err
	}

	if in.Title != "" {
		event.Title = in.Title
	}
	if in.Description != "" {
		event.Description = in.Description
	}
	if in.Category != "" {
		event.Category = in.Category
	}
	if in.Venue != "" {
		event.Venue = in.Venue
	}
	if in.City != "" {
		event.City = in.City
	}
	if !in.StartsAt.IsZero() {
		event.StartsAt = in.StartsAt
	}
	if !in.EndsAt.IsZero() {
		event.EndsAt = in.EndsAt
	}
	if in.UnitPrice > 0 {
		event.UnitPrice = in.UnitPrice
	}
	event.UpdatedAt = time.Now().UTC()

	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// SetPublished toggles the event's public visibility.
func (s *EventService) SetPublished(ctx context.Context, id string, published bool, actorRole domain.Role, actorUserID string) error {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(event, actorRole, actorUserID); err != nil {
		return err
	}
	return s.events.SetPublished(ctx, id, published)
}

// List returns a page of events matching filter.
func (s *EventService) List(ctx context.Context, filter ports.ListEventsFilter) (*ports.ListEventsResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	items, total, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.ListEventsResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// LinkArtist adds an artist to the event billing.
func (s *EventService) LinkArtist(ctx context.Context, eventID, artistID, billing string) error {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return err
	}
	if _, err := s.artists.FindByID(ctx, artistID); err != nil {
		return err
	}
	return s.artists.LinkEvent(ctx, &domain.EventArtist{EventID: eventID, ArtistID: artistID, Billing: billing})
}

func (s *EventService) UnlinkArtist(ctx context.Context, eventID, artistID string) error {
	return s.artists.UnlinkEvent(ctx, eventID, artistID)
}

func (s *EventService) authorize(event *domain.Event, role domain.Role, userID string) error {
	if role == domain.RoleAdmin {
		return nil
	}
	if role == domain.RoleOrganizer && event.OrganizerID == userID {
		return nil
	}
	return domain.ErrForbidden
}
