package ports

import (
	"context"
	"time"

	"github.com/keralahub/culturalhub/internal/core/domain"
)

// ListEventsFilter carries all query parameters for listing events.
type ListEventsFilter struct {
	Category      string    // optional
	City          string    // optional
	Search        string    // optional: partial match on title or venue
	From          time.Time // optional: starts_at >= From
	To            time.Time // optional: starts_at <= To
	OnlyPublished bool      // true for public listings
	OrganizerID   string    // non-empty = scoped to one organizer
	Page          int       // 1-based
	Limit         int       // capped at 100 by the service
}

// EventRepository defines persistence operations for events.
type EventRepository interface {
	Create(ctx context.Context, e *domain.Event) error
	// FindByID returns domain.ErrEventNotFound when no row exists.
	FindByID(ctx context.Context, id string) (*domain.Event, error)
	Update(ctx context.Context, e *domain.Event) error
	SetPublished(ctx context.Context, id string, published bool) error
	List(ctx context.Context, filter ListEventsFilter) ([]*domain.Event, int64, error)
}

// CreateEventInput carries all data needed to create an event.
type CreateEventInput struct {
	Title        string
	Description  string
	Category     string
	Venue        string
	City         string
	StartsAt     time.Time
	EndsAt       time.Time
	UnitPrice    int64
	Currency     string
	TotalTickets int
	OrganizerID  string
}

// UpdateEventInput carries the mutable event fields.
type UpdateEventInput struct {
	ID          string
	Title       string
	Description string
	Category    string
	Venue       string
	City        string
	StartsAt    time.Time
	EndsAt      time.Time
	UnitPrice   int64
	// Actor scoping: organizers may only touch their own events.
	ActorRole   domain.Role
	ActorUserID string
}

// ListEventsResult is returned by List.
type ListEventsResult struct {
	Items      []*domain.Event
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// EventService defines use-case operations for events.
type EventService interface {
	Create(ctx context.Context, in CreateEventInput) (*domain.Event, error)
	Get(ctx context.Context, id string) (*domain.Event, error)
	Update(ctx context.Context, in UpdateEventInput) (*domain.Event, error)
	SetPublished(ctx context.Context, id string, published bool, actorRole domain.Role, actorUserID string) error
	List(ctx context.Context, filter ListEventsFilter) (*ListEventsResult, error)
	LinkArtist(ctx context.Context, eventID, artistID, billing string) error
	UnlinkArtist(ctx context.Context, eventID, artistID string) error
}
