package handler

import (
	"time"

	"github.com/keralahub/culturalhub/internal/core/domain"
)

type createEventRequest struct {
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description"`
	Category     string    `json:"category" validate:"required"`
	Venue        string    `json:"venue" validate:"required"`
	City         string    `json:"city" validate:"required"`
	StartsAt     time.Time `json:"starts_at" validate:"required"`
	EndsAt       time.Time `json:"ends_at" validate:"required"`
	UnitPrice    int64     `json:"unit_price" validate:"gt=0"`
	Currency     string    `json:"currency"`
	TotalTickets int       `json:"total_tickets" validate:"gt=0"`
}

type updateEventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Category    string    `json:"category" validate:"required"`
	Venue       string    `json:"venue" validate:"required"`
	City        string    `json:"city" validate:"required"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
	UnitPrice   int64     `json:"unit_price" validate:"gt=0"`
}

type publishEventRequest struct {
	Published bool `json:"published"`
}

type linkArtistRequest struct {
	ArtistID string `json:"artist_id" validate:"required"`
	Billing  string `json:"billing"`
}

type eventResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Category         string    `json:"category"`
	Venue            string    `json:"venue"`
	City             string    `json:"city"`
	StartsAt         time.Time `json:"starts_at"`
	EndsAt           time.Time `json:"ends_at"`
	UnitPrice        int64     `json:"unit_price"`
	Currency         string    `json:"currency"`
	TotalTickets     int       `json:"total_tickets"`
	AvailableTickets int       `json:"available_tickets"`
	Published        bool      `json:"published"`
	OrganizerID      string    `json:"organizer_id"`
	CreatedAt        time.Time `json:"created_at"`
}

type listEventsResponse struct {
	Items      []eventResponse `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

func toEventResponse(e *domain.Event) eventResponse {
	return eventResponse{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		Category:         e.Category,
		Venue:            e.Venue,
		City:             e.City,
		StartsAt:         e.StartsAt,
		EndsAt:           e.EndsAt,
		UnitPrice:        e.UnitPrice,
		Currency:         e.Currency,
		TotalTickets:     e.TotalTickets,
		AvailableTickets: e.AvailableTickets,
		Published:        e.Published,
		OrganizerID:      e.OrganizerID,
		CreatedAt:        e.CreatedAt,
	}
}
