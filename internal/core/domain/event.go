package domain

import "time"

// Event is a cultural event listed on the hub.
type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         string    `json:"category"` // e.g. "kathakali", "theyyam", "music"
	Venue            string    `json:"venue"`
	City             string    `json:"city"`
	StartsAt         time.Time `json:"starts_at"`
	EndsAt           time.Time `json:"ends_at"`
	UnitPrice        int64     `json:"unit_price"` // smallest currency unit (paise)
	Currency         string    `json:"currency"`
	TotalTickets     int       `json:"total_tickets"`
	AvailableTickets int       `json:"available_tickets"`
	Published        bool      `json:"published"`
	PosterURL        string    `json:"poster_url,omitempty"`
	OrganizerID      string    `json:"organizer_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Artist is a performer profile, independent of any user account.
type Artist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ArtForm   string    `json:"art_form"`
	Bio       string    `json:"bio,omitempty"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	UserID    string    `json:"user_id,omitempty"` // set when the artist has an account
	CreatedAt time.Time `json:"created_at"`
}

// EventArtist links an artist to an event billing.
type EventArtist struct {
	EventID  string `json:"event_id"`
	ArtistID string `json:"artist_id"`
	Billing  string `json:"billing,omitempty"` // "headline", "supporting"
}

// CulturalContent is an editorial article about an art form or tradition.
type CulturalContent struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Category    string    `json:"category"`
	AuthorID    string    `json:"author_id,omitempty"`
	Published   bool      `json:"published"`
	PublishedAt time.Time `json:"published_at,omitzero"`
	CreatedAt   time.Time `json:"created_at"`
}
