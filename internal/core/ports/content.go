package ports

import (
	"context"

	"github.com/keralahub/culturalhub/internal/core/domain"
)

// ArtistRepository persists artist profiles and event links.
type ArtistRepository interface {
	Create(ctx context.Context, a *domain.Artist) error
	// FindByID returns domain.ErrArtistNotFound when no row exists.
	FindByID(ctx context.Context, id string) (*domain.Artist, error)
	List(ctx context.Context, artForm string) ([]*domain.Artist, error)
	LinkEvent(ctx context.Context, link *domain.EventArtist) error
	UnlinkEvent(ctx context.Context, eventID, artistID string) error
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Artist, error)
}

// ContentRepository persists editorial cultural content.
type ContentRepository interface {
	// FindBySlug returns domain.ErrContentNotFound when no row exists.
	FindBySlug(ctx context.Context, slug string) (*domain.CulturalContent, error)
	ListPublished(ctx context.Context, category string) ([]*domain.CulturalContent, error)
}

// ArtistService exposes artist read paths and event billing.
type ArtistService interface {
	Get(ctx context.Context, id string) (*domain.Artist, error)
	List(ctx context.Context, artForm string) ([]*domain.Artist, error)
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Artist, error)
}

// ContentService exposes the editorial read paths.
type ContentService interface {
	Get(ctx context.Context, slug string) (*domain.CulturalContent, error)
	List(ctx context.Context, category string) ([]*domain.CulturalContent, error)
}
