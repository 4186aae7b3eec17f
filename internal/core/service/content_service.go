package service

import (
	"context"

	"github.com/keralahub/culturalhub/internal/core/domain"
	"github.com/keralahub/culturalhub/internal/core/ports"
)

// ArtistService exposes artist read paths.
type ArtistService struct {
	repo ports.ArtistRepository
}

func NewArtistService(repo ports.ArtistRepository) *ArtistService {
	return &ArtistService{repo: repo}
}

func (s *ArtistService) Get(ctx context.Context, id string) (*domain.Artist, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ArtistService) List(ctx context.Context, artForm string) ([]*domain.Artist, error) {
	return s.repo.List(ctx, artForm)
}

func (s *ArtistService) ListByEvent(ctx context.Context, eventID string) ([]*domain.Artist, error) {
	return s.repo.ListByEvent(ctx, eventID)
}

// ContentService exposes the editorial read paths.
type ContentService struct {
	repo ports.ContentRepository
}

func NewContentService(repo ports.ContentRepository) *ContentService {
	return &ContentService{repo: repo}
}

func (s *ContentService) Get(ctx context.Context, slug string) (*domain.CulturalContent, error) {
	return s.repo.FindBySlug(ctx, slug)
}

func (s *ContentService) List(ctx context.Context, category string) ([]*domain.CulturalContent, error) {
	return s.repo.ListPublished(ctx, category)
}
