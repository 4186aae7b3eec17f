package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/rs/zerolog"

	"github.com/keralahub/culturalhub/internal/core/domain"
	"github.com/keralahub/culturalhub/internal/core/ports"
)

// ProfileService resolves and mutates user profiles.
type ProfileService struct {
	repo    ports.ProfileRepository
	objects ports.ObjectStore
	log     zerolog.Logger
}

func NewProfileService(repo ports.ProfileRepository, objects ports.ObjectStore, log zerolog.Logger) *ProfileService {
	return &ProfileService{repo: repo, objects: objects, log: log}
}

// Fetch resolves the profile for a user id. A missing row is the expected
// "no profile yet" state for freshly registered users and resolves to
// (nil, nil). Any other error is logged and returned so the caller can hold
// on to a stale-but-available profile instead of failing hard.
func (s *ProfileService) Fetch(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, nil
		}
		s.log.Error().Err(err).Str("user_id", userID).Msg("profile fetch failed")
		return nil, err
	}
	return profile, nil
}

// Update mutates the profile in place. The session is never touched here.
func (s *ProfileService) Update(ctx context.Context, in ports.UpdateProfileInput) (*domain.UserProfile, error) {
	profile, err := s.repo.FindByUserID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.DisplayName != "" {
		profile.DisplayName = in.DisplayName
	}
	profile.Phone = in.Phone
	profile.Bio = in.Bio
	profile.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}

// SetAvatar uploads the image under a per-user key (overwriting any previous
// avatar) and records the public URL on the profile.
func (s *ProfileService) SetAvatar(ctx context.Context, userID, filename, contentType string, data []byte) (string, error) {
	key := fmt.Sprintf("avatars/%s%s", userID, path.Ext(filename))
	if err := s.objects.Upload(ctx, key, contentType, data); err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	url := s.objects.PublicURL(key)
	if err := s.repo.SetAvatarURL(ctx, userID, url); err != nil {
		return "", fmt.Errorf("store avatar url: %w", err)
	}

	s.log.Info().Str("user_id", userID).Str("key", key).Msg("avatar updated")
	return url, nil
}
