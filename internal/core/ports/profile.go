package ports

import (
	"context"

	"github.com/keralahub/culturalhub/internal/core/domain"
)

// ProfileRepository persists user profiles (at most one per user id).
// Rows are created together with the credential record; see UserRepository.
type ProfileRepository interface {
	// FindByUserID returns domain.ErrProfileNotFound when no row exists.
	FindByUserID(ctx context.Context, userID string) (*domain.UserProfile, error)
	Update(ctx context.Context, p *domain.UserProfile) error
	SetAvatarURL(ctx context.Context, userID, url string) error
}

// UpdateProfileInput carries the mutable profile fields.
type UpdateProfileInput struct {
	UserID      string
	DisplayName string
	Phone       string
	Bio         string
}

// ProfileService resolves and mutates user profiles.
type ProfileService interface {
	// Fetch resolves (nil, nil) when no profile row exists yet — expected
	// for freshly registered users. Other errors are returned as-is so the
	// caller can keep a stale-but-available profile.
	Fetch(ctx context.Context, userID string) (*domain.UserProfile, error)
	Update(ctx context.Context, in UpdateProfileInput) (*domain.UserProfile, error)
	// SetAvatar uploads the image bytes and records the public URL.
	SetAvatar(ctx context.Context, userID, filename, contentType string, data []byte) (string, error)
}
