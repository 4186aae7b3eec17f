package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/keralahub/culturalhub/internal/core/domain"
)

// ProfileRepository implements ports.ProfileRepository against user_profiles.
// The table carries a unique constraint on user_id: at most one profile per user.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByUserID returns domain.ErrProfileNotFound when no row exists — the
// distinguished "no profile yet" condition, expected for fresh accounts.
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, display_name, role, email, phone, bio, avatar_url, created_at, updated_at
		 FROM user_profiles WHERE user_id = $1`, userID)

	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *domain.UserProfile) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_profiles
		 SET display_name = $2, phone = $3, bio = $4, updated_at = $5
		 WHERE user_id = $1`,
		p.UserID, p.DisplayName, p.Phone, p.Bio, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepository) SetAvatarURL(ctx context.Context, userID, url string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_profiles SET avatar_url = $2, updated_at = $3 WHERE user_id = $1`,
		userID, url, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set avatar url: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.UserProfile, error) {
	var (
		p    domain.UserProfile
		role string
	)
	if err := row.Scan(&p.UserID, &p.DisplayName, &role, &p.Email, &p.Phone, &p.Bio, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	// Role is validated once, at the deserialization boundary.
	p.Role = domain.RoleOrVisitor(role)
	return &p, nil
}
