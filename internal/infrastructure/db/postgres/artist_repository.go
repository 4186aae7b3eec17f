package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/keralahub/culturalhub/internal/core/domain"
)

// ArtistRepository implements ports.ArtistRepository against artists and
// the event_artists link table.
type ArtistRepository struct {
	db *sql.DB
}

func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

func (r *ArtistRepository) Create(ctx context.Context, a *domain.Artist) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO artists (id, name, art_form, bio, photo_url, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Name, a.ArtForm, a.Bio, a.PhotoURL, a.UserID, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert artist: %w", err)
	}
	return nil
}

func (r *ArtistRepository) FindByID(ctx context.Context, id string) (*domain.Artist, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, art_form, bio, photo_url, user_id, created_at
		 FROM artists WHERE id = $1`, id)

	var a domain.Artist
	if err := row.Scan(&a.ID, &a.Name, &a.ArtForm, &a.Bio, &a.PhotoURL, &a.UserID, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrArtistNotFound
		}
		return nil, fmt.Errorf("find artist: %w", err)
	}
	return &a, nil
}

func (r *ArtistRepository) List(ctx context.Context, artForm string) ([]*domain.Artist, error) {
	query := `SELECT id, name, art_form, bio, photo_url, user_id, created_at FROM artists`
	var args []any
	if artForm != "" {
		query += ` WHERE art_form = $1`
		args = append(args, artForm)
	}
	query += ` ORDER BY name ASC`

	return r.queryArtists(ctx, query, args...)
}

func (r *ArtistRepository) LinkEvent(ctx context.Context, link *domain.EventArtist) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_artists (event_id, artist_id, billing)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (event_id, artist_id) DO UPDATE SET billing = EXCLUDED.billing`,
		link.EventID, link.ArtistID, link.Billing,
	)
	if err != nil {
		return fmt.Errorf("link artist: %w", err)
	}
	return nil
}

func (r *ArtistRepository) UnlinkEvent(ctx context.Context, eventID, artistID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM event_artists WHERE event_id = $1 AND artist_id = $2`,
		eventID, artistID,
	)
	if err != nil {
		return fmt.Errorf("unlink artist: %w", err)
	}
	return nil
}

func (r *ArtistRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Artist, error) {
	return r.queryArtists(ctx,
		`SELECT a.id, a.name, a.art_form, a.bio, a.photo_url, a.user_id, a.created_at
		 FROM artists a JOIN event_artists ea ON ea.artist_id = a.id
		 WHERE ea.event_id = $1 ORDER BY a.name ASC`, eventID)
}

func (r *ArtistRepository) queryArtists(ctx context.Context, query string, args ...any) ([]*domain.Artist, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	defer rows.Close()

	var items []*domain.Artist
	for rows.Next() {
		var a domain.Artist
		if err := rows.Scan(&a.ID, &a.Name, &a.ArtForm, &a.Bio, &a.PhotoURL, &a.UserID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}
