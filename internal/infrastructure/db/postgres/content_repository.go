package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keralahub/culturalhub/internal/core/domain"
)

const contentColumns = `id, slug, title, body, category, author_id, published, published_at, created_at`

// ContentRepository implements ports.ContentRepository against cultural_content.
type ContentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) FindBySlug(ctx context.Context, slug string) (*domain.CulturalContent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM cultural_content WHERE slug = $1 AND published = true`, slug)

	c, err := scanContent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrContentNotFound
		}
		return nil, fmt.Errorf("find content: %w", err)
	}
	return c, nil
}

func (r *ContentRepository) ListPublished(ctx context.Context, category string) ([]*domain.CulturalContent, error) {
	query := `SELECT ` + contentColumns + ` FROM cultural_content WHERE published = true`
	var args []any
	if category != "" {
		query += ` AND category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY published_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var items []*domain.CulturalContent
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func scanContent(row rowScanner) (*domain.CulturalContent, error) {
	var (
		c           domain.CulturalContent
		publishedAt sql.NullTime
	)
	err := row.Scan(&c.ID, &c.Slug, &c.Title, &c.Body, &c.Category, &c.AuthorID, &c.Published, &publishedAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		c.PublishedAt = publishedAt.Time
	}
	return &c, nil
}
