package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/keralahub/culturalhub/internal/core/domain"
	"github.com/keralahub/culturalhub/internal/core/ports"
)

const eventColumns = `id, title, description, category, venue, city, starts_at, ends_at,
	unit_price, currency, total_tickets, available_tickets, published, poster_url,
	organizer_id, created_at, updated_at`

// EventRepository implements ports.EventRepository against the events table.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		e.ID, e.Title, e.Description, e.Category, e.Venue, e.City, e.StartsAt, e.EndsAt,
		e.UnitPrice, e.Currency, e.TotalTickets, e.AvailableTickets, e.Published, e.PosterURL,
		e.OrganizerID, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)

	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return e, nil
}

func (r *EventRepository) Update(ctx context.Context, e *domain.Event) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events
		 SET title = $2, description = $3, category = $4, venue = $5, city = $6,
		     starts_at = $7, ends_at = $8, unit_price = $9, poster_url = $10, updated_at = $11
		 WHERE id = $1`,
		e.ID, e.Title, e.Description, e.Category, e.Venue, e.City,
		e.StartsAt, e.EndsAt, e.UnitPrice, e.PosterURL, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) SetPublished(ctx context.Context, id string, published bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET published = $2, updated_at = $3 WHERE id = $1`,
		id, published, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set published: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// List returns a page of events matching filter and the total count.
func (r *EventRepository) List(ctx context.Context, filter ports.ListEventsFilter) ([]*domain.Event, int64, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.OnlyPublished {
		where = append(where, "published = true")
	}
	if filter.Category != "" {
		where = append(where, "category = "+arg(filter.Category))
	}
	if filter.City != "" {
		where = append(where, "city = "+arg(filter.City))
	}
	if filter.OrganizerID != "" {
		where = append(where, "organizer_id = "+arg(filter.OrganizerID))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, "(title ILIKE "+p+" OR venue ILIKE "+p+")")
	}
	if !filter.From.IsZero() {
		where = append(where, "starts_at >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		where = append(where, "starts_at <= "+arg(filter.To))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM events"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	limit := arg(filter.Limit)
	offset := arg((filter.Page - 1) * filter.Limit)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events"+clause+" ORDER BY starts_at ASC LIMIT "+limit+" OFFSET "+offset,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var items []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Category, &e.Venue, &e.City, &e.StartsAt, &e.EndsAt,
		&e.UnitPrice, &e.Currency, &e.TotalTickets, &e.AvailableTickets, &e.Published, &e.PosterURL,
		&e.OrganizerID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
