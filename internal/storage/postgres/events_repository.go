package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `id, slug, title, description, category, location, url, image_url,
       start_date, end_date, tags, created_at, updated_at`

// Listings run soonest-first so the next event leads the page; ties fall back
// to the most recently added entry.
const eventListQuery = `
SELECT ` + eventColumns + `, count(*) OVER() AS total
  FROM events
 WHERE ($1 = '' OR category = $1)
   AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
   AND (NOT $3 OR start_date >= now())
 ORDER BY start_date ASC, created_at DESC
 LIMIT $4 OFFSET $5
`

// List applies optional filters in a single query; count(*) OVER() carries
// the total match count on every row so no second count query is needed.
func (r *EventRepository) List(ctx context.Context, filters events.Filters, params pagination.Params) ([]events.Event, int64, error) {
	rows, err := r.pool.Query(ctx, eventListQuery,
		filters.Category, filters.Query, filters.Upcoming, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var (
		out   []events.Event
		total int64
	)
	for rows.Next() {
		var e events.Event
		if err := rows.Scan(
			&e.ID, &e.Slug, &e.Title, &e.Description, &e.Category, &e.Location,
			&e.URL, &e.ImageURL, &e.StartDate, &e.EndDate, &e.Tags,
			&e.CreatedAt, &e.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return out, total, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

func (r *EventRepository) GetBySlug(ctx context.Context, slug string) (*events.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE slug = $1`, slug)
	return scanEvent(row)
}

func (r *EventRepository) Create(ctx context.Context, event *events.Event) error {
	row := r.pool.QueryRow(ctx, `
INSERT INTO events (id, slug, title, description, category, location, url, image_url, start_date, end_date, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING created_at, updated_at
`, event.ID, event.Slug, event.Title, event.Description, event.Category, event.Location,
		event.URL, event.ImageURL, event.StartDate, event.EndDate, event.Tags)
	if err := row.Scan(&event.CreatedAt, &event.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create event: slug %q: %w", event.Slug, events.ErrSlugTaken)
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update merges only the provided fields; nil params keep the stored value
// via COALESCE. An empty newSlug keeps the current slug.
func (r *EventRepository) Update(ctx context.Context, id string, params events.UpdateParams, newSlug string) (*events.Event, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE events
   SET slug        = COALESCE(NULLIF($2, ''), slug),
       title       = COALESCE($3, title),
       description = COALESCE($4, description),
       category    = COALESCE($5, category),
       location    = COALESCE($6, location),
       url         = COALESCE($7, url),
       image_url   = COALESCE($8, image_url),
       start_date  = COALESCE($9, start_date),
       end_date    = COALESCE($10, end_date),
       tags        = COALESCE($11, tags),
       updated_at  = now()
 WHERE id = $1
RETURNING `+eventColumns+`
`, id, newSlug, params.Title, params.Description, params.Category, params.Location,
		params.URL, params.ImageURL, params.StartDate, params.EndDate, params.Tags)
	return scanEvent(row)
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1 AND ($2 = '' OR id <> $2))
`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check event slug: %w", err)
	}
	return exists, nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var e events.Event
	err := row.Scan(
		&e.ID, &e.Slug, &e.Title, &e.Description, &e.Category, &e.Location,
		&e.URL, &e.ImageURL, &e.StartDate, &e.EndDate, &e.Tags,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}
