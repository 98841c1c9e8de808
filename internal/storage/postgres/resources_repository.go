package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/domain/resources"
)

var _ resources.Repository = (*ResourceRepository)(nil)

type ResourceRepository struct {
	pool *pgxpool.Pool
}

func NewResourceRepository(pool *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

const resourceColumns = `id, slug, title, description, type, level, url, image_url, author,
       tags, views, downloads, created_at, updated_at`

func (r *ResourceRepository) List(ctx context.Context, filters resources.Filters, params pagination.Params) ([]resources.Resource, int64, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+resourceColumns+`, count(*) OVER() AS total
  FROM resources
 WHERE ($1 = '' OR type = $1)
   AND ($2 = '' OR level = $2)
   AND ($3 = '' OR $3 = ANY(tags))
   AND ($4 = '' OR title ILIKE '%' || $4 || '%' OR description ILIKE '%' || $4 || '%')
 ORDER BY created_at DESC
 LIMIT $5 OFFSET $6
`, filters.Type, filters.Level, filters.Tag, filters.Query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var (
		out   []resources.Resource
		total int64
	)
	for rows.Next() {
		var res resources.Resource
		if err := rows.Scan(
			&res.ID, &res.Slug, &res.Title, &res.Description, &res.Type, &res.Level,
			&res.URL, &res.ImageURL, &res.Author, &res.Tags,
			&res.Stats.Views, &res.Stats.Downloads,
			&res.CreatedAt, &res.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan resource: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list resources: %w", err)
	}
	return out, total, nil
}

func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*resources.Resource, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id)
	return scanResource(row)
}

func (r *ResourceRepository) GetBySlug(ctx context.Context, slug string) (*resources.Resource, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE slug = $1`, slug)
	return scanResource(row)
}

func (r *ResourceRepository) Create(ctx context.Context, resource *resources.Resource) error {
	row := r.pool.QueryRow(ctx, `
INSERT INTO resources (id, slug, title, description, type, level, url, image_url, author, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING created_at, updated_at
`, resource.ID, resource.Slug, resource.Title, resource.Description, resource.Type, resource.Level,
		resource.URL, resource.ImageURL, resource.Author, resource.Tags)
	if err := row.Scan(&resource.CreatedAt, &resource.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create resource: slug %q: %w", resource.Slug, resources.ErrSlugTaken)
		}
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

func (r *ResourceRepository) Update(ctx context.Context, id string, params resources.UpdateParams, newSlug string) (*resources.Resource, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE resources
   SET slug        = COALESCE(NULLIF($2, ''), slug),
       title       = COALESCE($3, title),
       description = COALESCE($4, description),
       type        = COALESCE($5, type),
       level       = COALESCE($6, level),
       url         = COALESCE($7, url),
       image_url   = COALESCE($8, image_url),
       author      = COALESCE($9, author),
       tags        = COALESCE($10, tags),
       updated_at  = now()
 WHERE id = $1
RETURNING `+resourceColumns+`
`, id, newSlug, params.Title, params.Description, params.Type, params.Level,
		params.URL, params.ImageURL, params.Author, params.Tags)
	return scanResource(row)
}

func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return resources.ErrNotFound
	}
	return nil
}

func (r *ResourceRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM resources WHERE slug = $1 AND ($2 = '' OR id <> $2))
`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check resource slug: %w", err)
	}
	return exists, nil
}

func (r *ResourceRepository) IncrementViews(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE resources SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment resource views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return resources.ErrNotFound
	}
	return nil
}

// IncrementDownloads bumps the counter in one statement; RETURNING gives
// the post-increment value with no read-modify-write race.
func (r *ResourceRepository) IncrementDownloads(ctx context.Context, id string) (int64, error) {
	var downloads int64
	err := r.pool.QueryRow(ctx, `
UPDATE resources SET downloads = downloads + 1 WHERE id = $1 RETURNING downloads
`, id).Scan(&downloads)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, resources.ErrNotFound
		}
		return 0, fmt.Errorf("increment resource downloads: %w", err)
	}
	return downloads, nil
}

func scanResource(row pgx.Row) (*resources.Resource, error) {
	var res resources.Resource
	err := row.Scan(
		&res.ID, &res.Slug, &res.Title, &res.Description, &res.Type, &res.Level,
		&res.URL, &res.ImageURL, &res.Author, &res.Tags,
		&res.Stats.Views, &res.Stats.Downloads,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, resources.ErrNotFound
		}
		return nil, fmt.Errorf("scan resource: %w", err)
	}
	return &res, nil
}
