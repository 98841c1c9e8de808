package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/domain/creators"
)

var _ creators.Repository = (*CreatorRepository)(nil)

type CreatorRepository struct {
	pool *pgxpool.Pool
}

func NewCreatorRepository(pool *pgxpool.Pool) *CreatorRepository {
	return &CreatorRepository{pool: pool}
}

const creatorColumns = `id, slug, name, bio, category, avatar_url, website_url, twitter_url,
       github_url, tags, featured, created_at, updated_at`

func (r *CreatorRepository) List(ctx context.Context, filters creators.Filters, params pagination.Params) ([]creators.Creator, int64, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+creatorColumns+`, count(*) OVER() AS total
  FROM creators
 WHERE ($1 = '' OR category = $1)
   AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR bio ILIKE '%' || $2 || '%')
   AND ($3::boolean IS NULL OR featured = $3)
 ORDER BY featured DESC, created_at DESC
 LIMIT $4 OFFSET $5
`, filters.Category, filters.Query, filters.Featured, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list creators: %w", err)
	}
	defer rows.Close()

	var (
		out   []creators.Creator
		total int64
	)
	for rows.Next() {
		var c creators.Creator
		if err := rows.Scan(
			&c.ID, &c.Slug, &c.Name, &c.Bio, &c.Category, &c.AvatarURL,
			&c.Website, &c.Twitter, &c.Github, &c.Tags, &c.Featured,
			&c.CreatedAt, &c.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan creator: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list creators: %w", err)
	}
	return out, total, nil
}

func (r *CreatorRepository) GetByID(ctx context.Context, id string) (*creators.Creator, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+creatorColumns+` FROM creators WHERE id = $1`, id)
	return scanCreator(row)
}

func (r *CreatorRepository) GetBySlug(ctx context.Context, slug string) (*creators.Creator, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+creatorColumns+` FROM creators WHERE slug = $1`, slug)
	return scanCreator(row)
}

func (r *CreatorRepository) Create(ctx context.Context, creator *creators.Creator) error {
	row := r.pool.QueryRow(ctx, `
INSERT INTO creators (id, slug, name, bio, category, avatar_url, website_url, twitter_url, github_url, tags, featured)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING created_at, updated_at
`, creator.ID, creator.Slug, creator.Name, creator.Bio, creator.Category, creator.AvatarURL,
		creator.Website, creator.Twitter, creator.Github, creator.Tags, creator.Featured)
	if err := row.Scan(&creator.CreatedAt, &creator.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create creator: slug %q: %w", creator.Slug, creators.ErrSlugTaken)
		}
		return fmt.Errorf("create creator: %w", err)
	}
	return nil
}

func (r *CreatorRepository) Update(ctx context.Context, id string, params creators.UpdateParams, newSlug string) (*creators.Creator, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE creators
   SET slug        = COALESCE(NULLIF($2, ''), slug),
       name        = COALESCE($3, name),
       bio         = COALESCE($4, bio),
       category    = COALESCE($5, category),
       avatar_url  = COALESCE($6, avatar_url),
       website_url = COALESCE($7, website_url),
       twitter_url = COALESCE($8, twitter_url),
       github_url  = COALESCE($9, github_url),
       tags        = COALESCE($10, tags),
       featured    = COALESCE($11, featured),
       updated_at  = now()
 WHERE id = $1
RETURNING `+creatorColumns+`
`, id, newSlug, params.Name, params.Bio, params.Category, params.AvatarURL,
		params.Website, params.Twitter, params.Github, params.Tags, params.Featured)
	return scanCreator(row)
}

func (r *CreatorRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM creators WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete creator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return creators.ErrNotFound
	}
	return nil
}

func (r *CreatorRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM creators WHERE slug = $1 AND ($2 = '' OR id <> $2))
`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check creator slug: %w", err)
	}
	return exists, nil
}

func scanCreator(row pgx.Row) (*creators.Creator, error) {
	var c creators.Creator
	err := row.Scan(
		&c.ID, &c.Slug, &c.Name, &c.Bio, &c.Category, &c.AvatarURL,
		&c.Website, &c.Twitter, &c.Github, &c.Tags, &c.Featured,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, creators.ErrNotFound
		}
		return nil, fmt.Errorf("scan creator: %w", err)
	}
	return &c, nil
}
