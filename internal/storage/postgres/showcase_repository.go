package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/domain/showcase"
)

var _ showcase.Repository = (*ShowcaseRepository)(nil)

type ShowcaseRepository struct {
	pool *pgxpool.Pool
}

func NewShowcaseRepository(pool *pgxpool.Pool) *ShowcaseRepository {
	return &ShowcaseRepository{pool: pool}
}

const showcaseColumns = `id, slug, title, description, category, creator, url, repo_url,
       image_url, tvl_usd, tags, published, featured, stars, likes, created_at, updated_at`

func showcaseOrder(mode string) string {
	switch mode {
	case showcase.ModePopular:
		return `stars DESC, created_at DESC`
	case showcase.ModeTrending:
		return `likes DESC, created_at DESC`
	default:
		return `created_at DESC`
	}
}

func (r *ShowcaseRepository) List(ctx context.Context, filters showcase.Filters, params pagination.Params) ([]showcase.Project, int64, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+showcaseColumns+`, count(*) OVER() AS total
  FROM showcase_projects
 WHERE (NOT $1 OR published)
   AND ($2 = '' OR category = $2)
   AND ($3 = '' OR title ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')
   AND ($4::boolean IS NULL OR featured = $4)
 ORDER BY `+showcaseOrder(filters.Mode)+`
 LIMIT $5 OFFSET $6
`, filters.PublishedOnly, filters.Category, filters.Query, filters.Featured,
		params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list showcase projects: %w", err)
	}
	defer rows.Close()
	return collectShowcase(rows)
}

func (r *ShowcaseRepository) GetByID(ctx context.Context, id string) (*showcase.Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+showcaseColumns+` FROM showcase_projects WHERE id = $1`, id)
	return scanShowcase(row)
}

func (r *ShowcaseRepository) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*showcase.Project, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+showcaseColumns+` FROM showcase_projects WHERE slug = $1 AND (NOT $2 OR published)
`, slug, publishedOnly)
	return scanShowcase(row)
}

func (r *ShowcaseRepository) ListFeatured(ctx context.Context, limit int) ([]showcase.Project, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+showcaseColumns+`, count(*) OVER() AS total
  FROM showcase_projects
 WHERE published AND featured
 ORDER BY stars DESC, created_at DESC
 LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list featured showcase projects: %w", err)
	}
	defer rows.Close()
	out, _, err := collectShowcase(rows)
	return out, err
}

func (r *ShowcaseRepository) Create(ctx context.Context, project *showcase.Project) error {
	row := r.pool.QueryRow(ctx, `
INSERT INTO showcase_projects (id, slug, title, description, category, creator, url, repo_url, image_url, tvl_usd, tags, published, featured)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING created_at, updated_at
`, project.ID, project.Slug, project.Title, project.Description, project.Category, project.Creator,
		project.URL, project.RepoURL, project.ImageURL, project.TVLUSD, project.Tags,
		project.Published, project.Featured)
	if err := row.Scan(&project.CreatedAt, &project.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create showcase project: slug %q: %w", project.Slug, showcase.ErrSlugTaken)
		}
		return fmt.Errorf("create showcase project: %w", err)
	}
	return nil
}

func (r *ShowcaseRepository) Update(ctx context.Context, id string, params showcase.UpdateParams, newSlug string) (*showcase.Project, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE showcase_projects
   SET slug        = COALESCE(NULLIF($2, ''), slug),
       title       = COALESCE($3, title),
       description = COALESCE($4, description),
       category    = COALESCE($5, category),
       creator     = COALESCE($6, creator),
       url         = COALESCE($7, url),
       repo_url    = COALESCE($8, repo_url),
       image_url   = COALESCE($9, image_url),
       tvl_usd     = COALESCE($10, tvl_usd),
       tags        = COALESCE($11, tags),
       published   = COALESCE($12, published),
       featured    = COALESCE($13, featured),
       updated_at  = now()
 WHERE id = $1
RETURNING `+showcaseColumns+`
`, id, newSlug, params.Title, params.Description, params.Category, params.Creator,
		params.URL, params.RepoURL, params.ImageURL, params.TVLUSD, params.Tags,
		params.Published, params.Featured)
	return scanShowcase(row)
}

func (r *ShowcaseRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM showcase_projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete showcase project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return showcase.ErrNotFound
	}
	return nil
}

func (r *ShowcaseRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM showcase_projects WHERE slug = $1 AND ($2 = '' OR id <> $2))
`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check showcase slug: %w", err)
	}
	return exists, nil
}

// PlatformStats aggregates over published projects only.
func (r *ShowcaseRepository) PlatformStats(ctx context.Context) (*showcase.PlatformStats, error) {
	var stats showcase.PlatformStats
	err := r.pool.QueryRow(ctx, `
SELECT count(*),
       count(DISTINCT creator) FILTER (WHERE creator <> ''),
       COALESCE(sum(stars), 0),
       COALESCE(sum(tvl_usd), 0)
  FROM showcase_projects
 WHERE published
`).Scan(&stats.Projects, &stats.Creators, &stats.TotalStars, &stats.TotalTVL)
	if err != nil {
		return nil, fmt.Errorf("showcase platform stats: %w", err)
	}
	return &stats, nil
}

func (r *ShowcaseRepository) IncrementStars(ctx context.Context, id string) (int64, error) {
	return r.incrementCounter(ctx, id, `UPDATE showcase_projects SET stars = stars + 1 WHERE id = $1 RETURNING stars`)
}

func (r *ShowcaseRepository) IncrementLikes(ctx context.Context, id string) (int64, error) {
	return r.incrementCounter(ctx, id, `UPDATE showcase_projects SET likes = likes + 1 WHERE id = $1 RETURNING likes`)
}

func (r *ShowcaseRepository) incrementCounter(ctx context.Context, id, query string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, query, id).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, showcase.ErrNotFound
		}
		return 0, fmt.Errorf("increment showcase counter: %w", err)
	}
	return n, nil
}

func collectShowcase(rows pgx.Rows) ([]showcase.Project, int64, error) {
	var (
		out   []showcase.Project
		total int64
	)
	for rows.Next() {
		var p showcase.Project
		if err := rows.Scan(
			&p.ID, &p.Slug, &p.Title, &p.Description, &p.Category, &p.Creator,
			&p.URL, &p.RepoURL, &p.ImageURL, &p.TVLUSD, &p.Tags,
			&p.Published, &p.Featured, &p.Stats.Stars, &p.Stats.Likes,
			&p.CreatedAt, &p.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan showcase project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("collect showcase projects: %w", err)
	}
	return out, total, nil
}

func scanShowcase(row pgx.Row) (*showcase.Project, error) {
	var p showcase.Project
	err := row.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Description, &p.Category, &p.Creator,
		&p.URL, &p.RepoURL, &p.ImageURL, &p.TVLUSD, &p.Tags,
		&p.Published, &p.Featured, &p.Stats.Stars, &p.Stats.Likes,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, showcase.ErrNotFound
		}
		return nil, fmt.Errorf("scan showcase project: %w", err)
	}
	return &p, nil
}
