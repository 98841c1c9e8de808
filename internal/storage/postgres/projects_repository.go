package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/domain/projects"
)

var _ projects.Repository = (*ProjectRepository)(nil)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

const projectColumns = `id, slug, title, description, category, status, repo_url, demo_url,
       image_url, tags, created_at, updated_at`

func (r *ProjectRepository) List(ctx context.Context, filters projects.Filters, params pagination.Params) ([]projects.Project, int64, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+projectColumns+`, count(*) OVER() AS total
  FROM builder_projects
 WHERE ($1 = '' OR category = $1)
   AND ($2 = '' OR status = $2)
   AND ($3 = '' OR title ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')
 ORDER BY created_at DESC
 LIMIT $4 OFFSET $5
`, filters.Category, filters.Status, filters.Query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var (
		out   []projects.Project
		total int64
	)
	for rows.Next() {
		var p projects.Project
		if err := rows.Scan(
			&p.ID, &p.Slug, &p.Title, &p.Description, &p.Category, &p.Status,
			&p.RepoURL, &p.DemoURL, &p.ImageURL, &p.Tags,
			&p.CreatedAt, &p.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	return out, total, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*projects.Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM builder_projects WHERE id = $1`, id)
	return scanProject(row)
}

func (r *ProjectRepository) GetBySlug(ctx context.Context, slug string) (*projects.Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM builder_projects WHERE slug = $1`, slug)
	return scanProject(row)
}

func (r *ProjectRepository) Create(ctx context.Context, project *projects.Project) error {
	row := r.pool.QueryRow(ctx, `
INSERT INTO builder_projects (id, slug, title, description, category, status, repo_url, demo_url, image_url, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING created_at, updated_at
`, project.ID, project.Slug, project.Title, project.Description, project.Category, project.Status,
		project.RepoURL, project.DemoURL, project.ImageURL, project.Tags)
	if err := row.Scan(&project.CreatedAt, &project.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create project: slug %q: %w", project.Slug, projects.ErrSlugTaken)
		}
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, params projects.UpdateParams, newSlug string) (*projects.Project, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE builder_projects
   SET slug        = COALESCE(NULLIF($2, ''), slug),
       title       = COALESCE($3, title),
       description = COALESCE($4, description),
       category    = COALESCE($5, category),
       status      = COALESCE($6, status),
       repo_url    = COALESCE($7, repo_url),
       demo_url    = COALESCE($8, demo_url),
       image_url   = COALESCE($9, image_url),
       tags        = COALESCE($10, tags),
       updated_at  = now()
 WHERE id = $1
RETURNING `+projectColumns+`
`, id, newSlug, params.Title, params.Description, params.Category, params.Status,
		params.RepoURL, params.DemoURL, params.ImageURL, params.Tags)
	return scanProject(row)
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM builder_projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return projects.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM builder_projects WHERE slug = $1 AND ($2 = '' OR id <> $2))
`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check project slug: %w", err)
	}
	return exists, nil
}

func scanProject(row pgx.Row) (*projects.Project, error) {
	var p projects.Project
	err := row.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Description, &p.Category, &p.Status,
		&p.RepoURL, &p.DemoURL, &p.ImageURL, &p.Tags,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, projects.ErrNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return &p, nil
}
