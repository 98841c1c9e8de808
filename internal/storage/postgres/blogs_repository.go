package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/domain/blogs"
)

var _ blogs.Repository = (*BlogRepository)(nil)

type BlogRepository struct {
	pool *pgxpool.Pool
}

func NewBlogRepository(pool *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{pool: pool}
}

const blogColumns = `id, slug, title, excerpt, content, category, author, cover_image_url,
       tags, published, featured, views, likes, bookmarks, created_at, updated_at`

// blogOrder maps a list mode to its ORDER BY clause. Values are fixed
// strings, never user input.
func blogOrder(mode string) string {
	switch mode {
	case blogs.ModePopular:
		return `views DESC, created_at DESC`
	case blogs.ModeTrending:
		return `likes DESC, created_at DESC`
	default:
		return `created_at DESC`
	}
}

func (r *BlogRepository) List(ctx context.Context, filters blogs.Filters, params pagination.Params) ([]blogs.Blog, int64, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+blogColumns+`, count(*) OVER() AS total
  FROM blogs
 WHERE (NOT $1 OR published)
   AND ($2 = '' OR category = $2)
   AND ($3 = '' OR $3 = ANY(tags))
   AND ($4 = '' OR title ILIKE '%' || $4 || '%' OR excerpt ILIKE '%' || $4 || '%' OR content ILIKE '%' || $4 || '%')
   AND ($5::boolean IS NULL OR featured = $5)
 ORDER BY `+blogOrder(filters.Mode)+`
 LIMIT $6 OFFSET $7
`, filters.PublishedOnly, filters.Category, filters.Tag, filters.Query, filters.Featured,
		params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()
	return collectBlogs(rows)
}

func (r *BlogRepository) GetByID(ctx context.Context, id string) (*blogs.Blog, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+blogColumns+` FROM blogs WHERE id = $1`, id)
	return scanBlog(row)
}

func (r *BlogRepository) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*blogs.Blog, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+blogColumns+` FROM blogs WHERE slug = $1 AND (NOT $2 OR published)
`, slug, publishedOnly)
	return scanBlog(row)
}

func (r *BlogRepository) ListFeatured(ctx context.Context, limit int) ([]blogs.Blog, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+blogColumns+`, count(*) OVER() AS total
  FROM blogs
 WHERE published AND featured
 ORDER BY created_at DESC
 LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list featured blogs: %w", err)
	}
	defer rows.Close()
	out, _, err := collectBlogs(rows)
	return out, err
}

// ListRelated finds published posts sharing the category or any tag,
// excluding the post itself, newest first.
func (r *BlogRepository) ListRelated(ctx context.Context, id, category string, tags []string, limit int) ([]blogs.Blog, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+blogColumns+`, count(*) OVER() AS total
  FROM blogs
 WHERE published
   AND id <> $1
   AND (category = $2 OR tags && $3)
 ORDER BY created_at DESC
 LIMIT $4
`, id, category, tags, limit)
	if err != nil {
		return nil, fmt.Errorf("list related blogs: %w", err)
	}
	defer rows.Close()
	out, _, err := collectBlogs(rows)
	return out, err
}

func (r *BlogRepository) Create(ctx context.Context, blog *blogs.Blog) error {
	row := r.pool.QueryRow(ctx, `
INSERT INTO blogs (id, slug, title, excerpt, content, category, author, cover_image_url, tags, published, featured)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING created_at, updated_at
`, blog.ID, blog.Slug, blog.Title, blog.Excerpt, blog.Content, blog.Category, blog.Author,
		blog.CoverImageURL, blog.Tags, blog.Published, blog.Featured)
	if err := row.Scan(&blog.CreatedAt, &blog.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create blog: slug %q: %w", blog.Slug, blogs.ErrSlugTaken)
		}
		return fmt.Errorf("create blog: %w", err)
	}
	return nil
}

func (r *BlogRepository) Update(ctx context.Context, id string, params blogs.UpdateParams, newSlug string) (*blogs.Blog, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE blogs
   SET slug            = COALESCE(NULLIF($2, ''), slug),
       title           = COALESCE($3, title),
       excerpt         = COALESCE($4, excerpt),
       content         = COALESCE($5, content),
       category        = COALESCE($6, category),
       author          = COALESCE($7, author),
       cover_image_url = COALESCE($8, cover_image_url),
       tags            = COALESCE($9, tags),
       published       = COALESCE($10, published),
       featured        = COALESCE($11, featured),
       updated_at      = now()
 WHERE id = $1
RETURNING `+blogColumns+`
`, id, newSlug, params.Title, params.Excerpt, params.Content, params.Category, params.Author,
		params.CoverImageURL, params.Tags, params.Published, params.Featured)
	return scanBlog(row)
}

func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return blogs.ErrNotFound
	}
	return nil
}

func (r *BlogRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM blogs WHERE slug = $1 AND ($2 = '' OR id <> $2))
`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check blog slug: %w", err)
	}
	return exists, nil
}

// CountByCategory aggregates published posts per category, largest first.
func (r *BlogRepository) CountByCategory(ctx context.Context) ([]blogs.CategoryCount, error) {
	rows, err := r.pool.Query(ctx, `
SELECT category, count(*)
  FROM blogs
 WHERE published
 GROUP BY category
 ORDER BY count(*) DESC, category
`)
	if err != nil {
		return nil, fmt.Errorf("count blogs by category: %w", err)
	}
	defer rows.Close()

	var out []blogs.CategoryCount
	for rows.Next() {
		var c blogs.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count blogs by category: %w", err)
	}
	return out, nil
}

// TrendingTags unnests tags over published posts and returns the top
// occurrences.
func (r *BlogRepository) TrendingTags(ctx context.Context, limit int) ([]blogs.TagCount, error) {
	rows, err := r.pool.Query(ctx, `
SELECT tag, count(*)
  FROM blogs, unnest(tags) AS tag
 WHERE published
 GROUP BY tag
 ORDER BY count(*) DESC, tag
 LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("trending blog tags: %w", err)
	}
	defer rows.Close()

	var out []blogs.TagCount
	for rows.Next() {
		var t blogs.TagCount
		if err := rows.Scan(&t.Tag, &t.Count); err != nil {
			return nil, fmt.Errorf("scan tag count: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("trending blog tags: %w", err)
	}
	return out, nil
}

func (r *BlogRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE blogs SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment blog views: %w", err)
	}
	return nil
}

func (r *BlogRepository) IncrementLikes(ctx context.Context, id string) (int64, error) {
	return r.incrementCounter(ctx, id, `UPDATE blogs SET likes = likes + 1 WHERE id = $1 RETURNING likes`)
}

func (r *BlogRepository) IncrementBookmarks(ctx context.Context, id string) (int64, error) {
	return r.incrementCounter(ctx, id, `UPDATE blogs SET bookmarks = bookmarks + 1 WHERE id = $1 RETURNING bookmarks`)
}

func (r *BlogRepository) incrementCounter(ctx context.Context, id, query string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, query, id).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, blogs.ErrNotFound
		}
		return 0, fmt.Errorf("increment blog counter: %w", err)
	}
	return n, nil
}

func collectBlogs(rows pgx.Rows) ([]blogs.Blog, int64, error) {
	var (
		out   []blogs.Blog
		total int64
	)
	for rows.Next() {
		var b blogs.Blog
		if err := rows.Scan(
			&b.ID, &b.Slug, &b.Title, &b.Excerpt, &b.Content, &b.Category, &b.Author,
			&b.CoverImageURL, &b.Tags, &b.Published, &b.Featured,
			&b.Stats.Views, &b.Stats.Likes, &b.Stats.Bookmarks,
			&b.CreatedAt, &b.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan blog: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("collect blogs: %w", err)
	}
	return out, total, nil
}

func scanBlog(row pgx.Row) (*blogs.Blog, error) {
	var b blogs.Blog
	err := row.Scan(
		&b.ID, &b.Slug, &b.Title, &b.Excerpt, &b.Content, &b.Category, &b.Author,
		&b.CoverImageURL, &b.Tags, &b.Published, &b.Featured,
		&b.Stats.Views, &b.Stats.Likes, &b.Stats.Bookmarks,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blogs.ErrNotFound
		}
		return nil, fmt.Errorf("scan blog: %w", err)
	}
	return &b, nil
}
