package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/domain/contact"
)

var _ contact.Repository = (*ContactRepository)(nil)

type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

func (r *ContactRepository) Create(ctx context.Context, sub *contact.Submission) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO contact_submissions (id, name, email, company, subject, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, sub.ID, sub.Name, sub.Email, sub.Company, sub.Subject, sub.Message, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("create contact submission: %w", err)
	}
	return nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (*contact.Submission, error) {
	var sub contact.Submission
	err := r.pool.QueryRow(ctx, `
SELECT id, name, email, company, subject, message, created_at
  FROM contact_submissions
 WHERE id = $1
`, id).Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Company, &sub.Subject, &sub.Message, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contact.ErrNotFound
		}
		return nil, fmt.Errorf("get contact submission: %w", err)
	}
	return &sub, nil
}

func (r *ContactRepository) List(ctx context.Context, params pagination.Params) ([]contact.Submission, int64, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, name, email, company, subject, message, created_at, count(*) OVER() AS total
  FROM contact_submissions
 ORDER BY created_at DESC
 LIMIT $1 OFFSET $2
`, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list contact submissions: %w", err)
	}
	defer rows.Close()

	var (
		out   []contact.Submission
		total int64
	)
	for rows.Next() {
		var sub contact.Submission
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Company, &sub.Subject, &sub.Message, &sub.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan contact submission: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list contact submissions: %w", err)
	}
	return out, total, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contact_submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}
	return nil
}
