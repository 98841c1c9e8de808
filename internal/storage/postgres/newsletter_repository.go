package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/domain/newsletter"
)

var _ newsletter.Repository = (*NewsletterRepository)(nil)

type NewsletterRepository struct {
	pool *pgxpool.Pool
}

func NewNewsletterRepository(pool *pgxpool.Pool) *NewsletterRepository {
	return &NewsletterRepository{pool: pool}
}

const subscriberColumns = `id, email, name, source, status, subscribed_at, unsubscribed_at`

func (r *NewsletterRepository) Create(ctx context.Context, sub *newsletter.Subscriber) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO newsletter_subscribers (id, email, name, source, status, subscribed_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, sub.ID, sub.Email, sub.Name, sub.Source, sub.Status, sub.SubscribedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create subscriber: email already present: %w", err)
		}
		return fmt.Errorf("create subscriber: %w", err)
	}
	return nil
}

func (r *NewsletterRepository) GetByEmail(ctx context.Context, email string) (*newsletter.Subscriber, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+subscriberColumns+` FROM newsletter_subscribers WHERE lower(email) = lower($1)
`, email)
	return scanSubscriber(row)
}

func (r *NewsletterRepository) List(ctx context.Context, status string, params pagination.Params) ([]newsletter.Subscriber, int64, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+subscriberColumns+`, count(*) OVER() AS total
  FROM newsletter_subscribers
 WHERE ($1 = '' OR status = $1)
 ORDER BY subscribed_at DESC
 LIMIT $2 OFFSET $3
`, status, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var (
		out   []newsletter.Subscriber
		total int64
	)
	for rows.Next() {
		var s newsletter.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.Name, &s.Source, &s.Status, &s.SubscribedAt, &s.UnsubscribedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan subscriber: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list subscribers: %w", err)
	}
	return out, total, nil
}

// Reactivate flips an unsubscribed record back to active in one statement,
// resetting subscribed_at and clearing unsubscribed_at.
func (r *NewsletterRepository) Reactivate(ctx context.Context, id string, subscribedAt time.Time) (*newsletter.Subscriber, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE newsletter_subscribers
   SET status = $2, subscribed_at = $3, unsubscribed_at = NULL
 WHERE id = $1
RETURNING `+subscriberColumns+`
`, id, newsletter.StatusActive, subscribedAt)
	return scanSubscriber(row)
}

func (r *NewsletterRepository) Unsubscribe(ctx context.Context, email string, at time.Time) (*newsletter.Subscriber, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE newsletter_subscribers
   SET status = $2, unsubscribed_at = $3
 WHERE lower(email) = lower($1)
RETURNING `+subscriberColumns+`
`, email, newsletter.StatusUnsubscribed, at)
	return scanSubscriber(row)
}

func (r *NewsletterRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM newsletter_subscribers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return newsletter.ErrNotFound
	}
	return nil
}

func scanSubscriber(row pgx.Row) (*newsletter.Subscriber, error) {
	var s newsletter.Subscriber
	err := row.Scan(&s.ID, &s.Email, &s.Name, &s.Source, &s.Status, &s.SubscribedAt, &s.UnsubscribedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newsletter.ErrNotFound
		}
		return nil, fmt.Errorf("scan subscriber: %w", err)
	}
	return &s, nil
}
