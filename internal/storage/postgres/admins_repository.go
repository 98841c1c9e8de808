package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildercircle/server/internal/domain/admins"
)

var _ admins.Repository = (*AdminRepository)(nil)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

const adminColumns = `id, email, password_hash, name, role, last_login_at, created_at, updated_at`

func (r *AdminRepository) Create(ctx context.Context, admin *admins.Admin) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO admins (id, email, password_hash, name, role)
VALUES ($1, $2, $3, $4, $5)
`, admin.ID, admin.Email, admin.PasswordHash, admin.Name, admin.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return admins.ErrEmailTaken
		}
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (*admins.Admin, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id)
	return scanAdmin(row)
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*admins.Admin, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE lower(email) = lower($1)`, email)
	return scanAdmin(row)
}

func (r *AdminRepository) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE admins SET last_login_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update admin last login: %w", err)
	}
	return nil
}

func (r *AdminRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE admins SET password_hash = $2, updated_at = now() WHERE id = $1
`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return admins.ErrNotFound
	}
	return nil
}

func scanAdmin(row pgx.Row) (*admins.Admin, error) {
	var a admins.Admin
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.Name,
		&a.Role,
		&a.LastLoginAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, admins.ErrNotFound
		}
		return nil, fmt.Errorf("scan admin: %w", err)
	}
	return &a, nil
}
