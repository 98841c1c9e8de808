// Package postgres implements the domain repositories on PostgreSQL via
// pgx. The pool is the process-wide shared resource; every request-scoped
// read and write goes through it independently, with no cross-request
// transaction. Counter bumps rely on single-statement UPDATE … RETURNING
// for atomicity.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildercircle/server/internal/config"
)

const (
	defaultConnectTimeout  = 10 * time.Second
	defaultMaxConnLifetime = time.Hour
)

// poolConfig derives the pgx pool settings from the database section of the
// service configuration.
func poolConfig(dbCfg config.DatabaseConfig) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dbCfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if dbCfg.MaxConnections > 0 {
		cfg.MaxConns = int32(dbCfg.MaxConnections)
	}
	if dbCfg.MinIdle > 0 {
		cfg.MinIdleConns = int32(dbCfg.MinIdle)
	}
	cfg.MaxConnLifetime = defaultMaxConnLifetime
	return cfg, nil
}

// NewPool establishes the shared connection pool, sized from the database
// settings, and verifies connectivity with a ping before returning.
func NewPool(ctx context.Context, dbCfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(dbCfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Store bundles all entity repositories over one pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres store: pool is nil")
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Admins() *AdminRepository          { return &AdminRepository{pool: s.pool} }
func (s *Store) Events() *EventRepository          { return &EventRepository{pool: s.pool} }
func (s *Store) Creators() *CreatorRepository      { return &CreatorRepository{pool: s.pool} }
func (s *Store) Projects() *ProjectRepository      { return &ProjectRepository{pool: s.pool} }
func (s *Store) Resources() *ResourceRepository    { return &ResourceRepository{pool: s.pool} }
func (s *Store) Blogs() *BlogRepository            { return &BlogRepository{pool: s.pool} }
func (s *Store) Showcase() *ShowcaseRepository     { return &ShowcaseRepository{pool: s.pool} }
func (s *Store) Contact() *ContactRepository       { return &ContactRepository{pool: s.pool} }
func (s *Store) Newsletter() *NewsletterRepository { return &NewsletterRepository{pool: s.pool} }

// Ping reports whether the database is reachable, for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
