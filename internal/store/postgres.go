package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/R41CY/movie-scraper/internal/imdb"
)

// PostgresConfig controls the connection pool used for run persistence.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// Postgres writes runs and movie rows into Postgres.
type Postgres struct {
	pool execCloser
}

// NewPostgres connects a pool using the provided config.
func NewPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// NewPostgresWithPool constructs a store from an existing pool (primarily for testing).
func NewPostgresWithPool(pool execCloser) (*Postgres, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Postgres) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// SaveRun inserts one run row.
func (s *Postgres) SaveRun(ctx context.Context, run Run) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("store is not configured")
	}
	query := `
INSERT INTO scrape_runs (
	id,
	started_at,
	finished_at,
	complete,
	requests,
	cache_hits,
	retries,
	errors,
	movies
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9
)`
	args := []any{
		run.ID,
		run.StartedAt,
		run.FinishedAt,
		run.Complete,
		run.Requests,
		run.CacheHits,
		run.Retries,
		run.Errors,
		run.Movies,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// SaveMovies inserts the movie rows for a run, one Exec per row.
func (s *Postgres) SaveMovies(ctx context.Context, runID uuid.UUID, movies []imdb.Movie) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("store is not configured")
	}
	query := `
INSERT INTO scrape_movies (
	run_id,
	chart,
	rank,
	title,
	year,
	rating,
	genres,
	director,
	stars,
	plot,
	url,
	failed
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
)`
	for _, m := range movies {
		args := []any{
			runID,
			m.Chart,
			m.Rank,
			m.Title,
			m.Year,
			m.Rating,
			strings.Join(m.Genres, ","),
			m.Director,
			strings.Join(m.Stars, ","),
			m.Plot,
			m.URL,
			m.Failed,
		}
		if _, err := s.pool.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert movie rank %d: %w", m.Rank, err)
		}
	}
	return nil
}
