// Package store persists scrape runs and their ranked movie rows.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/R41CY/movie-scraper/internal/imdb"
)

// Run is the persisted record of one scrape execution.
type Run struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Complete   bool
	Requests   int64
	CacheHits  int64
	Retries    int64
	Errors     int64
	Movies     int
}

// Store persists runs and their movie rows.
type Store interface {
	SaveRun(ctx context.Context, run Run) error
	SaveMovies(ctx context.Context, runID uuid.UUID, movies []imdb.Movie) error
	Close()
}
