package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/R41CY/movie-scraper/internal/imdb"
)

// Noop discards everything. The default when no database is configured.
type Noop struct{}

func (Noop) SaveRun(context.Context, Run) error { return nil }

func (Noop) SaveMovies(context.Context, uuid.UUID, []imdb.Movie) error { return nil }

func (Noop) Close() {}
