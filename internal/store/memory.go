package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/R41CY/movie-scraper/internal/imdb"
)

// Memory keeps runs and rows in process memory. Used in tests and when no
// database is configured but persistence output is still wanted.
type Memory struct {
	mu     sync.Mutex
	runs   []Run
	movies map[uuid.UUID][]imdb.Movie
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{movies: make(map[uuid.UUID][]imdb.Movie)}
}

func (m *Memory) SaveRun(_ context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *Memory) SaveMovies(_ context.Context, runID uuid.UUID, movies []imdb.Movie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movies[runID] = append(m.movies[runID], movies...)
	return nil
}

func (m *Memory) Close() {}

// Runs returns a copy of the saved runs.
func (m *Memory) Runs() []Run {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Run(nil), m.runs...)
}

// Movies returns a copy of the rows saved for a run.
func (m *Memory) Movies(runID uuid.UUID) []imdb.Movie {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]imdb.Movie(nil), m.movies[runID]...)
}
