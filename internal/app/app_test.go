package app

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/R41CY/movie-scraper/internal/api"
	"github.com/R41CY/movie-scraper/internal/blob"
	"github.com/R41CY/movie-scraper/internal/cache"
	"github.com/R41CY/movie-scraper/internal/clock"
	"github.com/R41CY/movie-scraper/internal/config"
	"github.com/R41CY/movie-scraper/internal/engine"
	"github.com/R41CY/movie-scraper/internal/publish"
	"github.com/R41CY/movie-scraper/internal/store"
)

const chartPage = `<html><body><ul>
<li class="ipc-metadata-list-summary-item">
  <a class="ipc-title-link-wrapper" href="/title/tt0111161/"><h3 class="ipc-title__text">1. The Shawshank Redemption</h3></a>
  <span class="cli-title-metadata-item">1994</span>
  <span class="ipc-rating-star--imdb">9.3</span>
</li>
<li class="ipc-metadata-list-summary-item">
  <a class="ipc-title-link-wrapper" href="/title/tt0068646/"><h3 class="ipc-title__text">2. The Godfather</h3></a>
  <span class="cli-title-metadata-item">1972</span>
  <span class="ipc-rating-star--imdb">9.2</span>
</li>
</ul></body></html>`

const detailPage = `<html><body>
<div class="ipc-chip-list"><a class="ipc-chip" href="/g"><span>Drama</span></a></div>
<a class="ipc-metadata-list-item__list-content-item" href="/name/nm0001104/">Frank Darabont</a>
<div data-testid="title-cast-item"><a data-testid="title-cast-item__actor" href="/name/nm1/">Tim Robbins</a></div>
<span data-testid="plot-xl">Two imprisoned men bond over a number of years.</span>
</body></html>`

// siteFetcher serves canned pages by URL shape.
type siteFetcher struct {
	failDetail string
}

func (f siteFetcher) Fetch(_ context.Context, target engine.FetchTarget) (engine.Response, error) {
	if target.Key == f.failDetail {
		return engine.Response{}, &engine.HTTPError{StatusCode: 404, URL: target.Key}
	}
	if target.Kind == engine.KindListing {
		return engine.Response{StatusCode: 200, Body: []byte(chartPage)}, nil
	}
	return engine.Response{StatusCode: 200, Body: []byte(detailPage)}, nil
}

func newTestApp(t *testing.T, fetcher engine.Fetcher) (*App, *store.Memory, *blob.Memory, *publish.Memory) {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)
	dir := t.TempDir()
	cfg.Scraper.ChunkPauseMs = 0
	cfg.Scraper.MaxRetries = 0
	cfg.Export.ExcelPath = filepath.Join(dir, "movies.xlsx")
	cfg.Export.SummaryPath = filepath.Join(dir, "summary.json")

	runs := store.NewMemory()
	blobs := blob.NewMemory()
	events := publish.NewMemory()
	a := &App{
		Cfg:       cfg,
		Logger:    zap.NewNop(),
		Status:    api.NewServer(zap.NewNop()),
		cache:     cache.NewMemory(time.Minute),
		fetcher:   fetcher,
		store:     runs,
		blobs:     blobs,
		publisher: events,
		clock:     clock.System{},
	}
	return a, runs, blobs, events
}

func TestRunProducesRankedExport(t *testing.T) {
	t.Parallel()

	a, runs, blobs, events := newTestApp(t, siteFetcher{})

	summary, err := a.Run(context.Background())
	require.NoError(t, err)
	require.True(t, summary.Complete)
	require.Len(t, summary.Charts, 2)
	require.Equal(t, 2, summary.Charts[0].Movies)

	saved := runs.Runs()
	require.Len(t, saved, 1)
	require.True(t, saved[0].Complete)
	require.Equal(t, 4, saved[0].Movies)

	movies := runs.Movies(saved[0].ID)
	require.Len(t, movies, 4)
	require.Equal(t, 1, movies[0].Rank)
	require.Equal(t, "The Shawshank Redemption", movies[0].Title)
	require.Equal(t, "Frank Darabont", movies[0].Director)
	require.Equal(t, 2, movies[1].Rank)

	// Listing pages, detail pages and both export artifacts are archived.
	require.GreaterOrEqual(t, blobs.Len(), 4)

	msgs := events.Messages()
	require.Len(t, msgs, 1)

	// Summary is also published to the status server.
	require.NotEmpty(t, summary.RunID)
}

func TestRunDropsFailedDetailsByDefault(t *testing.T) {
	t.Parallel()

	failing := fmt.Sprintf("https://www.imdb.com/title/%s/", "tt0068646")
	a, runs, _, _ := newTestApp(t, siteFetcher{failDetail: failing})

	summary, err := a.Run(context.Background())
	require.NoError(t, err)
	require.True(t, summary.Complete)

	saved := runs.Runs()
	require.Len(t, saved, 1)
	movies := runs.Movies(saved[0].ID)

	// Each chart loses its failed second entry; ranks stay dense.
	require.Len(t, movies, 2)
	for _, m := range movies {
		require.Equal(t, 1, m.Rank)
		require.Equal(t, "The Shawshank Redemption", m.Title)
	}
	require.Equal(t, 1, summary.Charts[0].Movies)
	require.Equal(t, 2, summary.Charts[0].Details)
}

func TestRunCanceledBeforeStartEndsCleanly(t *testing.T) {
	t.Parallel()

	a, runs, _, events := newTestApp(t, siteFetcher{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := a.Run(ctx)
	require.NoError(t, err)
	require.False(t, summary.Complete)
	require.Empty(t, summary.Charts)

	// The truncated run is still persisted and announced.
	saved := runs.Runs()
	require.Len(t, saved, 1)
	require.False(t, saved[0].Complete)
	require.Zero(t, saved[0].Movies)
	require.Len(t, events.Messages(), 1)
}

func TestRunKeepPolicyRetainsFailures(t *testing.T) {
	t.Parallel()

	failing := "https://www.imdb.com/title/tt0068646/"
	a, runs, _, _ := newTestApp(t, siteFetcher{failDetail: failing})
	a.Cfg.Scraper.FailurePolicy = "keep"

	_, err := a.Run(context.Background())
	require.NoError(t, err)

	saved := runs.Runs()
	require.Len(t, saved, 1)
	movies := runs.Movies(saved[0].ID)
	require.Len(t, movies, 4)

	require.False(t, movies[0].Failed)
	require.True(t, movies[1].Failed)
	require.Equal(t, 2, movies[1].Rank)
	require.Equal(t, "The Godfather", movies[1].Title)
	require.Empty(t, movies[1].Director)
}
