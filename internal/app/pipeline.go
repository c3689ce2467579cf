package app

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/R41CY/movie-scraper/internal/engine"
	"github.com/R41CY/movie-scraper/internal/export"
	"github.com/R41CY/movie-scraper/internal/extract"
	"github.com/R41CY/movie-scraper/internal/hash/sha256"
	"github.com/R41CY/movie-scraper/internal/imdb"
	"github.com/R41CY/movie-scraper/internal/store"
)

// chartBatch tracks one chart's listing entries and the slice of the detail
// run its targets occupy.
type chartBatch struct {
	chart   imdb.Chart
	entries []extract.ListingEntry
	byKey   map[string]extract.ListingEntry
	start   int
	count   int
}

// Run executes one full scrape: listing pass, detail pass, ranking, export
// and delivery. The returned summary is also published on the status server.
func (a *App) Run(ctx context.Context) (export.Summary, error) {
	runID := uuid.New()
	logger := a.Logger.With(zap.String("run_id", runID.String()))
	logger.Info("starting scrape run")

	policy, err := engine.ParseFailurePolicy(a.Cfg.Scraper.FailurePolicy)
	if err != nil {
		return export.Summary{}, err
	}
	limiter, err := engine.NewLimiter(a.Cfg.Scraper.Concurrency)
	if err != nil {
		return export.Summary{}, err
	}
	sched, err := engine.NewChunkScheduler(a.Cfg.Scraper.ChunkSize, a.Cfg.ChunkPause())
	if err != nil {
		return export.Summary{}, err
	}

	metrics := engine.NewMetrics()
	worker := engine.NewWorker(
		a.fetcher,
		a.cache,
		engine.NewRetryPolicy(a.Cfg.Scraper.MaxRetries, a.Cfg.BackoffBase(), a.Cfg.BackoffMax()),
		metrics,
		a.clock,
		a.Cfg.RequestTimeout(),
		logger.Named("worker"),
	)
	orch := engine.NewOrchestrator(worker, limiter, sched, metrics, a.clock, logger.Named("orchestrator"))

	charts := imdb.Charts()
	listingRun := orch.Run(ctx, imdb.ListingTargets(charts))

	hasher := sha256.New()
	batches := make([]chartBatch, 0, len(charts))
	var detailTargets []engine.FetchTarget
	for i, chart := range charts {
		// A canceled listing pass returns fewer results than charts.
		if i >= len(listingRun.Results) {
			break
		}
		result := listingRun.Results[i]
		if !result.OK() {
			logger.Warn("chart listing failed",
				zap.String("chart", chart.Name),
				zap.String("class", string(result.Failure)),
				zap.Error(result.Err),
			)
			continue
		}
		a.archivePage(ctx, logger, runID, hasher, result)

		entries, err := extract.Listing(result.Body, imdb.BaseURL)
		if err != nil {
			logger.Warn("chart extraction failed", zap.String("chart", chart.Name), zap.Error(err))
			continue
		}
		targets := imdb.DetailTargets(entries, a.Cfg.Scraper.DetailLimit, len(detailTargets))
		byKey := make(map[string]extract.ListingEntry, len(entries))
		for _, e := range entries {
			if e.DetailURL != "" {
				byKey[e.DetailURL] = e
			}
		}
		batches = append(batches, chartBatch{
			chart:   chart,
			entries: entries,
			byKey:   byKey,
			start:   len(detailTargets),
			count:   len(targets),
		})
		detailTargets = append(detailTargets, targets...)
	}

	detailRun := orch.Run(ctx, detailTargets)

	sheets := make(map[string][]imdb.Movie, len(batches))
	order := make([]string, 0, len(batches))
	chartSummaries := make([]export.ChartSummary, 0, len(batches))
	var allMovies []imdb.Movie
	for _, batch := range batches {
		// A canceled run returns only the chunks that finished, so the
		// batch window is clamped to what actually resolved.
		start := min(batch.start, len(detailRun.Results))
		end := min(batch.start+batch.count, len(detailRun.Results))
		results := detailRun.Results[start:end]
		movies := a.assembleChart(logger, batch, results, policy)
		for _, r := range results {
			if r.OK() {
				a.archivePage(ctx, logger, runID, hasher, r)
			}
		}
		sheets[batch.chart.Name] = movies
		order = append(order, batch.chart.Name)
		chartSummaries = append(chartSummaries, export.SummarizeChart(batch.chart.Name, movies, len(results)))
		allMovies = append(allMovies, movies...)
	}

	snap := detailRun.Metrics
	summary := export.Summary{
		RunID:      runID.String(),
		StartedAt:  snap.Start,
		FinishedAt: snap.End,
		Complete:   listingRun.Complete && detailRun.Complete,
		Metrics:    snap,
		Charts:     chartSummaries,
	}

	if err := a.deliver(ctx, logger, runID, summary, sheets, order, allMovies); err != nil {
		return summary, err
	}

	a.Status.SetLastRun(summary)
	logger.Info("scrape run finished",
		zap.Bool("complete", summary.Complete),
		zap.Int("movies", len(allMovies)),
		zap.Int64("requests", snap.Requests),
		zap.Int64("cache_hits", snap.CacheHits),
		zap.Int64("retries", snap.Retries),
		zap.Int64("errors", snap.ErrorCount()),
		zap.Duration("elapsed", snap.Elapsed),
	)
	return summary, nil
}

// assembleChart ranks one chart's detail results and merges listing and
// detail fields into exportable movies.
func (a *App) assembleChart(
	logger *zap.Logger,
	batch chartBatch,
	results []engine.FetchResult,
	policy engine.FailurePolicy,
) []imdb.Movie {
	records := engine.Rank(results, policy)
	movies := make([]imdb.Movie, 0, len(records))
	for _, rec := range records {
		entry := batch.byKey[rec.Key]
		var detail extract.Detail
		if !rec.Failed {
			parsed, err := extract.DetailFields(rec.Result.Body)
			if err != nil {
				logger.Warn("detail extraction failed", zap.String("key", rec.Key), zap.Error(err))
			} else {
				detail = parsed
			}
		}
		movies = append(movies, imdb.BuildMovie(batch.chart, rec, entry, detail))
	}
	return movies
}

// archivePage stores one fetched page body under a content-addressed path.
// Archive failures are logged and do not interrupt the run.
func (a *App) archivePage(
	ctx context.Context,
	logger *zap.Logger,
	runID uuid.UUID,
	hasher *sha256.Hasher,
	result engine.FetchResult,
) {
	path := fmt.Sprintf("%s/%s/pages/%s.html", a.Cfg.Storage.Prefix, runID, hasher.Hash(result.Body))
	if _, err := a.blobs.Put(ctx, path, "text/html; charset=utf-8", result.Body); err != nil {
		logger.Warn("page archive failed", zap.String("key", result.Key), zap.Error(err))
	}
}

// deliver writes the export artifacts, persists the run, archives the
// artifacts and publishes the run-completed event.
func (a *App) deliver(
	ctx context.Context,
	logger *zap.Logger,
	runID uuid.UUID,
	summary export.Summary,
	sheets map[string][]imdb.Movie,
	order []string,
	movies []imdb.Movie,
) error {
	if err := export.WriteFile(a.Cfg.Export.ExcelPath, sheets, order); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := export.WriteSummary(a.Cfg.Export.SummaryPath, summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	logger.Info("export artifacts written",
		zap.String("excel", a.Cfg.Export.ExcelPath),
		zap.String("summary", a.Cfg.Export.SummaryPath),
	)

	run := store.Run{
		ID:         runID,
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
		Complete:   summary.Complete,
		Requests:   summary.Metrics.Requests,
		CacheHits:  summary.Metrics.CacheHits,
		Retries:    summary.Metrics.Retries,
		Errors:     summary.Metrics.ErrorCount(),
		Movies:     len(movies),
	}
	if err := a.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if err := a.store.SaveMovies(ctx, runID, movies); err != nil {
		return fmt.Errorf("save movies: %w", err)
	}

	a.archiveArtifact(ctx, logger, runID, "movies.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", a.Cfg.Export.ExcelPath)
	a.archiveArtifact(ctx, logger, runID, "summary.json", "application/json", a.Cfg.Export.SummaryPath)

	if id, err := a.publisher.Publish(ctx, a.Cfg.PubSub.TopicName, summary); err != nil {
		logger.Warn("run event publish failed", zap.Error(err))
	} else if id != "" {
		logger.Info("run event published", zap.String("message_id", id))
	}
	return nil
}

// archiveArtifact uploads one export artifact from disk to the blob store.
func (a *App) archiveArtifact(
	ctx context.Context,
	logger *zap.Logger,
	runID uuid.UUID,
	name, contentType, localPath string,
) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		logger.Warn("artifact read failed", zap.String("path", localPath), zap.Error(err))
		return
	}
	path := fmt.Sprintf("%s/%s/%s", a.Cfg.Storage.Prefix, runID, name)
	if _, err := a.blobs.Put(ctx, path, contentType, data); err != nil {
		logger.Warn("artifact archive failed", zap.String("path", path), zap.Error(err))
	}
}
