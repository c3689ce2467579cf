package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/R41CY/movie-scraper/internal/engine"
	"github.com/R41CY/movie-scraper/internal/imdb"
)

// Summary is the machine-readable record of one scrape run.
type Summary struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Complete   bool            `json:"complete"`
	Metrics    engine.Snapshot `json:"metrics"`
	Charts     []ChartSummary  `json:"charts"`
}

// ChartSummary counts the outcome for one chart.
type ChartSummary struct {
	Name    string `json:"name"`
	Movies  int    `json:"movies"`
	Failed  int    `json:"failed"`
	Ranked  int    `json:"ranked"`
	Details int    `json:"details"`
}

// SummarizeChart tallies one chart's exported movies.
func SummarizeChart(name string, movies []imdb.Movie, details int) ChartSummary {
	s := ChartSummary{Name: name, Movies: len(movies), Details: details}
	for _, m := range movies {
		if m.Failed {
			s.Failed++
		} else {
			s.Ranked++
		}
	}
	return s
}

// WriteSummary marshals the summary as indented JSON at path.
func WriteSummary(path string, s Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary %s: %w", path, err)
	}
	return nil
}
