package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/R41CY/movie-scraper/internal/engine"
	"github.com/R41CY/movie-scraper/internal/imdb"
)

func sampleMovies() []imdb.Movie {
	return []imdb.Movie{
		{
			Rank: 1, Title: "The Shawshank Redemption", Year: "1994", Rating: 9.3,
			Genres: []string{"Drama"}, Director: "Frank Darabont",
			Stars: []string{"Tim Robbins", "Morgan Freeman"},
			Plot:  "Two imprisoned men bond over a number of years.",
			URL:   "https://www.imdb.com/title/tt0111161/", Chart: "Top Movies",
		},
		{
			Rank: 2, Title: "The Godfather", Year: "1972", Rating: 9.2,
			URL: "https://www.imdb.com/title/tt0068646/", Chart: "Top Movies",
		},
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "movies.xlsx")
	sheets := map[string][]imdb.Movie{"Top Movies": sampleMovies()}

	require.NoError(t, WriteFile(path, sheets, []string{"Top Movies"}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Top Movies"}, f.GetSheetList())

	banner, err := f.GetCellValue("Top Movies", "A1")
	require.NoError(t, err)
	require.Equal(t, "Top Movies", banner)

	header, err := f.GetCellValue("Top Movies", "B2")
	require.NoError(t, err)
	require.Equal(t, "Title", header)

	title, err := f.GetCellValue("Top Movies", "B3")
	require.NoError(t, err)
	require.Equal(t, "The Shawshank Redemption", title)

	stars, err := f.GetCellValue("Top Movies", "G3")
	require.NoError(t, err)
	require.Equal(t, "Tim Robbins, Morgan Freeman", stars)

	rank, err := f.GetCellValue("Top Movies", "A4")
	require.NoError(t, err)
	require.Equal(t, "2", rank)
}

func TestWorkbook_SheetPerChartInOrder(t *testing.T) {
	t.Parallel()
	sheets := map[string][]imdb.Movie{
		"Top Movies":     sampleMovies(),
		"Popular Movies": sampleMovies(),
	}

	f, err := Workbook(sheets, []string{"Top Movies", "Popular Movies"})
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Top Movies", "Popular Movies"}, f.GetSheetList())
}

func TestSummarizeChart_CountsOutcomes(t *testing.T) {
	t.Parallel()
	movies := append(sampleMovies(), imdb.Movie{Rank: 3, Title: "Lost", Failed: true})
	s := SummarizeChart("Top Movies", movies, 2)

	require.Equal(t, 3, s.Movies)
	require.Equal(t, 1, s.Failed)
	require.Equal(t, 2, s.Ranked)
	require.Equal(t, 2, s.Details)
}

func TestWriteSummary_WritesJSON(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "summary.json")
	s := Summary{
		RunID:      "run-1",
		StartedAt:  time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 25, 10, 1, 0, 0, time.UTC),
		Complete:   true,
		Metrics:    engine.Snapshot{Requests: 12},
		Charts:     []ChartSummary{{Name: "Top Movies", Movies: 2, Ranked: 2}},
	}

	require.NoError(t, WriteSummary(path, s))

	var back Summary
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, "run-1", back.RunID)
	require.Equal(t, int64(12), back.Metrics.Requests)
}
