// Package imdb defines the chart sources the scraper targets and the movie
// model assembled from listing and detail extraction.
package imdb

import (
	"github.com/R41CY/movie-scraper/internal/engine"
	"github.com/R41CY/movie-scraper/internal/extract"
)

// BaseURL is the site root used to resolve relative detail links.
const BaseURL = "https://www.imdb.com"

// Chart is one ranked listing source.
type Chart struct {
	Name string
	URL  string
}

// Charts returns the listing sources in export order.
func Charts() []Chart {
	return []Chart{
		{Name: "Top Movies", URL: BaseURL + "/chart/top/"},
		{Name: "Popular Movies", URL: BaseURL + "/chart/moviemeter/"},
	}
}

// Movie is the final exported record for one title.
type Movie struct {
	Rank     int      `json:"rank"`
	Title    string   `json:"title"`
	Year     string   `json:"year"`
	Rating   float64  `json:"rating"`
	Genres   []string `json:"genres,omitempty"`
	Director string   `json:"director,omitempty"`
	Stars    []string `json:"stars,omitempty"`
	Plot     string   `json:"plot,omitempty"`
	URL      string   `json:"url"`
	Chart    string   `json:"chart"`
	Failed   bool     `json:"failed,omitempty"`
}

// ListingTargets builds one listing fetch target per chart, in chart order.
func ListingTargets(charts []Chart) []engine.FetchTarget {
	targets := make([]engine.FetchTarget, len(charts))
	for i, chart := range charts {
		targets[i] = engine.FetchTarget{
			Key:      chart.URL,
			Kind:     engine.KindListing,
			Position: i,
		}
	}
	return targets
}

// DetailTargets builds detail fetch targets for the entries, preserving
// listing order and numbering positions from startPos. A limit <= 0 means
// every entry; entries without a detail link are skipped.
func DetailTargets(entries []extract.ListingEntry, limit, startPos int) []engine.FetchTarget {
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}
	targets := make([]engine.FetchTarget, 0, limit)
	for _, entry := range entries[:limit] {
		if entry.DetailURL == "" {
			continue
		}
		targets = append(targets, engine.FetchTarget{
			Key:      entry.DetailURL,
			Kind:     engine.KindDetail,
			Position: startPos + len(targets),
		})
	}
	return targets
}

// BuildMovie assembles an exported record from a ranked engine record, its
// listing entry, and the optional detail enrichment.
func BuildMovie(chart Chart, rec engine.RankedRecord, entry extract.ListingEntry, detail extract.Detail) Movie {
	return Movie{
		Rank:     rec.Rank,
		Title:    entry.Title,
		Year:     entry.Year,
		Rating:   entry.Rating,
		Genres:   detail.Genres,
		Director: detail.Director,
		Stars:    detail.Stars,
		Plot:     detail.Plot,
		URL:      rec.Key,
		Chart:    chart.Name,
		Failed:   rec.Failed,
	}
}
