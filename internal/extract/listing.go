// Package extract turns fetched IMDb pages into field values. It is a pure
// transformation layer: bytes in, typed fields out, no I/O.
package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	rankPrefix  = regexp.MustCompile(`^\d+\.\s+`)
	ratingValue = regexp.MustCompile(`[\d.]+`)
)

// ListingEntry is one row parsed from a chart page.
type ListingEntry struct {
	Title     string
	Year      string
	Rating    float64
	DetailURL string
}

// Listing parses chart rows from a listing page. Relative detail links are
// resolved against baseURL. An empty result is an error: it means the
// markup changed and silent success would hide it.
func Listing(body []byte, baseURL string) ([]ListingEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	var entries []ListingEntry
	doc.Find("li.ipc-metadata-list-summary-item").Each(func(_ int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find("h3.ipc-title__text").First().Text())
		title = rankPrefix.ReplaceAllString(title, "")
		if title == "" {
			return
		}

		year := strings.TrimSpace(item.Find("span.cli-title-metadata-item").First().Text())

		var rating float64
		if text := strings.TrimSpace(item.Find("span.ipc-rating-star--imdb").First().Text()); text != "" {
			if match := ratingValue.FindString(text); match != "" {
				rating, _ = strconv.ParseFloat(match, 64)
			}
		}

		detailURL := ""
		if href, ok := item.Find("a.ipc-title-link-wrapper").First().Attr("href"); ok {
			detailURL = resolveURL(baseURL, href)
		}

		entries = append(entries, ListingEntry{
			Title:     title,
			Year:      year,
			Rating:    rating,
			DetailURL: detailURL,
		})
	})

	if len(entries) == 0 {
		return nil, fmt.Errorf("no listing items found; chart markup may have changed")
	}
	return entries, nil
}

func resolveURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(href, "/")
}
