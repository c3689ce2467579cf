package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxStars = 3

// Detail holds the enrichment fields parsed from a title page.
type Detail struct {
	Genres   []string
	Director string
	Stars    []string
	Plot     string
}

// DetailFields parses enrichment fields from a detail page. Missing fields
// are left zero; only unparseable HTML is an error.
func DetailFields(body []byte) (Detail, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Detail{}, fmt.Errorf("parse detail html: %w", err)
	}

	var d Detail

	doc.Find("div.ipc-chip-list a.ipc-chip").Each(func(_ int, sel *goquery.Selection) {
		if genre := strings.TrimSpace(sel.Text()); genre != "" {
			d.Genres = append(d.Genres, genre)
		}
	})

	doc.Find("a.ipc-metadata-list-item__list-content-item").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if strings.Contains(href, "nm") {
			d.Director = strings.TrimSpace(sel.Text())
			return false
		}
		return true
	})

	doc.Find(`div[data-testid="title-cast-item"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		actor := strings.TrimSpace(sel.Find(`a[data-testid="title-cast-item__actor"]`).First().Text())
		if actor != "" {
			d.Stars = append(d.Stars, actor)
		}
		return len(d.Stars) < maxStars
	})

	d.Plot = strings.TrimSpace(doc.Find(`span[data-testid="plot-xl"]`).First().Text())

	return d, nil
}
