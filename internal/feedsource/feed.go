// Package feedsource turns an RSS/Atom feed into import rows, as an
// alternative to a CSV file. Reconciliation itself does not care where rows
// come from.
package feedsource

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/hoanghai1803/csvpress/internal/models"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
)

const (
	httpTimeout = 30 * time.Second

	// Items whose content is shorter than this many words are candidates
	// for full-text extraction from the item link.
	minContentWords = 80

	// Bounded concurrency for extraction. This is input-side work; the
	// import itself still processes rows strictly in sequence.
	maxExtractConcurrent = 3
)

var htmlTagPattern = regexp.MustCompile("<[^>]*>")

// Fetcher loads a feed and maps its items to input rows.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with a 30-second timeout HTTP client.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: httpTimeout},
	}
}

// Fetch parses the feed at feedURL and returns up to limit rows (0 means
// all). Items with an empty title or link are skipped. Items that carry only
// a short summary get their full text extracted from the item link; an
// extraction failure keeps the summary and logs a warning.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string, limit int) ([]models.InputRow, error) {
	fp := gofeed.NewParser()
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %q: %w", feedURL, err)
	}

	var rows []models.InputRow
	for _, item := range feed.Items {
		if limit > 0 && len(rows) >= limit {
			break
		}
		if item.Title == "" || item.Link == "" {
			continue
		}
		rows = append(rows, itemToRow(len(rows)+1, item))
	}

	f.extractShortItems(ctx, rows)

	slog.Info("fetched feed", "url", feedURL, "items", len(rows))
	return rows, nil
}

// itemToRow maps one feed item onto an input row.
func itemToRow(number int, item *gofeed.Item) models.InputRow {
	content := item.Content
	if content == "" {
		content = item.Description
	}

	row := models.InputRow{
		Number:           number,
		Title:            item.Title,
		Content:          content,
		Slug:             slugFromLink(item.Link),
		Excerpt:          truncateWords(stripHTML(item.Description), 55),
		Categories:       strings.Join(item.Categories, ","),
		CanonicalURL:     item.Link,
		FeaturedImageURL: itemImageURL(item),
	}
	if len(item.Authors) > 0 {
		row.Author = item.Authors[0].Name
	}
	return row
}

// extractShortItems replaces summary-only content with the full article
// text, fetching at most maxExtractConcurrent links at a time.
func (f *Fetcher) extractShortItems(ctx context.Context, rows []models.InputRow) {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxExtractConcurrent)

	for i := range rows {
		if wordCount(stripHTML(rows[i].Content)) >= minContentWords {
			continue
		}
		g.Go(func() error {
			text, err := extractFullText(rows[i].CanonicalURL, f.client.Timeout)
			if err != nil {
				slog.Warn("keeping feed summary, full-text extraction failed",
					"url", rows[i].CanonicalURL, "error", err)
				return nil
			}
			if text != "" {
				rows[i].Content = text
			}
			return nil
		})
	}

	g.Wait() //nolint:errcheck // workers never return errors
}

// itemImageURL finds the item's image: explicit item image first, then the
// first image enclosure, then the first <img> in the content HTML.
func itemImageURL(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	content := item.Content
	if content == "" {
		content = item.Description
	}
	return firstImageSrc(content)
}

// slugFromLink derives a slug from the last path segment of the item link.
func slugFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	seg := path.Base(strings.TrimRight(u.Path, "/"))
	if seg == "." || seg == "/" {
		return ""
	}
	// Strip a trailing .html-style extension.
	if i := strings.LastIndex(seg, "."); i > 0 {
		seg = seg[:i]
	}
	return seg
}

// stripHTML removes HTML tags from s and unescapes HTML entities.
func stripHTML(s string) string {
	clean := htmlTagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(clean))
}

// truncateWords returns the first maxWords whitespace-delimited words from s.
func truncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ")
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
