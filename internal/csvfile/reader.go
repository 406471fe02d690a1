// Package csvfile reads tabular input files into import rows. Fields are
// addressed by header name, so column order does not matter and unknown
// columns are ignored.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hoanghai1803/csvpress/internal/models"
)

// Read parses CSV content into input rows. The first record is the header;
// matching is case-insensitive and a UTF-8 BOM on the first header cell is
// tolerated. Row numbers are 1-based over the data rows.
func Read(r io.Reader) ([]models.InputRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are fine; missing cells read as empty

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var rows []models.InputRow
	for n := 1; ; n++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", n, err)
		}

		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		rows = append(rows, models.InputRow{
			Number:             n,
			Title:              field("title"),
			Content:            field("content"),
			Status:             field("status"),
			Slug:               field("slug"),
			Excerpt:            field("excerpt"),
			Author:             field("author"),
			Categories:         field("categories"),
			Tags:               field("tags"),
			FeaturedImagePath:  field("featured_image_path"),
			FeaturedImageURL:   field("featured_image_url"),
			CustomFieldsJSON:   field("custom_fields"),
			MetaDescription:    field("meta_description"),
			FocusKeyword:       field("focus_keyword"),
			PrimaryKeyword:     field("primary_keyword"),
			SEOTitle:           field("seo_title"),
			OGTitle:            field("og_title"),
			OGDescription:      field("og_description"),
			TwitterTitle:       field("twitter_title"),
			TwitterDescription: field("twitter_description"),
			CanonicalURL:       field("canonical_url"),
			Noindex:            field("noindex"),
			Nofollow:           field("nofollow"),
			SchemaJSON:         field("schema_json"),
		})
	}

	return rows, nil
}

// ReadFile reads a CSV file from disk.
func ReadFile(path string) ([]models.InputRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
