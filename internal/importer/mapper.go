package importer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hoanghai1803/csvpress/internal/models"
)

// MapRow translates one input row into a post payload. It fails only when a
// required field (title, content) is empty after trimming; malformed
// auxiliary JSON is dropped with a warning rather than failing the row.
// Term and media references are resolved later by the engine.
func MapRow(row models.InputRow, defaultStatus string) (*models.PostPayload, error) {
	title := strings.TrimSpace(row.Title)
	if title == "" {
		return nil, fmt.Errorf("Missing required field: title")
	}
	content := strings.TrimSpace(row.Content)
	if content == "" {
		return nil, fmt.Errorf("Missing required field: content")
	}

	status := strings.TrimSpace(strings.ToLower(row.Status))
	if !models.PostStatuses[status] {
		status = defaultStatus
	}

	payload := &models.PostPayload{
		Title:   title,
		Content: content,
		Status:  status,
		Slug:    strings.TrimSpace(row.Slug),
		Excerpt: strings.TrimSpace(row.Excerpt),
		Meta:    map[string]any{},
	}

	projectSEOMeta(row, payload.Meta)
	mergeCustomFields(row, payload.Meta)

	if len(payload.Meta) == 0 {
		payload.Meta = nil
	}
	return payload, nil
}

// setMeta stores a value under both the Yoast and Rank Math key for one SEO
// field, but only when the source value is non-empty after trimming.
func setMeta(meta map[string]any, yoastKey, rankMathKey, value string) {
	v := strings.TrimSpace(value)
	if v == "" {
		return
	}
	meta[yoastKey] = v
	meta[rankMathKey] = v
}

// isYes reports whether a boolean-like field is set. Only the literal "yes",
// in any case, counts; every other value is treated as unset.
func isYes(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "yes")
}

// projectSEOMeta fills meta with the row's SEO fields under both supported
// plugin conventions (Yoast, Rank Math). A key is present iff its source
// field was non-empty.
func projectSEOMeta(row models.InputRow, meta map[string]any) {
	setMeta(meta, "_yoast_wpseo_metadesc", "rank_math_description", row.MetaDescription)
	setMeta(meta, "_yoast_wpseo_title", "rank_math_title", row.SEOTitle)
	setMeta(meta, "_yoast_wpseo_opengraph-title", "rank_math_facebook_title", row.OGTitle)
	setMeta(meta, "_yoast_wpseo_opengraph-description", "rank_math_facebook_description", row.OGDescription)
	setMeta(meta, "_yoast_wpseo_twitter-title", "rank_math_twitter_title", row.TwitterTitle)
	setMeta(meta, "_yoast_wpseo_twitter-description", "rank_math_twitter_description", row.TwitterDescription)
	setMeta(meta, "_yoast_wpseo_canonical", "rank_math_canonical_url", row.CanonicalURL)

	// focus_keyword wins over primary_keyword when both are supplied.
	keyword := strings.TrimSpace(row.FocusKeyword)
	if keyword == "" {
		keyword = strings.TrimSpace(row.PrimaryKeyword)
	}
	setMeta(meta, "_yoast_wpseo_focuskw", "rank_math_focus_keyword", keyword)

	noindex := isYes(row.Noindex)
	nofollow := isYes(row.Nofollow)
	if noindex {
		meta["_yoast_wpseo_meta-robots-noindex"] = "1"
	}
	if nofollow {
		meta["_yoast_wpseo_meta-robots-nofollow"] = "1"
	}
	if noindex || nofollow {
		var robots []string
		if noindex {
			robots = append(robots, "noindex")
		}
		if nofollow {
			robots = append(robots, "nofollow")
		}
		encoded, _ := json.Marshal(robots)
		meta["rank_math_robots"] = string(encoded)
	}

	if schema := strings.TrimSpace(row.SchemaJSON); schema != "" {
		if !json.Valid([]byte(schema)) {
			slog.Warn("dropping malformed schema JSON", "row", row.Number)
		} else {
			meta["_yoast_wpseo_schema_custom"] = schema
			meta["rank_math_schema_custom"] = schema
		}
	}
}

// mergeCustomFields parses the row's custom-fields JSON object and attaches
// each key verbatim to meta. A malformed payload is dropped with a warning;
// the row is not failed for it.
func mergeCustomFields(row models.InputRow, meta map[string]any) {
	raw := strings.TrimSpace(row.CustomFieldsJSON)
	if raw == "" {
		return
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		slog.Warn("dropping malformed custom fields JSON", "row", row.Number, "error", err)
		return
	}

	for k, v := range fields {
		meta[k] = v
	}
}
