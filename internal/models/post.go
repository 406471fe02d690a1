package models

// PostPayload is the outbound representation of one post, built from an
// InputRow by the mapper and enriched with resolved IDs by the engine.
// Field names follow the WP REST API post schema.
type PostPayload struct {
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	Status     string         `json:"status"`
	Slug       string         `json:"slug,omitempty"`
	Excerpt    string         `json:"excerpt,omitempty"`
	Categories []int64        `json:"categories,omitempty"`
	Tags       []int64        `json:"tags,omitempty"`
	Featured   int64          `json:"featured_media,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// RemotePost is the subset of a WP REST post object the importer reads back.
type RemotePost struct {
	ID     int64        `json:"id"`
	Slug   string       `json:"slug"`
	Status string       `json:"status"`
	Title  RenderedText `json:"title"`
}

// RenderedText matches WP's {"rendered": "..."} wrapper on readable fields.
type RenderedText struct {
	Rendered string `json:"rendered"`
}

// Term is a remote taxonomy entry (category or tag).
type Term struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Taxonomy string `json:"taxonomy,omitempty"`
}

// Media is the subset of a WP media object the importer reads back.
type Media struct {
	ID        int64  `json:"id"`
	SourceURL string `json:"source_url,omitempty"`
}
