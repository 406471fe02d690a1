package models

// InputRow is one tabular record describing a post to import. It is read
// once from the input source (CSV file or feed) and immutable afterwards.
// All fields are raw strings as they appeared in the source; trimming and
// interpretation happen in the importer.
type InputRow struct {
	Number int `json:"row_number"` // 1-based position in the input

	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status,omitempty"` // draft|publish|private|pending
	Slug    string `json:"slug,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
	Author  string `json:"author,omitempty"` // passed through unresolved

	// Comma-separated term name lists.
	Categories string `json:"categories,omitempty"`
	Tags       string `json:"tags,omitempty"`

	// Featured image: path takes precedence when both are set.
	FeaturedImagePath string `json:"featured_image_path,omitempty"`
	FeaturedImageURL  string `json:"featured_image_url,omitempty"`

	// Opaque JSON object attached verbatim as post meta.
	CustomFieldsJSON string `json:"custom_fields,omitempty"`

	// SEO fields, projected into plugin meta keys by the mapper.
	MetaDescription    string `json:"meta_description,omitempty"`
	FocusKeyword       string `json:"focus_keyword,omitempty"`
	PrimaryKeyword     string `json:"primary_keyword,omitempty"`
	SEOTitle           string `json:"seo_title,omitempty"`
	OGTitle            string `json:"og_title,omitempty"`
	OGDescription      string `json:"og_description,omitempty"`
	TwitterTitle       string `json:"twitter_title,omitempty"`
	TwitterDescription string `json:"twitter_description,omitempty"`
	CanonicalURL       string `json:"canonical_url,omitempty"`
	Noindex            string `json:"noindex,omitempty"`  // "yes" sentinel
	Nofollow           string `json:"nofollow,omitempty"` // "yes" sentinel
	SchemaJSON         string `json:"schema_json,omitempty"`
}

// PostStatuses are the statuses accepted on an input row.
var PostStatuses = map[string]bool{
	"draft":   true,
	"publish": true,
	"private": true,
	"pending": true,
}
