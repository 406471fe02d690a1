// Package wordpress is a minimal client for the WP REST API surface the
// importer needs: post lookup/create/update, taxonomy term search/create,
// and media upload. It is not a general-purpose WordPress client.
package wordpress

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hoanghai1803/csvpress/internal/config"
	"github.com/hoanghai1803/csvpress/internal/models"
	"golang.org/x/sync/errgroup"
)

const httpTimeout = 30 * time.Second

// Taxonomies accepted by term operations.
const (
	TaxonomyCategories = "categories"
	TaxonomyTags       = "tags"
)

// APIError is returned for any non-2xx response from the remote site. It
// carries the HTTP status and the raw response body so row errors can show
// what the server rejected.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("wordpress API error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("wordpress API error: HTTP %d: %s", e.StatusCode, e.Body)
}

// Client talks to a single WordPress site with fixed Basic Auth credentials.
//
// Every state-mutating call (post create/update, term create, media upload)
// is preceded by a serial sleep of the configured request delay, so N writes
// take at least N times the delay. Read-only lookups are not delayed. The
// client never retries.
type Client struct {
	apiBase    string // site URL + /wp-json/wp/v2
	authHeader string
	delay      time.Duration
	client     *http.Client
}

// NewClient creates a Client from the WordPress section of the config.
// The Basic Auth header is computed once, up front.
func NewClient(cfg config.WordPressConfig) *Client {
	creds := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.AppPassword))
	return &Client{
		apiBase:    cfg.SiteURL + "/wp-json/wp/v2",
		authHeader: "Basic " + creds,
		delay:      time.Duration(cfg.RequestDelayMs) * time.Millisecond,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// pause sleeps for the configured request delay. Called before every write.
func (c *Client) pause() {
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
}

// do issues one request and returns the response body. Any non-2xx status
// becomes an *APIError carrying the body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, extraHeaders map[string]string) ([]byte, error) {
	u := c.apiBase + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// getJSON issues a read-only GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, query, nil, "", nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response from %s: %w", path, err)
	}
	return nil
}

// postJSON issues a write (delayed) with a JSON body and decodes the response.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request for %s: %w", path, err)
	}

	c.pause()
	body, err := c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(data), "application/json", nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response from %s: %w", path, err)
	}
	return nil
}

// FindPostBySlug returns the post with the exact slug, or nil when no post
// has it. All statuses are considered.
func (c *Client) FindPostBySlug(ctx context.Context, slug string) (*models.RemotePost, error) {
	q := url.Values{}
	q.Set("slug", slug)
	q.Set("per_page", "1")
	q.Set("status", "any")

	var posts []models.RemotePost
	if err := c.getJSON(ctx, "/posts", q, &posts); err != nil {
		return nil, fmt.Errorf("looking up slug %q: %w", slug, err)
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}

// ListPosts returns one page of posts of any status, newest first. Page
// numbers start at 1. A request past the last page is not an error; it
// returns an empty slice.
func (c *Client) ListPosts(ctx context.Context, page, perPage int) ([]models.RemotePost, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))
	q.Set("status", "any")
	q.Set("orderby", "date")
	q.Set("order", "desc")

	var posts []models.RemotePost
	err := c.getJSON(ctx, "/posts", q, &posts)
	if err != nil {
		// WP answers 400 with rest_post_invalid_page_number past the end.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			return nil, nil
		}
		return nil, fmt.Errorf("listing posts page %d: %w", page, err)
	}
	return posts, nil
}

// CreatePost creates a new post from the payload and returns the remote post.
func (c *Client) CreatePost(ctx context.Context, payload *models.PostPayload) (*models.RemotePost, error) {
	var post models.RemotePost
	if err := c.postJSON(ctx, "/posts", payload, &post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	return &post, nil
}

// UpdatePost updates an existing post. The WP REST API accepts POST on the
// item route for updates.
func (c *Client) UpdatePost(ctx context.Context, id int64, payload *models.PostPayload) (*models.RemotePost, error) {
	var post models.RemotePost
	if err := c.postJSON(ctx, fmt.Sprintf("/posts/%d", id), payload, &post); err != nil {
		return nil, fmt.Errorf("updating post %d: %w", id, err)
	}
	return &post, nil
}

// SearchTerms returns terms of the taxonomy matching the search string.
// Matching is the server's fuzzy search; callers filter for exact names.
func (c *Client) SearchTerms(ctx context.Context, taxonomy, name string) ([]models.Term, error) {
	q := url.Values{}
	q.Set("search", name)
	q.Set("per_page", "100")

	var terms []models.Term
	if err := c.getJSON(ctx, "/"+taxonomy, q, &terms); err != nil {
		return nil, fmt.Errorf("searching %s for %q: %w", taxonomy, name, err)
	}
	return terms, nil
}

// CreateTerm creates a term with the exact name in the taxonomy.
func (c *Client) CreateTerm(ctx context.Context, taxonomy, name string) (*models.Term, error) {
	var term models.Term
	if err := c.postJSON(ctx, "/"+taxonomy, map[string]string{"name": name}, &term); err != nil {
		return nil, fmt.Errorf("creating %s term %q: %w", taxonomy, name, err)
	}
	return &term, nil
}

// UploadMedia uploads raw bytes to the media library and returns the created
// media object.
func (c *Client) UploadMedia(ctx context.Context, filename, contentType string, data []byte) (*models.Media, error) {
	c.pause()

	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
	}
	body, err := c.do(ctx, http.MethodPost, "/media", nil, bytes.NewReader(data), contentType, headers)
	if err != nil {
		return nil, fmt.Errorf("uploading media %q: %w", filename, err)
	}

	var media models.Media
	if err := json.Unmarshal(body, &media); err != nil {
		return nil, fmt.Errorf("parsing media response: %w", err)
	}
	return &media, nil
}

// CheckConnection verifies the site is reachable and the credentials work.
// It checks the authenticated user endpoint and both taxonomy endpoints
// concurrently; all are read-only so no delay applies.
func (c *Client) CheckConnection(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var me struct {
			ID int64 `json:"id"`
		}
		q := url.Values{}
		q.Set("context", "edit")
		if err := c.getJSON(ctx, "/users/me", q, &me); err != nil {
			return fmt.Errorf("authentication check: %w", err)
		}
		return nil
	})

	for _, taxonomy := range []string{TaxonomyCategories, TaxonomyTags} {
		g.Go(func() error {
			q := url.Values{}
			q.Set("per_page", "1")
			var terms []models.Term
			if err := c.getJSON(ctx, "/"+taxonomy, q, &terms); err != nil {
				return fmt.Errorf("%s endpoint check: %w", taxonomy, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("wordpress connection verified", "api", c.apiBase)
	return nil
}
