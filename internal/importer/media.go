package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const fallbackFilename = "image.jpg"

// mimeByExtension maps common image extensions to their MIME types.
var mimeByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".bmp":  "image/bmp",
	".avif": "image/avif",
}

// MediaResolver uploads a featured image to the remote media library and
// returns its ID. The reference is either a remote URL (http/https prefix)
// or a filesystem path relative to the configured uploads directory.
type MediaResolver struct {
	api     API
	baseDir string
	client  *http.Client
}

// NewMediaResolver creates a MediaResolver that resolves local paths
// relative to baseDir.
func NewMediaResolver(api API, baseDir string) *MediaResolver {
	return &MediaResolver{
		api:     api,
		baseDir: baseDir,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Resolve uploads the referenced image and returns the media ID, or 0 when
// anything goes wrong. Media failures never fail the row: the caller simply
// gets no featured image.
func (r *MediaResolver) Resolve(ctx context.Context, pathOrURL string) int64 {
	ref := strings.TrimSpace(pathOrURL)
	if ref == "" {
		return 0
	}

	var (
		id  int64
		err error
	)
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		id, err = r.uploadFromURL(ctx, ref)
	} else {
		id, err = r.uploadFromFile(ctx, ref)
	}
	if err != nil {
		slog.Warn("skipping featured image", "ref", ref, "error", err)
		return 0
	}
	return id
}

// uploadFromURL downloads the image and uploads it to the media library.
// The MIME type comes from the response Content-Type header when present,
// then the filename extension. The filename is the last URL path segment.
func (r *MediaResolver) uploadFromURL(ctx context.Context, rawURL string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating download request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("downloading image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading image body: %w", err)
	}

	filename := filenameFromURL(rawURL)
	contentType := resp.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimeFromFilename(filename)
	}

	media, err := r.api.UploadMedia(ctx, filename, contentType, data)
	if err != nil {
		return 0, err
	}
	return media.ID, nil
}

// uploadFromFile reads a local image (relative to the uploads directory) and
// uploads it to the media library. MIME type comes from the extension.
func (r *MediaResolver) uploadFromFile(ctx context.Context, relPath string) (int64, error) {
	full := filepath.Join(r.baseDir, relPath)

	data, err := os.ReadFile(full)
	if err != nil {
		return 0, fmt.Errorf("reading image file: %w", err)
	}

	filename := filepath.Base(full)
	media, err := r.api.UploadMedia(ctx, filename, mimeFromFilename(filename), data)
	if err != nil {
		return 0, err
	}
	return media.ID, nil
}

// filenameFromURL returns the last path segment of the URL, falling back to
// a fixed name when the path has none.
func filenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallbackFilename
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return fallbackFilename
	}
	return name
}

// mimeFromFilename derives a MIME type from the filename extension, falling
// back to application/octet-stream.
func mimeFromFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if mt, ok := mimeByExtension[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}
