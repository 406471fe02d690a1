package importer

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
)

var htmlTagPattern = regexp.MustCompile("<[^>]*>")

// NormalizeTitle reduces a post title to a canonical comparison form: HTML
// tags are stripped, entities are decoded, whitespace runs collapse to a
// single space, and the result is lower-cased. The function is idempotent.
func NormalizeTitle(title string) string {
	clean := htmlTagPattern.ReplaceAllString(title, "")
	clean = html.UnescapeString(clean)
	clean = strings.Join(strings.Fields(clean), " ")
	return strings.ToLower(clean)
}

// DuplicateChecker finds an existing remote post whose title collides with
// the candidate title. Implementations return the colliding post's ID, or 0
// when no duplicate exists.
type DuplicateChecker interface {
	FindDuplicate(ctx context.Context, title string) (int64, error)
}

const (
	scanPageSize = 100
	maxScanPages = 10
)

// CorpusScan implements DuplicateChecker by paging through the remote posts
// of any status, newest first, and comparing normalized titles.
//
// The scan is capped at maxScanPages pages (1000 posts); on corpora larger
// than that, older duplicates are missed. This limitation is deliberate: the
// scan is a pre-write safety net, not an index. Scans are read-only and not
// subject to the write delay.
type CorpusScan struct {
	api API
}

// NewCorpusScan creates a CorpusScan over the given API.
func NewCorpusScan(api API) *CorpusScan {
	return &CorpusScan{api: api}
}

// FindDuplicate returns the ID of the first remote post whose normalized
// title equals the normalized candidate title, or 0 when none is found
// within the scan cap.
func (s *CorpusScan) FindDuplicate(ctx context.Context, title string) (int64, error) {
	want := NormalizeTitle(title)
	if want == "" {
		return 0, nil
	}

	for page := 1; page <= maxScanPages; page++ {
		posts, err := s.api.ListPosts(ctx, page, scanPageSize)
		if err != nil {
			return 0, fmt.Errorf("scanning posts for duplicate title: %w", err)
		}
		if len(posts) == 0 {
			return 0, nil
		}

		for _, p := range posts {
			if NormalizeTitle(p.Title.Rendered) == want {
				return p.ID, nil
			}
		}

		// A short page means the corpus is exhausted.
		if len(posts) < scanPageSize {
			return 0, nil
		}
	}

	return 0, nil
}
