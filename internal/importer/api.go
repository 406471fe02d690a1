package importer

import (
	"context"

	"github.com/hoanghai1803/csvpress/internal/models"
)

// API is the remote surface the importer consumes. *wordpress.Client
// satisfies it; tests substitute a fake.
type API interface {
	FindPostBySlug(ctx context.Context, slug string) (*models.RemotePost, error)
	ListPosts(ctx context.Context, page, perPage int) ([]models.RemotePost, error)
	CreatePost(ctx context.Context, payload *models.PostPayload) (*models.RemotePost, error)
	UpdatePost(ctx context.Context, id int64, payload *models.PostPayload) (*models.RemotePost, error)
	SearchTerms(ctx context.Context, taxonomy, name string) ([]models.Term, error)
	CreateTerm(ctx context.Context, taxonomy, name string) (*models.Term, error)
	UploadMedia(ctx context.Context, filename, contentType string, data []byte) (*models.Media, error)
}
