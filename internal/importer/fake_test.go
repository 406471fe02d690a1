package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/hoanghai1803/csvpress/internal/models"
)

// fakeAPI is an in-memory stand-in for the remote site. It emulates the
// behaviors the importer depends on: fuzzy term search, slug lookup,
// newest-first post listing, and ID assignment on create.
type fakeAPI struct {
	posts  []models.RemotePost            // newest first
	terms  map[string][]models.Term       // taxonomy -> terms
	nextID int64

	createdPayloads []*models.PostPayload
	updatedPayloads map[int64]*models.PostPayload
	uploads         []string // filenames
	writes          int      // post create/update calls

	failTermSearch bool
	failUpload     bool
	failListPosts  bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		terms:           map[string][]models.Term{},
		nextID:          100,
		updatedPayloads: map[int64]*models.PostPayload{},
	}
}

// addPost seeds a remote post at the front of the corpus (newest first).
func (f *fakeAPI) addPost(id int64, slug, title, status string) {
	f.posts = append([]models.RemotePost{{
		ID:     id,
		Slug:   slug,
		Status: status,
		Title:  models.RenderedText{Rendered: title},
	}}, f.posts...)
}

func (f *fakeAPI) addTerm(taxonomy string, id int64, name string) {
	f.terms[taxonomy] = append(f.terms[taxonomy], models.Term{ID: id, Name: name, Taxonomy: taxonomy})
}

func (f *fakeAPI) FindPostBySlug(_ context.Context, slug string) (*models.RemotePost, error) {
	for _, p := range f.posts {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeAPI) ListPosts(_ context.Context, page, perPage int) ([]models.RemotePost, error) {
	if f.failListPosts {
		return nil, fmt.Errorf("listing posts: connection refused")
	}
	start := (page - 1) * perPage
	if start >= len(f.posts) {
		return nil, nil
	}
	end := start + perPage
	if end > len(f.posts) {
		end = len(f.posts)
	}
	return f.posts[start:end], nil
}

func (f *fakeAPI) CreatePost(_ context.Context, payload *models.PostPayload) (*models.RemotePost, error) {
	f.writes++
	f.nextID++
	post := models.RemotePost{
		ID:     f.nextID,
		Slug:   payload.Slug,
		Status: payload.Status,
		Title:  models.RenderedText{Rendered: payload.Title},
	}
	f.posts = append([]models.RemotePost{post}, f.posts...)
	f.createdPayloads = append(f.createdPayloads, payload)
	return &post, nil
}

func (f *fakeAPI) UpdatePost(_ context.Context, id int64, payload *models.PostPayload) (*models.RemotePost, error) {
	f.writes++
	f.updatedPayloads[id] = payload
	return &models.RemotePost{
		ID:     id,
		Slug:   payload.Slug,
		Status: payload.Status,
		Title:  models.RenderedText{Rendered: payload.Title},
	}, nil
}

func (f *fakeAPI) SearchTerms(_ context.Context, taxonomy, name string) ([]models.Term, error) {
	if f.failTermSearch {
		return nil, fmt.Errorf("searching terms: connection refused")
	}
	var matched []models.Term
	for _, t := range f.terms[taxonomy] {
		if strings.Contains(strings.ToLower(t.Name), strings.ToLower(name)) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func (f *fakeAPI) CreateTerm(_ context.Context, taxonomy, name string) (*models.Term, error) {
	f.nextID++
	term := models.Term{ID: f.nextID, Name: name, Taxonomy: taxonomy}
	f.terms[taxonomy] = append(f.terms[taxonomy], term)
	return &term, nil
}

func (f *fakeAPI) UploadMedia(_ context.Context, filename, contentType string, data []byte) (*models.Media, error) {
	if f.failUpload {
		return nil, fmt.Errorf("uploading media: server error")
	}
	f.nextID++
	f.uploads = append(f.uploads, filename)
	return &models.Media{ID: f.nextID}, nil
}
