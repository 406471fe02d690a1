package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/hoanghai1803/csvpress/internal/config"
	"github.com/hoanghai1803/csvpress/internal/models"
	"github.com/hoanghai1803/csvpress/internal/storage"
)

// newTestStore creates an in-memory SQLite store with migrations applied. It
// registers a cleanup function to close the database when the test completes.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return storage.NewStore(db)
}

// fakeWordPress is a minimal in-memory stand-in for the WP REST API,
// sufficient to carry an import batch end to end.
type fakeWordPress struct {
	mu     sync.Mutex
	posts  []models.RemotePost // newest first
	terms  map[string][]models.Term
	nextID int64
}

func newFakeWordPress() *fakeWordPress {
	return &fakeWordPress{
		terms:  map[string][]models.Term{"categories": nil, "tags": nil},
		nextID: 100,
	}
}

func (f *fakeWordPress) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wp/v2/users/me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]int64{"id": 1})
	})
	for _, taxonomy := range []string{"categories", "tags"} {
		mux.HandleFunc("/wp-json/wp/v2/"+taxonomy, func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			if r.Method == http.MethodPost {
				var body struct {
					Name string `json:"name"`
				}
				json.NewDecoder(r.Body).Decode(&body)
				term := models.Term{ID: f.nextID, Name: body.Name, Taxonomy: taxonomy}
				f.nextID++
				f.terms[taxonomy] = append(f.terms[taxonomy], term)
				w.WriteHeader(http.StatusCreated)
				json.NewEncoder(w).Encode(term)
				return
			}
			search := strings.ToLower(r.URL.Query().Get("search"))
			matched := []models.Term{}
			for _, term := range f.terms[taxonomy] {
				if search == "" || strings.Contains(strings.ToLower(term.Name), search) {
					matched = append(matched, term)
				}
			}
			json.NewEncoder(w).Encode(matched)
		})
	}
	mux.HandleFunc("/wp-json/wp/v2/posts", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if r.Method == http.MethodPost {
			var payload models.PostPayload
			json.NewDecoder(r.Body).Decode(&payload)
			post := models.RemotePost{
				ID:     f.nextID,
				Slug:   payload.Slug,
				Status: payload.Status,
				Title:  models.RenderedText{Rendered: payload.Title},
			}
			f.nextID++
			f.posts = append([]models.RemotePost{post}, f.posts...)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(post)
			return
		}
		if slug := r.URL.Query().Get("slug"); slug != "" {
			matched := []models.RemotePost{}
			for _, p := range f.posts {
				if p.Slug == slug {
					matched = append(matched, p)
				}
			}
			json.NewEncoder(w).Encode(matched)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > 1 && len(f.posts) <= (page-1)*100 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"code": "rest_post_invalid_page_number"})
			return
		}
		json.NewEncoder(w).Encode(f.posts)
	})
	mux.HandleFunc("/wp-json/wp/v2/posts/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/wp-json/wp/v2/posts/"), 10, 64)
		var payload models.PostPayload
		json.NewDecoder(r.Body).Decode(&payload)
		for i, p := range f.posts {
			if p.ID == id {
				f.posts[i].Title = models.RenderedText{Rendered: payload.Title}
				f.posts[i].Status = payload.Status
				json.NewEncoder(w).Encode(f.posts[i])
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/wp-json/wp/v2/media", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		media := models.Media{ID: f.nextID}
		f.nextID++
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(media)
	})
	return mux
}

// newTestConfig returns a config pointing at the given fake WP server, with
// temp dirs for uploads and logs and no request delay.
func newTestConfig(t *testing.T, wpURL string) *config.Config {
	t.Helper()
	return &config.Config{
		WordPress: config.WordPressConfig{
			SiteURL:       wpURL,
			Username:      "admin",
			AppPassword:   "secret",
			DefaultStatus: "draft",
		},
		Import: config.ImportConfig{
			UploadsDir: t.TempDir(),
			LogsDir:    t.TempDir(),
		},
		Server: config.ServerConfig{Port: 8080},
	}
}

// startFakeWordPress starts an httptest server backed by a fakeWordPress and
// returns both.
func startFakeWordPress(t *testing.T) (*fakeWordPress, *httptest.Server) {
	t.Helper()
	wp := newFakeWordPress()
	srv := httptest.NewServer(wp.handler())
	t.Cleanup(srv.Close)
	return wp, srv
}
