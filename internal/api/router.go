package api

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hoanghai1803/csvpress/internal/api/handlers"
	"github.com/hoanghai1803/csvpress/internal/config"
	"github.com/hoanghai1803/csvpress/internal/storage"
)

//go:embed all:dist
var distFS embed.FS

// NewRouter creates and configures the HTTP router with all API routes and
// static file serving for the web UI.
func NewRouter(store *storage.Store, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(RequestLogger)
	r.Use(Recovery)

	sessions := NewSessionStore(cfg.Server.SessionSecret)
	guard := &handlers.ImportGuard{}

	// API sub-router. Login is the only route reachable without a session.
	r.Route("/api", func(api chi.Router) {
		api.Post("/login", Login(sessions, cfg.Server.Password))

		api.Group(func(authed chi.Router) {
			authed.Use(RequireAuth(sessions, cfg.Server.Password))

			authed.Post("/logout", Logout(sessions))

			authed.Post("/import", handlers.ImportCSV(store, cfg, guard))
			authed.Post("/import/feed", handlers.ImportFeed(store, cfg, guard))

			authed.Get("/runs", handlers.GetRuns(store))
			authed.Get("/runs/{id}", handlers.GetRun(store))

			authed.Get("/status", handlers.GetStatus(cfg))
		})
	})

	// Serve the web UI from the embedded dist/ directory.
	distContent, _ := fs.Sub(distFS, "dist")
	fileServer := http.FileServer(http.FS(distContent))

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}

		f, err := distContent.Open(path[1:]) // strip leading /
		if err != nil {
			// Unknown path: fall back to the index page.
			r.URL.Path = "/"
			fileServer.ServeHTTP(w, r)
			return
		}
		f.Close()

		fileServer.ServeHTTP(w, r)
	})

	return r
}
