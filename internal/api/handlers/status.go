package handlers

import (
	"net/http"

	"github.com/hoanghai1803/csvpress/internal/config"
	"github.com/hoanghai1803/csvpress/internal/wordpress"
)

// statusResponse reports whether the WordPress connection is configured and
// whether the credentials currently work against the remote site.
type statusResponse struct {
	Configured bool   `json:"configured"`
	SiteURL    string `json:"site_url,omitempty"`
	Connected  bool   `json:"connected"`
	Error      string `json:"error,omitempty"`
}

// GetStatus handles GET /api/status. A missing configuration is reported,
// not treated as an error; the UI uses this to decide what to show first.
func GetStatus(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{SiteURL: cfg.WordPress.SiteURL}

		if err := cfg.ValidateConnection(); err != nil {
			resp.Error = err.Error()
			writeJSON(w, http.StatusOK, resp)
			return
		}
		resp.Configured = true

		client := wordpress.NewClient(cfg.WordPress)
		if err := client.CheckConnection(r.Context()); err != nil {
			resp.Error = err.Error()
			writeJSON(w, http.StatusOK, resp)
			return
		}
		resp.Connected = true

		writeJSON(w, http.StatusOK, resp)
	}
}
