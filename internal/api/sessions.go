package api

import (
	"crypto/rand"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "csvpress_session"

// NewSessionStore creates the cookie-backed session store used for web UI
// login. When no secret is configured, a random one is generated, which
// invalidates sessions across restarts.
func NewSessionStore(secret string) *sessions.CookieStore {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			// crypto/rand never fails on supported platforms.
			panic(err)
		}
		slog.Info("generated ephemeral session secret; set server.session_secret to keep sessions across restarts")
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
