package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"
)

// Login handles POST /api/login. It checks the configured UI password and
// marks the session authenticated.
func Login(store *sessions.CookieStore, password string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if password == "" {
			http.Error(w, "Login is disabled: no password configured", http.StatusBadRequest)
			return
		}

		var body struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}

		if subtle.ConstantTimeCompare([]byte(body.Password), []byte(password)) != 1 {
			http.Error(w, "Wrong password", http.StatusUnauthorized)
			return
		}

		session, _ := store.Get(r, sessionName)
		session.Values["authenticated"] = true
		if err := session.Save(r, w); err != nil {
			http.Error(w, "Could not save session", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// Logout handles POST /api/logout by expiring the session cookie.
func Logout(store *sessions.CookieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := store.Get(r, sessionName)
		session.Options.MaxAge = -1
		if err := session.Save(r, w); err != nil {
			http.Error(w, "Could not save session", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
