package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hoanghai1803/csvpress/internal/storage"
)

const runListLimit = 50

// GetRuns handles GET /api/runs. It returns recent import runs, newest
// first, without their per-row results.
func GetRuns(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := store.ListRuns(r.Context(), runListLimit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list import runs")
			return
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

// GetRun handles GET /api/runs/{id}. It returns one run including the full
// per-row result sequence.
func GetRun(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		run, err := store.GetRun(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Import run not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get import run")
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}
