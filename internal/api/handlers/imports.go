package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/hoanghai1803/csvpress/internal/config"
	"github.com/hoanghai1803/csvpress/internal/csvfile"
	"github.com/hoanghai1803/csvpress/internal/feedsource"
	"github.com/hoanghai1803/csvpress/internal/importer"
	"github.com/hoanghai1803/csvpress/internal/models"
	"github.com/hoanghai1803/csvpress/internal/storage"
	"github.com/hoanghai1803/csvpress/internal/wordpress"
)

const maxUploadBytes = 32 << 20 // 32 MiB

// ImportGuard serializes imports: two batches racing the same remote corpus
// would defeat both the request delay and the duplicate-title check.
type ImportGuard struct {
	mu sync.Mutex
}

// tryAcquire attempts to take the guard without blocking.
func (g *ImportGuard) tryAcquire() bool { return g.mu.TryLock() }
func (g *ImportGuard) release()         { g.mu.Unlock() }

// ImportCSV handles POST /api/import. It takes a multipart CSV upload and
// streams per-row progress as server-sent events, ending with a summary.
func ImportCSV(store *storage.Store, cfg *config.Config, guard *ImportGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid multipart upload")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Missing file field")
			return
		}
		defer file.Close()

		rows, err := csvfile.Read(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Could not parse CSV: %v", err))
			return
		}

		runImport(w, r, store, cfg, guard, "csv", header.Filename, rows)
	}
}

// ImportFeed handles POST /api/import/feed. The JSON body names an RSS/Atom
// feed URL to pull rows from; progress streams exactly like a CSV import.
func ImportFeed(store *storage.Store, cfg *config.Config, guard *ImportGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URL   string `json:"url"`
			Limit int    `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.URL == "" {
			writeError(w, http.StatusBadRequest, "Missing feed URL")
			return
		}

		rows, err := feedsource.NewFetcher().Fetch(r.Context(), body.URL, body.Limit)
		if err != nil {
			writeError(w, http.StatusBadGateway, fmt.Sprintf("Could not fetch feed: %v", err))
			return
		}

		runImport(w, r, store, cfg, guard, "feed", body.URL, rows)
	}
}

// runImport performs the shared import flow: pre-flight checks, SSE setup,
// the sequential batch, and run persistence.
func runImport(w http.ResponseWriter, r *http.Request, store *storage.Store, cfg *config.Config, guard *ImportGuard, source, filename string, rows []models.InputRow) {
	if len(rows) == 0 {
		writeError(w, http.StatusBadRequest, "Input has no rows")
		return
	}

	if !guard.tryAcquire() {
		writeError(w, http.StatusConflict, "Another import is already running")
		return
	}
	defer guard.release()

	// Configuration and connectivity problems abort before any row runs.
	if err := cfg.ValidateConnection(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	client := wordpress.NewClient(cfg.WordPress)
	if err := client.CheckConnection(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("WordPress connection failed: %v", err))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	observer := func(e models.Event) {
		data, err := json.Marshal(e)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	engine := importer.NewEngine(client, importer.NewCorpusScan(client),
		cfg.Import.UploadsDir, cfg.WordPress.DefaultStatus, observer)
	runner := importer.NewRunner(engine, cfg.Import.LogsDir, observer)

	// The batch keeps its own context: closing the browser tab must not
	// cancel a half-finished import mid-row.
	ctx := context.Background()
	summary := runner.Run(ctx, rows)

	run := &models.ImportRun{
		ID:       uuid.NewString(),
		Source:   source,
		Filename: filename,
		Total:    summary.Total,
		Success:  summary.Success,
		Failed:   summary.Failed,
		Duration: summary.Duration,
		Results:  summary.Results,
	}
	if err := store.CreateRun(ctx, run); err != nil {
		slog.Warn("could not persist import run", "error", err)
	}

	done := struct {
		Type    string         `json:"type"`
		RunID   string         `json:"run_id"`
		Summary models.Summary `json:"summary"`
	}{Type: "done", RunID: run.ID, Summary: summary}
	if data, err := json.Marshal(done); err == nil {
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}
