package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hoanghai1803/csvpress/internal/models"
)

// Runner drives a whole batch: rows are imported strictly in order, one
// result per row, and the result sequence is summarized and written to a
// JSON artifact afterwards.
//
// Rows must not be processed concurrently: the duplicate-title scan assumes
// a quiescent corpus between its check and the following write, and the
// request delay is only meaningful when writes are serialized.
type Runner struct {
	engine  *Engine
	logsDir string
	observe Observer
}

// NewRunner creates a Runner. logsDir may be empty to skip the artifact;
// observer may be nil.
func NewRunner(engine *Engine, logsDir string, observer Observer) *Runner {
	if observer == nil {
		observer = func(models.Event) {}
	}
	return &Runner{engine: engine, logsDir: logsDir, observe: observer}
}

// Run imports every row in sequence and returns the batch summary. Failing
// to persist the result artifact is logged, never fatal.
func (r *Runner) Run(ctx context.Context, rows []models.InputRow) models.Summary {
	start := time.Now()
	r.observe(models.Event{
		Type:    models.EventInfo,
		Message: fmt.Sprintf("Starting import of %d rows", len(rows)),
	})

	results := make([]models.RowResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, r.engine.ImportRow(ctx, row))
	}

	summary := models.Summarize(results, start)
	r.observe(models.Event{
		Type:    models.EventInfo,
		Message: fmt.Sprintf("Import finished: %d succeeded, %d failed", summary.Success, summary.Failed),
	})

	if r.logsDir != "" {
		if err := r.writeArtifact(summary, start); err != nil {
			slog.Warn("could not persist import log", "error", err)
		}
	}

	return summary
}

// writeArtifact writes the full result sequence as a JSON file in the logs
// directory, one file per run.
func (r *Runner) writeArtifact(summary models.Summary, start time.Time) error {
	if err := os.MkdirAll(r.logsDir, 0o755); err != nil {
		return fmt.Errorf("creating logs directory: %w", err)
	}

	name := fmt.Sprintf("import-%s.json", start.Format("20060102-150405"))
	path := filepath.Join(r.logsDir, name)

	data, err := json.MarshalIndent(summary.Results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	slog.Info("wrote import log", "path", path, "rows", summary.Total)
	return nil
}
