package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hoanghai1803/csvpress/internal/config"
	"github.com/hoanghai1803/csvpress/internal/csvfile"
	"github.com/hoanghai1803/csvpress/internal/feedsource"
	"github.com/hoanghai1803/csvpress/internal/importer"
	"github.com/hoanghai1803/csvpress/internal/models"
	"github.com/hoanghai1803/csvpress/internal/storage"
	"github.com/hoanghai1803/csvpress/internal/wordpress"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	dataDir := flag.String("data-dir", "./data", "path to data directory")
	csvPath := flag.String("csv", "", "path to a CSV file to import")
	feedURL := flag.String("feed", "", "RSS/Atom feed URL to import")
	limit := flag.Int("limit", 0, "max feed items to import (0 = all)")
	flag.Parse()

	if err := run(*configPath, *dataDir, *csvPath, *feedURL, *limit); err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, dataDir, csvPath, feedURL string, limit int) error {
	if (csvPath == "") == (feedURL == "") {
		return fmt.Errorf("exactly one of -csv or -feed is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateConnection(); err != nil {
		return err
	}

	var (
		rows     []models.InputRow
		source   string
		filename string
	)
	if csvPath != "" {
		source, filename = "csv", filepath.Base(csvPath)
		rows, err = csvfile.ReadFile(csvPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", csvPath, err)
		}
	} else {
		source, filename = "feed", feedURL
		rows, err = feedsource.NewFetcher().Fetch(context.Background(), feedURL, limit)
		if err != nil {
			return fmt.Errorf("fetching feed: %w", err)
		}
	}
	if len(rows) == 0 {
		return fmt.Errorf("input has no rows")
	}

	client := wordpress.NewClient(cfg.WordPress)
	if err := client.CheckConnection(context.Background()); err != nil {
		return fmt.Errorf("WordPress connection failed: %w", err)
	}
	fmt.Printf("Connected to %s, importing %d rows\n", cfg.WordPress.SiteURL, len(rows))

	engine := importer.NewEngine(client, importer.NewCorpusScan(client),
		cfg.Import.UploadsDir, cfg.WordPress.DefaultStatus, printEvent)
	runner := importer.NewRunner(engine, cfg.Import.LogsDir, printEvent)

	summary := runner.Run(context.Background(), rows)
	persistRun(dataDir, source, filename, summary)

	fmt.Printf("\nDone: %d total, %d succeeded, %d failed (%.1fs)\n",
		summary.Total, summary.Success, summary.Failed, summary.Duration)

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d rows failed", summary.Failed, summary.Total)
	}
	return nil
}

// printEvent renders one progress event to stdout.
func printEvent(e models.Event) {
	switch e.Type {
	case models.EventError:
		msg := e.Error
		if msg == "" {
			msg = e.Message
		}
		fmt.Printf("  row %d: FAILED: %s\n", e.RowNumber, msg)
	case models.EventSuccess:
		fmt.Printf("  row %d: %s (post %d)\n", e.RowNumber, e.Message, e.PostID)
	default:
		fmt.Println(e.Message)
	}
}

// persistRun records the finished batch in the run history database. History
// is best-effort from the CLI; a failure only logs a warning.
func persistRun(dataDir, source, filename string, summary models.Summary) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		slog.Warn("could not create data directory", "error", err)
		return
	}
	db, err := storage.OpenDatabase(filepath.Join(dataDir, "app.db"))
	if err != nil {
		slog.Warn("could not open run history database", "error", err)
		return
	}
	defer db.Close()
	if err := storage.RunMigrations(db); err != nil {
		slog.Warn("could not migrate run history database", "error", err)
		return
	}

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
	if err := storage.NewStore(db).CreateRun(context.Background(), run); err != nil {
		slog.Warn("could not persist import run", "error", err)
	}
}
