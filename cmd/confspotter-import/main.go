// Command confspotter-import loads a scraped conference CSV into the
// ConfSpotter database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/confspotter/confspotter-be/internal/config"
	"github.com/confspotter/confspotter-be/internal/database"
	"github.com/confspotter/confspotter-be/internal/importer"
	"github.com/confspotter/confspotter-be/internal/logger"
	"github.com/confspotter/confspotter-be/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())

	csvPath := flag.String("file", "conferences_normalized.csv", "CSV file with columns "+strings.Join(importer.Columns, ","))
	dbPath := flag.String("db", cfg.DatabasePath, "SQLite database path")
	flag.Parse()

	if err := run(context.Background(), *csvPath, *dbPath); err != nil {
		log.Error().Err(err).Msg("Import failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, csvPath, dbPath string) error {
	db, err := database.Open(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", dbPath, err)
	}
	defer db.Close()

	f, err := os.Open(csvPath)
	if err != nil {
		return err
	}
	defer f.Close()

	conferences := services.NewConferenceService(db)
	log.Info().Str("file", csvPath).Msg("Starting conference import")

	res, err := importer.New(conferences).Import(ctx, f)
	if err != nil {
		log.Warn().Int("imported", res.Imported).Int("skipped", res.Skipped).Msg("Import stopped early")
		return err
	}

	total, err := conferences.CountConferences(ctx)
	if err != nil {
		return fmt.Errorf("count conferences: %w", err)
	}
	log.Info().Int("imported", res.Imported).Int("skipped", res.Skipped).Int("total", total).Msg("Import complete")
	return nil
}
