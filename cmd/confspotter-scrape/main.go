// Command confspotter-scrape collects conference listings into the CSV
// read by confspotter-import, or, with -deadlines, fills in paper
// deadlines for stored conferences from their call-for-papers pages.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/confspotter/confspotter-be/internal/config"
	"github.com/confspotter/confspotter-be/internal/database"
	"github.com/confspotter/confspotter-be/internal/logger"
	"github.com/confspotter/confspotter-be/internal/scraper"
	"github.com/confspotter/confspotter-be/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())

	out := flag.String("out", "conferences_normalized.csv", "CSV file for scraped conference listings")
	deadlines := flag.Bool("deadlines", false, "scrape paper deadlines for conferences in the database instead of listings")
	report := flag.String("report", "papers.csv", "CSV file listing every deadline found (with -deadlines)")
	dbPath := flag.String("db", cfg.DatabasePath, "SQLite database path (with -deadlines)")
	timeout := flag.Duration("timeout", 10*time.Second, "timeout for each page request")
	workers := flag.Int("workers", 4, "conference pages fetched at once")
	userAgent := flag.String("user-agent", scraper.DefaultUserAgent, "User-Agent header sent to sites")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := scraper.NewFetcher(*timeout, *userAgent)
	if *deadlines {
		err = runDeadlines(ctx, fetcher, *dbPath, *report)
	} else {
		err = runListings(ctx, fetcher, *workers, *out)
	}
	if err != nil {
		log.Error().Err(err).Msg("Scrape failed")
		os.Exit(1)
	}
}

func runListings(ctx context.Context, fetcher *scraper.Fetcher, workers int, outPath string) error {
	listings, err := scraper.NewListingScraper(fetcher, workers).Scrape(ctx, scraper.DefaultSources)
	if err != nil {
		return err
	}
	if err := writeFile(outPath, func(f *os.File) error { return scraper.WriteCSV(f, listings) }); err != nil {
		return err
	}
	log.Info().Int("conferences", len(listings)).Str("file", outPath).Msg("Saved conference listings")
	return nil
}

func runDeadlines(ctx context.Context, fetcher *scraper.Fetcher, dbPath, reportPath string) error {
	db, err := database.Open(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", dbPath, err)
	}
	defer db.Close()

	updater := scraper.NewDeadlineUpdater(scraper.NewDeadlineScraper(fetcher), services.NewConferenceService(db))
	res, err := updater.Run(ctx)
	if err != nil {
		log.Warn().Int("checked", res.Checked).Int("updated", res.Updated).Msg("Deadline scrape stopped early")
		return err
	}

	if len(res.Deadlines) > 0 {
		if err := writeFile(reportPath, func(f *os.File) error { return scraper.WriteDeadlinesCSV(f, res.Deadlines) }); err != nil {
			return err
		}
	}
	log.Info().Int("checked", res.Checked).Int("updated", res.Updated).Int("deadlines", len(res.Deadlines)).Str("report", reportPath).Msg("Deadline scrape complete")
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
