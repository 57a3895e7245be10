package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/confspotter/confspotter-be/internal/api"
	"github.com/confspotter/confspotter-be/internal/auth"
	"github.com/confspotter/confspotter-be/internal/config"
	"github.com/confspotter/confspotter-be/internal/database"
	"github.com/confspotter/confspotter-be/internal/logger"
	"github.com/confspotter/confspotter-be/internal/monitoring"
	"github.com/confspotter/confspotter-be/internal/services"
	"github.com/confspotter/confspotter-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())

	// Ensure the directory for the database file exists
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("Failed to create database directory")
	}

	// Set up database
	db, err := database.Open(context.Background(), cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	userService := services.NewUserService(db)
	conferenceService := services.NewConferenceService(db)
	paperService := services.NewPaperService(db)
	favoriteService := services.NewFavoriteService(db)
	eventService := services.NewEventService(db)
	recommendationService := services.NewRecommendationService(userService, conferenceService)

	// Set up and run the background deadline scheduler
	scheduler, err := monitoring.NewDeadlineScheduler(cfg.DeadlineCron, cfg.DeadlineWindowDays, userService, recommendationService, eventService, hub)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure deadline scheduler")
	}
	go scheduler.Run()

	// Set up router
	router := api.NewRouter(api.Dependencies{
		DB:                 db,
		Hub:                hub,
		Tokens:             auth.NewManager(cfg.JWTSecret),
		Users:              userService,
		Conferences:        conferenceService,
		Papers:             paperService,
		Favorites:          favoriteService,
		Recommendations:    recommendationService,
		Events:             eventService,
		AllowedOrigins:     cfg.AllowedOrigins,
		DeadlineWindowDays: cfg.DeadlineWindowDays,
		SecureCookies:      cfg.IsProduction(),
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.Environment).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	scheduler.Stop() // Stop the scheduler

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}
