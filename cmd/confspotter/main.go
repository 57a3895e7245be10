// Command confspotter is the terminal client for the ConfSpotter API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/confspotter/confspotter-be/internal/cli"
	"github.com/confspotter/confspotter-be/internal/client"
	"github.com/confspotter/confspotter-be/internal/config"
	"github.com/confspotter/confspotter-be/internal/logger"
	"github.com/confspotter/confspotter-be/internal/session"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), false)

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load client configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(client.New(cfg.APIURL), session.NewStore(cfg.SessionPath), os.Stdin, os.Stdout)
	app.Run(ctx)
}
