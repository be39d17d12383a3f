package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/faktur-app/faktur/internal/client/cli"
	"github.com/faktur-app/faktur/internal/client/config"
	"github.com/faktur-app/faktur/internal/logging"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
