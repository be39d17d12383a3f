package main

import (
	"context"
	"log"

	"github.com/faktur-app/faktur/internal/server"
	"github.com/faktur-app/faktur/internal/server/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
