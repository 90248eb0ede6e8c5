package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/lifetrack/internal/backup/server"
	"github.com/dmitrijs2005/lifetrack/internal/backup/server/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := server.NewApp(ctx, cfg, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}

}
