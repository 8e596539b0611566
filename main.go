package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"fellingdate/adapters/postgres"
	"fellingdate/adapters/refdata"
	"fellingdate/app"
	"fellingdate/internal/config"
	"fellingdate/ports"
	"fellingdate/ui"
)

func main() {
	// .env is optional; environment variables win either way
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}
	cfg := config.Load()
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sources := []ports.ReferenceSource{refdata.NewCatalog()}
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("connecting to reference store: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)

		repo := postgres.NewReferenceRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("preparing reference store schema: %v", err)
		}
		sources = append(sources, repo)
		log.Println("reference store connected, stored datasets available")
	}

	service := app.NewFellingService(sources...)
	server := ui.NewServer(service)
	if err := server.Run(ctx, ":"+cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
