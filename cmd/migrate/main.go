package main

import (
	"context"
	"log"
	"time"

	"github.com/aprendefacil/backend/internal/config"
	"github.com/aprendefacil/backend/internal/db"
	"github.com/joho/godotenv"
)

// Applies pending schema migrations and exits. The api binary also runs
// them at startup; this one exists for deploy pipelines that migrate first.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)

	defer cancel()

	if err := db.RunMigrations(ctx, cfg.DBURL); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	log.Println("migrations applied")
}
