// cmd/migrate/main.go
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/flasktaskr/flasktaskr/internal/config"
	"github.com/flasktaskr/flasktaskr/internal/database"
	"github.com/flasktaskr/flasktaskr/internal/logger"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logger.Init(cfg.IsDevelopment()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("Running database migrations...")
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Seeding bootstrap data...")
	if err := database.Seed(ctx, db); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	log.Println("Migrations completed successfully!")
}
