// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/flasktaskr/flasktaskr/internal/config"
	"github.com/flasktaskr/flasktaskr/internal/database"
	"github.com/flasktaskr/flasktaskr/internal/handlers"
	"github.com/flasktaskr/flasktaskr/internal/logger"
	"github.com/flasktaskr/flasktaskr/internal/repository"
	"github.com/flasktaskr/flasktaskr/internal/service"
	"github.com/flasktaskr/flasktaskr/internal/session"
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

	if err := run(cfg); err != nil {
		logger.Error("Server failed", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	db, err := database.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Server.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		if err := database.Seed(ctx, db); err != nil {
			return err
		}
	}

	authService := service.NewAuthService(repository.NewUserRepository(db))
	taskService := service.NewTaskService(repository.NewTaskRepository(db))
	sessions := session.NewManager(cfg.Session)

	handler := handlers.New(authService, taskService, sessions)

	server := &http.Server{
		Addr:              ":" + cfg.Server.HTTPPort,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
