package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/draft-season/internal/config"
	"github.com/jwebster45206/draft-season/internal/handlers"
	"github.com/jwebster45206/draft-season/internal/logger"
	"github.com/jwebster45206/draft-season/internal/middleware"
	"github.com/jwebster45206/draft-season/internal/services"
	"github.com/jwebster45206/draft-season/internal/storage"
	"github.com/jwebster45206/draft-season/pkg/minigame"
	"github.com/jwebster45206/draft-season/pkg/moments"
	"github.com/jwebster45206/draft-season/pkg/state"
	"github.com/jwebster45206/draft-season/pkg/storybook"
	"github.com/jwebster45206/draft-season/pkg/training"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Draft Season API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage_backend", cfg.StorageBackend,
		"model_name", cfg.ModelName,
		"strict_goals", cfg.StrictGoals)

	var store storage.Storage
	switch cfg.StorageBackend {
	case config.BackendRedis:
		store = storage.NewRedisStorage(cfg.RedisURL, log)
	case config.BackendSQLite:
		store, err = storage.NewSQLiteStorage(cfg.SQLitePath, log)
		if err != nil {
			log.Error("Failed to open SQLite storage", "error", err)
			os.Exit(1)
		}
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer storageCancel()
	if err := store.Ping(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established")

	bookCfg, err := storybook.LoadConfig(cfg.DataDir)
	if err != nil {
		log.Error("Failed to load storybook config", "error", err)
		os.Exit(1)
	}

	if cfg.OpenAIAPIKey == "" {
		log.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	oracle := services.NewOpenAIOracle(cfg.OpenAIAPIKey, cfg.ModelName, log)

	sessions := state.NewStore(store, log)
	books := storybook.NewManager(bookCfg, cfg.StrictGoals, nil, log)
	trainer := training.NewManager(log)
	resolver := minigame.NewResolver(oracle, nil, log)
	tracker := moments.NewTracker(log)

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, log))

	gameHandler := handlers.NewGameHandler(sessions, books, trainer, resolver, log)
	mux.Handle("/v1/game/", gameHandler)

	chatHandler := handlers.NewChatHandler(sessions, oracle, tracker, log)
	mux.Handle("/v1/chat", chatHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logging(log, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
