package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"

	"answerparty/internal/config"
	"answerparty/internal/coord"
	"answerparty/internal/game"
	"answerparty/internal/handlers"
	"answerparty/internal/logging"
	"answerparty/internal/rooms"
	"answerparty/internal/storage"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New(*debug || cfg.Debug)

	// Record store: postgres when configured, in-memory otherwise.
	var store game.RecordStore
	if cfg.DatabaseURL != "" {
		db, err := storage.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		store = storage.NewStore(db)
		logger.Info("record store ready", "backend", "postgres")
	} else {
		store = storage.NewMemoryStore()
		logger.Warn("DATABASE_URL not set, using in-memory record store")
	}

	// Ephemeral coordination store: redis when configured.
	var coordinator coord.Coordinator
	if cfg.RedisURL != "" {
		rc, err := coord.NewRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		coordinator = rc
		logger.Info("coordination store ready", "backend", "redis")
	} else {
		coordinator = coord.NewMemory()
		logger.Warn("REDIS_URL not set, using in-memory coordination store")
	}

	hub := rooms.NewHub()
	registry := rooms.NewRegistry()
	orch := game.New(store, coordinator, hub, logger)
	h := handlers.NewHandler(logger, orch, hub, registry)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("answerparty listening", "addr", addr, "version", commit)
	log.Fatal(http.ListenAndServe(addr, routes(h)))
}
