// Package main provides the plantae server entry point.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/plantae/plantae/internal/cache"
	"github.com/plantae/plantae/internal/config"
	"github.com/plantae/plantae/internal/db/sqlite"
	"github.com/plantae/plantae/internal/identify"
	"github.com/plantae/plantae/internal/server"
	"github.com/plantae/plantae/internal/suggest"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Parse flags
	dataDir := flag.String("data-dir", "", "Data directory (default: ~/.plantae)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Setup logging
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// A local .env is convenient for GEMINI_API_KEY during development.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded .env file")
	}

	if err := config.EnsureDataDir(); err != nil {
		log.Fatal().Err(err).Msg("Failed to create data directory")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load config, using defaults")
		cfg = config.Default()
	}
	if *dataDir != "" {
		cfg.DBPath = filepath.Join(*dataDir, "plantae.db")
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, identification will be unavailable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("Shutting down")
		cancel()
	}()

	// Initialize SQLite store (migrations run automatically)
	store, err := sqlite.NewStore(sqlite.StoreConfig{
		Path:     cfg.DBPath,
		MaxConns: 4,
		WALMode:  true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize SQLite store")
	}
	defer store.Close()

	// Wire the data layer
	responseCache := cache.New(store, cfg.CacheTTL)
	identifier := identify.NewClient(identify.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Cache:   responseCache,
	})
	suggester := suggest.NewClient(suggest.Config{BaseURL: cfg.GBIFBaseURL})

	svc := server.New(Version, server.Deps{
		Config:     cfg,
		Store:      store,
		History:    sqlite.NewHistoryStore(store),
		Garden:     sqlite.NewGardenStore(store),
		Identifier: identifier,
		Suggester:  suggester,
	})

	if err := svc.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}
