package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/bookline/calsync/internal/adapters/driven/auth"
	"github.com/bookline/calsync/internal/adapters/driven/booking"
	"github.com/bookline/calsync/internal/adapters/driven/config/file"
	"github.com/bookline/calsync/internal/adapters/driven/storage/sqlite"
	"github.com/bookline/calsync/internal/adapters/driving/cli"
	"github.com/bookline/calsync/internal/connectors/google"
	"github.com/bookline/calsync/internal/connectors/microsoft"
	"github.com/bookline/calsync/internal/core/domain"
	"github.com/bookline/calsync/internal/core/ports/driven"
	"github.com/bookline/calsync/internal/core/services"
	"github.com/bookline/calsync/internal/logger"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version)

	// Optional .env overlay; absence is not an error.
	_ = godotenv.Load()

	cfg, err := file.Load("")
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 1
	}
	logger.SetVerbose(cfg.Verbose)

	// Unified SQLite store for connections, sync audit log and booking data
	store, err := sqlite.NewStore(cfg.DatabasePath)
	if err != nil {
		log.Printf("failed to create SQLite store: %v", err)
		return 1
	}
	defer store.Close()

	connectionStore := store.Connections()
	syncEventStore := store.SyncEvents()
	bookingDir := booking.NewDirectory(store.DB())

	// One refresher per supported provider
	refreshers := map[domain.ProviderType]driven.TokenRefresher{
		domain.ProviderGoogle:    google.NewRefresher(),
		domain.ProviderMicrosoft: microsoft.NewRefresher(),
	}
	tokenManager := auth.NewTokenManager(connectionStore, refreshers, cfg)

	adapters := services.NewAdapterRegistry(
		google.NewAdapter(tokenManager, connectionStore),
		microsoft.NewAdapter(tokenManager, connectionStore),
	)

	syncSvc := services.NewSyncService(bookingDir, cfg, connectionStore, syncEventStore, adapters)

	cli.SetServices(&cli.Services{
		Sync:        syncSvc,
		Connections: connectionStore,
	})

	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}
