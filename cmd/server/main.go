package main

import (
	"context"
	"fmt"

	"github.com/flashdeck/flashdeck/internal/adapter"
	"github.com/flashdeck/flashdeck/internal/config"
	httphandler "github.com/flashdeck/flashdeck/internal/handler/http"
	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/internal/server"
	"github.com/flashdeck/flashdeck/internal/service"
	"github.com/flashdeck/flashdeck/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("flashdeck-sync")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()

	db, err := store.NewConnect(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to local database")
	}
	if err = db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error migrating local database")
	}
	storages := store.NewStorages(db, log)

	gateway, err := buildGateway(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating remote gateway")
	}

	services := service.NewServices(storages, gateway, cfg.Sync, log)
	handler := httphandler.NewHandler(services, cfg.App, log)

	if cfg.Sync.Interval > 0 {
		job := service.NewSyncJob(services.Sync, log)
		job.Start(ctx, cfg.Sync.JobUserID, cfg.Sync.Interval)
		defer job.Stop()
	}

	srv, err := server.NewServer(handler, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

// buildGateway selects the remote gateway implementation: a real HTTP peer,
// or a same-process simulated remote backed by a second database for local
// development and tests.
func buildGateway(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (adapter.RemoteGateway, error) {
	if cfg.Remote.Mode == "local" {
		remoteDB, err := store.NewConnect(ctx, cfg.Remote.DB, log)
		if err != nil {
			return nil, fmt.Errorf("connect simulated remote database: %w", err)
		}
		if err = remoteDB.Migrate(); err != nil {
			return nil, fmt.Errorf("migrate simulated remote database: %w", err)
		}

		remoteStorages := store.NewStorages(remoteDB, log)
		remoteServices := service.NewServices(remoteStorages, nil, cfg.Sync, log)

		return adapter.NewLocalRemoteGateway(remoteServices.Remote, log), nil
	}

	return adapter.NewHTTPRemoteGateway(cfg.Remote, cfg.App, log)
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
