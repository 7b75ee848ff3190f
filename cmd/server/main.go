package main

import (
	"context"
	"fmt"

	"github.com/plannerhub/planner-sync/internal/collections"
	"github.com/plannerhub/planner-sync/internal/config"
	handlerhttp "github.com/plannerhub/planner-sync/internal/handler/http"
	"github.com/plannerhub/planner-sync/internal/logger"
	"github.com/plannerhub/planner-sync/internal/replication"
	"github.com/plannerhub/planner-sync/internal/server"
	"github.com/plannerhub/planner-sync/internal/store"
	"github.com/plannerhub/planner-sync/migrations"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("planner-sync-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	db, err := store.NewConnectPostgres(context.Background(), cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}

	if err := migrations.Migrate(db.DB); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	bindings := collections.NewBindings(db, log)
	replicator := replication.NewService(log, bindings...)
	handler := handlerhttp.NewHandler(replicator, cfg.App, log)

	srv, err := server.NewServer(handler, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
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
