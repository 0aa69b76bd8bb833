package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-field-crypt/internal/adapter"
	"github.com/MKhiriev/go-field-crypt/internal/client"
	"github.com/MKhiriev/go-field-crypt/internal/config"
	"github.com/MKhiriev/go-field-crypt/internal/logger"
	"github.com/MKhiriev/go-field-crypt/internal/service"
	"github.com/MKhiriev/go-field-crypt/internal/store"
	"github.com/MKhiriev/go-field-crypt/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	os.Exit(run())
}

func run() int {
	log := logger.NewLogger("fieldcrypt")
	logBuildInfo(log)

	cfg, args, err := config.GetStructuredConfig(os.Args[1:])
	if err != nil {
		log.Err(err).Msg("error getting configs")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storages, err := newStorages(ctx, cfg, log)
	if err != nil {
		log.Err(err).Msg("error creating storages")
		return 1
	}
	defer func() {
		if err := storages.Close(); err != nil {
			log.Err(err).Msg("error closing storages")
		}
	}()

	entities := models.DefaultEntities()
	services := service.NewServices(storages, cfg, entities, log)

	app, err := client.NewApp(services, storages.Records, entities, client.NewTerminalPrompter(os.Stdin, os.Stderr), os.Stdout, log)
	if err != nil {
		log.Err(err).Msg("init client app error")
		return 1
	}

	if err = app.Run(ctx, args); err != nil {
		if errors.Is(err, client.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		log.Err(err).Msg("command failed")
		return 1
	}

	return 0
}

func newStorages(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (*store.Storages, error) {
	if cfg.Storage.Backend == config.BackendHTTP {
		return adapter.NewHTTPStorages(cfg.Adapter, log)
	}
	return store.NewSQLStorages(ctx, cfg.Storage, log)
}

func logBuildInfo(log *logger.Logger) {
	info := models.NewBuildInfo(buildVersion, buildDate, buildCommit)
	log.Debug().
		Str("version", info.Version).
		Str("date", info.Date).
		Str("commit", info.Commit).
		Msg("build info")
}
