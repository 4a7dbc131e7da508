package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spad0x/smartcloset-server/config"
	"github.com/spad0x/smartcloset-server/database"
	handler "github.com/spad0x/smartcloset-server/handlers"
	"github.com/spad0x/smartcloset-server/logging"
	"github.com/spad0x/smartcloset-server/metrics"
	"github.com/spad0x/smartcloset-server/router"
	"github.com/spad0x/smartcloset-server/storage"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Setup(settings.LogLevel, settings.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}

	// `smartcloset migrate` creates the schema and exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := migrate(settings); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		log.Info().Msg("migration completed")
		return
	}

	if err := serve(settings); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func migrate(settings *config.Settings) error {
	db, err := database.Connect(settings)
	if err != nil {
		return err
	}
	defer database.Close(db)

	return database.Migrate(db)
}

func serve(settings *config.Settings) error {
	ctx := context.Background()

	db, err := database.Connect(settings)
	if err != nil {
		return err
	}
	// close the database connection
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("closing the database connection")
		}
	}()

	// Run migrations
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	opts := router.Options{
		Metrics:       metrics.New(),
		ExposeMetrics: settings.MetricsEnabled,
		BodyLimit:     settings.BodyLimit(),
		AccessLog:     true,
	}

	var images storage.ImageStore
	switch settings.StorageBackend {
	case config.BackendGCS:
		gcs, err := storage.NewGCSStore(ctx, settings.GCSBucketName, settings.GCSUploadPath)
		if err != nil {
			return err
		}
		defer gcs.Close()
		images = gcs
	default:
		local, err := storage.NewLocalStore(settings.UploadDir, settings.PublicBaseURL)
		if err != nil {
			return err
		}
		images = local
		opts.UploadDir = local.Dir()
	}

	opts.Clothes = handler.NewClothesHandler(
		database.NewClothesRepository(db),
		images,
		settings.Profile,
		opts.Metrics,
	)

	app := router.New(opts)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", settings.Addr()).
			Str("storage", settings.StorageBackend).
			Str("profile", settings.Profile.Name).
			Msg("server is listening")
		errCh <- app.Listen(settings.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info().Msg("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}
