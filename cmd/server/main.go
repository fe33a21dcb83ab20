package main

import (
	"aed-location-service/internal/adapters/cache"
	"aed-location-service/internal/adapters/repositories"
	"aed-location-service/internal/api"
	"aed-location-service/internal/api/handlers"
	"aed-location-service/internal/config"
	"aed-location-service/internal/platform/db"
	"aed-location-service/internal/platform/logger"
	"aed-location-service/internal/platform/metrics"
	"aed-location-service/internal/ports"
	"aed-location-service/internal/services"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger   logger.Logger   `group:"Logger options"`
	Database config.Database `group:"Database options"`
	Redis    config.Redis    `group:"Redis options"`

	Addr     string `short:"a" long:"addr"   env:"LISTEN_ADDRESS" description:"Address to listen on" default:"0.0.0.0"`
	Port     int    `short:"p" long:"port"   env:"PORT"           description:"Port to listen on"    default:"8080"`
	Memory   bool   `long:"memory"                                description:"Serve from an in-memory store instead of Postgres"`
	SeedPath string `long:"seed"             env:"SEED_PATH"      description:"YAML seed loaded into the in-memory store"`
}

// main is the application composition root.
// It wires concrete adapters (Postgres or memory, Redis) behind ports and starts the HTTP server.
func main() {
	config.LoadEnv()

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	if err := opts.Database.Validate(opts.Memory); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("location store unavailable")
	}
	defer closeRepo()

	var svcOpts []services.Option
	if opts.Redis.Enabled() {
		client, err := db.OpenRedis(ctx, opts.Redis.Addr, opts.Redis.Password, opts.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("redis unavailable")
		}
		defer client.Close()

		svcOpts = append(svcOpts, services.WithAreaCache(cache.NewRedisAreaCache(client, opts.Redis.TTL)))
		log.Info().Str("addr", opts.Redis.Addr).Dur("ttl", opts.Redis.TTL).Msg("area cache enabled")
	}

	svc := services.NewLocationService(repo, svcOpts...)
	metrics.RegisterLocationCount(svc)

	views, err := handlers.NewViews()
	if err != nil {
		log.Fatal().Err(err).Msg("load views")
	}

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           api.NewRouter(svc, views),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().Str("addr", listenAddr).Bool("memory", opts.Memory).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func openRepository(ctx context.Context, opts Options) (ports.LocationRepository, func(), error) {
	if opts.Memory {
		repo := repositories.NewMemoryLocationRepository()
		if opts.SeedPath != "" {
			locs, err := repositories.LoadSeed(opts.SeedPath)
			if err != nil {
				return nil, nil, err
			}
			if err := repositories.Seed(ctx, repo, locs); err != nil {
				return nil, nil, err
			}
			log.Info().Int("locations", len(locs)).Str("path", opts.SeedPath).Msg("memory store seeded")
		}
		return repo, func() {}, nil
	}

	conn, err := db.Open(ctx, opts.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	if err := repositories.InitSchema(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	return repositories.NewPostgresLocationRepository(conn), func() { _ = conn.Close() }, nil
}
