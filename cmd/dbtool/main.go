package main

import (
	"aed-location-service/internal/adapters/cache"
	"aed-location-service/internal/adapters/opendata"
	"aed-location-service/internal/adapters/repositories"
	"aed-location-service/internal/config"
	"aed-location-service/internal/platform/db"
	"aed-location-service/internal/platform/logger"
	"aed-location-service/internal/ports"
	"aed-location-service/internal/services"
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger   logger.Logger   `group:"Logger options"`
	Database config.Database `group:"Database options"`
}

var opts Options

type migrateCommand struct{}

type importCommand struct {
	OpenData config.OpenData `group:"Open data options"`
	Redis    config.Redis    `group:"Redis options"`
}

type seedCommand struct {
	Path     string `long:"path" env:"SEED_PATH" description:"YAML seed file" default:"data/seeds/locations.yaml"`
	Truncate bool   `long:"truncate"             description:"Remove existing locations before seeding"`
}

func main() {
	config.LoadEnv()

	parser := flags.NewParser(&opts, flags.Default)
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		opts.Logger.Setup()
		return cmd.Execute(args)
	}

	mustAdd(parser.AddCommand("migrate", "Create the schema", "Create the location table and indexes if missing.", &migrateCommand{}))
	mustAdd(parser.AddCommand("import", "Import the AED open data", "Download the open data CSV and replace every stored location in one transaction.", &importCommand{}))
	mustAdd(parser.AddCommand("seed", "Load a YAML seed", "Upsert the locations of a YAML seed file.", &seedCommand{}))

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func mustAdd(_ *flags.Command, err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("register command")
	}
}

func (c *migrateCommand) Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Info().Msg("schema ready")
	return nil
}

func (c *importCommand) Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := opendata.NewClient(c.OpenData.SourceURL(), c.OpenData.Timeout)
	if err != nil {
		return err
	}

	var areas ports.AreaCache
	if c.Redis.Enabled() {
		rdb, err := db.OpenRedis(ctx, c.Redis.Addr, c.Redis.Password, c.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, area cache will not be invalidated")
		} else {
			defer rdb.Close()
			areas = cache.NewRedisAreaCache(rdb, c.Redis.TTL)
		}
	}

	_, err = services.ImportOpenData(ctx, client, repositories.NewPostgresLocationRepository(conn), areas)
	return err
}

func (c *seedCommand) Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	locs, err := repositories.LoadSeed(c.Path)
	if err != nil {
		return err
	}

	conn, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	repo := repositories.NewPostgresLocationRepository(conn)
	err = repo.WithinTx(ctx, func(ctx context.Context, tx ports.LocationRepository) error {
		if c.Truncate {
			if err := tx.Truncate(ctx); err != nil {
				return err
			}
		}
		return repositories.Seed(ctx, tx, locs)
	})
	if err != nil {
		return err
	}

	log.Info().Int("locations", len(locs)).Str("path", c.Path).Msg("seed complete")
	return nil
}

// openStore connects to Postgres and makes sure the schema exists.
func openStore(ctx context.Context) (*sql.DB, error) {
	if err := opts.Database.Validate(false); err != nil {
		return nil, err
	}

	conn, err := db.Open(ctx, opts.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := repositories.InitSchema(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return conn, nil
}
