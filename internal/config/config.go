// Package config holds the command-line and environment options shared by
// the server and dbtool binaries.
package config

import (
	"aed-location-service/internal/adapters/opendata"
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Database selects the Postgres store.
type Database struct {
	URL string `long:"database-url" env:"DATABASE_URL" description:"Postgres connection URL"`
}

// OpenData locates the published AED CSV.
type OpenData struct {
	URL     string        `long:"opendata-url"     env:"OPENDATA_URL"     description:"AED open data CSV URL"`
	Timeout time.Duration `long:"opendata-timeout" env:"OPENDATA_TIMEOUT" description:"Download timeout" default:"30s"`
}

// Redis enables the shared area-name cache. An empty address disables it.
type Redis struct {
	Addr     string        `long:"redis-addr"     env:"REDIS_ADDR"     description:"Redis address (host:port); empty disables the area cache"`
	Password string        `long:"redis-password" env:"REDIS_PASSWORD" description:"Redis password"`
	DB       int           `long:"redis-db"       env:"REDIS_DB"       description:"Redis database index" default:"0"`
	TTL      time.Duration `long:"area-cache-ttl" env:"AREA_CACHE_TTL" description:"Area name cache TTL; 0 keeps entries until the next import" default:"1h"`
}

// LoadEnv reads .env into the process environment when the file exists.
// Variables already set take precedence.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded, using environment variables")
	}
}

// Validate reports a missing database URL unless the in-memory store was chosen.
func (d Database) Validate(memory bool) error {
	if memory {
		return nil
	}
	if strings.TrimSpace(d.URL) == "" {
		return errors.New("DATABASE_URL is required (or pass --memory)")
	}
	return nil
}

// SourceURL returns the configured CSV URL or the Asahikawa default.
func (o OpenData) SourceURL() string {
	if u := strings.TrimSpace(o.URL); u != "" {
		return u
	}
	return opendata.DefaultURL
}

// Enabled reports whether a Redis address was configured.
func (r Redis) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}
