package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the installation location table and its indexes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createLocationsQuery := `
	CREATE TABLE IF NOT EXISTS aed_installation_locations (
		id SERIAL PRIMARY KEY,
		area TEXT NOT NULL,
		location_id INTEGER NOT NULL UNIQUE,
		location_name TEXT NOT NULL,
		postal_code TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		available_time TEXT NOT NULL DEFAULT '',
		installation_floor TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	`

	createAreaIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_aed_installation_locations_area
	ON aed_installation_locations(area);
	`

	statements := []string{
		createLocationsQuery,
		createAreaIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
