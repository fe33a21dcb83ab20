package db

import (
	"aed-location-service/internal/domain"
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to Postgres through the pgx database/sql driver and verifies
// the connection. Failures are reported as *domain.DatabaseError.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, &domain.DatabaseError{Op: "open postgres database", Err: err}
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, &domain.DatabaseError{Op: "verify postgres connection", Err: fmt.Errorf("ping: %w", err)}
	}

	return db, nil
}
