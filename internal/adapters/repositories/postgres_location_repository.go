package repositories

import (
	"aed-location-service/internal/domain"
	"aed-location-service/internal/platform/obs"
	"aed-location-service/internal/ports"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const selectColumns = `
		area,
		location_id,
		location_name,
		postal_code,
		address,
		phone_number,
		available_time,
		installation_floor,
		latitude,
		longitude`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres-backed implementation of the LocationRepository port.
type PostgresLocationRepository struct {
	DB *sql.DB
	q  querier
	tx bool
}

func NewPostgresLocationRepository(db *sql.DB) *PostgresLocationRepository {
	return &PostgresLocationRepository{DB: db, q: db}
}

func (r *PostgresLocationRepository) check() error {
	if r == nil || r.DB == nil || r.q == nil {
		return errors.New("postgres location repository: DB is nil")
	}
	return nil
}

// Return all locations ordered by location id.
func (r *PostgresLocationRepository) All(ctx context.Context) (_ []domain.InstallationLocation, err error) {
	defer obs.Time(ctx, "locations.All")(&err)

	if err := r.check(); err != nil {
		return nil, err
	}

	query := `SELECT` + selectColumns + `
	FROM aed_installation_locations
	ORDER BY location_id;
	`
	return r.queryLocations(ctx, "list locations", query)
}

func (r *PostgresLocationRepository) FindByID(
	ctx context.Context,
	id int,
) (_ domain.InstallationLocation, _ bool, err error) {
	defer obs.Time(ctx, "locations.FindByID")(&err)

	if err := r.check(); err != nil {
		return domain.InstallationLocation{}, false, err
	}

	query := `SELECT` + selectColumns + `
	FROM aed_installation_locations
	WHERE location_id = $1;
	`
	locs, err := r.queryLocations(ctx, "find location by id", query, id)
	if err != nil {
		return domain.InstallationLocation{}, false, err
	}
	if len(locs) == 0 {
		return domain.InstallationLocation{}, false, nil
	}

	return locs[0], true, nil
}

func (r *PostgresLocationRepository) CountByName(ctx context.Context, keyword string) (int, error) {
	if err := r.check(); err != nil {
		return 0, err
	}

	query := `
	SELECT count(*)
	FROM aed_installation_locations
	WHERE location_name LIKE $1 ESCAPE '\';
	`
	var n int
	if err := r.q.QueryRowContext(ctx, query, likePattern(keyword)).Scan(&n); err != nil {
		return 0, classify("count locations by name", err)
	}

	return n, nil
}

func (r *PostgresLocationRepository) FindByName(
	ctx context.Context,
	keyword string,
	limit, offset int,
) (_ []domain.InstallationLocation, err error) {
	defer obs.Time(ctx, "locations.FindByName")(&err)

	if err := r.check(); err != nil {
		return nil, err
	}

	query := `SELECT` + selectColumns + `
	FROM aed_installation_locations
	WHERE location_name LIKE $1 ESCAPE '\'
	ORDER BY location_id
	LIMIT $2 OFFSET $3;
	`
	return r.queryLocations(ctx, "find locations by name", query, likePattern(keyword), limit, offset)
}

func (r *PostgresLocationRepository) FindByArea(
	ctx context.Context,
	area string,
) (_ []domain.InstallationLocation, err error) {
	defer obs.Time(ctx, "locations.FindByArea")(&err)

	if err := r.check(); err != nil {
		return nil, err
	}

	query := `SELECT` + selectColumns + `
	FROM aed_installation_locations
	WHERE area = $1
	ORDER BY location_id;
	`
	return r.queryLocations(ctx, "find locations by area", query, area)
}

// Return one row per distinct area. DISTINCT ON keeps an arbitrary row per
// group, so the list is ordered by area to keep it stable.
func (r *PostgresLocationRepository) AreaNames(ctx context.Context) (_ []string, err error) {
	defer obs.Time(ctx, "locations.AreaNames")(&err)

	if err := r.check(); err != nil {
		return nil, err
	}

	query := `
	SELECT DISTINCT ON (area) area
	FROM aed_installation_locations
	ORDER BY area;
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, classify("list area names", err)
	}
	defer rows.Close()

	names := make([]string, 0, 32)
	for rows.Next() {
		var area string
		if err := rows.Scan(&area); err != nil {
			return nil, fmt.Errorf("list area names: scan row: %w", err)
		}
		names = append(names, area)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list area names: row iteration", err)
	}

	return names, nil
}

func (r *PostgresLocationRepository) LastUpdated(ctx context.Context) (*time.Time, error) {
	if err := r.check(); err != nil {
		return nil, err
	}

	var last sql.NullTime
	query := `SELECT max(updated_at) FROM aed_installation_locations;`
	if err := r.q.QueryRowContext(ctx, query).Scan(&last); err != nil {
		return nil, classify("last updated", err)
	}
	if !last.Valid {
		return nil, nil
	}

	t := last.Time
	return &t, nil
}

func (r *PostgresLocationRepository) Count(ctx context.Context) (int, error) {
	if err := r.check(); err != nil {
		return 0, err
	}

	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM aed_installation_locations;`).Scan(&n); err != nil {
		return 0, classify("count locations", err)
	}

	return n, nil
}

// Insert a location or replace every column of the row with the same
// location id. updated_at is stamped by the server in Japan civil time.
func (r *PostgresLocationRepository) Upsert(ctx context.Context, loc domain.InstallationLocation) error {
	if err := r.check(); err != nil {
		return err
	}

	query := `
	INSERT INTO aed_installation_locations (
		area,
		location_id,
		location_name,
		postal_code,
		address,
		phone_number,
		available_time,
		installation_floor,
		latitude,
		longitude,
		updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, clock_timestamp() AT TIME ZONE 'Asia/Tokyo')
	ON CONFLICT (location_id) DO UPDATE
	SET area = EXCLUDED.area,
		location_name = EXCLUDED.location_name,
		postal_code = EXCLUDED.postal_code,
		address = EXCLUDED.address,
		phone_number = EXCLUDED.phone_number,
		available_time = EXCLUDED.available_time,
		installation_floor = EXCLUDED.installation_floor,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		updated_at = EXCLUDED.updated_at;
	`
	_, err := r.q.ExecContext(ctx, query,
		loc.Area(),
		loc.LocationID(),
		loc.Name(),
		loc.PostalCode(),
		loc.Address(),
		loc.PhoneNumber(),
		loc.AvailableTime(),
		loc.Floor(),
		loc.Latitude(),
		loc.Longitude(),
	)
	if err != nil {
		return classify(fmt.Sprintf("upsert location_id=%d", loc.LocationID()), err)
	}

	return nil
}

func (r *PostgresLocationRepository) Truncate(ctx context.Context) error {
	if err := r.check(); err != nil {
		return err
	}

	if _, err := r.q.ExecContext(ctx, `TRUNCATE TABLE aed_installation_locations RESTART IDENTITY;`); err != nil {
		return classify("truncate locations", err)
	}

	return nil
}

// Run fn inside a single transaction. Nested calls reuse the open transaction.
func (r *PostgresLocationRepository) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, repo ports.LocationRepository) error,
) error {
	if err := r.check(); err != nil {
		return err
	}

	if r.tx {
		return fn(ctx, r)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, &PostgresLocationRepository{DB: r.DB, q: tx, tx: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("commit tx", err)
	}

	return nil
}

func (r *PostgresLocationRepository) queryLocations(
	ctx context.Context,
	op string,
	query string,
	args ...any,
) ([]domain.InstallationLocation, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	locations := make([]domain.InstallationLocation, 0, 64)
	for rows.Next() {
		var in domain.LocationInput
		err := rows.Scan(
			&in.Area,
			&in.LocationID,
			&in.Name,
			&in.PostalCode,
			&in.Address,
			&in.PhoneNumber,
			&in.AvailableTime,
			&in.Floor,
			&in.Latitude,
			&in.Longitude,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}

		loc, err := domain.NewInstallationLocation(in)
		if err != nil {
			return nil, fmt.Errorf("%s: location_id=%d: %w", op, in.LocationID, err)
		}
		locations = append(locations, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(op+": row iteration", err)
	}

	return locations, nil
}

// likePattern turns keyword into a literal substring pattern.
func likePattern(keyword string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(keyword)
	return "%" + escaped + "%"
}

// classify maps driver errors onto the domain taxonomy: SQLSTATE classes 22
// (data exception) and 23 (integrity constraint violation) are DataErrors,
// everything else is a DatabaseError.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch pgErr.Code[:2] {
		case "22", "23":
			return &domain.DataError{Op: op, Err: err}
		}
	}
	return &domain.DatabaseError{Op: op, Err: err}
}
