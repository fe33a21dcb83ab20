package ports

import (
	"aed-location-service/internal/domain"
	"context"
	"time"
)

// Port: the persistence gateway for installation locations.
// Read operations return records ordered by location id unless noted.
type LocationRepository interface {
	// Return every stored location.
	All(ctx context.Context) ([]domain.InstallationLocation, error)
	// Return the location with the given id; ok is false when none matches.
	FindByID(ctx context.Context, id int) (loc domain.InstallationLocation, ok bool, err error)
	// Count locations whose name contains keyword (case-sensitive).
	CountByName(ctx context.Context, keyword string) (int, error)
	// Return one window of the locations whose name contains keyword.
	FindByName(ctx context.Context, keyword string, limit, offset int) ([]domain.InstallationLocation, error)
	// Return locations whose area equals area exactly.
	FindByArea(ctx context.Context, area string) ([]domain.InstallationLocation, error)
	// Return one entry per distinct area value.
	AreaNames(ctx context.Context) ([]string, error)
	// Return the newest updated_at, or nil when there are no rows.
	LastUpdated(ctx context.Context) (*time.Time, error)
	// Return the number of stored locations.
	Count(ctx context.Context) (int, error)
	// Insert loc or replace the row with the same location id.
	Upsert(ctx context.Context, loc domain.InstallationLocation) error
	// Remove every row and reset the identity sequence.
	Truncate(ctx context.Context) error
	// Run fn against a transactional view of the repository. fn's error
	// rolls everything back; a nil return commits.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo LocationRepository) error) error
}
