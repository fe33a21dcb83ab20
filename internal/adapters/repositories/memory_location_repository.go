package repositories

import (
	"aed-location-service/internal/domain"
	"aed-location-service/internal/ports"
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

var tokyo = time.FixedZone("JST", 9*60*60)

type memoryRow struct {
	loc       domain.InstallationLocation
	updatedAt time.Time
}

// In-process implementation of the LocationRepository port with the same
// ordering and matching rules as the Postgres adapter. Transactions work on a
// copy that replaces the live rows on commit.
type MemoryLocationRepository struct {
	mu   sync.RWMutex
	rows map[int]memoryRow
	// Now stamps updated_at; defaults to the wall clock in Japan civil time.
	Now func() time.Time
}

func NewMemoryLocationRepository() *MemoryLocationRepository {
	return &MemoryLocationRepository{
		rows: make(map[int]memoryRow),
		Now:  func() time.Time { return time.Now().In(tokyo) },
	}
}

func (m *MemoryLocationRepository) sorted(match func(domain.InstallationLocation) bool) []domain.InstallationLocation {
	out := make([]domain.InstallationLocation, 0, len(m.rows))
	for _, row := range m.rows {
		if match == nil || match(row.loc) {
			out = append(out, row.loc)
		}
	}
	slices.SortFunc(out, func(a, b domain.InstallationLocation) int {
		return a.LocationID() - b.LocationID()
	})
	return out
}

func (m *MemoryLocationRepository) All(ctx context.Context) ([]domain.InstallationLocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sorted(nil), nil
}

func (m *MemoryLocationRepository) FindByID(ctx context.Context, id int) (domain.InstallationLocation, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.rows[id]
	return row.loc, ok, nil
}

func (m *MemoryLocationRepository) CountByName(ctx context.Context, keyword string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sorted(nameContains(keyword))), nil
}

func (m *MemoryLocationRepository) FindByName(
	ctx context.Context,
	keyword string,
	limit, offset int,
) ([]domain.InstallationLocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := m.sorted(nameContains(keyword))
	if offset >= len(matches) {
		return []domain.InstallationLocation{}, nil
	}

	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}

func (m *MemoryLocationRepository) FindByArea(ctx context.Context, area string) ([]domain.InstallationLocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sorted(func(l domain.InstallationLocation) bool { return l.Area() == area }), nil
}

func (m *MemoryLocationRepository) AreaNames(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	names := make([]string, 0, len(m.rows))
	for _, row := range m.rows {
		if _, ok := seen[row.loc.Area()]; ok {
			continue
		}
		seen[row.loc.Area()] = struct{}{}
		names = append(names, row.loc.Area())
	}
	slices.Sort(names)

	return names, nil
}

func (m *MemoryLocationRepository) LastUpdated(ctx context.Context) (*time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var last *time.Time
	for _, row := range m.rows {
		if last == nil || row.updatedAt.After(*last) {
			t := row.updatedAt
			last = &t
		}
	}
	return last, nil
}

func (m *MemoryLocationRepository) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.rows), nil
}

func (m *MemoryLocationRepository) Upsert(ctx context.Context, loc domain.InstallationLocation) error {
	if loc.LocationID() <= 0 {
		return &domain.DataError{Op: "upsert location", Err: &domain.LocationError{Message: "location id must be positive"}}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows[loc.LocationID()] = memoryRow{loc: loc, updatedAt: m.Now()}
	return nil
}

func (m *MemoryLocationRepository) Truncate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = make(map[int]memoryRow)
	return nil
}

func (m *MemoryLocationRepository) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, repo ports.LocationRepository) error,
) error {
	m.mu.RLock()
	tx := &MemoryLocationRepository{
		rows: make(map[int]memoryRow, len(m.rows)),
		Now:  m.Now,
	}
	for id, row := range m.rows {
		tx.rows[id] = row
	}
	m.mu.RUnlock()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	m.mu.Lock()
	m.rows = tx.rows
	m.mu.Unlock()

	return nil
}

func nameContains(keyword string) func(domain.InstallationLocation) bool {
	return func(l domain.InstallationLocation) bool {
		return strings.Contains(l.Name(), keyword)
	}
}
