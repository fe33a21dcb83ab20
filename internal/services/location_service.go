package services

import (
	"aed-location-service/internal/domain"
	"aed-location-service/internal/platform/metrics"
	"aed-location-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// PageSize is the number of results per page of a name search.
	PageSize = 10
	// NearestLimit is the number of locations returned by a proximity search.
	NearestLimit = 5
)

// NamePage is one page of a name search.
type NamePage struct {
	TotalCount int
	MaxPage    int
	Page       int
	Items      []domain.InstallationLocation
}

// NearLocation is one ranked result of a proximity search.
type NearLocation struct {
	Rank       int
	Location   domain.InstallationLocation
	DistanceKm float64
}

// LocationService answers location queries and writes imported records.
// It holds no state between calls; everything lives in the repository.
type LocationService struct {
	repo  ports.LocationRepository
	areas ports.AreaCache
}

type Option func(*LocationService)

// WithAreaCache serves GetAreaNames from cache when possible.
func WithAreaCache(c ports.AreaCache) Option {
	return func(s *LocationService) {
		s.areas = c
	}
}

func NewLocationService(repo ports.LocationRepository, opts ...Option) *LocationService {
	s := &LocationService{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Truncate removes every stored location. Used before a full reimport.
func (s *LocationService) Truncate(ctx context.Context) error {
	if err := s.repo.Truncate(ctx); err != nil {
		return fmt.Errorf("truncate locations: %w", err)
	}
	log.Info().Msg("aed_installation_locations truncated")
	return nil
}

// Upsert stores loc, replacing any row with the same location id. Store
// failures are logged and reported as false; callers check it per record.
func (s *LocationService) Upsert(ctx context.Context, loc domain.InstallationLocation) bool {
	if err := s.repo.Upsert(ctx, loc); err != nil {
		metrics.UpsertFailuresTotal.Inc()

		var dataErr *domain.DataError
		kind := "database"
		if errors.As(err, &dataErr) {
			kind = "data"
		}
		log.Error().
			Err(err).
			Int("location_id", loc.LocationID()).
			Str("kind", kind).
			Msg("upsert location failed")
		return false
	}
	return true
}

func (s *LocationService) GetAll(ctx context.Context) ([]domain.InstallationLocation, error) {
	locs, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all locations: %w", err)
	}
	return locs, nil
}

// FindByID returns the location with the given id; ok is false when absent.
func (s *LocationService) FindByID(ctx context.Context, id int) (domain.InstallationLocation, bool, error) {
	metrics.SearchesTotal.WithLabelValues("id").Inc()

	loc, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.InstallationLocation{}, false, fmt.Errorf("find location %d: %w", id, err)
	}
	return loc, ok, nil
}

// FindByName returns page (1-based) of the locations whose name contains
// keyword. A page outside 1..MaxPage is a *domain.ServiceError.
func (s *LocationService) FindByName(ctx context.Context, keyword string, page int) (NamePage, error) {
	metrics.SearchesTotal.WithLabelValues("name").Inc()

	if page < 1 {
		return NamePage{}, &domain.ServiceError{Message: fmt.Sprintf("invalid page: %d", page)}
	}

	total, err := s.repo.CountByName(ctx, keyword)
	if err != nil {
		return NamePage{}, fmt.Errorf("find by name: count: %w", err)
	}

	maxPage := MaxPage(total)
	if page > maxPage {
		return NamePage{}, &domain.ServiceError{
			Message: fmt.Sprintf("page %d exceeds the last page %d", page, maxPage),
		}
	}

	items, err := s.repo.FindByName(ctx, keyword, PageSize, (page-1)*PageSize)
	if err != nil {
		return NamePage{}, fmt.Errorf("find by name: page %d: %w", page, err)
	}

	return NamePage{
		TotalCount: total,
		MaxPage:    maxPage,
		Page:       page,
		Items:      items,
	}, nil
}

// MaxPage is the number of pages needed for total results; at least 1.
func MaxPage(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + PageSize - 1) / PageSize
}

// ParsePage reads a page query value. Empty means the first page.
func ParsePage(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 1, nil
	}

	page, err := strconv.Atoi(text)
	if err != nil || page < 1 {
		return 0, &domain.ServiceError{Message: fmt.Sprintf("invalid page: %q", text)}
	}
	return page, nil
}

func (s *LocationService) FindByArea(ctx context.Context, area string) ([]domain.InstallationLocation, error) {
	metrics.SearchesTotal.WithLabelValues("area").Inc()

	locs, err := s.repo.FindByArea(ctx, area)
	if err != nil {
		return nil, fmt.Errorf("find by area %q: %w", area, err)
	}
	return locs, nil
}

// GetAreaNames returns one entry per distinct area. With an area cache
// configured, cache failures fall back to the repository.
func (s *LocationService) GetAreaNames(ctx context.Context) ([]string, error) {
	if s.areas != nil {
		names, ok, err := s.areas.GetAreaNames(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("area cache read failed")
		}
		if ok {
			metrics.AreaCacheHitsTotal.Inc()
			return names, nil
		}
		metrics.AreaCacheMissesTotal.Inc()
	}

	names, err := s.repo.AreaNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("get area names: %w", err)
	}

	if s.areas != nil {
		if err := s.areas.PutAreaNames(ctx, names); err != nil {
			log.Warn().Err(err).Msg("area cache write failed")
		}
	}

	return names, nil
}

// Nearest ranks stored locations by distance from current and returns the
// closest five with distances in kilometers (2 decimals, half-up).
func (s *LocationService) Nearest(ctx context.Context, current domain.CurrentLocation) ([]NearLocation, error) {
	metrics.SearchesTotal.WithLabelValues("gps").Inc()

	locs, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("nearest locations: %w", err)
	}

	return RankNearest(current, locs, NearestLimit), nil
}

// RankNearest sorts locs by distance from current (ties by location id) and
// keeps the first limit entries, ranked from 1.
func RankNearest(current domain.CurrentLocation, locs []domain.InstallationLocation, limit int) []NearLocation {
	type measured struct {
		loc    domain.InstallationLocation
		meters float64
	}

	all := make([]measured, 0, len(locs))
	for _, l := range locs {
		all = append(all, measured{loc: l, meters: current.DistanceTo(l)})
	}

	slices.SortStableFunc(all, func(a, b measured) int {
		if a.meters < b.meters {
			return -1
		}
		if a.meters > b.meters {
			return 1
		}
		return a.loc.LocationID() - b.loc.LocationID()
	})

	if len(all) > limit {
		all = all[:limit]
	}

	out := make([]NearLocation, 0, len(all))
	for i, m := range all {
		out = append(out, NearLocation{
			Rank:       i + 1,
			Location:   m.loc,
			DistanceKm: domain.RoundHalfUp(m.meters/1000, 2),
		})
	}
	return out
}

// GetLastUpdated returns the newest updated_at, or nil for an empty store.
func (s *LocationService) GetLastUpdated(ctx context.Context) (*time.Time, error) {
	last, err := s.repo.LastUpdated(ctx)
	if err != nil {
		return nil, fmt.Errorf("get last updated: %w", err)
	}
	return last, nil
}

// Count returns the number of stored locations.
func (s *LocationService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
