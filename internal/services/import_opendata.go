package services

import (
	"aed-location-service/internal/domain"
	"aed-location-service/internal/platform/metrics"
	"aed-location-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrImportFailed reports that at least one record was rejected by the store
// and the whole import was rolled back.
var ErrImportFailed = errors.New("import open data: a record was rejected, import rolled back")

// ImportReport summarises a successful import.
type ImportReport struct {
	Fetched  int
	Imported int
	Duration time.Duration
}

// ImportOpenData replaces the stored locations with the published open data.
//
// Rows are validated first; one invalid row aborts the import before the
// store is touched. Truncate and every upsert run in one transaction, so a
// rejected record leaves the previous data set in place.
func ImportOpenData(
	ctx context.Context,
	source ports.OpenDataSource,
	repo ports.LocationRepository,
	areas ports.AreaCache,
) (report ImportReport, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			metrics.ImportsTotal.WithLabelValues("failure").Inc()
			log.Error().Err(err).Msg("open data import failed")
			return
		}
		metrics.ImportsTotal.WithLabelValues("success").Inc()
		metrics.ImportedLocations.Set(float64(report.Imported))
		log.Info().
			Int("fetched", report.Fetched).
			Int("imported", report.Imported).
			Dur("duration", report.Duration).
			Msg("open data imported")
	}()

	rows, err := source.Fetch(ctx)
	if err != nil {
		return ImportReport{}, fmt.Errorf("import open data: fetch: %w", err)
	}

	factory := domain.NewFactory()
	for _, row := range rows {
		if _, err := factory.Create(row); err != nil {
			return ImportReport{}, fmt.Errorf("import open data: location_id=%d: %w", row.LocationID, err)
		}
	}

	locations := factory.Items()
	err = repo.WithinTx(ctx, func(ctx context.Context, tx ports.LocationRepository) error {
		svc := NewLocationService(tx)
		if err := svc.Truncate(ctx); err != nil {
			return err
		}
		for _, loc := range locations {
			if !svc.Upsert(ctx, loc) {
				return ErrImportFailed
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrImportFailed) {
			return ImportReport{}, err
		}
		return ImportReport{}, fmt.Errorf("import open data: %w", err)
	}

	if areas != nil {
		if err := areas.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("area cache invalidate failed")
		}
	}

	return ImportReport{
		Fetched:  len(rows),
		Imported: len(locations),
		Duration: time.Since(start),
	}, nil
}
