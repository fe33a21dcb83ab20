package repositories

import (
	"aed-location-service/internal/domain"
	"aed-location-service/internal/ports"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Locations []domain.LocationInput `yaml:"locations"`
}

// LoadSeed reads location fixtures from a YAML file and validates every entry.
func LoadSeed(path string) ([]domain.InstallationLocation, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load seed: read %q: %w", path, err)
	}

	var data seedFile
	if err := yaml.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("load seed: parse yaml: %w", err)
	}

	factory := domain.NewFactory()
	for i, in := range data.Locations {
		if _, err := factory.Create(in); err != nil {
			return nil, fmt.Errorf("load seed: location at index %d: %w", i+1, err)
		}
	}

	return factory.Items(), nil
}

// Seed upserts locations in a single transaction.
func Seed(ctx context.Context, repo ports.LocationRepository, locations []domain.InstallationLocation) error {
	return repo.WithinTx(ctx, func(ctx context.Context, tx ports.LocationRepository) error {
		for _, loc := range locations {
			if err := tx.Upsert(ctx, loc); err != nil {
				return fmt.Errorf("seed locations: upsert location_id=%d: %w", loc.LocationID(), err)
			}
		}
		return nil
	})
}
